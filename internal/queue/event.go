// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// ReservationPersistedEvent is published when a session irreversibly
// commits its seat holds.  It carries enough information for
// downstream consumers to log, notify or reconcile without querying
// the live room.
type ReservationPersistedEvent struct {
	Room          string   `json:"room"`
	TransactionID string   `json:"transaction_id"`
	UserID        string   `json:"user_id"`
	Seats         []string `json:"seats"`
	PersistedAt   string   `json:"persisted_at"`
}
