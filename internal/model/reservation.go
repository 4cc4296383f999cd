package model

// ConfirmedReservation is the durable record written when a session
// persists its held seats.  Entries are keyed by transaction id in the
// room's confirmed-reservation map and are never removed by the live
// process; rollback is an external admin operation.
//
// Fields:
//  UserID – verified identity that committed the hold.
//  Seats  – the seat labels committed under this transaction.
type ConfirmedReservation struct {
	UserID string   `json:"user_id"`
	Seats  []string `json:"seats"`
}
