// Package event defines the JSON messages exchanged over a room's
// WebSocket connections.  One object per message, discriminated by the
// "type" field.
package event

import "encoding/json"

// SeatStatus is the canonical per-seat state carried on the wire.  The
// room computes which value each recipient sees: the requester of a
// successful claim receives "selected" while every other viewer
// receives "reserved" for the same seat.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatReserved  SeatStatus = "reserved"
	SeatSelected  SeatStatus = "selected"
)

// Client → server message types.
const (
	TypeToggleSeat = "toggleSeat"
	TypePersist    = "persist"
)

// Server → client message types.
const (
	TypeSeatChanged  = "seatChanged"
	TypeSeatsChanged = "seatsChanged"
	TypeExpiration   = "expiration"
	TypePersisted    = "persisted"
	TypeError        = "error"
)

// Envelope carries only the discriminator and is used to route an
// incoming message before the full payload is decoded.
type Envelope struct {
	Type string `json:"type"`
}

// ToggleSeat asks the room to claim or release a single seat.
type ToggleSeat struct {
	Type string `json:"type"`
	Seat string `json:"seat"`
}

// SeatChanged announces a single seat's new status.
type SeatChanged struct {
	Type   string     `json:"type"`
	Seat   string     `json:"seat"`
	Status SeatStatus `json:"status"`
}

// SeatsChanged announces the same status for a batch of seats, e.g.
// the reserved-seat snapshot on join or a consolidated release when a
// connection dies.
type SeatsChanged struct {
	Type   string     `json:"type"`
	Seats  []string   `json:"seats"`
	Status SeatStatus `json:"status"`
}

// Expiration tells a client when its non-persisted seats will be
// released, as epoch milliseconds.
type Expiration struct {
	Type       string `json:"type"`
	Expiration int64  `json:"expiration"`
}

// Persisted acknowledges a successful persist command.
type Persisted struct {
	Type          string `json:"type"`
	TransactionID string `json:"transactionId"`
}

// Error is a non-fatal, requester-only failure report.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// MarshalSeatChanged serializes a seatChanged event.  The event types
// are plain structs, so marshalling cannot fail; the helpers drop the
// error to keep call sites terse.
func MarshalSeatChanged(seat string, status SeatStatus) []byte {
	b, _ := json.Marshal(SeatChanged{Type: TypeSeatChanged, Seat: seat, Status: status})
	return b
}

// MarshalSeatsChanged serializes a batched seatsChanged event.
func MarshalSeatsChanged(seats []string, status SeatStatus) []byte {
	b, _ := json.Marshal(SeatsChanged{Type: TypeSeatsChanged, Seats: seats, Status: status})
	return b
}

// MarshalExpiration serializes an expiration notice.
func MarshalExpiration(epochMS int64) []byte {
	b, _ := json.Marshal(Expiration{Type: TypeExpiration, Expiration: epochMS})
	return b
}

// MarshalPersisted serializes a persist acknowledgement.
func MarshalPersisted(transactionID string) []byte {
	b, _ := json.Marshal(Persisted{Type: TypePersisted, TransactionID: transactionID})
	return b
}

// MarshalError serializes an error event.
func MarshalError(message string) []byte {
	b, _ := json.Marshal(Error{Type: TypeError, Message: message})
	return b
}
