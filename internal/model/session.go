package model

import "time"

// Session holds the server-side state for one live connection while a
// user picks seats.  A session starts with an empty seat set and a
// five-minute expiry; toggling seats mutates the set, and an explicit
// persist call commits the set and stops the expiry clock.
//
// Fields:
//  SessionID     – identifier minted into the connect token; also the
//                  storage key for the serialized session snapshot.
//  UserID        – verified external identity; always non-empty.
//  TransactionID – unique per session, time-prefixed so values sort by
//                  creation order.
//  Seats         – seat labels currently held, in claim order (max 4).
//  CreatedAt     – when the session was opened.
//  ExpiresAt     – when non-persisted seats are released; nil once
//                  the session has been persisted.
//  Persisted     – true after the irreversible persist command.
//  Quit          – true once the connection is known dead.
type Session struct {
	SessionID     string     `json:"session_id"`
	UserID        string     `json:"user_id"`
	TransactionID string     `json:"transaction_id"`
	Seats         []string   `json:"seats"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Persisted     bool       `json:"persisted"`
	Quit          bool       `json:"-"`
}

// HoldsSeat reports whether the session currently holds the given label.
func (s *Session) HoldsSeat(label string) bool {
	for _, seat := range s.Seats {
		if seat == label {
			return true
		}
	}
	return false
}

// ReleaseSeat removes the given label from the session's seat set.  It
// is a no-op when the seat is not held.
func (s *Session) ReleaseSeat(label string) {
	kept := s.Seats[:0]
	for _, seat := range s.Seats {
		if seat != label {
			kept = append(kept, seat)
		}
	}
	s.Seats = kept
}
