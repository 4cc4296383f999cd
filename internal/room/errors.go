// Package room implements the per-room seat-reservation session
// manager: it tracks live connections and their sessions, validates and
// applies seat toggles, fans out seat-state changes to every viewer,
// expires abandoned holds and persists confirmed reservations through
// an injected durable store.
package room

import "errors"

// Sentinel errors used to classify command failures.  Handlers and the
// WebSocket layer translate these into wire error events or refused
// upgrades; none of them tears down the room.
var (
	// ErrUnauthorized means the connection carries no verified user
	// identity.  The upgrade is refused before a session exists.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrLimitExceeded means a toggle was attempted while the session
	// already holds the maximum number of seats.
	ErrLimitExceeded = errors.New("seat limit exceeded")

	// ErrSeatTaken means the requested seat is reserved by another
	// live session or a confirmed reservation.
	ErrSeatTaken = errors.New("seat already reserved")

	// ErrNoSession means a command arrived on a connection with no
	// registered session.
	ErrNoSession = errors.New("no session found")
)
