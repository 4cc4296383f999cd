package room

// Close codes a room uses when it force-closes a connection.  Expiry
// and takeover each get their own application code so clients can tell
// a timed-out hold or a newer tab from a generic disconnect.
const (
	CloseCodeExpired   = 4001
	CloseReasonExpired = "Session expired"

	CloseCodeSuperseded   = 4002
	CloseReasonSuperseded = "Session superseded"
)

// Conn is the transport endpoint a room delivers events to.  Send must
// not block indefinitely: implementations queue into a bounded buffer
// and report a full buffer or dead peer as an error, which the room
// treats as a delivery failure and reaps the session.
type Conn interface {
	Send(data []byte) error
	Close(code int, reason string) error
}
