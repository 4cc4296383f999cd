package room

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/live-seat-reservation/internal/event"
	"github.com/iliyamo/live-seat-reservation/internal/model"
	"github.com/iliyamo/live-seat-reservation/internal/storage"
)

const storeTimeout = 5 * time.Second

// PersistFunc is invoked after a session's seats have been durably
// committed.  It runs outside the room's critical section and must not
// call back into the room.
type PersistFunc func(room, transactionID string, res model.ConfirmedReservation)

// Options tune a room.  Zero values fall back to the protocol
// defaults: a five-minute hold, four seats per session, wall-clock time.
type Options struct {
	HoldTTL   time.Duration
	MaxSeats  int
	Clock     func() time.Time
	OnPersist PersistFunc
}

// Room owns all reservation state for one seating pool.  Every command,
// close event and alarm firing is serialized under a single mutex, so
// the toggle read-check-write sequence is atomic with respect to
// concurrent toggles on the same seat.  Rooms never share state.
type Room struct {
	name     string
	store    storage.Store
	holdTTL  time.Duration
	maxSeats int
	clock    func() time.Time
	persist  PersistFunc

	mu        sync.Mutex
	sessions  map[Conn]*model.Session
	reserved  map[string]string // seat label -> owning transaction id
	confirmed map[string]model.ConfirmedReservation
	alarmAt   time.Time
	timer     *time.Timer
}

// New builds a room bound to its durable store.  Confirmed
// reservations are reloaded so their seats are unavailable from the
// first connection, and a previously armed alarm is re-armed so holds
// in flight before a restart still expire.
func New(ctx context.Context, name string, store storage.Store, opts Options) (*Room, error) {
	r := &Room{
		name:      name,
		store:     store,
		holdTTL:   opts.HoldTTL,
		maxSeats:  opts.MaxSeats,
		clock:     opts.Clock,
		persist:   opts.OnPersist,
		sessions:  make(map[Conn]*model.Session),
		reserved:  make(map[string]string),
		confirmed: make(map[string]model.ConfirmedReservation),
	}
	if r.holdTTL <= 0 {
		r.holdTTL = 5 * time.Minute
	}
	if r.maxSeats <= 0 {
		r.maxSeats = 4
	}
	if r.clock == nil {
		r.clock = func() time.Time { return time.Now().UTC() }
	}

	b, err := store.Get(ctx, storage.KeyConfirmedReservations)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load confirmed reservations: %w", err)
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &r.confirmed); err != nil {
			return nil, fmt.Errorf("decode confirmed reservations: %w", err)
		}
		for txID, res := range r.confirmed {
			for _, seat := range res.Seats {
				r.reserved[seat] = txID
			}
		}
	}

	if at, err := store.GetAlarm(ctx); err != nil {
		log.Warn().Err(err).Str("room", name).Msg("read persisted alarm failed")
	} else if !at.IsZero() {
		r.alarmAt = at
		d := at.Sub(r.clock())
		if d < 0 {
			d = 0
		}
		r.timer = time.AfterFunc(d, r.onAlarm)
	}
	return r, nil
}

// Name returns the room's identifier.
func (r *Room) Name() string { return r.name }

// Join registers a connection and creates (or rehydrates) its session.
// The new client immediately receives its expiration notice and a
// snapshot of every currently reserved seat, so late joiners never
// start from a stale board.
func (r *Room) Join(conn Conn, userID, sessionID string) (*model.Session, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictSessionLocked(sessionID)
	sess := r.restoreSessionLocked(sessionID)
	if sess == nil {
		now := r.clock()
		exp := now.Add(r.holdTTL)
		txID, err := newTransactionID(now)
		if err != nil {
			return nil, fmt.Errorf("generate transaction id: %w", err)
		}
		sess = &model.Session{
			SessionID:     sessionID,
			UserID:        userID,
			TransactionID: txID,
			Seats:         []string{},
			CreatedAt:     now,
			ExpiresAt:     &exp,
		}
	}
	r.sessions[conn] = sess

	if sess.ExpiresAt != nil {
		r.sendTo(conn, event.MarshalExpiration(sess.ExpiresAt.UnixMilli()))
	}
	if others := r.seatsHeldByOthersLocked(sess); len(others) > 0 {
		r.sendTo(conn, event.MarshalSeatsChanged(others, event.SeatReserved))
	}
	if len(sess.Seats) > 0 {
		r.sendTo(conn, event.MarshalSeatsChanged(sess.Seats, event.SeatSelected))
	}

	r.saveSessionLocked(sess)
	r.scheduleLocked()
	log.Info().Str("room", r.name).Str("user", userID).Str("tx", sess.TransactionID).Msg("session joined")
	return sess, nil
}

// HandleMessage dispatches one client message.  Validation failures are
// reported to the requester only and never mutate state.
func (r *Room) HandleMessage(conn Conn, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[conn]
	if !ok {
		r.sendTo(conn, event.MarshalError(r.errorMessage(ErrNoSession)))
		return
	}

	var env event.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.sendTo(conn, event.MarshalError("Invalid message"))
		return
	}
	switch env.Type {
	case event.TypeToggleSeat:
		var msg event.ToggleSeat
		if err := json.Unmarshal(data, &msg); err != nil || msg.Seat == "" {
			r.sendTo(conn, event.MarshalError("Invalid message"))
			return
		}
		if err := r.toggleSeatLocked(conn, sess, msg.Seat); err != nil {
			r.sendTo(conn, event.MarshalError(r.errorMessage(err)))
		}
	case event.TypePersist:
		r.persistLocked(conn, sess)
	default:
		r.sendTo(conn, event.MarshalError("Unknown message type"))
	}
}

// errorMessage maps a command error onto the message shown inline in
// the client's seat picker.
func (r *Room) errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return fmt.Sprintf("You can't select more than %d seats", r.maxSeats)
	case errors.Is(err, ErrSeatTaken):
		return "This seat has already reserved."
	case errors.Is(err, ErrNoSession):
		return "No session found"
	}
	return err.Error()
}

// toggleSeatLocked applies the hold/release state machine for a single
// seat.  The requester of a successful claim sees "selected" while
// everyone else sees "reserved"; a release broadcasts "available" to
// all viewers including the requester.
func (r *Room) toggleSeatLocked(conn Conn, sess *model.Session, seat string) error {
	switch {
	case sess.HoldsSeat(seat):
		// Only the ledger owner may free the seat.  A session whose seat
		// list has gone stale must not release a seat the ledger now
		// attributes to someone else.
		owned := r.reserved[seat] == sess.TransactionID
		sess.ReleaseSeat(seat)
		if owned {
			delete(r.reserved, seat)
		}
		r.saveSessionLocked(sess)
		if owned {
			r.broadcastLocked(event.MarshalSeatChanged(seat, event.SeatAvailable), nil)
		}
	case len(sess.Seats) >= r.maxSeats:
		return ErrLimitExceeded
	case r.reserved[seat] != "":
		return ErrSeatTaken
	default:
		sess.Seats = append(sess.Seats, seat)
		r.reserved[seat] = sess.TransactionID
		r.saveSessionLocked(sess)
		r.sendTo(conn, event.MarshalSeatChanged(seat, event.SeatSelected))
		r.broadcastLocked(event.MarshalSeatChanged(seat, event.SeatReserved), conn)
	}
	return nil
}

// persistLocked irreversibly commits the session's seats.  The durable
// write completes before the acknowledgement and before the entry
// enters the confirmed map, so a failed write leaves no half-confirmed
// state behind; the client's hold survives and a retry writes the
// identical data.
func (r *Room) persistLocked(conn Conn, sess *model.Session) {
	res := model.ConfirmedReservation{
		UserID: sess.UserID,
		Seats:  append([]string(nil), sess.Seats...),
	}
	next := make(map[string]model.ConfirmedReservation, len(r.confirmed)+1)
	for txID, cr := range r.confirmed {
		next[txID] = cr
	}
	next[sess.TransactionID] = res

	b, err := json.Marshal(next)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		err = r.store.Put(ctx, storage.KeyConfirmedReservations, b)
		cancel()
	}
	if err != nil {
		log.Error().Err(err).Str("room", r.name).Str("tx", sess.TransactionID).Msg("persist write failed")
		r.sendTo(conn, event.MarshalError("Could not persist reservation, please retry"))
		return
	}

	r.confirmed[sess.TransactionID] = res
	sess.Persisted = true
	sess.ExpiresAt = nil
	r.saveSessionLocked(sess)
	r.sendTo(conn, event.MarshalPersisted(sess.TransactionID))
	log.Info().Str("room", r.name).Str("tx", sess.TransactionID).Strs("seats", res.Seats).Msg("reservation persisted")
	if r.persist != nil {
		go r.persist(r.name, sess.TransactionID, res)
	}
}

// HandleClose releases a departing connection.  Non-persisted seats
// return to the pool and the remaining viewers get one consolidated
// availability event; persisted seats are never auto-released.
func (r *Room) HandleClose(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[conn]
	if !ok {
		return
	}
	sess.Quit = true
	delete(r.sessions, conn)

	if !sess.Persisted && len(sess.Seats) > 0 {
		for _, seat := range sess.Seats {
			delete(r.reserved, seat)
		}
		r.deleteSessionLocked(sess)
		r.broadcastLocked(event.MarshalSeatsChanged(sess.Seats, event.SeatAvailable), nil)
	}
	log.Info().Str("room", r.name).Str("tx", sess.TransactionID).Bool("persisted", sess.Persisted).Msg("session closed")
}

// broadcastLocked delivers data to every registered connection except
// an optional excluded one.  A failed send marks the session quit and,
// when not persisted, frees its seats; each sweep is followed by at
// most one consolidated availability broadcast.  The loop terminates
// because every extra pass removes at least one dead connection.
func (r *Room) broadcastLocked(data []byte, exclude Conn) {
	payload := data
	for {
		var freed []string
		for conn, sess := range r.sessions {
			if exclude != nil && conn == exclude {
				continue
			}
			if err := conn.Send(payload); err == nil {
				continue
			}
			log.Warn().Str("room", r.name).Str("tx", sess.TransactionID).Msg("delivery failed, reaping session")
			sess.Quit = true
			delete(r.sessions, conn)
			if !sess.Persisted {
				for _, seat := range sess.Seats {
					delete(r.reserved, seat)
				}
				freed = append(freed, sess.Seats...)
				r.deleteSessionLocked(sess)
			}
		}
		if len(freed) == 0 {
			return
		}
		payload = event.MarshalSeatsChanged(freed, event.SeatAvailable)
		exclude = nil
	}
}

// sendTo delivers to a single connection.  Failures are only logged
// here; the dead peer is reaped on the next broadcast or by its read
// loop.
func (r *Room) sendTo(conn Conn, data []byte) {
	if err := conn.Send(data); err != nil {
		log.Warn().Err(err).Str("room", r.name).Msg("direct send failed")
	}
}

// seatsHeldByOthersLocked lists every reserved seat not held by the
// given session.
func (r *Room) seatsHeldByOthersLocked(sess *model.Session) []string {
	if len(r.reserved) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.reserved))
	for seat, owner := range r.reserved {
		if owner != sess.TransactionID {
			out = append(out, seat)
		}
	}
	return out
}

// evictSessionLocked force-closes any connection still registered under
// the given session id.  A reconnect can race the reap of its old
// connection, and a replayed connect token looks the same; only one
// connection per session id may ever be live, otherwise a stale toggle
// on the old one could free a seat the ledger no longer attributes to
// it.  Seats and the snapshot stay untouched here, the caller restores
// them onto the new connection.
func (r *Room) evictSessionLocked(sessionID string) {
	if sessionID == "" {
		return
	}
	for conn, sess := range r.sessions {
		if sess.SessionID != sessionID {
			continue
		}
		sess.Quit = true
		delete(r.sessions, conn)
		if err := conn.Close(CloseCodeSuperseded, CloseReasonSuperseded); err != nil {
			log.Warn().Err(err).Str("room", r.name).Msg("close superseded connection failed")
		}
		log.Info().Str("room", r.name).Str("tx", sess.TransactionID).Msg("session superseded by reconnect")
	}
}

// restoreSessionLocked rehydrates a serialized session snapshot for a
// reconnecting client.  Expired snapshots are discarded, and seats that
// were claimed by someone else in the meantime are dropped from the
// restored set.
func (r *Room) restoreSessionLocked(sessionID string) *model.Session {
	if sessionID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	b, err := r.store.Get(ctx, storage.KeySessionPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Str("room", r.name).Msg("read session snapshot failed")
		}
		return nil
	}
	var sess model.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		log.Warn().Err(err).Str("room", r.name).Msg("decode session snapshot failed")
		return nil
	}
	if !sess.Persisted && (sess.ExpiresAt == nil || !sess.ExpiresAt.After(r.clock())) {
		_ = r.store.Delete(ctx, storage.KeySessionPrefix+sessionID)
		return nil
	}
	kept := sess.Seats[:0]
	for _, seat := range sess.Seats {
		owner, taken := r.reserved[seat]
		if !taken || owner == sess.TransactionID {
			r.reserved[seat] = sess.TransactionID
			kept = append(kept, seat)
		}
	}
	sess.Seats = kept
	return &sess
}

// saveSessionLocked mirrors the session onto the durable store so a
// reconnect after a process recycle resumes where it left off.
func (r *Room) saveSessionLocked(sess *model.Session) {
	if sess.SessionID == "" {
		return
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.store.Put(ctx, storage.KeySessionPrefix+sess.SessionID, b); err != nil {
		log.Warn().Err(err).Str("room", r.name).Msg("write session snapshot failed")
	}
}

func (r *Room) deleteSessionLocked(sess *model.Session) {
	if sess.SessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := r.store.Delete(ctx, storage.KeySessionPrefix+sess.SessionID); err != nil {
		log.Warn().Err(err).Str("room", r.name).Msg("delete session snapshot failed")
	}
}

// ConfirmedReservations returns a copy of the durable reservation map
// for read-only consumers; mutating the result never touches the
// ledger.
func (r *Room) ConfirmedReservations() map[string]model.ConfirmedReservation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]model.ConfirmedReservation, len(r.confirmed))
	for txID, res := range r.confirmed {
		out[txID] = model.ConfirmedReservation{
			UserID: res.UserID,
			Seats:  append([]string(nil), res.Seats...),
		}
	}
	return out
}

// SeatOccupancy returns a copy of the seat ledger: every reserved seat
// label mapped to its owning transaction id.
func (r *Room) SeatOccupancy() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.reserved))
	for seat, owner := range r.reserved {
		out[seat] = owner
	}
	return out
}

// newTransactionID builds an id that embeds creation time so ids are
// globally unique and sort by creation order.
func newTransactionID(now time.Time) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	return fmt.Sprintf("%013d-%s", now.UnixMilli(), hex.EncodeToString(suffix)), nil
}
