package room

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/live-seat-reservation/internal/event"
)

// scheduleLocked keeps at most one pending wake-up per room.  It scans
// the non-quit sessions for the earliest expiry and arms the alarm for
// it, but only ever moves the alarm earlier: an already-armed earlier
// alarm is guaranteed to fire before the new minimum, and rescheduling
// later could let a hold outlive its expiry.
func (r *Room) scheduleLocked() {
	var min time.Time
	for _, sess := range r.sessions {
		if sess.Quit || sess.ExpiresAt == nil {
			continue
		}
		if min.IsZero() || sess.ExpiresAt.Before(min) {
			min = *sess.ExpiresAt
		}
	}
	if min.IsZero() {
		return
	}
	if !r.alarmAt.IsZero() && !min.Before(r.alarmAt) {
		return
	}
	r.alarmAt = min

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	if err := r.store.SetAlarm(ctx, min); err != nil {
		log.Warn().Err(err).Str("room", r.name).Msg("persist alarm failed")
	}
	cancel()

	d := min.Sub(r.clock())
	if d < 0 {
		d = 0
	}
	if r.timer == nil {
		r.timer = time.AfterFunc(d, r.onAlarm)
	} else {
		r.timer.Reset(d)
	}
}

// onAlarm fires when the earliest hold may have expired.  Every session
// past its expiry is marked quit, force-closed with the expiry close
// code and stripped of its seats; survivors get one consolidated
// availability broadcast.  The alarm is then re-armed for the next
// pending expiry, if any.
func (r *Room) onAlarm() {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	r.alarmAt = time.Time{}

	var freed []string
	var closed []Conn
	for conn, sess := range r.sessions {
		if sess.Quit || sess.ExpiresAt == nil || sess.ExpiresAt.After(now) {
			continue
		}
		sess.Quit = true
		delete(r.sessions, conn)
		closed = append(closed, conn)
		for _, seat := range sess.Seats {
			delete(r.reserved, seat)
		}
		freed = append(freed, sess.Seats...)
		r.deleteSessionLocked(sess)
		log.Info().Str("room", r.name).Str("tx", sess.TransactionID).Msg("session expired")
	}
	for _, conn := range closed {
		if err := conn.Close(CloseCodeExpired, CloseReasonExpired); err != nil {
			log.Warn().Err(err).Str("room", r.name).Msg("close expired connection failed")
		}
	}
	if len(freed) > 0 {
		r.broadcastLocked(event.MarshalSeatsChanged(freed, event.SeatAvailable), nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	if err := r.store.SetAlarm(ctx, time.Time{}); err != nil {
		log.Warn().Err(err).Str("room", r.name).Msg("clear alarm failed")
	}
	cancel()

	r.scheduleLocked()
}
