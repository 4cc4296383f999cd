// Package storage abstracts the durable key-value store and the
// single-shot alarm primitive a room depends on.  Any backend offering
// these five operations can host a room; the production backend is
// Redis and tests use the in-memory implementation.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the per-room durable store.  Implementations scope all keys
// to a single room; two rooms never observe each other's data.  The
// alarm is a single persisted timestamp: SetAlarm overwrites it,
// GetAlarm returns the zero time when none is armed.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	SetAlarm(ctx context.Context, at time.Time) error
	GetAlarm(ctx context.Context) (time.Time, error)
}

// Well-known keys used by the room session manager.
const (
	KeyConfirmedReservations = "confirmed_reservations"
	KeySessionPrefix         = "session:"
	keyAlarm                 = "alarm"
)
