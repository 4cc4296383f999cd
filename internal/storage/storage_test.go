package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", []byte("v1")))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// The stored copy is isolated from caller mutations.
	got[0] = 'X'
	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), again)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, "k"), "deleting an absent key is fine")
}

func TestMemoryStoreAlarm(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	at, err := s.GetAlarm(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "no alarm armed initially")

	want := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)
	require.NoError(t, s.SetAlarm(ctx, want))
	at, err = s.GetAlarm(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, at)

	require.NoError(t, s.SetAlarm(ctx, time.Time{}))
	at, err = s.GetAlarm(ctx)
	require.NoError(t, err)
	assert.True(t, at.IsZero(), "zero time clears the alarm")
}

func TestRedisStoreKeyScoping(t *testing.T) {
	a := NewRedisStore(nil, "round-1")
	b := NewRedisStore(nil, "round-2")

	assert.Equal(t, "room:round-1:confirmed_reservations", a.key(KeyConfirmedReservations))
	assert.Equal(t, "room:round-2:confirmed_reservations", b.key(KeyConfirmedReservations))
	assert.NotEqual(t, a.key("session:x"), b.key("session:x"), "rooms never share keys")
}
