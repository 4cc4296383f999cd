package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectTokenRoundTrip(t *testing.T) {
	tok, err := NewConnectToken("secret", "user-42", 2*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	require.NotEmpty(t, tok.SessionID)

	uid, sid, err := ParseConnectToken("secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", uid)
	assert.Equal(t, tok.SessionID, sid)
}

func TestConnectTokenSessionIDsAreUnique(t *testing.T) {
	a, err := NewConnectToken("secret", "user-42", time.Minute)
	require.NoError(t, err)
	b, err := NewConnectToken("secret", "user-42", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a.SessionID, b.SessionID)
}

func TestConnectTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewConnectToken("secret", "user-42", time.Minute)
	require.NoError(t, err)

	_, _, err = ParseConnectToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidConnectToken)
}

func TestConnectTokenRejectsExpired(t *testing.T) {
	tok, err := NewConnectToken("secret", "user-42", -time.Minute)
	require.NoError(t, err)

	_, _, err = ParseConnectToken("secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidConnectToken)
}

func TestConnectTokenRejectsGarbage(t *testing.T) {
	_, _, err := ParseConnectToken("secret", "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidConnectToken)
}
