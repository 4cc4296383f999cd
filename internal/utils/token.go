package utils // package utils provides helpers for connect-token creation and parsing

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConnectToken is the short-lived credential that gates a WebSocket
// upgrade.  It binds a random session id to the verified user id so
// that the upgrade path never trusts anything the client typed.  The
// SessionID doubles as the key under which the room serializes the
// session state for reconnects.
type ConnectToken struct {
	Token     string    // the serialized JWT string
	SessionID string    // random identifier minted for this connection
	Exp       time.Time // UTC expiration time
}

// ErrInvalidConnectToken is returned when a token fails signature,
// expiry or claim validation.
var ErrInvalidConnectToken = errors.New("invalid connect token")

// NewConnectToken mints an HS256 JWT binding a fresh random session id
// to the given user id.  Tokens are deliberately short-lived: they only
// need to survive the round trip between the connect endpoint and the
// WebSocket upgrade.
func NewConnectToken(secret, userID string, ttl time.Duration) (ConnectToken, error) {
	sid, err := randomHex(16)
	if err != nil {
		return ConnectToken{}, err
	}
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"sid": sid,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return ConnectToken{}, err
	}
	return ConnectToken{Token: signed, SessionID: sid, Exp: exp}, nil
}

// ParseConnectToken validates a connect token and returns the user id
// and session id it binds.  Expired or tampered tokens are rejected
// with ErrInvalidConnectToken.
func ParseConnectToken(secret, token string) (userID, sessionID string, err error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidConnectToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", "", ErrInvalidConnectToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidConnectToken
	}
	userID, _ = claims["sub"].(string)
	sessionID, _ = claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return "", "", ErrInvalidConnectToken
	}
	return userID, sessionID, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
