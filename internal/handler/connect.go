package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-reservation/internal/utils"
)

// ConnectHandler mints the short-lived tokens that gate WebSocket
// upgrades.  The endpoint sits behind JWTAuth, so by the time it runs
// the request context carries a verified user id.
type ConnectHandler struct {
	Secret string        // secret used to sign connect tokens
	TTL    time.Duration // how long a minted token stays valid
}

// NewConnectHandler constructs a ConnectHandler.
func NewConnectHandler(secret string, ttl time.Duration) *ConnectHandler {
	return &ConnectHandler{Secret: secret, TTL: ttl}
}

// Connect handles POST /v1/connect.  It binds a fresh random session
// id to the authenticated user and returns the signed token the client
// embeds in its WebSocket URL.
func (h *ConnectHandler) Connect(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tok, err := utils.NewConnectToken(h.Secret, userID, h.TTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not mint token"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   tok.Token,
		"expires": tok.Exp.UnixMilli(),
	})
}
