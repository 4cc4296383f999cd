package ws

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/live-seat-reservation/internal/room"
	"github.com/iliyamo/live-seat-reservation/internal/utils"
)

// Handler upgrades authenticated clients into room sessions.  The
// route is reachable only through a URL carrying a short-lived connect
// token, so unauthenticated upgrade attempts are refused before any
// session state exists.
type Handler struct {
	rooms    *room.Manager
	secret   string
	upgrader websocket.Upgrader
}

// NewHandler builds the WebSocket entry point for the given room
// manager.  The secret must match the one used by the connect-token
// endpoint.
func NewHandler(rooms *room.Manager, secret string) *Handler {
	return &Handler{
		rooms:  rooms,
		secret: secret,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the booking frontend; the
			// connect token is the actual gate, not the Origin header.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /v1/ws/:token/rooms/:room.  It validates the
// connect token, upgrades the connection, joins the room and then runs
// the read loop until the peer goes away.
func (h *Handler) Serve(c echo.Context) error {
	userID, sessionID, err := utils.ParseConnectToken(h.secret, c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomName := c.Param("room")
	if roomName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing room"})
	}
	rm, err := h.rooms.GetOrCreate(c.Request().Context(), roomName)
	if err != nil {
		log.Error().Err(err).Str("room", roomName).Msg("room construction failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room unavailable"})
	}

	wsConn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own error response.
		return nil
	}
	conn := NewConn(wsConn)

	if _, err := rm.Join(conn, userID, sessionID); err != nil {
		// Token parsing already guarantees a user id, so this only
		// trips if the join contract changes underneath us.
		log.Error().Err(err).Str("room", roomName).Str("user", userID).Msg("join refused after upgrade")
		_ = conn.Close(websocket.ClosePolicyViolation, "unauthorized")
		return nil
	}

	go h.readLoop(rm, conn)
	return nil
}

// readLoop pumps client commands into the room.  Any read error (peer
// close, network drop, expiry close) routes through the room's close
// handler so seats are released and peers notified exactly once.
func (h *Handler) readLoop(rm *room.Room, conn *Conn) {
	defer func() {
		rm.HandleClose(conn)
		_ = conn.Close(websocket.CloseNormalClosure, "")
	}()
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		rm.HandleMessage(conn, data)
	}
}
