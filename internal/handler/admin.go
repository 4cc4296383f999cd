package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-seat-reservation/internal/room"
)

// AdminHandler exposes read-only snapshots of a room's ledger for
// reconciliation tooling.  Every response is built from copies taken
// under the room lock; nothing reachable from these endpoints can
// mutate live state.
type AdminHandler struct {
	Rooms *room.Manager
}

// NewAdminHandler constructs an AdminHandler over the shared manager.
func NewAdminHandler(rooms *room.Manager) *AdminHandler {
	return &AdminHandler{Rooms: rooms}
}

// GetReservations handles GET /v1/rooms/:room/reservations.  The room
// is constructed on demand so confirmed reservations written before a
// restart are visible without waiting for the first live connection.
func (h *AdminHandler) GetReservations(c echo.Context) error {
	name := c.Param("room")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing room"})
	}
	rm, err := h.Rooms.GetOrCreate(c.Request().Context(), name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":         rm.Name(),
		"reservations": rm.ConfirmedReservations(),
	})
}

// GetSeats handles GET /v1/rooms/:room/seats: the per-seat occupancy
// map, seat label to owning transaction id.
func (h *AdminHandler) GetSeats(c echo.Context) error {
	name := c.Param("room")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing room"})
	}
	rm, err := h.Rooms.GetOrCreate(c.Request().Context(), name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "room unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room":  rm.Name(),
		"seats": rm.SeatOccupancy(),
	})
}
