package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/live-seat-reservation/internal/model"
	"github.com/iliyamo/live-seat-reservation/internal/room"
	"github.com/iliyamo/live-seat-reservation/internal/storage"
)

func seededManager(t *testing.T) *room.Manager {
	t.Helper()
	store := storage.NewMemoryStore()
	confirmed := map[string]model.ConfirmedReservation{
		"1748779200000-deadbeef": {UserID: "user-a", Seats: []string{"B5", "A3"}},
	}
	b, err := json.Marshal(confirmed)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), storage.KeyConfirmedReservations, b))

	return room.NewManager(func(string) storage.Store { return store }, room.Options{})
}

func TestGetReservationsReturnsConfirmedSnapshot(t *testing.T) {
	h := NewAdminHandler(seededManager(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/rooms/:room/reservations")
	c.SetParamNames("room")
	c.SetParamValues("round-1")

	require.NoError(t, h.GetReservations(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Room         string                                `json:"room"`
		Reservations map[string]model.ConfirmedReservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "round-1", body.Room)
	require.Len(t, body.Reservations, 1)
	res := body.Reservations["1748779200000-deadbeef"]
	assert.Equal(t, "user-a", res.UserID)
	assert.Equal(t, []string{"B5", "A3"}, res.Seats)
}

func TestGetSeatsReturnsOccupancy(t *testing.T) {
	h := NewAdminHandler(seededManager(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/rooms/:room/seats")
	c.SetParamNames("room")
	c.SetParamValues("round-1")

	require.NoError(t, h.GetSeats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Room  string            `json:"room"`
		Seats map[string]string `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{
		"B5": "1748779200000-deadbeef",
		"A3": "1748779200000-deadbeef",
	}, body.Seats)
}
