package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/live-seat-reservation/internal/config"
	"github.com/iliyamo/live-seat-reservation/internal/handler"
	"github.com/iliyamo/live-seat-reservation/internal/middleware"
	"github.com/iliyamo/live-seat-reservation/internal/ws"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterConnect registers the connect-token endpoint.  The route is
// bearer-protected (the identity service verifies who is asking) and
// rate-limited so a single client cannot mint tokens in a tight loop.
func RegisterConnect(e *echo.Echo, h *handler.ConnectHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(rl, rdb))
	g.POST("/connect", h.Connect)
}

// RegisterWS registers the WebSocket upgrade route.  The connect token
// is part of the URL, so the route itself is unreachable without one.
func RegisterWS(e *echo.Echo, h *ws.Handler) {
	e.GET("/v1/ws/:token/rooms/:room", h.Serve)
}

// RegisterAdmin registers the read-only reconciliation endpoints,
// fronted by the short-TTL response cache.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group("/v1/rooms")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))
	g.Use(middleware.NewResponseCache(rdb, cfg.CacheTTL))
	g.GET("/:room/reservations", h.GetReservations)
	g.GET("/:room/seats", h.GetSeats)
}
