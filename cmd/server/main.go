package main // Entry point package

import (
	"context"
	stdlog "log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/live-seat-reservation/internal/config"
	"github.com/iliyamo/live-seat-reservation/internal/handler"
	"github.com/iliyamo/live-seat-reservation/internal/model"
	"github.com/iliyamo/live-seat-reservation/internal/queue"
	"github.com/iliyamo/live-seat-reservation/internal/room"
	"github.com/iliyamo/live-seat-reservation/internal/router"
	queue_publisher "github.com/iliyamo/live-seat-reservation/internal/service"
	"github.com/iliyamo/live-seat-reservation/internal/storage"
	"github.com/iliyamo/live-seat-reservation/internal/ws"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg := config.Load() // Load environment config

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable: rooms fall back to in-memory storage, rate limiting and caching disabled")
	}

	// Each room draws its own key-prefixed slice of the shared store.
	stores := func(name string) storage.Store {
		if rdb == nil {
			return storage.NewMemoryStore()
		}
		return storage.NewRedisStore(rdb, name)
	}
	rooms := room.NewManager(stores, room.Options{
		HoldTTL:  cfg.HoldTTL,
		MaxSeats: cfg.MaxSeats,
		OnPersist: func(roomName, txID string, res model.ConfirmedReservation) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queue_publisher.PublishReservationPersisted(ctx, queue.ReservationPersistedEvent{
				Room:          roomName,
				TransactionID: txID,
				UserID:        res.UserID,
				Seats:         res.Seats,
				PersistedAt:   time.Now().UTC().Format(time.RFC3339),
			})
		},
	})

	go func() {
		if err := queue.StartReservationConsumer(cfg.ReservationLog); err != nil {
			log.Error().Err(err).Msg("reservation consumer stopped")
		}
	}()

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterConnect(e, handler.NewConnectHandler(cfg.SessionSecret, cfg.ConnectTTL), cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterWS(e, ws.NewHandler(rooms, cfg.SessionSecret))
	router.RegisterAdmin(e, handler.NewAdminHandler(rooms), cfg, rdb)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")

	if err := e.Start(addr); err != nil { // Start HTTP server
		stdlog.Fatal(err) // Log and exit if server fails
	}
}
