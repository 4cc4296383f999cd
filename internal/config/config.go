package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  Secrets and identifiers are
// strings; durations and limits carry their natural types.
type Config struct {
	Env            string        // application environment (e.g. "dev", "prod")
	Port           string        // HTTP port to listen on
	JWTSecret      string        // secret used to verify bearer tokens from the identity service
	SessionSecret  string        // secret used to sign short-lived connect tokens
	ConnectTTL     time.Duration // lifetime of a connect token
	HoldTTL        time.Duration // how long non-persisted seat holds live
	MaxSeats       int           // maximum seats one session may hold
	CacheTTL       time.Duration // admin response cache lifetime (0 disables)
	ReservationLog string        // path of the persisted-reservation audit log
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		JWTSecret:      must("JWT_SECRET"),
		SessionSecret:  must("SESSION_SECRET"),
		ConnectTTL:     time.Duration(intOr("CONNECT_TOKEN_TTL_SEC", 120)) * time.Second,
		HoldTTL:        time.Duration(intOr("SEAT_HOLD_TTL_MIN", 5)) * time.Minute,
		MaxSeats:       intOr("MAX_SEATS_PER_SESSION", 4),
		CacheTTL:       time.Duration(intOr("ADMIN_CACHE_TTL_SEC", 10)) * time.Second,
		ReservationLog: strOr("RESERVATION_LOG", "logs/reservations.log"),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// intOr converts an optional environment variable into an integer,
// falling back to the default when unset.  An unparsable value is a
// fatal configuration error.
func intOr(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func strOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolOr(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func durOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
