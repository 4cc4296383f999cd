package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// cacheWriter captures the response body while forwarding it to the
// client, so a hit can be replayed byte-for-byte.
type cacheWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *cacheWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *cacheWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}

// NewResponseCache caches successful GET responses in Redis for the
// given TTL.  It fronts the admin read endpoints, whose reconciliation
// consumers tolerate a few seconds of staleness, keeping snapshot
// polling off the room locks.  Disabled when no Redis client exists.
func NewResponseCache(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	if rdb == nil || ttl <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			r := c.Request()
			sum := sha1.Sum([]byte(c.Path() + "|" + r.URL.RawQuery + "|" + pathParams(c)))
			key := fmt.Sprintf("cache:%x", sum)

			if body, err := rdb.Get(r.Context(), key).Bytes(); err == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSONBlob(http.StatusOK, body)
			}

			cw := &cacheWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status == http.StatusOK {
				_ = rdb.SetEx(context.Background(), key, cw.buf.Bytes(), ttl).Err()
			}
			return nil
		}
	}
}

func pathParams(c echo.Context) string {
	out := ""
	for _, name := range c.ParamNames() {
		out += name + "=" + c.Param(name) + ";"
	}
	return out
}
