package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything Health can probe. *sql.DB fits as is; wrap other
// probes with PingFunc.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Health reports liveness for load balancers. A database failure makes the
// service unhealthy; a cache failure only degrades it.
func Health(db, cache Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		body := echo.Map{"status": "ok", "database": "up", "cache": "up"}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			body["status"], body["database"] = "unavailable", "down"
			status = http.StatusServiceUnavailable
		}
		if err := cache.PingContext(ctx); err != nil {
			body["cache"] = "down"
			if status == http.StatusOK {
				body["status"] = "degraded"
			}
		}
		return c.JSON(status, body)
	}
}
