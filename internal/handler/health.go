package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wayfind-ar/internal/database"
)

// HealthHandler serves the liveness probe used by load balancers.
type HealthHandler struct {
	DB *sql.DB
}

// Health returns a plain "ok". With ?verbose=1 it also pings the store and
// answers 503 when the store is unreachable; the process itself stays up
// either way.
func (h *HealthHandler) Health(c echo.Context) error {
	if c.QueryParam("verbose") == "" {
		return c.String(http.StatusOK, "ok")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := database.Ping(ctx, h.DB); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "database": "down"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "database": "up"})
}
