package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/session"
)

// HomeHandler serves the landing and error pages of the default route.
type HomeHandler struct {
	AppName   string
	Buildings *repository.BuildingRepo
}

// Index returns a short summary for the landing page. It still answers
// when the store is down so the site stays reachable.
func (h *HomeHandler) Index(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	resp := echo.Map{"app": h.AppName}
	if s := session.FromContext(c); s != nil && s.Authenticated() {
		resp["user"] = s.Data().FullName
	}
	items, err := h.Buildings.ListActive(ctx, "")
	if err != nil {
		resp["database"] = "unavailable"
		return c.JSON(http.StatusOK, resp)
	}
	resp["buildings"] = len(items)
	return c.JSON(http.StatusOK, resp)
}

// Error is the page unhandled errors are reported on outside development.
func (h *HomeHandler) Error(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorBody(c))
}

func errorBody(c echo.Context) echo.Map {
	body := echo.Map{"error": "an error occurred while processing your request"}
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		body["request_id"] = id
	}
	return body
}
