package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wayfind-ar/internal/service"
	"github.com/iliyamo/wayfind-ar/internal/session"
)

// DestinationHandler lets a visitor pick the building they are walking to.
// The choice lives in the session, so it works without an account.
type DestinationHandler struct {
	Tracker *service.DestinationTracker
}

type destinationReq struct {
	BuildingID uint64 `json:"building_id"`
}

func (h *DestinationHandler) Get(c echo.Context) error {
	s := session.FromContext(c)
	if s == nil {
		return c.JSON(http.StatusOK, echo.Map{"destination": nil})
	}
	b, err := h.Tracker.Current(c.Request().Context(), s)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"destination": b})
}

func (h *DestinationHandler) Set(c echo.Context) error {
	var req destinationReq
	if err := c.Bind(&req); err != nil || req.BuildingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "building_id required"})
	}
	s := session.FromContext(c)
	if s == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session unavailable"})
	}
	b, err := h.Tracker.SetDestination(c.Request().Context(), s, req.BuildingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"destination": b})
}

func (h *DestinationHandler) Clear(c echo.Context) error {
	if s := session.FromContext(c); s != nil {
		h.Tracker.Clear(s)
	}
	return c.NoContent(http.StatusNoContent)
}
