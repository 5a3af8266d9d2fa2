package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wayfind-ar/internal/middleware"
	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/service"
)

// BuildingHandler exposes the AR building directory and its admin CRUD.
type BuildingHandler struct {
	Svc *service.BuildingService
}

type buildingReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Position    *model.Position `json:"position"`
	ModelType   string          `json:"model_type"`
	Category    string          `json:"category"`
	FloorLevel  string          `json:"floor_level"`
	IsActive    *bool           `json:"is_active"`
}

func (r buildingReq) apply(b *model.Building) {
	b.Name = strings.TrimSpace(r.Name)
	b.Description = r.Description
	if r.Position != nil {
		b.Position = *r.Position
	}
	b.ModelType = r.ModelType
	b.Category = r.Category
	b.FloorLevel = r.FloorLevel
	b.IsActive = true
	if r.IsActive != nil {
		b.IsActive = *r.IsActive
	}
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// List returns active buildings, optionally filtered by ?category=.
func (h *BuildingHandler) List(c echo.Context) error {
	items, err := h.Svc.Repo.ListActive(c.Request().Context(), strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Categories lists the categories that have at least one active building.
func (h *BuildingHandler) Categories(c echo.Context) error {
	cats, err := h.Svc.Repo.ListCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": cats})
}

// Get returns one building. Inactive buildings are only visible to admins.
func (h *BuildingHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Svc.Repo.GetByID(c.Request().Context(), id)
	if errors.Is(err, repository.ErrBuildingNotFound) || (err == nil && !b.IsActive && middleware.Role(c) != model.RoleAdmin) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "building not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, b)
}

// Create adds a building (admin).
func (h *BuildingHandler) Create(c echo.Context) error {
	var req buildingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var b model.Building
	req.apply(&b)
	uid, _ := middleware.UserID(c)
	if err := h.Svc.Create(c.Request().Context(), &b, uid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update replaces every field of a building (admin).
func (h *BuildingHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req buildingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	b := model.Building{ID: id}
	req.apply(&b)
	uid, _ := middleware.UserID(c)
	if err := h.Svc.Update(c.Request().Context(), &b, uid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Delete removes a building (admin).
func (h *BuildingHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid, _ := middleware.UserID(c)
	if err := h.Svc.Delete(c.Request().Context(), id, uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError maps repository and validation errors to responses.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrNameRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrBuildingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "building not found"})
	case errors.Is(err, repository.ErrDuplicate):
		return c.JSON(http.StatusConflict, echo.Map{"error": "a building with this name already exists"})
	case errors.Is(err, service.ErrBuildingInactive):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
