package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wayfind-ar/internal/config"
	"github.com/iliyamo/wayfind-ar/internal/middleware"
	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/session"
	"github.com/iliyamo/wayfind-ar/internal/utils"
)

// AccountHandler bundles dependencies for account endpoints.
type AccountHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAccountHandler(cfg config.Config, u *repository.UserRepo) *AccountHandler {
	return &AccountHandler{Cfg: cfg, Users: u}
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID       uint64 `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type accountResp struct {
	User   userPart   `json:"user"`
	Access *tokenPart `json:"access,omitempty"`
}

func toUserPart(u *model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}
}

// Register creates a USER account and signs it in.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = repository.NormalizeEmail(req.Email)
	if !strings.Contains(req.Email, "@") || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.FullName, model.RoleUser, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, utils.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	u := &model.User{ID: uid, Email: req.Email, FullName: strings.TrimSpace(req.FullName), Role: model.RoleUser}
	if s := session.FromContext(c); s != nil {
		s.SignIn(u.ID, u.Email, u.FullName, u.Role)
	}
	return c.JSON(http.StatusCreated, accountResp{User: toUserPart(u)})
}

// Login verifies credentials, signs the session in and returns an access
// token for the AR client.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	if s := session.FromContext(c); s != nil {
		s.SignIn(u.ID, u.Email, u.FullName, u.Role)
	}
	return c.JSON(http.StatusOK, accountResp{
		User:   toUserPart(u),
		Access: &tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout ends the browser session. Access tokens simply expire.
func (h *AccountHandler) Logout(c echo.Context) error {
	if s := session.FromContext(c); s != nil {
		s.Destroy()
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AccountHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, accountResp{User: toUserPart(u)})
}
