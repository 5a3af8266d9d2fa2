package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/wayfind-ar/internal/session"
	"github.com/iliyamo/wayfind-ar/internal/utils"
)

// Identify resolves the caller from the session cookie or, for the AR
// client, from a Bearer access token, and stores the identity in the
// context. Anonymous requests pass through; a Bearer token that fails
// verification is rejected with 401.
func Identify(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") {
				claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
				if err != nil {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				uid, _ := claims.UserID()
				setIdentity(c, uid, claims.Email, claims.Role)
				return next(c)
			}
			if s := session.FromContext(c); s != nil && s.Authenticated() {
				d := s.Data()
				setIdentity(c, d.UserID, d.Email, d.Role)
			}
			return next(c)
		}
	}
}

// RequireAuth rejects requests that Identify could not attribute to a user.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := UserID(c); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			return next(c)
		}
	}
}
