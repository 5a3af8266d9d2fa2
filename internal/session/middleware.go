package session

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/config"
)

// Middleware loads the session named by the cookie, or starts a new one,
// and persists it just before the response headers are written. New
// sessions are only stored once something has been put in them. Store
// failures are logged; the request continues with an empty session.
func Middleware(store Store, cfg config.SessionConfig, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			sess := New()
			if ck, err := req.Cookie(cfg.CookieName); err == nil && ck.Value != "" {
				data, err := store.Load(ctx, ck.Value)
				switch {
				case err == nil:
					sess = &Session{id: ck.Value, data: data}
				case !errors.Is(err, ErrNotFound):
					log.Warn("session load failed", zap.Error(err))
				}
			}
			c.Set(contextKey, sess)

			committed := false
			commit := func() {
				if committed {
					return
				}
				committed = true
				if sess.staleID != "" {
					if err := store.Delete(ctx, sess.staleID); err != nil {
						log.Warn("session delete failed", zap.Error(err))
					}
				}
				switch {
				case sess.destroyed:
					if !sess.isNew {
						if err := store.Delete(ctx, sess.id); err != nil {
							log.Warn("session delete failed", zap.Error(err))
						}
					}
					c.SetCookie(cookie(cfg, "", -1))
				case sess.dirty:
					if err := store.Save(ctx, sess.id, sess.data, cfg.IdleTimeout); err != nil {
						log.Warn("session save failed", zap.Error(err))
						return
					}
					c.SetCookie(cookie(cfg, sess.id, 0))
				case !sess.isNew:
					// sliding expiration
					if err := store.Touch(ctx, sess.id, cfg.IdleTimeout); err != nil && !errors.Is(err, ErrNotFound) {
						log.Warn("session touch failed", zap.Error(err))
					}
				}
			}
			c.Response().Before(commit)

			err := next(c)
			if !c.Response().Committed {
				commit()
			}
			return err
		}
	}
}

func cookie(cfg config.SessionConfig, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
