// Package router assembles the HTTP pipeline and registers every route.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/wayfind-ar/internal/config"
	"github.com/iliyamo/wayfind-ar/internal/handler"
	"github.com/iliyamo/wayfind-ar/internal/middleware"
	"github.com/iliyamo/wayfind-ar/internal/model"
	"github.com/iliyamo/wayfind-ar/internal/repository"
	"github.com/iliyamo/wayfind-ar/internal/service"
	"github.com/iliyamo/wayfind-ar/internal/session"
)

// AppName is reported by the landing page.
const AppName = "WayFind AR"

// hstsMaxAge is 30 days, in seconds.
const hstsMaxAge = 30 * 24 * 60 * 60

// Deps are the shared collaborators of every route. Redis and Publisher may
// be nil.
type Deps struct {
	Cfg       config.Config
	DB        *sql.DB
	Redis     *redis.Client
	Sessions  session.Store
	Publisher service.EventPublisher
	Logger    *zap.Logger
}

// New builds the echo instance: error handling, transport security outside
// development, static files, session, identity and then the routes.
func New(d Deps) *echo.Echo {
	dev := d.Cfg.IsDevelopment()
	log := d.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(dev, log)

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	if !dev {
		e.Pre(echomw.HTTPSRedirect())
		e.Use(echomw.SecureWithConfig(echomw.SecureConfig{
			XSSProtection:      "1; mode=block",
			ContentTypeNosniff: "nosniff",
			XFrameOptions:      "SAMEORIGIN",
			HSTSMaxAge:         hstsMaxAge,
		}))
	}
	if d.Cfg.StaticDir != "" {
		e.Use(echomw.Static(d.Cfg.StaticDir))
	}
	e.Use(session.Middleware(d.Sessions, config.LoadSessionConfig(d.Cfg), log))
	e.Use(middleware.Identify(d.Cfg.JWTSecret))

	buildings := repository.NewBuildingRepo(d.DB)
	users := repository.NewUserRepo(d.DB)
	cacheCfg := config.LoadCacheConfig()
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis, log)

	RegisterHome(e, &handler.HomeHandler{AppName: AppName, Buildings: buildings}, &handler.HealthHandler{DB: d.DB})
	RegisterAccount(e, handler.NewAccountHandler(d.Cfg, users), limiter)
	RegisterAPI(e, APIHandlers{
		Buildings: &handler.BuildingHandler{
			Svc: service.NewBuildingService(buildings, d.Publisher,
				middleware.NewCacheInvalidator(d.Redis, cacheCfg.Prefix), log),
		},
		Destination: &handler.DestinationHandler{Tracker: service.NewDestinationTracker(buildings)},
		Cache:       middleware.NewRedisCache(cacheCfg, d.Redis, log),
		Limiter:     limiter,
	})
	return e
}

// RegisterHome maps the default controller routes and the health check.
func RegisterHome(e *echo.Echo, h *handler.HomeHandler, health *handler.HealthHandler) {
	e.GET("/", h.Index)
	e.GET("/home", h.Index)
	e.GET("/home/index", h.Index)
	e.GET("/home/error", h.Error)
	e.GET("/healthz", health.Health)
}

// RegisterAccount maps the account routes. Only /account/me needs a
// signed-in user.
func RegisterAccount(e *echo.Echo, a *handler.AccountHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/account", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.RequireAuth())
}

// APIHandlers groups what RegisterAPI mounts under /api/v1.
type APIHandlers struct {
	Buildings   *handler.BuildingHandler
	Destination *handler.DestinationHandler
	Cache       echo.MiddlewareFunc
	Limiter     echo.MiddlewareFunc
}

// RegisterAPI maps the JSON API used by the AR client. Reads are public and
// the building list is response-cached; writes require the ADMIN role.
func RegisterAPI(e *echo.Echo, h APIHandlers) {
	api := e.Group("/api/v1", h.Limiter)

	api.GET("/buildings", h.Buildings.List, h.Cache)
	api.GET("/buildings/categories", h.Buildings.Categories, h.Cache)
	api.GET("/buildings/:id", h.Buildings.Get)

	admin := middleware.RequireRole(model.RoleAdmin)
	api.POST("/buildings", h.Buildings.Create, admin)
	api.PUT("/buildings/:id", h.Buildings.Update, admin)
	api.DELETE("/buildings/:id", h.Buildings.Delete, admin)

	api.GET("/destination", h.Destination.Get)
	api.POST("/destination", h.Destination.Set)
	api.DELETE("/destination", h.Destination.Clear)
}
