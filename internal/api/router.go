package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/prbusiness/dashboard/docs"
	"github.com/prbusiness/dashboard/internal/api/handler"
	"github.com/prbusiness/dashboard/internal/api/middleware"
	"github.com/prbusiness/dashboard/internal/api/view"
	"github.com/prbusiness/dashboard/internal/core/access"
	"github.com/prbusiness/dashboard/internal/core/ports"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Log      zerolog.Logger
	Policy   *access.Policy
	Auth     handler.AuthService
	Switcher handler.RoleSwitcher
	Session  middleware.SessionOptions
	Locale   string

	// Optional; nil disables the matching feature or health check.
	Events ports.SessionEventRepository
	Mongo  *mongo.Database
	Redis  *redis.Client
	// Registry receives the HTTP request metrics; nil means the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	metricsHandler := echoprometheus.NewHandler()
	if d.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "dashboard",
			Registerer: d.Registry,
		}))
		metricsHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Registry})
	} else {
		e.Use(echoprometheus.NewMiddleware("dashboard"))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Log)
	pageHandler := handler.NewPageHandler(d.Policy, d.Switcher, d.Log)
	apiHandler := handler.NewAPIHandler(d.Policy, d.Events)

	session := []echo.MiddlewareFunc{middleware.Locale(d.Locale), middleware.Session(d.Session)}
	page := append(session[:len(session):len(session)], middleware.Guard(middleware.GuardPage, d.Log))
	section := append(page[:len(page):len(page)], middleware.Permit(d.Policy))
	api := append(session[:len(session):len(session)], middleware.Guard(middleware.GuardAPI, d.Log))

	// --- Sign-in ---
	e.GET("/login", authHandler.LoginPage, session...)
	e.POST("/login", authHandler.Login, session...)
	e.POST("/logout", authHandler.Logout, session...)

	// --- Shell pages ---
	e.GET("/", pageHandler.Root, page...)
	e.POST("/roles/switch", pageHandler.SwitchRole, page...)
	for _, p := range d.Policy.Paths() {
		e.GET(p, pageHandler.Section, section...)
		e.GET(p+"/*", pageHandler.Section, section...)
	}

	// --- JSON ---
	e.GET("/api/roles", apiHandler.Roles)
	e.GET("/api/navigation", apiHandler.Navigation, api...)
	e.GET("/api/me", authHandler.Me, api...)
	e.GET("/api/session/events", apiHandler.SessionEvents, api...)

	// --- Health probes, metrics and docs (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}
