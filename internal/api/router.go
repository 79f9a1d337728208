package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	_ "github.com/99minutos/identity-api/docs"
	"github.com/99minutos/identity-api/internal/api/handler"
	"github.com/99minutos/identity-api/internal/api/middleware"
	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers. Mongo and Redis
// are only used by the readiness probe and may be nil.
type Deps struct {
	Auth   ports.AuthService
	Users  ports.UserService
	Roles  ports.RoleService
	Policy middleware.Gate

	Mongo *mongo.Database
	Redis *redis.Client

	Logger zerolog.Logger
	// LoginRate and LoginBurst throttle POST /login per client IP. A zero
	// LoginRate leaves the route unthrottled.
	LoginRate  rate.Limit
	LoginBurst int
	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	roleHandler := handler.NewRoleHandler(deps.Roles)
	auth := middleware.Auth(deps.Auth)
	can := func(permission string) echo.MiddlewareFunc {
		return middleware.RequirePermission(deps.Policy, permission)
	}

	// --- Auth routes ---
	e.POST("/login", authHandler.Login, loginLimiter(deps.LoginRate, deps.LoginBurst)...)
	e.POST("/logout", authHandler.Logout, auth)

	// --- Users ---
	e.GET("/users", userHandler.List, auth, can(domain.PermListUsers))
	e.POST("/users", userHandler.Create, auth, can(domain.PermCreateUser))
	e.GET("/users/byEmail/:email", userHandler.GetByEmail, auth, can(domain.PermShowUser))
	e.GET("/users/:id", userHandler.Get, auth, can(domain.PermShowUser))
	e.PUT("/users/:id", userHandler.Update, auth)
	e.DELETE("/users/:id", userHandler.Delete, auth)
	e.POST("/users/:id/grantRole", userHandler.GrantRole, auth)
	e.POST("/users/:id/revokeRole", userHandler.RevokeRole, auth)

	// --- Roles ---
	e.GET("/roles", roleHandler.List, auth, can(domain.PermListRoles))
	e.POST("/roles", roleHandler.Create, auth, can(domain.PermManageRoles))
	e.GET("/roles/byName/:name", roleHandler.GetByName, auth, can(domain.PermShowRole))
	e.GET("/roles/:id", roleHandler.Get, auth, can(domain.PermShowRole))
	e.PUT("/roles/:id", roleHandler.Update, auth)
	e.DELETE("/roles/:id", roleHandler.Delete, auth)
	e.POST("/roles/:id/grantPermission", roleHandler.GrantPermission, auth, can(domain.PermManagePermissions))
	e.POST("/roles/:id/revokePermission", roleHandler.RevokePermission, auth, can(domain.PermManagePermissions))

	// --- Health probes (no auth required) ---
	var checks []handler.DependencyCheck
	if deps.Mongo != nil {
		checks = append(checks, handler.MongoCheck(deps.Mongo))
	}
	if deps.Redis != nil {
		checks = append(checks, handler.RedisCheck(deps.Redis))
	}
	healthHandler := handler.NewHealthHandler(checks...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return echo.ErrNotFound
	})

	return e
}

// loginLimiter returns the throttle for POST /login, or nothing when
// limit is zero.
func loginLimiter(limit rate.Limit, burst int) []echo.MiddlewareFunc {
	if limit <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts")
		},
	})}
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
