// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"propdesk/api/docs"
	"propdesk/internal/auth"
	"propdesk/internal/bookings"
	"propdesk/internal/errorhandling"
	"propdesk/internal/errorreport"
	"propdesk/internal/events"
	"propdesk/internal/flash"
	"propdesk/internal/notifications"
	"propdesk/internal/shared/config"
	"propdesk/internal/shared/middleware"
	"propdesk/internal/shared/reqctx"
	"propdesk/internal/shared/utils/response"
	"propdesk/pkg/cache"
	"propdesk/pkg/logger"
	"propdesk/pkg/metrics"
	"propdesk/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// HealthChecker reports whether the backing stores are reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Dependencies are the long lived clients the routes are built on
type Dependencies struct {
	DB       *gorm.DB
	Health   HealthChecker
	Cache    cache.Service
	Producer notifications.Producer
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter ratelimit.Checker
}

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	deps     Dependencies
	auth     *middleware.Auth
	flashes  *flash.Store
	reporter *errorreport.Reporter
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, deps Dependencies) *Router {
	if deps.Producer == nil {
		deps.Producer = notifications.NewLogProducer()
	}
	return &Router{
		config: cfg,
		deps:   deps,
		auth:   middleware.NewAuth(cfg),
		flashes: flash.NewStore(deps.Cache, flash.Options{
			CookieName: cfg.Web.FlashCookieName,
			TTL:        cfg.Web.FlashTTL,
			Secure:     cfg.Web.CookieSecure,
		}),
		reporter: errorreport.NewReporter(deps.Cache, cfg.Errors.ReportTTL, logger.GetDefault()),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	dispatcher := errorhandling.NewDispatcher(r.reporter, logger.GetDefault(), errorhandling.Options{
		SafeRedirectPath: r.config.Web.SafeRedirectPath,
		ExposeDebug:      r.config.Errors.ExposeDebug,
	})

	// Error rendering wraps everything registered after it, rate limiting included
	engine.Use(dispatcher.Middleware(r.flashes))
	engine.Use(r.flashes.Middleware())
	if r.deps.RateLimiter != nil {
		engine.Use(ratelimit.Middleware(r.deps.RateLimiter))
	}

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(dispatcher.NoRoute)
	engine.NoMethod(dispatcher.NoMethod)

	// Health check, metrics and docs
	r.setupHealthRoutes(engine)
	r.setupDocsRoutes(engine)

	bookingController := r.newBookingController()

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		bookings.SetupBookingRoutes(api, bookingController, r.auth)
		errorreport.NewRouter(errorreport.NewController(r.reporter), r.auth).SetupRoutes(api)
	}

	// Browser form posts
	bookings.SetupWebRoutes(engine, bookingController, r.auth)
	r.setupLandingRoute(engine)
}

// setupLandingRoute registers the page browsers are sent to when a failed
// request has no safe way back
func (r *Router) setupLandingRoute(engine *gin.Engine) {
	path := r.config.Web.SafeRedirectPath
	if path == "" {
		path = errorhandling.DefaultSafeRedirectPath
	}

	engine.GET(path, r.auth.Optional(), func(c *gin.Context) {
		data := gin.H{"flash": flash.Get(c)}
		if user, ok := reqctx.CurrentUser(c); ok {
			data["user"] = gin.H{"id": user.ID, "email": user.Email, "role": user.Role}
		}
		response.RespondJSON(c, "success", http.StatusOK, "Dashboard", data, nil)
	})
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok", "notifications": "ok"}
		healthy := true
		if r.deps.Health != nil {
			if err := r.deps.Health.HealthCheck(ctx); err != nil {
				checks["database"] = err.Error()
				healthy = false
			}
		}
		if err := r.deps.Producer.HealthCheck(ctx); err != nil {
			checks["notifications"] = err.Error()
			healthy = false
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now(),
			"service":   "propdesk-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/metrics", metrics.Handler())
}

// setupDocsRoutes serves the embedded OpenAPI document and the swagger UI
func (r *Router) setupDocsRoutes(engine *gin.Engine) {
	engine.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", docs.OpenAPI)
	})
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/openapi.json")))
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.deps.DB)
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService, r.config)
	auth.NewRouter(authController, r.auth).SetupRoutes(rg)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.deps.DB)
	eventService := events.NewService(eventRepo, r.deps.Cache)
	events.SetupEventRoutes(rg, events.NewController(eventService), r.auth)
}

func (r *Router) newBookingController() *bookings.Controller {
	bookingRepo := bookings.NewRepository(r.deps.DB)
	bookingService := bookings.NewService(bookingRepo, r.deps.Cache, r.deps.Producer, bookings.Options{
		AvailabilityTTL: r.config.Redis.AvailabilityTTL,
	})
	return bookings.NewController(bookingService, r.flashes)
}
