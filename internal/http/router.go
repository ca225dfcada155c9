// Package httpapi wires the HTTP transport (Gin) to the alert services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// rate limiting, CORS, and security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/guardline/go-alert-backend/internal/config"
	"github.com/guardline/go-alert-backend/internal/dedup"
	"github.com/guardline/go-alert-backend/internal/domain"
	"github.com/guardline/go-alert-backend/internal/http/handlers"
	"github.com/guardline/go-alert-backend/internal/http/middleware"
	"github.com/guardline/go-alert-backend/internal/messaging"
	"github.com/guardline/go-alert-backend/internal/repo"
	"github.com/guardline/go-alert-backend/internal/services"
)

// alertRepoShim adapts the repository free functions to the
// services.AlertRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type alertRepoShim struct{}

// CreateAlert proxies repo.CreateAlert.
func (alertRepoShim) CreateAlert(ctx context.Context, db *gorm.DB, a *domain.Alert) error {
	return repo.CreateAlert(ctx, db, a)
}

// CountAlerts proxies repo.CountAlerts.
func (alertRepoShim) CountAlerts(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountAlerts(ctx, db)
}

// ListAlertsPage proxies repo.ListAlertsPage.
func (alertRepoShim) ListAlertsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Alert, error) {
	return repo.ListAlertsPage(ctx, db, offset, limit)
}

// GetAlert proxies repo.GetAlert.
func (alertRepoShim) GetAlert(ctx context.Context, db *gorm.DB, id string) (*domain.Alert, error) {
	return repo.GetAlert(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability (tracing, metrics), rate limiting, CORS and security
// headers, system probes, and the versioned public API under /api/v*.
//
// db may be nil, which disables the audit log and the /alerts routes.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with phone/PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Rate limiter (per client IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, sender messaging.Sender, dd *dedup.Deduplicator, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (alert payloads carry phone numbers)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Gzip for the larger history responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// Alert responses contain contact outcomes, so caching is disabled.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Dependency injection: services ← sender/dedup/db
	alertSvc := services.NewAlertService(sender, dd, db, alertRepoShim{})
	alertSvc.Delay = cfg.DispatchDelay
	alertSvc.ContactName = cfg.DefaultContactName

	var histSvc handlers.HistoryService
	if db != nil {
		histSvc = &services.HistoryService{DB: db, Repo: alertRepoShim{}}
	}

	h := handlers.New(alertSvc, histSvc, cfg.Twilio.Configured())

	// System probes
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)

	// Swagger UI (behind a flag; docs are generated into the docs package)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/alert", h.TriggerAlert)
		api.POST("/test-message", h.TestMessage)
		if db != nil {
			api.GET("/alerts", h.ListAlerts)
			api.GET("/alerts/:id", h.GetAlert)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
