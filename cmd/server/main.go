// Command server runs the alert relay HTTP API.
//
//	@title			Alert Relay API
//	@version		1.0
//	@description	Emergency accident alert relay: validates alert requests, debounces duplicates, and dispatches SMS alerts to emergency contacts.
//	@BasePath		/api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	_ "github.com/guardline/go-alert-backend/docs"
	"github.com/guardline/go-alert-backend/internal/config"
	"github.com/guardline/go-alert-backend/internal/dedup"
	httpapi "github.com/guardline/go-alert-backend/internal/http"
	"github.com/guardline/go-alert-backend/internal/messaging"
	"github.com/guardline/go-alert-backend/internal/observability"
	"github.com/guardline/go-alert-backend/internal/repo"
	"github.com/guardline/go-alert-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    sysutil.IsTruthy(os.Getenv("NO_COLOR")),
		})
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db := openHistory(cfg)
	sender := newSender(cfg)
	dd := dedup.New(cfg.DedupWindow, cfg.DedupMaxEntries, nil)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, sender, dd, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openHistory opens the audit-log database when history is enabled.
// A nil return disables the history feature throughout the router.
func openHistory(cfg config.Config) *gorm.DB {
	if !cfg.HistoryEnabled {
		return nil
	}
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open history db failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("history db migration failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("history db tracing not enabled")
		}
	}
	log.Info().Str("path", cfg.DBPath).Msg("alert history enabled")
	return db
}

// newSender picks the outbound SMS provider. Without full Twilio
// credentials the server still runs, logging each message instead of
// sending it, and /status reports the provider as unconfigured.
func newSender(cfg config.Config) messaging.Sender {
	s, err := messaging.NewTwilioSender(
		messaging.WithAccountSID(cfg.Twilio.AccountSID),
		messaging.WithAuthToken(cfg.Twilio.AuthToken),
		messaging.WithFrom(cfg.Twilio.FromNumber),
	)
	if err != nil {
		if errors.Is(err, messaging.ErrNotConfigured) {
			log.Warn().Msg("twilio not configured, falling back to log-only sender")
			return messaging.NewLogSender()
		}
		log.Fatal().Err(err).Msg("twilio sender init failed")
	}
	log.Info().Msg("twilio sender configured")
	return s
}
