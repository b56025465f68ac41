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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/application"
	"github.com/dfryer1193/inkfront/blog/persistence"
	"github.com/dfryer1193/inkfront/internal/config"
	"github.com/dfryer1193/inkfront/internal/metrics"
	"github.com/dfryer1193/inkfront/internal/middleware"
	"github.com/dfryer1193/inkfront/internal/rest"
	"github.com/dfryer1193/inkfront/shared/contentapi"
	"github.com/dfryer1193/inkfront/shared/db/sqlite"
	"github.com/dfryer1193/inkfront/shared/github"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	config.ConfigureLogging(cfg)

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLitePath})
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	m := metrics.New()
	client := contentapi.NewClient(cfg.APIBaseURL,
		contentapi.WithTimeout(cfg.UpstreamTimeout),
		contentapi.WithObserver(m.ObserveUpstream),
	)

	identity, err := github.NewIdentityProvider(cfg.Github)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure GitHub sign-in")
	}
	if !identity.Enabled() {
		log.Info().Msg("GitHub sign-in disabled; set GITHUB_CLIENT_ID and ALLOWED_GITHUB_LOGIN to enable it")
	}

	content := application.NewContentService(client, application.NewNormalizer(cfg.DefaultCategory), application.NewMarkdownRenderer())
	sessions := application.NewSessionGate(persistence.NewSessionRepository(database.DB()), client)
	theme := application.NewThemeStore(persistence.NewPreferenceRepository(database.DB()), cfg.DefaultTheme)
	if err := theme.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load theme preference")
	}

	if cfg.LogLevel > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.LoggingMiddleware(m.ObserveHTTP))
	r.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(r, rest.NewHandlers(content, sessions, theme,
		rest.WithIdentityProvider(identity),
		rest.WithMetricsHandler(m.Handler()),
		rest.WithSecureCookies(cfg.SecureCookies),
	))

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("api", cfg.APIBaseURL).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
