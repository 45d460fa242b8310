// Command soundstable runs the sound catalog HTTP service.
//
// Startup sequence:
//  1. Load .env (best effort) and the environment configuration.
//  2. Configure global logging (level, optional pretty console output).
//  3. Open the SQLite store, migrate the schema, and enable query tracing
//     when OTel is on.
//  4. Load the sound manifest and reconcile the catalog against it.
//  5. Build the in-memory search engine from the reconciled snapshot.
//  6. Register routes and serve until SIGINT/SIGTERM, then drain gracefully.
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

	"github.com/dmcelectrico/SoundsTable/internal/catalog"
	"github.com/dmcelectrico/SoundsTable/internal/config"
	httpapi "github.com/dmcelectrico/SoundsTable/internal/http"
	"github.com/dmcelectrico/SoundsTable/internal/manifest"
	"github.com/dmcelectrico/SoundsTable/internal/observability"
	"github.com/dmcelectrico/SoundsTable/internal/repo"
	"github.com/dmcelectrico/SoundsTable/internal/search"
	"github.com/dmcelectrico/SoundsTable/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments configure via the environment and
	// can set SKIP_DOTENV to avoid touching the filesystem at startup.
	if !sysutil.IsTruthy(os.Getenv("SKIP_DOTENV")) {
		_ = godotenv.Load()
	}

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Msg("starting soundstable")

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Fatal().Err(err).Msg("enable db tracing")
		}
	}
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup otel")
	}

	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ManifestPath).Msg("load manifest")
	}
	sounds, err := catalog.NewReconciler(db).Run(ctx, m)
	if err != nil {
		log.Fatal().Err(err).Msg("reconcile catalog")
	}
	log.Info().
		Int("manifest_entries", len(m.Sounds)).
		Int("active_sounds", len(sounds)).
		Msg("catalog reconciled")

	engine := search.NewEngine(sounds, cfg.MaxResults)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, engine, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	// Drain in-flight requests, then flush traces.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if shutdownOTel != nil {
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("otel shutdown")
		}
	}
	log.Info().Msg("stopped")
}
