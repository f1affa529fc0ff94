package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"menuplanner/internal/api"
	"menuplanner/internal/config"
	"menuplanner/internal/database"
	"menuplanner/internal/monitoring"
	"menuplanner/internal/planner"
	"menuplanner/internal/store"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "Path to configuration file")
	addr       = flag.String("addr", "", "Listen address, overrides server.addr")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	setupLogging(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := openStore(cfg, log.With().Str("component", "store").Logger())

	var monitor *monitoring.Monitor
	opts := api.Options{Logger: log.With().Str("component", "http").Logger()}
	if cfg.Metrics.Enabled {
		monitor = monitoring.NewMonitor()
		opts.Metrics = monitor.Handler()
		opts.MetricsPath = cfg.Metrics.Path
	}

	hub := api.NewHub(log.With().Str("component", "feed").Logger())
	opts.Hub = hub

	session := planner.Open(ctx, planner.Options{
		Store:    st,
		Logger:   log.With().Str("component", "planner").Logger(),
		Monitor:  monitor,
		Notifier: hub,
	})

	if !log.Debug().Enabled() {
		gin.SetMode(gin.ReleaseMode)
	}
	plannerAPI := api.NewPlannerAPI(session, opts)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           plannerAPI.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
		cancel()
	}()

	log.Info().Str("addr", cfg.Server.Addr).Str("storage", cfg.Storage.Driver).Msg("menu planner listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}

	hub.Close()
	if err := session.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close storage")
	}
	log.Info().Msg("server exited")
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// openStore never fails: saved data that cannot be opened is moved
// aside when possible, otherwise the planner runs on a memory store.
func openStore(cfg *config.Config, logger zerolog.Logger) store.Store {
	if cfg.Storage.Driver == config.DriverMemory {
		return store.NewMemoryStore()
	}

	path := cfg.Storage.Path
	opts := database.Options{LogMode: cfg.Storage.LogSQL}
	db, err := database.Open(path, opts)
	if errors.Is(err, database.ErrUnreadable) {
		moved, moveErr := database.MoveAside(path)
		if moveErr != nil {
			logger.Error().Err(moveErr).Str("path", path).Msg("failed to move unreadable saved data")
		} else {
			logger.Warn().Err(err).Str("moved_to", moved).Msg("saved data is unreadable, starting with an empty planner")
			db, err = database.Open(path, opts)
		}
	}
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("cannot open saved data, changes are kept in memory only")
		return store.NewMemoryStore()
	}

	return store.NewSQLStore(db, store.SQLOptions{
		LegacyUnit: cfg.LegacyUnit(),
		Logger:     logger,
	})
}
