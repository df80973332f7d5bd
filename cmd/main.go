package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/meridian/internal/cache"
	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/UnknownOlympus/meridian/internal/gemini"
	"github.com/UnknownOlympus/meridian/internal/geocoding"
	"github.com/UnknownOlympus/meridian/internal/handler"
	"github.com/UnknownOlympus/meridian/internal/metrics"
	"github.com/UnknownOlympus/meridian/internal/models"
	"github.com/UnknownOlympus/meridian/internal/repository"
	"github.com/UnknownOlympus/meridian/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

const shutdownTimeout = 10 * time.Second

// pinger is a dependency checked by /healthz.
type pinger interface {
	Ping(ctx context.Context) error
}

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	checks := map[string]pinger{}

	var personas repository.PersonaReader
	switch cfg.Data.Source {
	case config.SourcePostgres:
		repo, pool := setupPostgres(ctx, cfg, logger)
		defer pool.Close()
		checks["database"] = pool
		personas = repo

		provider := setupProvider(ctx, cfg, logger, appMetrics, checks)

		// Init the location resolver that geocodes persona labels in the background.
		locations := service.NewLocationService(
			logger,
			repo,
			provider,
			cfg.ProviderType, // Provider name for metrics
			appMetrics,
			cfg.Workers,
			cfg.Interval,
			cfg.AddrPrefix,
		)
		go locations.Run(ctx)
	default:
		repo, err := repository.NewFileRepository(cfg.Data.File, logger)
		if err != nil {
			log.Fatalf("Failed to load personas: %v", err)
		}
		personas = repo
	}

	locator := geocoding.NewStaticProvider(nil, logger)
	globe := service.NewGlobeService(
		logger, personas, locator, appMetrics, cfg.Spread.ThresholdKm, cfg.Spread.RingKm,
	)

	if cfg.Gemini.APIKey == "" {
		logger.WarnContext(ctx, "MERIDIAN_GEMINI_API_KEY is not set, consultations will fail")
	}
	generator, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, logger, gemini.WithModel(cfg.Gemini.Model))
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	consult := service.NewConsultService(logger, personas, generator, appMetrics)

	router := handler.NewRouter(logger, handler.NewHandler(logger, personas, globe, consult), appMetrics, cfg.Env)
	readTimeout := 10
	writeTimeout := 60
	api := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	// Start the monitoring server in a goroutine to allow main to listen for signals.
	go startMonitoringServer(ctx, logger, reg, checks, cfg.HealthPort)

	go func() {
		logger.InfoContext(ctx, "Starting API server", "port", cfg.HTTPPort, "source", cfg.Data.Source)
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "API server failed", "error", err)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := api.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "API server shutdown failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(shutdownCtx, "Application stopped gracefully.")
}

// setupPostgres connects, applies the schema and seeds personas from the data file when it exists.
func setupPostgres(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*repository.Repository, *pgxpool.Pool) {
	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	if err = repository.Migrate(ctx, dtb); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := repository.NewRepository(dtb, logger)

	if _, err = os.Stat(cfg.Data.File); err == nil {
		seed, errSeed := repository.NewFileRepository(cfg.Data.File, logger)
		if errSeed != nil {
			log.Fatalf("Failed to load seed personas: %v", errSeed)
		}
		count, errSeed := seedPersonas(ctx, seed, repo)
		if errSeed != nil {
			log.Fatalf("Failed to seed personas: %v", errSeed)
		}
		logger.InfoContext(ctx, "Seeded personas", "file", cfg.Data.File, "count", count)
	}

	return repo, dtb
}

// personaWriter stores persona records.
type personaWriter interface {
	UpsertPersona(ctx context.Context, persona models.Persona) error
}

// seedPersonas copies every persona of src into dst and returns how many were written.
func seedPersonas(ctx context.Context, src repository.PersonaReader, dst personaWriter) (int, error) {
	records, err := src.ListPersonas(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed personas: %w", err)
	}

	for _, persona := range records {
		if err = dst.UpsertPersona(ctx, persona); err != nil {
			return 0, fmt.Errorf("failed to seed persona %s: %w", persona.ID, err)
		}
	}

	return len(records), nil
}

// setupProvider builds the geocoding provider of the location resolver.
// With a cache address configured, lookups are memoized in Valkey.
func setupProvider(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	appMetrics *metrics.Metrics,
	checks map[string]pinger,
) geocoding.Provider {
	// Create geocoding provider using factory pattern based on configuration
	// This allows runtime selection between different providers (Google, Visicom, Nominatim, etc.)
	rateLimit := 50
	providerConfig := geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		RateLimit: max(rateLimit/max(cfg.Workers, 1), 1),
		Logger:    logger,
	}

	provider, err := geocoding.NewProvider(providerConfig)
	if err != nil {
		log.Fatalf("Failed to create geocoding provider: %v", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

	if cfg.Cache.Addr == "" {
		return provider
	}

	store, err := cache.New(cfg.Cache.Addr)
	if err != nil {
		log.Fatalf("Failed to connect to cache: %v", err)
	}
	go func() {
		<-ctx.Done()
		store.Close()
	}()
	checks["cache"] = store
	logger.InfoContext(ctx, "Geocode cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)

	return geocoding.NewCachedProvider(provider, store, cfg.Cache.TTL, logger, appMetrics)
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
//
// Parameters:
// - ctx: A context.Context for managing cancellation and timeouts.
// - log: A logger for logging server events and errors.
// - reg: A registry with Prometheus collectors.
// - checks: Dependencies pinged by /healthz, keyed by name.
// - port: The port number on which the server will listen.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	checks map[string]pinger,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, req *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		for name, dep := range checks {
			if err := dep.Ping(req.Context()); err != nil {
				log.WarnContext(ctx, "Health check failed", "dependency", name, "error", err)
				status, body = http.StatusServiceUnavailable, name+" ping failed"
				break
			}
		}
		writer.WriteHeader(status)
		_, err := writer.Write([]byte(body))
		if err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}

		log.DebugContext(ctx, "Health checks completed", "status", status)
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelWarn,
				ReplaceAttr: dropTime,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:       slog.LevelError,
				ReplaceAttr: dropTime,
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
