package app

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/riskibarqy/diamond-insights/external/detection"
	"github.com/riskibarqy/diamond-insights/external/prediction"
	"github.com/riskibarqy/diamond-insights/external/statsapi"
	"github.com/riskibarqy/diamond-insights/internal/config"
	"github.com/riskibarqy/diamond-insights/internal/interfaces/httpapi"
	"github.com/riskibarqy/diamond-insights/internal/platform/cache"
	idgen "github.com/riskibarqy/diamond-insights/internal/platform/id"
	"github.com/riskibarqy/diamond-insights/internal/platform/logging"
	"github.com/riskibarqy/diamond-insights/internal/platform/metrics"
	"github.com/riskibarqy/diamond-insights/internal/platform/resilience"
	"github.com/riskibarqy/diamond-insights/internal/usecase"
)

// App is the assembled HTTP service plus the resources it owns.
type App struct {
	Server  *http.Server
	closers []io.Closer
}

// Close releases resources opened while building the app.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{}
	recorder := metrics.NewRecorder()

	responseCache, err := newResponseCache(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer, ok := responseCache.(io.Closer); ok {
		app.closers = append(app.closers, closer)
	}

	statsClient := statsapi.NewClient(statsapi.ClientConfig{
		BaseURL:    cfg.StatsAPIBaseURL,
		Timeout:    cfg.StatsAPITimeout,
		MaxRetries: cfg.StatsAPIMaxRetries,
		Logger:     logger.Named("statsapi"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsAPICircuitEnabled,
			FailureThreshold: cfg.StatsAPICircuitFailureCount,
			OpenTimeout:      cfg.StatsAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsAPICircuitHalfOpenMaxReq,
		},
		Cache:    responseCache,
		Observer: recorder,
	})

	scheduleSvc := usecase.NewScheduleService(statsClient, usecase.ScheduleConfig{
		WindowDays:      cfg.ScheduleWindowDays,
		ProbeStepDays:   cfg.ScheduleProbeStepDays,
		ProbeWindowDays: cfg.ScheduleProbeWindowDays,
		ProbeAttempts:   cfg.ScheduleProbeAttempts,
		GamesWindowDays: cfg.ScheduleGamesWindowDays,
		Location:        cfg.ScheduleLocation(),
	}, logger, usecase.WithScheduleMetrics(recorder))

	leaderboardSvc := usecase.NewLeaderboardService(statsClient, usecase.LeaderboardConfig{
		HittingCategory:  cfg.StatsAPIHittingCategory,
		PitchingCategory: cfg.StatsAPIPitchingCategory,
		Season:           cfg.StatsAPISeason,
		Fanout: usecase.FanoutConfig{
			MaxWorkers:    cfg.FanoutMaxWorkers,
			DetailTimeout: cfg.FanoutDetailTimeout,
		},
	}, logger, recorder)

	directorySvc := usecase.NewPlayerDirectoryService(leaderboardSvc, logger)
	insightSvc := usecase.NewGameInsightService(
		detectionProvider(cfg, logger),
		predictionProvider(cfg, logger),
		logger,
	)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = recorder.Handler()
	}

	handler := httpapi.NewHandler(scheduleSvc, leaderboardSvc, directorySvc, insightSvc, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     metricsHandler,
		IDGenerator:        idgen.NewUUIDGenerator(),
	})

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return app, nil
}

func newResponseCache(ctx context.Context, cfg config.Config, logger *logging.Logger) (cache.Cache, error) {
	if !cfg.CacheEnabled {
		return nil, nil
	}

	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		store, err := cache.NewRedisStore(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("build redis cache: %w", err)
		}
		logger.Info("statsapi response cache enabled", "backend", cfg.CacheBackend, "ttl", cfg.CacheTTL)
		return store, nil
	default:
		logger.Info("statsapi response cache enabled", "backend", config.CacheBackendMemory, "ttl", cfg.CacheTTL)
		return cache.NewStore(cfg.CacheTTL), nil
	}
}

// detectionProvider returns a nil interface when the collaborator is not configured.
func detectionProvider(cfg config.Config, logger *logging.Logger) usecase.DetectionProvider {
	client := detection.NewClient(detection.ClientConfig{
		BaseURL: cfg.DetectionBaseURL,
		Timeout: cfg.DetectionTimeout,
		Logger:  logger.Named("detection"),
	})
	if client == nil {
		logger.Info("detection service disabled", "reason", "DETECTION_BASE_URL empty")
		return nil
	}
	return client
}

func predictionProvider(cfg config.Config, logger *logging.Logger) usecase.PredictionProvider {
	client := prediction.NewClient(prediction.ClientConfig{
		BaseURL: cfg.PredictionBaseURL,
		Timeout: cfg.PredictionTimeout,
		Logger:  logger.Named("prediction"),
	})
	if client == nil {
		logger.Info("prediction service disabled", "reason", "PREDICTION_BASE_URL empty")
		return nil
	}
	return client
}
