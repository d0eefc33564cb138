package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maticamisay/eldisco-ecommerce/internal/config"
	"github.com/maticamisay/eldisco-ecommerce/internal/filestore"
	handler "github.com/maticamisay/eldisco-ecommerce/internal/handler/http"
	"github.com/maticamisay/eldisco-ecommerce/pkg/database"
	"github.com/maticamisay/eldisco-ecommerce/pkg/health"
	"github.com/maticamisay/eldisco-ecommerce/pkg/httpclient"
	"github.com/maticamisay/eldisco-ecommerce/pkg/middleware"
	"github.com/maticamisay/eldisco-ecommerce/pkg/tracing"
)

// ServiceName identifies the catalog service in logs, traces and metrics.
const ServiceName = "catalog-service"

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	catalog        *Catalog
	redis          *redis.Client
	limiter        *middleware.RateLimiter
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}

	tcfg := tracing.DefaultConfig(ServiceName)
	tcfg.Environment = cfg.Environment
	tcfg.OTLPEndpoint = cfg.OTELEndpoint
	tcfg.SampleRate = cfg.OTELSampleRate
	tcfg.Enabled = cfg.OTELEnabled
	shutdown, err := tracing.InitTracer(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = shutdown

	database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)

	catalog, err := OpenCatalog(ctx, cfg, logger)
	if err != nil {
		_ = a.tracerShutdown(context.Background())
		return nil, err
	}
	a.catalog = catalog

	healthHandler := health.NewHandler()
	catalog.RegisterHealth(healthHandler)

	images := a.fileStore(ctx)
	if a.redis != nil {
		healthHandler.RegisterOptional("redis", database.RedisPing(a.redis))
	}

	if cfg.RateLimitRPS > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	router := handler.NewRouter(
		handler.Services{
			Products:   catalog.Products,
			Categories: catalog.Categories,
			Brands:     catalog.Brands,
			Images:     images,
		},
		healthHandler,
		handler.RouterConfig{
			CORS:              cors,
			RateLimiter:       a.limiter,
			PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
			CacheMaxAge:       cfg.CacheMaxAge,
		},
		logger,
	)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

// fileStore builds the signed-image client behind a circuit breaker. The
// signed-URL cache is optional; when Redis is unreachable the client runs
// without it.
func (a *App) fileStore(ctx context.Context) *filestore.Client {
	hc := httpclient.DefaultConfig()
	hc.Timeout = a.cfg.FileManagerTimeout()
	doer := httpclient.NewCircuitBreakerClient(httpclient.New(hc), a.cfg.Breaker(), a.logger)

	opts := []filestore.Option{filestore.WithDoer(doer)}
	if a.cfg.SignedURLCacheEnabled {
		client, err := database.NewRedisClient(ctx, a.cfg.Redis())
		if err != nil {
			a.logger.Warn("signed URL cache disabled",
				slog.String("addr", a.cfg.Redis().Addr()),
				slog.String("error", err.Error()),
			)
		} else {
			a.redis = client
			opts = append(opts, filestore.WithCache(filestore.NewRedisCache(client, a.cfg.SignedURLCacheMargin)))
			a.logger.Info("signed URL cache enabled", slog.String("addr", a.cfg.Redis().Addr()))
		}
	}

	return filestore.New(filestore.Config{
		BaseURL: a.cfg.FileManagerURL,
		Timeout: a.cfg.FileManagerTimeout(),
	}, a.logger, opts...)
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.close()
	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	a.catalog.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracerShutdown(ctx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
}
