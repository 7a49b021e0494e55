package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/AdaSouls/Cardano-Backend/internal/aggregator"
	"github.com/AdaSouls/Cardano-Backend/internal/cache"
	"github.com/AdaSouls/Cardano-Backend/internal/config"
	"github.com/AdaSouls/Cardano-Backend/internal/errsink"
	"github.com/AdaSouls/Cardano-Backend/internal/httpapi"
	"github.com/AdaSouls/Cardano-Backend/internal/provider"
	"github.com/AdaSouls/Cardano-Backend/internal/provider/alchemy"
	"github.com/AdaSouls/Cardano-Backend/internal/registry"
	"github.com/AdaSouls/Cardano-Backend/internal/store/postgres"
	"github.com/AdaSouls/Cardano-Backend/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting walletsvc",
		"port", cfg.Server.Port,
		"chains", cfg.Web3.SupportedChains,
		"method", cfg.Web3.ContentMethod,
		"max_contracts_per_call", cfg.Provider.MaxContractsPerCall,
		"redis", cfg.Redis.URL != "",
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, "walletsvc", cfg.Tracing.OTLPEndpoint, cfg.Tracing.Insecure)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	db, err := postgres.New(postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis is optional: without it the service runs on the in-process LRU,
	// correct but colder.
	var cacheStore cache.Store
	if cfg.Redis.URL != "" {
		redisStore, err := cache.NewRedisStore(cfg.Redis.URL, cfg.Redis.TTL, logger)
		if err != nil {
			logger.Error("invalid redis configuration", "error", err)
			os.Exit(1)
		}
		if err := redisStore.Connect(ctx); err != nil {
			logger.Warn("redis unreachable at startup, continuing degraded", "error", err)
		}
		defer redisStore.Close()
		cacheStore = redisStore
	} else {
		logger.Info("no REDIS_URL configured, using in-memory cache")
		cacheStore = cache.NewMemoryStore(cfg.Redis.TTL)
	}

	var sinkOpts []errsink.Option
	if cfg.Alert.WebhookURL != "" {
		sinkOpts = append(sinkOpts,
			errsink.WithWebhook(errsink.NewWebhookNotifier(cfg.Alert.WebhookURL), cfg.Alert.Cooldown))
	}
	failures := errsink.NewSink(logger, sinkOpts...)

	assetRepo := postgres.NewAssetRepo(db)
	userRepo := postgres.NewUserRepo(db)
	assetRegistry := registry.New(assetRepo, cacheStore, cfg.Web3.SupportedChains, logger)

	alchemyClient := alchemy.NewClient(alchemy.Config{
		Chains:      cfg.Web3.SupportedChains,
		Endpoints:   cfg.Web3.NetworkRPCURLs,
		APIKeys:     cfg.Web3.APIKeys,
		CallTimeout: cfg.Provider.CallTimeout,
		RPS:         cfg.Provider.RPS,
		Burst:       cfg.Provider.Burst,
	}, logger)
	providers := provider.NewRegistry(alchemyClient)

	agg := aggregator.New(aggregator.Config{
		Chains:              cfg.Web3.SupportedChains,
		MaxContractsPerCall: cfg.Provider.MaxContractsPerCall,
		DefaultMethod:       cfg.Web3.ContentMethod,
	}, userRepo, assetRegistry, providers, cacheStore, failures, logger)

	invalidator := aggregator.NewInvalidator(cacheStore, logger)

	api := httpapi.NewServer(agg, invalidator, assetRegistry, userRepo, logger,
		httpapi.WithFunctionCode(cfg.Codes.Master),
		httpapi.WithFailureLog(failures),
		httpapi.WithHealthReporter(cacheStore),
	)

	mux := http.NewServeMux()
	mux.Handle("/", api.Handler())
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", "addr", server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
		case <-gCtx.Done():
		}
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("http server shutdown error", "error", err)
		}
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("walletsvc exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("walletsvc shut down gracefully")
}
