package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/AdaSouls/Cardano-Backend/internal/cache"
	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/errsink"
	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
	"github.com/AdaSouls/Cardano-Backend/internal/provider"
	"github.com/AdaSouls/Cardano-Backend/internal/store"
)

const fallbackMethod = "alchemy"

// assetCatalog is the slice of the registry the aggregator consumes.
type assetCatalog interface {
	contractLister
	ListAssets(ctx context.Context) ([]model.AssetDescriptor, error)
}

// Aggregator answers "what does this user's wallet hold" by resolving the
// wallet, consulting the per-wallet cache, and on a miss fanning the
// discovery out across every configured chain through the selected provider
// strategy. Fresh results always replace the cached value wholesale.
type Aggregator struct {
	users         store.UserDirectory
	catalog       assetCatalog
	providers     *provider.Registry
	cache         cache.Store
	failures      errsink.Recorder
	logger        *slog.Logger
	tracer        trace.Tracer
	fanout        *fanout
	defaultMethod string
	group         singleflight.Group
}

// Config carries the fan-out shape: the ordered chain list, the provider's
// per-call contract ceiling, and the default strategy name.
type Config struct {
	Chains              []model.ChainID
	MaxContractsPerCall int
	DefaultMethod       string
}

func New(cfg Config, users store.UserDirectory, catalog assetCatalog, providers *provider.Registry, cacheStore cache.Store, failures errsink.Recorder, logger *slog.Logger) *Aggregator {
	logger = logger.With("component", "wallet-aggregator")
	return &Aggregator{
		users:         users,
		catalog:       catalog,
		providers:     providers,
		cache:         cacheStore,
		failures:      failures,
		logger:        logger,
		tracer:        otel.Tracer("wallet-aggregator"),
		defaultMethod: cfg.DefaultMethod,
		fanout: &fanout{
			chains:     cfg.Chains,
			contracts:  catalog,
			maxPerCall: cfg.MaxContractsPerCall,
			failures:   failures,
			logger:     logger,
		},
	}
}

// GetContents returns the wallet contents for a user. A user with no linked
// wallet gets an empty result without touching the cache or any provider.
// method selects the discovery strategy; empty falls back to the configured
// default.
func (a *Aggregator) GetContents(ctx context.Context, userID string, forceRefresh bool, method string) (*model.ContentResult, error) {
	ctx, span := a.tracer.Start(ctx, "wallet.getContents", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Bool("force_refresh", forceRefresh),
	))
	defer span.End()

	if method == "" {
		method = a.defaultMethod
	}
	if method == "" {
		method = fallbackMethod
	}

	address, err := a.users.PrimaryWalletAddress(ctx, userID)
	if err != nil {
		a.failures.RecordFailure(ctx, "wallet.getContents", err)
		metrics.ContentRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve wallet for user %s: %w", userID, err)
	}

	result := &model.ContentResult{
		UserID:     userID,
		Method:     method,
		Assets:     []model.ChainAssets{},
		GameAssets: []model.GameAsset{},
	}

	if address == "" {
		a.logger.Info("user has no linked wallet", "user", userID)
		metrics.ContentRequestsTotal.WithLabelValues("no_wallet").Inc()
		return result, nil
	}
	result.Address = address
	span.SetAttributes(attribute.String("wallet.address", address))

	key := cache.WalletKey(address)
	start := time.Now()

	if !forceRefresh {
		var cached []model.ChainAssets
		if a.cache.GetJSON(ctx, key, &cached) {
			result.FromCache = true
			result.Assets = cached
			result.Timing = time.Since(start)
			a.attachGameAssets(ctx, result)
			metrics.ContentRequestsTotal.WithLabelValues("hit").Inc()
			return result, nil
		}
	}

	client, err := a.providers.Get(method)
	if err != nil {
		a.failures.RecordFailure(ctx, "wallet.getContents", err)
		metrics.ContentRequestsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	result.Assets = a.fetch(ctx, client, address, key, forceRefresh)
	result.Timing = time.Since(start)
	a.attachGameAssets(ctx, result)

	outcome := "miss"
	if forceRefresh {
		outcome = "forced"
	}
	metrics.ContentRequestsTotal.WithLabelValues(outcome).Inc()

	a.logger.Info("wallet contents fetched",
		"user", userID, "wallet", address, "method", method,
		"chains", len(result.Assets), "timing", result.Timing)
	return result, nil
}

// fetch runs the fan-out and replaces the cached value. Concurrent misses
// for the same wallet coalesce into one provider round; forced refreshes
// bypass coalescing so an explicit refresh always does its own fetch.
func (a *Aggregator) fetch(ctx context.Context, client provider.Client, address, key string, bypassCoalesce bool) []model.ChainAssets {
	doFetch := func() []model.ChainAssets {
		ctx, span := a.tracer.Start(ctx, "wallet.fanout",
			trace.WithAttributes(attribute.String("method", client.Name())))
		defer span.End()

		start := time.Now()
		assets := a.fanout.fetchAll(ctx, client, address)
		metrics.ContentFetchDuration.Observe(time.Since(start).Seconds())

		a.cache.SetJSON(ctx, key, assets)
		return assets
	}

	if bypassCoalesce {
		return doFetch()
	}

	v, _, _ := a.group.Do(key, func() (any, error) {
		return doFetch(), nil
	})
	return v.([]model.ChainAssets)
}

// attachGameAssets computes the reshaped view from the discovery and the
// registered asset catalogue. A catalogue read failure degrades to an empty
// reshape rather than failing the whole request.
func (a *Aggregator) attachGameAssets(ctx context.Context, result *model.ContentResult) {
	descriptors, err := a.catalog.ListAssets(ctx)
	if err != nil {
		a.failures.RecordFailure(ctx, "wallet.reshape", err)
		return
	}

	byAddress := make(map[string]model.AssetDescriptor, len(descriptors))
	for _, d := range descriptors {
		byAddress[d.Address] = d
	}
	result.GameAssets = BuildGameAssets(result.Address, result.Assets, byAddress)
}
