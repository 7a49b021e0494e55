package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AdaSouls/Cardano-Backend/internal/cache"
	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
	"github.com/AdaSouls/Cardano-Backend/internal/store"
)

// Registry serves the catalogue of registered asset contracts, cache-aside
// over a single shared key. Writes go straight to durable storage; the
// cached list is refreshed lazily on the next read after Invalidate.
type Registry struct {
	repo      store.AssetRepository
	cache     cache.Store
	supported map[model.ChainID]bool
	logger    *slog.Logger
}

func New(repo store.AssetRepository, cacheStore cache.Store, supportedChains []model.ChainID, logger *slog.Logger) *Registry {
	supported := make(map[model.ChainID]bool, len(supportedChains))
	for _, c := range supportedChains {
		supported[c] = true
	}
	return &Registry{
		repo:      repo,
		cache:     cacheStore,
		supported: supported,
		logger:    logger.With("component", "asset-registry"),
	}
}

// ListAssets returns every registered asset descriptor. A cache hit on the
// shared list key skips the durable read entirely.
func (r *Registry) ListAssets(ctx context.Context) ([]model.AssetDescriptor, error) {
	var assets []model.AssetDescriptor
	if r.cache.GetJSON(ctx, cache.AssetListKey, &assets) {
		return assets, nil
	}

	assets, err := r.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	metrics.RegistryDurableReadsTotal.Inc()

	r.cache.SetJSON(ctx, cache.AssetListKey, assets)
	return assets, nil
}

// ListAddresses returns the contract addresses of every asset registered on
// a supported chain, in registration order. The list is shared: each chain's
// discovery batches the same candidates, and the provider simply reports no
// ownership for contracts that live elsewhere.
func (r *Registry) ListAddresses(ctx context.Context) ([]string, error) {
	assets, err := r.ListAssets(ctx)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(assets))
	for _, a := range assets {
		if r.supported[a.ChainID] {
			addresses = append(addresses, a.Address)
		}
	}
	return addresses, nil
}

// Upsert normalizes and stores a descriptor, returning true when a new row
// was created. The cached list is not touched: callers decide when staleness
// matters by invoking Invalidate.
func (r *Registry) Upsert(ctx context.Context, asset *model.AssetDescriptor) (bool, error) {
	asset.Normalize()

	created, err := r.repo.UpsertByAddress(ctx, asset)
	if err != nil {
		return false, fmt.Errorf("upsert asset %s: %w", asset.Address, err)
	}

	r.logger.Info("asset upserted", "address", asset.Address, "chain", asset.ChainID, "created", created)
	return created, nil
}

// Delete removes a descriptor by address. Returns store.ErrNotFound when no
// such asset is registered.
func (r *Registry) Delete(ctx context.Context, address string) error {
	address = strings.ToLower(address)
	if err := r.repo.DeleteByAddress(ctx, address); err != nil {
		return err
	}
	r.logger.Info("asset deleted", "address", address)
	return nil
}

// Invalidate drops the cached asset list so the next read hits storage.
func (r *Registry) Invalidate(ctx context.Context) {
	r.cache.Delete(ctx, cache.AssetListKey)
}
