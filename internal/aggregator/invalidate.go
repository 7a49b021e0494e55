package aggregator

import (
	"context"
	"log/slog"

	"github.com/AdaSouls/Cardano-Backend/internal/cache"
)

// Invalidator drops cached wallet contents so the next read re-fetches.
// Invalidation is fire-and-forget relative to in-flight aggregations: a
// fetch racing a mark may still write a result computed before the mark,
// which the TTL bounds.
type Invalidator struct {
	cache  cache.Store
	logger *slog.Logger
}

func NewInvalidator(cacheStore cache.Store, logger *slog.Logger) *Invalidator {
	return &Invalidator{
		cache:  cacheStore,
		logger: logger.With("component", "wallet-invalidator"),
	}
}

// MarkWalletDirty deletes one wallet's cached contents. Marking an absent
// key succeeds; only an unreachable cache reports false.
func (inv *Invalidator) MarkWalletDirty(ctx context.Context, address string) bool {
	key := cache.WalletKey(address)
	ok := inv.cache.Delete(ctx, key)
	inv.logger.Info("wallet marked dirty", "key", key, "ok", ok)
	return ok
}

// FlushAll clears the entire wallet cache namespace.
func (inv *Invalidator) FlushAll(ctx context.Context) bool {
	ok := inv.cache.FlushAll(ctx)
	inv.logger.Info("wallet cache flushed", "ok", ok)
	return ok
}
