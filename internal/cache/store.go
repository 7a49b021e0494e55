package cache

import (
	"context"
	"strings"
)

// Store is the shared cache capability consumed by the registry and the
// wallet content aggregator.
//
// A Store never surfaces transport errors to business logic: any operation
// against an unavailable backend degrades to a miss (reads) or a no-op
// (writes and deletes). The aggregation path must stay correct with no cache
// at all, just slower.
type Store interface {
	// GetJSON reads key and unmarshals it into dest. Returns false on miss,
	// decode failure, or an unavailable backend.
	GetJSON(ctx context.Context, key string, dest any) bool

	// SetJSON marshals val and writes it under key with the store's default
	// TTL. Returns false when nothing was written.
	SetJSON(ctx context.Context, key string, val any) bool

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) bool

	// FlushAll clears the entire cache namespace.
	FlushAll(ctx context.Context) bool

	// Connected reports whether the backend is currently reachable.
	Connected(ctx context.Context) bool
}

// WalletKey is the cache key for one wallet's NFT contents.
func WalletKey(address string) string {
	return "nft:" + strings.ToLower(address)
}

// AssetListKey holds the full asset registry as a single JSON blob,
// independent of any one wallet.
const AssetListKey = "all-nft-assets"
