package store

import (
	"context"
	"errors"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// AssetRepository provides durable storage for registered asset contracts.
// The registry layers the cache on top; implementations stay cache-free.
type AssetRepository interface {
	FindAll(ctx context.Context) ([]model.AssetDescriptor, error)

	// UpsertByAddress inserts or updates a descriptor keyed on its (already
	// normalized) address. Returns true when a new row was created.
	UpsertByAddress(ctx context.Context, asset *model.AssetDescriptor) (bool, error)

	// DeleteByAddress removes a descriptor. Returns ErrNotFound when no row
	// matched.
	DeleteByAddress(ctx context.Context, address string) error
}

// UserDirectory resolves a user's primary wallet address. A user with no
// linked wallet yields ("", nil) rather than an error: that is a normal
// state, not a failure.
type UserDirectory interface {
	PrimaryWalletAddress(ctx context.Context, userID string) (string, error)
}
