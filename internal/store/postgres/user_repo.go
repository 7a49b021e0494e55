package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/AdaSouls/Cardano-Backend/internal/store"
)

// UserRepo exposes the narrow slice of the user table the wallet core needs.
// Wallet links live in a JSON column; the primary ("mv") wallet address is
// all we read.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ store.UserDirectory = (*UserRepo)(nil)

func (r *UserRepo) PrimaryWalletAddress(ctx context.Context, userID string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var address sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT wallet->'mv'->>'address'
		FROM users
		WHERE user_id = $1
	`, strings.ToLower(userID)).Scan(&address)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query user wallet: %w", err)
	}
	return strings.ToLower(address.String), nil
}
