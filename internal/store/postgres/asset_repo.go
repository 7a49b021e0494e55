package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/store"
)

type AssetRepo struct {
	db *DB
}

func NewAssetRepo(db *DB) *AssetRepo {
	return &AssetRepo{db: db}
}

var _ store.AssetRepository = (*AssetRepo)(nil)

func (r *AssetRepo) FindAll(ctx context.Context) ([]model.AssetDescriptor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT address, chain, token_type, name, operator_address, game_data, created_at, updated_at
		FROM nft_assets
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("query nft assets: %w", err)
	}
	defer rows.Close()

	var assets []model.AssetDescriptor
	for rows.Next() {
		var (
			a        model.AssetDescriptor
			name     sql.NullString
			operator sql.NullString
			gameData []byte
		)
		if err := rows.Scan(
			&a.Address, &a.ChainID, &a.TokenType,
			&name, &operator, &gameData,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan nft asset: %w", err)
		}
		a.Name = name.String
		a.OperatorAddress = operator.String
		if len(gameData) > 0 {
			if err := json.Unmarshal(gameData, &a.GameData); err != nil {
				return nil, fmt.Errorf("decode game data for %s: %w", a.Address, err)
			}
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *AssetRepo) UpsertByAddress(ctx context.Context, asset *model.AssetDescriptor) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	gameData, err := json.Marshal(asset.GameData)
	if err != nil {
		return false, fmt.Errorf("encode game data: %w", err)
	}

	var created bool
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO nft_assets (address, chain, token_type, name, operator_address, game_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (address) DO UPDATE SET
			chain = EXCLUDED.chain,
			token_type = EXCLUDED.token_type,
			name = EXCLUDED.name,
			operator_address = EXCLUDED.operator_address,
			game_data = EXCLUDED.game_data,
			updated_at = now()
		RETURNING (xmax = 0)
	`, asset.Address, asset.ChainID, asset.TokenType,
		nullable(asset.Name), nullable(asset.OperatorAddress), gameData,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("upsert nft asset: %w", err)
	}
	return created, nil
}

func (r *AssetRepo) DeleteByAddress(ctx context.Context, address string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM nft_assets WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete nft asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete nft asset: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
