package model

import "time"

// OwnedNFT is a single NFT ownership record, already flattened out of the
// provider's wire format.
type OwnedNFT struct {
	ContractAddress string    `json:"contractAddress"`
	TokenID         string    `json:"tokenId"`
	TokenType       TokenType `json:"tokenType,omitempty"`
	Balance         string    `json:"balance,omitempty"`
	Title           string    `json:"title,omitempty"`
}

// ChainAssets is one chain's contribution to a wallet content result.
// A chain the provider cannot serve carries an empty NFT list and an
// explanatory message instead of failing the whole aggregation.
type ChainAssets struct {
	ChainID ChainID    `json:"chain"`
	NFTs    []OwnedNFT `json:"nfts"`
	Message string     `json:"message,omitempty"`
}

// AssetToken is one owned token inside a reshaped game asset.
type AssetToken struct {
	Type            TokenType `json:"type"`
	Wallet          string    `json:"wallet"`
	AnalyticID      string    `json:"analyticId"`
	SmartContractID string    `json:"smartContractId"`
	InternalTokenID int64     `json:"internalTokenId"`
	CustomTokenID   string    `json:"customTokenId"`
	Value           string    `json:"value,omitempty"`
}

// GameAsset groups owned tokens by catalogue entry (assetId + internal token
// id), the shape game clients consume.
type GameAsset struct {
	Type            string       `json:"type"`
	AssetID         string       `json:"assetId"`
	TMItemID        string       `json:"tmItemId,omitempty"`
	InternalTokenID int64        `json:"internalTokenId"`
	Tokens          []AssetToken `json:"tokens"`
}

// ContentResult is the aggregator's answer for one user. Assets is the raw
// per-chain discovery (this is what gets cached); GameAssets is the reshaped
// view built fresh on every call.
type ContentResult struct {
	UserID     string        `json:"userId"`
	Address    string        `json:"address"`
	Method     string        `json:"method"`
	FromCache  bool          `json:"fromCache"`
	Timing     time.Duration `json:"-"`
	Assets     []ChainAssets `json:"assets"`
	GameAssets []GameAsset   `json:"gameAssets"`
}
