package model

import (
	"strings"
	"time"
)

// GameMapping binds an on-chain token of an asset contract to an internal
// game catalogue entry.
type GameMapping struct {
	GameID   string `json:"gameId"`
	AssetID  string `json:"assetId"`
	TMItemID string `json:"tmItemId,omitempty"`
	TokenID  int64  `json:"tokenId"`
}

// AssetDescriptor is a registered on-chain contract the platform knows how to
// interpret. Address is the unique key; address, chain, and token type are
// stored lowercase.
type AssetDescriptor struct {
	Address         string        `json:"address"`
	ChainID         ChainID       `json:"chain"`
	TokenType       TokenType     `json:"tokenType"`
	Name            string        `json:"name,omitempty"`
	OperatorAddress string        `json:"operatorAddress,omitempty"`
	GameData        []GameMapping `json:"gameData,omitempty"`
	CreatedAt       time.Time     `json:"createdAt,omitempty"`
	UpdatedAt       time.Time     `json:"updatedAt,omitempty"`
}

// Normalize lowercases the fields that act as lookup keys.
func (a *AssetDescriptor) Normalize() {
	a.Address = strings.ToLower(strings.TrimSpace(a.Address))
	a.ChainID = ChainID(strings.ToLower(string(a.ChainID)))
	a.TokenType = TokenType(strings.ToLower(string(a.TokenType)))
	a.OperatorAddress = strings.ToLower(strings.TrimSpace(a.OperatorAddress))
}
