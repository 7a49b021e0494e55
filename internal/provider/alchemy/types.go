package alchemy

import (
	"strings"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
)

// Wire types for the indexing API's getNFTs response.

type ownedNFTsResponse struct {
	OwnedNFTs  []ownedNFT `json:"ownedNfts"`
	TotalCount int        `json:"totalCount"`
	PageKey    string     `json:"pageKey,omitempty"`
}

type ownedNFT struct {
	Contract nftContract `json:"contract"`
	ID       nftID       `json:"id"`
	Balance  string      `json:"balance,omitempty"`
	Title    string      `json:"title,omitempty"`
}

type nftContract struct {
	Address string `json:"address"`
}

type nftID struct {
	TokenID       string        `json:"tokenId"`
	TokenMetadata tokenMetadata `json:"tokenMetadata"`
}

type tokenMetadata struct {
	TokenType string `json:"tokenType"`
}

func (n ownedNFT) toModel() model.OwnedNFT {
	return model.OwnedNFT{
		ContractAddress: strings.ToLower(n.Contract.Address),
		TokenID:         n.ID.TokenID,
		TokenType:       model.TokenType(strings.ToLower(n.ID.TokenMetadata.TokenType)),
		Balance:         n.Balance,
		Title:           n.Title,
	}
}
