package aggregator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
)

// BuildGameAssets reshapes raw per-chain ownership into the grouping game
// clients consume: one entry per (assetId, internal token id), every owned
// token of that entry collected under it. Tokens whose contract is not in
// the registry are skipped; duplicate tokens (same analytic id) are kept
// once. Order follows first appearance in the discovery.
func BuildGameAssets(wallet string, chains []model.ChainAssets, byAddress map[string]model.AssetDescriptor) []model.GameAsset {
	groups := make(map[string]*model.GameAsset)
	seen := make(map[string]bool)
	var order []string

	add := func(mapping model.GameMapping, token model.AssetToken) {
		key := fmt.Sprintf("%s-%d", mapping.AssetID, mapping.TokenID)
		if seen[key+"|"+token.AnalyticID] {
			return
		}
		seen[key+"|"+token.AnalyticID] = true

		group, ok := groups[key]
		if !ok {
			group = &model.GameAsset{
				Type:            "asset",
				AssetID:         mapping.AssetID,
				TMItemID:        mapping.TMItemID,
				InternalTokenID: mapping.TokenID,
			}
			groups[key] = group
			order = append(order, key)
		}
		group.Tokens = append(group.Tokens, token)
	}

	for _, chain := range chains {
		for _, nft := range chain.NFTs {
			contract := strings.ToLower(nft.ContractAddress)
			asset, ok := byAddress[contract]
			if !ok {
				continue
			}

			switch asset.TokenType {
			case model.TokenTypeERC721:
				reshapeERC721(wallet, contract, nft, asset, add)
			case model.TokenTypeERC1155:
				reshapeERC1155(wallet, contract, nft, asset, add)
			}
		}
	}

	out := make([]model.GameAsset, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}

// reshapeERC721 decodes the internal token id packed into the custom token
// id and attaches the token to every catalogue mapping it matches. The
// on-contract getter returns the same id; decoding locally avoids a contract
// call per token.
func reshapeERC721(wallet, contract string, nft model.OwnedNFT, asset model.AssetDescriptor, add func(model.GameMapping, model.AssetToken)) {
	customID, err := model.ParseCustomTokenID(nft.TokenID)
	if err != nil {
		return
	}
	internalID := model.InternalTokenID(customID)

	for _, mapping := range asset.GameData {
		if mapping.TokenID != internalID {
			continue
		}
		add(mapping, model.AssetToken{
			Type:            model.TokenTypeERC721,
			Wallet:          wallet,
			AnalyticID:      contract + ":" + model.HexTokenID(customID),
			SmartContractID: contract,
			InternalTokenID: mapping.TokenID,
			CustomTokenID:   customID.String(),
		})
	}
}

// reshapeERC1155 matches on the token id directly; 1155 collections use the
// catalogue token id on chain, with the balance carried as the value.
func reshapeERC1155(wallet, contract string, nft model.OwnedNFT, asset model.AssetDescriptor, add func(model.GameMapping, model.AssetToken)) {
	tokenID, err := model.ParseCustomTokenID(nft.TokenID)
	if err != nil {
		return
	}

	for _, mapping := range asset.GameData {
		if mapping.TokenID != tokenID.Int64() {
			continue
		}
		add(mapping, model.AssetToken{
			Type:            model.TokenTypeERC1155,
			Wallet:          wallet,
			AnalyticID:      contract + ":" + strconv.FormatInt(mapping.TokenID, 10),
			SmartContractID: contract,
			InternalTokenID: mapping.TokenID,
			CustomTokenID:   tokenID.String(),
			Value:           nft.Balance,
		})
	}
}
