package alchemy

import "github.com/AdaSouls/Cardano-Backend/internal/domain/model"

// networkSlugs maps supported chain identifiers to the indexing API's
// network slugs. A configured chain missing here is reported as unsupported
// at call time without affecting sibling chains.
var networkSlugs = map[model.ChainID]string{
	"ethereum:mainnet": "eth-mainnet",
	"ethereum:sepolia": "eth-sepolia",
	"ethereum:testnet": "eth-sepolia",
	"polygon:mainnet":  "polygon-mainnet",
	"polygon:mumbai":   "polygon-mumbai",
	"polygon:testnet":  "polygon-mumbai",
}

// NetworkSlug resolves the provider network slug for a chain identifier.
func NetworkSlug(id model.ChainID) (string, bool) {
	slug, ok := networkSlugs[id]
	return slug, ok
}
