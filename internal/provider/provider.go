package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
)

// ErrUnsupportedChain marks a configured chain the strategy cannot serve.
// The fan-out converts it into a tagged empty contribution instead of a
// failure.
var ErrUnsupportedChain = errors.New("chain not supported")

// Client lists NFTs owned by an address on one chain. One call covers at
// most the provider's contract-count ceiling; slicing the candidate list is
// the caller's job.
type Client interface {
	// Name identifies the strategy for method selection ("alchemy").
	Name() string

	// Supports reports whether the strategy can serve the chain at all.
	// ListOwned on an unsupported chain returns ErrUnsupportedChain.
	Supports(chain model.ChainID) bool

	ListOwned(ctx context.Context, address string, chain model.ChainID, contracts []string) ([]model.OwnedNFT, error)
}

// Registry holds the wallet-content strategies by method name. Only one
// strategy ships today; the registry keeps a second provider a pure
// extension rather than a rewrite.
type Registry struct {
	clients map[string]Client
}

func NewRegistry(clients ...Client) *Registry {
	r := &Registry{clients: make(map[string]Client, len(clients))}
	for _, c := range clients {
		r.clients[c.Name()] = c
	}
	return r
}

// Get resolves a method name to its strategy.
func (r *Registry) Get(method string) (Client, error) {
	c, ok := r.clients[method]
	if !ok {
		return nil, fmt.Errorf("unknown wallet content method %q (have %v)", method, r.Methods())
	}
	return c, nil
}

// Methods lists the registered strategy names, sorted.
func (r *Registry) Methods() []string {
	out := make([]string, 0, len(r.clients))
	for name := range r.clients {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
