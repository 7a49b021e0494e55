package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/errsink"
	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
	"github.com/AdaSouls/Cardano-Backend/internal/provider"
)

// chainNotSupportedMessage tags chains the selected strategy cannot serve.
const chainNotSupportedMessage = "chain not supported"

// fanout dispatches one wallet's discovery across every configured chain
// concurrently, each chain batching its registered contract addresses into
// provider-sized slices. Failures never cross chain boundaries: a broken
// chain contributes an empty list while the others complete normally.
type fanout struct {
	chains     []model.ChainID
	contracts  contractLister
	maxPerCall int
	failures   errsink.Recorder
	logger     *slog.Logger
}

type contractLister interface {
	// ListAddresses returns the full supported-chain candidate list; every
	// chain batches the same candidates.
	ListAddresses(ctx context.Context) ([]string, error)
}

// fetchAll runs the per-chain fan-out and returns one entry per configured
// chain, in configuration order.
func (f *fanout) fetchAll(ctx context.Context, client provider.Client, address string) []model.ChainAssets {
	results := make([]model.ChainAssets, len(f.chains))

	var g errgroup.Group
	for i, chain := range f.chains {
		i, chain := i, chain
		g.Go(func() error {
			results[i] = f.fetchChain(ctx, client, address, chain)
			return nil
		})
	}
	g.Wait()

	return results
}

func (f *fanout) fetchChain(ctx context.Context, client provider.Client, address string, chain model.ChainID) model.ChainAssets {
	out := model.ChainAssets{ChainID: chain, NFTs: []model.OwnedNFT{}}

	if !client.Supports(chain) {
		f.logger.Info("chain not supported by strategy", "chain", chain, "method", client.Name())
		out.Message = chainNotSupportedMessage
		return out
	}

	start := time.Now()
	defer func() {
		metrics.FanoutChainDuration.WithLabelValues(chain.String()).Observe(time.Since(start).Seconds())
	}()

	contracts, err := f.contracts.ListAddresses(ctx)
	if err != nil {
		f.failures.RecordFailure(ctx, "wallet.fanout", fmt.Errorf("list contracts for %s: %w", chain, err))
		return out
	}

	slices := sliceContracts(contracts, f.maxPerCall)
	if len(slices) == 0 {
		return out
	}
	metrics.FanoutSlicesTotal.WithLabelValues(chain.String()).Add(float64(len(slices)))

	// Slices run concurrently but merge in slice order, so the result is
	// deterministic for a given registry state.
	pages := make([][]model.OwnedNFT, len(slices))
	errs := make([]error, len(slices))

	var g errgroup.Group
	for i, slice := range slices {
		i, slice := i, slice
		g.Go(func() error {
			pages[i], errs[i] = client.ListOwned(ctx, address, chain, slice)
			return nil
		})
	}
	g.Wait()

	for i := range slices {
		if errs[i] != nil {
			f.failures.RecordFailure(ctx, "wallet.fanout",
				fmt.Errorf("chain %s slice %d/%d: %w", chain, i+1, len(slices), errs[i]))
			continue
		}
		out.NFTs = append(out.NFTs, pages[i]...)
	}
	return out
}

// sliceContracts splits the candidate contract list into batches of at most
// size addresses, preserving order.
func sliceContracts(contracts []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var out [][]string
	for start := 0; start < len(contracts); start += size {
		end := min(start+size, len(contracts))
		out = append(out, contracts[start:end])
	}
	return out
}
