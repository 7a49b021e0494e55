package alchemy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/AdaSouls/Cardano-Backend/internal/circuitbreaker"
	"github.com/AdaSouls/Cardano-Backend/internal/domain/model"
	"github.com/AdaSouls/Cardano-Backend/internal/metrics"
	"github.com/AdaSouls/Cardano-Backend/internal/provider"
	"github.com/AdaSouls/Cardano-Backend/internal/provider/ratelimit"
)

const methodName = "alchemy"

// chainSettings is one chain's resolved endpoint and credential.
type chainSettings struct {
	baseURL string
	apiKey  string
}

// Client fetches NFT ownership from the hosted indexing API. Each call is
// rate limited and guarded by a per-chain circuit breaker so one degraded
// network cannot starve or poison the others.
type Client struct {
	settings   map[model.ChainID]chainSettings
	httpClient *http.Client
	limiters   map[model.ChainID]*ratelimit.Limiter
	breakers   map[model.ChainID]*circuitbreaker.Breaker
	logger     *slog.Logger
}

// Config carries the positional chain/endpoint/credential lists from the
// environment. Endpoints[i] and APIKeys[i] belong to Chains[i]; an empty
// endpoint falls back to the canonical host for the chain's network slug.
type Config struct {
	Chains      []model.ChainID
	Endpoints   []string
	APIKeys     []string
	CallTimeout time.Duration
	RPS         float64
	Burst       int
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	c := &Client{
		settings:   make(map[model.ChainID]chainSettings, len(cfg.Chains)),
		httpClient: &http.Client{Timeout: cfg.CallTimeout},
		limiters:   make(map[model.ChainID]*ratelimit.Limiter, len(cfg.Chains)),
		breakers:   make(map[model.ChainID]*circuitbreaker.Breaker, len(cfg.Chains)),
		logger:     logger.With("component", "alchemy-client"),
	}

	for i, chain := range cfg.Chains {
		slug, ok := NetworkSlug(chain)
		if !ok {
			// Left unmapped: ListOwned reports it as unsupported.
			continue
		}

		base := ""
		if i < len(cfg.Endpoints) {
			base = cfg.Endpoints[i]
		}
		if base == "" {
			base = fmt.Sprintf("https://%s.g.alchemy.com", slug)
		}

		apiKey := ""
		if i < len(cfg.APIKeys) {
			apiKey = cfg.APIKeys[i]
		}

		c.settings[chain] = chainSettings{baseURL: base, apiKey: apiKey}
		c.limiters[chain] = ratelimit.NewLimiter(cfg.RPS, cfg.Burst, chain.String())

		chain := chain
		c.breakers[chain] = circuitbreaker.New(circuitbreaker.Config{
			OnStateChange: func(from, to circuitbreaker.State) {
				c.logger.Warn("provider circuit state changed",
					"chain", chain, "from", from.String(), "to", to.String())
				open := 0.0
				if to == circuitbreaker.StateOpen {
					open = 1
				}
				metrics.ProviderCircuitOpen.WithLabelValues(chain.String()).Set(open)
			},
		})
	}

	return c
}

var _ provider.Client = (*Client)(nil)

func (c *Client) Name() string {
	return methodName
}

func (c *Client) Supports(chain model.ChainID) bool {
	_, ok := c.settings[chain]
	return ok
}

// ListOwned fetches the NFTs owned by address among the given contract
// addresses on one chain. The contract slice must already respect the
// provider's per-call ceiling.
func (c *Client) ListOwned(ctx context.Context, address string, chain model.ChainID, contracts []string) ([]model.OwnedNFT, error) {
	settings, ok := c.settings[chain]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrUnsupportedChain, chain)
	}

	if err := c.limiters[chain].Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	breaker := c.breakers[chain]
	if err := breaker.Allow(); err != nil {
		return nil, fmt.Errorf("chain %s: %w", chain, err)
	}

	start := time.Now()
	nfts, err := c.getNFTs(ctx, settings, address, contracts)
	metrics.ProviderCallDuration.WithLabelValues(chain.String()).Observe(time.Since(start).Seconds())
	metrics.ProviderCallsTotal.WithLabelValues(chain.String(), ratelimit.Classify(err)).Inc()

	if err != nil {
		breaker.RecordFailure()
		return nil, err
	}
	breaker.RecordSuccess()
	return nfts, nil
}

func (c *Client) getNFTs(ctx context.Context, settings chainSettings, address string, contracts []string) ([]model.OwnedNFT, error) {
	endpoint := fmt.Sprintf("%s/nft/v2/%s/getNFTs", settings.baseURL, settings.apiKey)

	q := url.Values{}
	q.Set("owner", address)
	q.Set("withMetadata", "false")
	for _, contract := range contracts {
		q.Add("contractAddresses[]", contract)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}

	var page ownedNFTsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	nfts := make([]model.OwnedNFT, 0, len(page.OwnedNFTs))
	for _, n := range page.OwnedNFTs {
		nfts = append(nfts, n.toModel())
	}
	return nfts, nil
}
