package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"lowcap-signals/internal/domain"
)

// Default configuration values.
const (
	DefaultEndpoint   = "https://api.dexscreener.com/latest/dex"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
	DefaultRetryDelay = 500 * time.Millisecond
)

// DexScreenerClient implements Fetcher against the DexScreener REST API.
type DexScreenerClient struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *log.Logger
}

// ClientOption configures DexScreenerClient.
type ClientOption func(*DexScreenerClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *DexScreenerClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *DexScreenerClient) {
		c.maxRetries = n
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *DexScreenerClient) {
		c.client = client
	}
}

// WithLogger sets the logger used for enrichment failures.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *DexScreenerClient) {
		c.logger = logger
	}
}

// NewDexScreenerClient creates a new DexScreener client.
func NewDexScreenerClient(endpoint string, opts ...ClientOption) *DexScreenerClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &DexScreenerClient{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     log.New(os.Stdout, "[market] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time interface check.
var _ Fetcher = (*DexScreenerClient)(nil)

// pairsResponse is the /tokens/{key} response envelope.
type pairsResponse struct {
	Pairs []pairData `json:"pairs"`
}

type pairData struct {
	BaseToken   baseToken   `json:"baseToken"`
	PriceUsd    string      `json:"priceUsd"`
	Liquidity   liquidity   `json:"liquidity"`
	Volume      volume      `json:"volume"`
	PriceChange priceChange `json:"priceChange"`
}

type baseToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type liquidity struct {
	USD float64 `json:"usd"`
}

type volume struct {
	H24 float64 `json:"h24"`
}

type priceChange struct {
	H24 float64 `json:"h24"`
}

// FetchSnapshot queries DexScreener for the candidate's token. Lookup is
// keyed by contract address when the message carried one, else by symbol.
// Only the first returned pair is used; its liquidity in USD stands in for
// market capitalization. Any failure is logged and yields the zero snapshot.
func (c *DexScreenerClient) FetchSnapshot(ctx context.Context, cand *domain.Candidate) domain.MarketSnapshot {
	key := cand.Address
	if key == "" {
		key = cand.Symbol
	}

	pair, err := c.fetchFirstPair(ctx, key)
	if err != nil {
		c.logger.Printf("enrichment failed for %s: %v", cand.Symbol, err)
		return domain.MarketSnapshot{}
	}

	snap := domain.MarketSnapshot{
		TokenName:      pair.BaseToken.Name,
		MarketCap:      pair.Liquidity.USD,
		Volume24h:      pair.Volume.H24,
		PriceChange24h: pair.PriceChange.H24,
		Available:      true,
	}

	// priceUsd comes over the wire as a string; an unparsable value is
	// treated as zero, not a failure.
	if pair.PriceUsd != "" {
		if px, err := strconv.ParseFloat(pair.PriceUsd, 64); err == nil {
			snap.Price = px
		}
	}

	return snap
}

// fetchFirstPair performs the HTTP lookup with bounded retries.
func (c *DexScreenerClient) fetchFirstPair(ctx context.Context, key string) (*pairData, error) {
	url := fmt.Sprintf("%s/tokens/%s", c.endpoint, key)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)
			continue
		}

		var payload pairsResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			lastErr = fmt.Errorf("decode response: %w", err)
			continue
		}

		if len(payload.Pairs) == 0 {
			// No trading pairs is treated identically to a network failure.
			return nil, fmt.Errorf("no pairs for token %s", key)
		}

		return &payload.Pairs[0], nil
	}

	return nil, lastErr
}
