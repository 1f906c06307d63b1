// Package geckoterminal is a minimal REST client for the GeckoTerminal v2 API.
package geckoterminal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// Client reads pool attributes from GeckoTerminal.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a GeckoTerminal client.
//
// baseURL is the API root, e.g. "https://api.geckoterminal.com/api/v2".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetPool returns the raw attributes of a pool.
func (c *Client) GetPool(ctx context.Context, network, address string) (PoolAttributes, error) {
	path := fmt.Sprintf("/networks/%s/pools/%s", url.PathEscape(network), url.PathEscape(address))

	body, err := c.doGet(ctx, path)
	if err != nil {
		return PoolAttributes{}, fmt.Errorf("geckoterminal: get pool %s/%s: %w", network, address, err)
	}

	var resp PoolResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return PoolAttributes{}, fmt.Errorf("geckoterminal: decode pool: %w", err)
	}
	if resp.Data == nil || resp.Data.Attributes == nil {
		return PoolAttributes{}, fmt.Errorf("geckoterminal: %w: missing data.attributes", domain.ErrUnexpectedResponse)
	}

	return *resp.Data.Attributes, nil
}

// PoolPriceUSD returns the USD price of the requested side of the pool.
func (c *Client) PoolPriceUSD(ctx context.Context, pool domain.PoolRef) (decimal.Decimal, error) {
	attrs, err := c.GetPool(ctx, pool.Network, pool.Address)
	if err != nil {
		return decimal.Decimal{}, err
	}

	raw := attrs.BaseTokenPriceUSD
	if pool.Side == domain.SideQuote {
		raw = attrs.QuoteTokenPriceUSD
	}
	if raw == nil {
		return decimal.Decimal{}, fmt.Errorf("geckoterminal: %w: no %s_token_price_usd", domain.ErrUnexpectedResponse, pool.Side)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("geckoterminal: %w: %s_token_price_usd=%q", domain.ErrInvalidPrice, pool.Side, *raw)
	}
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("geckoterminal: %w: %s_token_price_usd=%s", domain.ErrInvalidPrice, pool.Side, price)
	}
	return price, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
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

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx responses to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	if len(bodyStr) > 256 {
		bodyStr = bodyStr[:256]
	}
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

// Compile-time interface check.
var _ domain.PoolPriceSource = (*Client)(nil)
