// Package exchangerate reads USD conversion rates from an
// exchangerate-api.com compatible endpoint.
package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// DefaultCurrency is the display currency the ticker converts into.
const DefaultCurrency = "PHP"

// LatestResponse is the body of GET /latest/{base}.
type LatestResponse struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Client fetches the latest USD rates.
type Client struct {
	baseURL    string
	currency   string
	httpClient *http.Client
}

// NewClient creates a rate client converting USD into currency. An empty
// currency selects DefaultCurrency.
func NewClient(baseURL, currency string, timeout time.Duration) *Client {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		currency:   strings.ToUpper(currency),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Latest returns every rate quoted against USD.
func (c *Client) Latest(ctx context.Context) (LatestResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest/USD", nil)
	if err != nil {
		return LatestResponse{}, fmt.Errorf("exchangerate: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LatestResponse{}, fmt.Errorf("exchangerate: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return LatestResponse{}, fmt.Errorf("exchangerate: %w: %s", domain.ErrRateLimited, string(respBody))
		case http.StatusNotFound:
			return LatestResponse{}, fmt.Errorf("exchangerate: %w: %s", domain.ErrNotFound, string(respBody))
		default:
			return LatestResponse{}, fmt.Errorf("exchangerate: unexpected status %d: %s", resp.StatusCode, string(respBody))
		}
	}

	var out LatestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return LatestResponse{}, fmt.Errorf("exchangerate: decode: %w", err)
	}
	return out, nil
}

// USDRate returns the USD to display-currency rate.
func (c *Client) USDRate(ctx context.Context) (decimal.Decimal, error) {
	latest, err := c.Latest(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	rate, ok := latest.Rates[c.currency]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("exchangerate: %w: rates.%s", domain.ErrMissingRate, c.currency)
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("exchangerate: %w: rates.%s=%s", domain.ErrInvalidPrice, c.currency, rate)
	}
	return rate, nil
}

// Compile-time interface check.
var _ domain.RateSource = (*Client)(nil)
