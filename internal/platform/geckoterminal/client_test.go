package geckoterminal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

const poolBody = `{
  "data": {
    "id": "bsc_0xabc",
    "type": "pool",
    "attributes": {
      "name": "ASTER / USDT",
      "address": "0xabc",
      "base_token_price_usd": "1.2345678",
      "quote_token_price_usd": "0.99990000"
    }
  }
}`

func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &gotPath
}

func TestPoolPriceUSDBaseAndQuote(t *testing.T) {
	srv, gotPath := newTestServer(t, http.StatusOK, poolBody)
	c := NewClient(srv.URL+"/", time.Second)

	base, err := c.PoolPriceUSD(context.Background(), domain.PoolRef{Network: "bsc", Address: "0xabc", Side: domain.SideBase})
	require.NoError(t, err)
	assert.Equal(t, "1.2345678", base.String())
	assert.Equal(t, "/networks/bsc/pools/0xabc", *gotPath)

	quote, err := c.PoolPriceUSD(context.Background(), domain.PoolRef{Network: "bsc", Address: "0xabc", Side: domain.SideQuote})
	require.NoError(t, err)
	assert.Equal(t, "0.9999", quote.String())
}

func TestPoolPriceUSDErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"errors":[{"status":"404"}]}`, domain.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, `slow down`, domain.ErrRateLimited},
		{"missing attributes", http.StatusOK, `{"data":{"id":"x"}}`, domain.ErrUnexpectedResponse},
		{"missing side", http.StatusOK, `{"data":{"attributes":{"quote_token_price_usd":"1"}}}`, domain.ErrUnexpectedResponse},
		{"not a number", http.StatusOK, `{"data":{"attributes":{"base_token_price_usd":"abc"}}}`, domain.ErrInvalidPrice},
		{"zero", http.StatusOK, `{"data":{"attributes":{"base_token_price_usd":"0.0"}}}`, domain.ErrInvalidPrice},
		{"negative", http.StatusOK, `{"data":{"attributes":{"base_token_price_usd":"-1.5"}}}`, domain.ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.status, tt.body)
			c := NewClient(srv.URL, time.Second)

			_, err := c.PoolPriceUSD(context.Background(), domain.PoolRef{Network: "bsc", Address: "0xabc", Side: domain.SideBase})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPoolPriceUSDMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, `{"data":`)
	c := NewClient(srv.URL, time.Second)

	_, err := c.PoolPriceUSD(context.Background(), domain.PoolRef{Network: "bsc", Address: "0xabc", Side: domain.SideBase})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode pool")
}
