package geckoterminal

// PoolResponse is the envelope returned by GET /networks/{network}/pools/{address}.
// Only the fields the ticker reads are decoded.
type PoolResponse struct {
	Data *PoolData `json:"data"`
}

// PoolData is the JSON:API resource object for a pool.
type PoolData struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Attributes *PoolAttributes `json:"attributes"`
}

// PoolAttributes carries the per-token USD prices as decimal strings.
type PoolAttributes struct {
	Name               string  `json:"name"`
	Address            string  `json:"address"`
	BaseTokenPriceUSD  *string `json:"base_token_price_usd"`
	QuoteTokenPriceUSD *string `json:"quote_token_price_usd"`
}
