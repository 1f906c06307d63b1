package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side selects which token of a pool is priced.
type Side string

const (
	SideBase  Side = "base"
	SideQuote Side = "quote"
)

// ParseSide maps user input to a Side. Anything other than "quote"
// (case-insensitive) is treated as base.
func ParseSide(s string) Side {
	if strings.EqualFold(s, string(SideQuote)) {
		return SideQuote
	}
	return SideBase
}

// Trend is the two-state price direction. There is no flat state.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Glyph returns the arrow shown in nicknames, replies and the status route.
func (t Trend) Glyph() string {
	if t == TrendDown {
		return "⬊"
	}
	return "⬈"
}

// NextTrend returns the trend after observing next against prev. Equal
// prices keep the current trend.
func NextTrend(current Trend, prev, next decimal.Decimal) Trend {
	switch next.Cmp(prev) {
	case 1:
		return TrendUp
	case -1:
		return TrendDown
	default:
		return current
	}
}

// CurrencySign prefixes every converted price.
const CurrencySign = "₱"

// FormatPrice renders a converted price with the currency sign and four
// decimal places.
func FormatPrice(p decimal.Decimal) string {
	return CurrencySign + p.StringFixed(4)
}

// PoolRef identifies the pool and side being tracked.
type PoolRef struct {
	Network string
	Address string
	Side    Side
}

// Tick is the result of one successful fetch cycle.
type Tick struct {
	CycleID   string
	Symbol    string
	Pool      PoolRef
	PriceUSD  decimal.Decimal
	Rate      decimal.Decimal
	Price     decimal.Decimal
	Trend     Trend
	Changed   bool
	FetchedAt time.Time
}

// TrackerSnapshot is a consistent copy of the tracker state for readers.
type TrackerSnapshot struct {
	Pool            PoolRef
	Symbol          string
	LastPrice       decimal.NullDecimal
	Trend           Trend
	RefreshInterval time.Duration
}
