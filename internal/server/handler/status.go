package handler

import (
	"net/http"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

// statusMessage is the fixed banner of the status body.
const statusMessage = "Crypto Bot is running"

// StateReader exposes a consistent copy of the tracker state.
type StateReader interface {
	Snapshot() domain.TrackerSnapshot
}

// StatusResponse is the body of GET /. PricePHP is null until the first
// successful fetch.
type StatusResponse struct {
	Message         string  `json:"message"`
	Token           string  `json:"token"`
	PricePHP        *string `json:"price_php"`
	Trend           string  `json:"trend"`
	IntervalSeconds int64   `json:"interval_seconds"`
}

// StatusHandler serves the tracker state for external polling.
type StatusHandler struct {
	state StateReader
}

// NewStatusHandler creates a StatusHandler over state.
func NewStatusHandler(state StateReader) *StatusHandler {
	return &StatusHandler{state: state}
}

// GetStatus responds with the symbol, last price, trend and interval.
// GET /
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.state.Snapshot()

	resp := StatusResponse{
		Message:         statusMessage,
		Token:           snap.Symbol,
		Trend:           snap.Trend.Glyph(),
		IntervalSeconds: int64(snap.RefreshInterval.Seconds()),
	}
	if snap.LastPrice.Valid {
		p := snap.LastPrice.Decimal.StringFixed(4)
		resp.PricePHP = &p
	}

	writeJSON(w, http.StatusOK, resp)
}
