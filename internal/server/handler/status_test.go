package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/poolticker/internal/domain"
)

type staticState struct {
	snap domain.TrackerSnapshot
}

func (s staticState) Snapshot() domain.TrackerSnapshot { return s.snap }

func getStatus(t *testing.T, snap domain.TrackerSnapshot) map[string]any {
	t.Helper()
	rec := httptest.NewRecorder()
	NewStatusHandler(staticState{snap: snap}).GetStatus(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetStatusBeforeFirstFetch(t *testing.T) {
	body := getStatus(t, domain.TrackerSnapshot{Symbol: "ASTER", Trend: domain.TrendUp, RefreshInterval: 30 * time.Second})

	assert.Equal(t, "Crypto Bot is running", body["message"])
	assert.Equal(t, "ASTER", body["token"])
	v, present := body["price_php"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "⬈", body["trend"])
	assert.Equal(t, float64(30), body["interval_seconds"])
}

func TestGetStatusAfterFetch(t *testing.T) {
	body := getStatus(t, domain.TrackerSnapshot{
		Symbol:          "MYTOK",
		LastPrice:       decimal.NewNullDecimal(decimal.RequireFromString("12.3")),
		Trend:           domain.TrendDown,
		RefreshInterval: 10 * time.Second,
	})

	assert.Equal(t, "12.3000", body["price_php"])
	assert.Equal(t, "⬊", body["trend"])
	assert.Equal(t, float64(10), body["interval_seconds"])
}
