package discord

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/poolticker/internal/domain"
	"github.com/alanyoungcy/poolticker/internal/service"
)

type recordingFetcher struct {
	state *service.TrackerState
	pools []domain.PoolRef
}

func (f *recordingFetcher) FetchAndApply(context.Context) (domain.Tick, error) {
	f.pools = append(f.pools, f.state.Pool())
	return domain.Tick{}, nil
}

type recordingScheduler struct {
	starts []time.Duration
}

func (s *recordingScheduler) Start(d time.Duration) { s.starts = append(s.starts, d) }

type recordingAlerter struct{ events []string }

func (a *recordingAlerter) Notify(_ context.Context, event, _, _ string) error {
	a.events = append(a.events, event)
	return nil
}

func newCommands(t *testing.T) (*Commands, *service.TrackerState, *recordingFetcher, *recordingScheduler) {
	t.Helper()
	state := service.NewTrackerState(domain.PoolRef{Network: "bsc", Address: "0xaead", Side: domain.SideBase}, "ASTER", 30*time.Second)
	fetcher := &recordingFetcher{state: state}
	sched := &recordingScheduler{}
	return NewCommands(state, fetcher, sched, discardLogger()), state, fetcher, sched
}

func handle(c *Commands, content string) (string, bool) {
	return c.Handle(context.Background(), Message{Content: content})
}

func TestPriceBeforeAndAfterFetch(t *testing.T) {
	c, state, _, _ := newCommands(t)

	reply, ok := handle(c, "!price")
	require.True(t, ok)
	assert.Equal(t, ReplyPriceUnavailable, reply)

	state.SetLastPrice(decimal.RequireFromString("12.3456"))
	reply, ok = handle(c, "  !PRICE  ")
	require.True(t, ok)
	assert.Equal(t, "ASTER Price: ₱12.3456 ⬈", reply)
	assert.Contains(t, reply, "₱12.3456")
}

func TestTrend(t *testing.T) {
	c, state, _, _ := newCommands(t)

	reply, _ := handle(c, "!trend")
	assert.Equal(t, "Current trend: ⬈", reply)

	state.SetLastPrice(decimal.NewFromInt(2))
	state.ObservePrice(decimal.NewFromInt(1))
	reply, _ = handle(c, "!trend")
	assert.Equal(t, "Current trend: ⬊", reply)
}

func TestSetPool(t *testing.T) {
	c, state, fetcher, _ := newCommands(t)
	alerts := &recordingAlerter{}
	c.WithAlerter(alerts)

	reply, ok := handle(c, "!setpool bsc 0xabc quote mytok")
	require.True(t, ok)
	assert.Equal(t, "Now tracking MYTOK (QUOTE)", reply)

	snap := state.Snapshot()
	assert.Equal(t, domain.PoolRef{Network: "bsc", Address: "0xabc", Side: domain.SideQuote}, snap.Pool)
	assert.Equal(t, "MYTOK", snap.Symbol)
	require.Len(t, fetcher.pools, 1)
	assert.Equal(t, domain.SideQuote, fetcher.pools[0].Side)
	assert.Equal(t, []string{domain.EventPoolChanged}, alerts.events)
}

func TestSetPoolSideDefaultsToBase(t *testing.T) {
	c, state, _, _ := newCommands(t)

	reply, _ := handle(c, "!setpool\teth   0xdef   QUOTES  weth")
	assert.Equal(t, "Now tracking WETH (BASE)", reply)
	assert.Equal(t, domain.SideBase, state.Pool().Side)

	reply, _ = handle(c, "!setpool eth 0xdef QuOtE weth")
	assert.Equal(t, "Now tracking WETH (QUOTE)", reply)
}

func TestSetPoolUsage(t *testing.T) {
	c, state, fetcher, _ := newCommands(t)

	reply, ok := handle(c, "!setpool bsc 0xabc quote")
	require.True(t, ok)
	assert.Equal(t, ReplySetPoolUsage, reply)
	assert.Equal(t, "0xaead", state.Pool().Address)
	assert.Equal(t, "ASTER", state.Symbol())
	assert.Empty(t, fetcher.pools)
}

func TestSetInterval(t *testing.T) {
	tests := []struct {
		content   string
		reply     string
		wantStart []time.Duration
		interval  time.Duration
	}{
		{"!setinterval", ReplySetIntervalUsage, nil, 30 * time.Second},
		{"!setinterval ten", ReplySetIntervalUsage, nil, 30 * time.Second},
		{"!setinterval 3", ReplyIntervalTooShort, nil, 30 * time.Second},
		{"!setinterval -10", ReplyIntervalTooShort, nil, 30 * time.Second},
		{"!setinterval 99999999999", ReplySetIntervalUsage, nil, 30 * time.Second},
		{"!setinterval 5", "Refresh interval set to 5 seconds.", []time.Duration{5 * time.Second}, 5 * time.Second},
		{"!setinterval 10", "Refresh interval set to 10 seconds.", []time.Duration{10 * time.Second}, 10 * time.Second},
		{"!setinterval 10.5", "Refresh interval set to 10 seconds.", []time.Duration{10 * time.Second}, 10 * time.Second},
		{"!setinterval 4.9", ReplyIntervalTooShort, nil, 30 * time.Second},
		{"!setinterval 1e1", "Refresh interval set to 10 seconds.", []time.Duration{10 * time.Second}, 10 * time.Second},
		{"!setinterval 10s", ReplySetIntervalUsage, nil, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			c, state, _, sched := newCommands(t)

			reply, ok := handle(c, tt.content)
			require.True(t, ok)
			assert.Equal(t, tt.reply, reply)
			assert.Equal(t, tt.wantStart, sched.starts)
			assert.Equal(t, tt.interval, state.RefreshInterval())
		})
	}
}

func TestHelp(t *testing.T) {
	c, _, _, _ := newCommands(t)

	reply, ok := handle(c, "!help")
	require.True(t, ok)
	assert.Contains(t, reply, "**Commands:**")
	assert.Contains(t, reply, "!setinterval <seconds>")
}

func TestIgnoredMessages(t *testing.T) {
	c, _, fetcher, sched := newCommands(t)

	for _, content := range []string{"", "   ", "hello", "!unknown", "price", "!pricey"} {
		_, ok := handle(c, content)
		assert.Falsef(t, ok, "content %q", content)
	}

	_, ok := c.Handle(context.Background(), Message{AuthorIsBot: true, Content: "!setinterval 10"})
	assert.False(t, ok)
	assert.Empty(t, sched.starts)
	assert.Empty(t, fetcher.pools)
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"30", 30, true},
		{"10.9", 10, true},
		{"-7.5", -7, true},
		{"1e-40", 0, true},
		{"2147483647", 2147483647, true},
		{"2147483648", 0, false},
		{"1e12", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"123456789012345678901234567890123", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseSeconds(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
