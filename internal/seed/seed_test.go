package seed

import (
	"testing"
	"time"

	"cryptosignals/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadBuiltin(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)

	assert.Len(t, d.Records, 10)
	assert.Len(t, d.Plans, 3)
	assert.Len(t, d.Statistics, 3)
	assert.Len(t, d.Performance, 6)
	assert.NotEmpty(t, d.FAQ)

	assignments := d.Assignments()
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}, assignments[signal.TierBasic])
	assert.True(t, d.Plans[1].Recommended)
}

func TestSignals(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	list := d.Signals(now)
	require.Len(t, list, 10)

	byID := make(map[string]signal.Signal, len(list))
	for _, s := range list {
		byID[s.ID] = s
	}

	btc := byID["1"]
	assert.Equal(t, signal.StatusOpen, btc.Status)
	assert.Equal(t, now.Add(-48*time.Hour), btc.Timestamp)
	assert.Nil(t, btc.Profit)

	eth := byID["2"]
	require.NotNil(t, eth.Profit)
	assert.InDelta(t, 10.0, *eth.Profit, 1e-9)
	assert.Equal(t, now.Add(-30*time.Hour), *eth.ClosedAt)

	ada := byID["6"]
	require.NotNil(t, ada.Profit)
	assert.InDelta(t, 8.333, *ada.Profit, 0.001)

	xrp := byID["4"]
	assert.Less(t, *xrp.Profit, 0.0)

	store := signal.NewStore(list...)
	assert.Len(t, store.Open(), 5)
	assert.Len(t, store.Closed(), 5)
	for _, s := range store.FilterByTierAndStatus(signal.TierBasic, signal.StatusAll) {
		assert.Equal(t, signal.TierBasic, s.SubscriptionLevel)
	}
}

func TestParse_ReportsEveryBadRecord(t *testing.T) {
	data := []byte(`
signals:
  - id: "1"
    coin: BTC/USDT
    type: hold
    entry_price: 1
    target_price: 2
    stop_loss: 0.5
    status: open
    subscription_level: basic
  - id: "1"
    coin: ""
    type: buy
    entry_price: 0
    target_price: 2
    stop_loss: 0.5
    status: closed
    subscription_level: gold
plans:
  - id: vip
    name: VIP
    price: 0
`)
	_, err := Parse(data)
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.GreaterOrEqual(t, len(errs), 5)
	assert.Contains(t, err.Error(), `unknown type "hold"`)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "closed_price")
	assert.Contains(t, err.Error(), `unknown plan id "vip"`)
}

func TestParse_RejectsNonFinitePrices(t *testing.T) {
	data := []byte(`
signals:
  - id: "1"
    coin: BTC/USDT
    type: buy
    entry_price: .nan
    target_price: 2
    stop_loss: 0.5
    status: open
    subscription_level: basic
  - id: "2"
    coin: ETH/USDT
    type: sell
    entry_price: 10
    target_price: 8
    stop_loss: 11
    opened_ago: 2h
    status: closed
    closed_price: .inf
    closed_ago: 1h
    subscription_level: basic
`)
	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prices must be positive finite numbers")
	assert.Contains(t, err.Error(), "positive finite closed_price")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/seed.yaml")
	assert.Error(t, err)
}
