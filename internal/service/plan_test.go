package service

import (
	"context"
	"testing"

	"cryptosignals/internal/model"
	"cryptosignals/internal/signal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanService_Listing(t *testing.T) {
	_, plans := newTestSignalService(t)
	ctx := context.Background()

	list := plans.Plans(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, signal.TierBasic, list[0].ID)
	assert.Equal(t, 49.0, list[0].Price)
	assert.True(t, list[1].Recommended)

	stats := plans.Statistics(ctx)
	require.Len(t, stats, 3)
	assert.Equal(t, signal.TierPremium, stats[2].Plan)
	assert.Equal(t, 84.0, stats[2].WinRate)

	assert.Len(t, plans.Performance(ctx), 6)
}

func TestPlanService_UpdatePlanCoins(t *testing.T) {
	svc, plans := newTestSignalService(t)
	ctx := context.Background()

	updated, err := plans.UpdatePlanCoins(ctx, model.PlanCoinsReq{PlanID: "pro", Coins: []string{"BNB/USDT", "SOL/USDT"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, updated[0].Coins)
	assert.Equal(t, []string{"BNB/USDT", "SOL/USDT"}, updated[1].Coins)

	// 已有信号保持原等级
	sol, ok := svc.store().Get("3")
	require.True(t, ok)
	assert.Equal(t, signal.TierBasic, sol.SubscriptionLevel)

	created, err := svc.Create(ctx, admin, model.SignalCreateReq{
		Coin: "SOL/USDT", Type: "buy", EntryPrice: 150, TargetPrice: 160, StopLoss: 140,
	})
	require.NoError(t, err)
	assert.Equal(t, signal.TierPro, created.SubscriptionLevel)

	_, err = plans.UpdatePlanCoins(ctx, model.PlanCoinsReq{PlanID: "gold", Coins: []string{"X"}})
	assert.ErrorIs(t, err, signal.ErrValidation)
}
