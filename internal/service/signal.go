package service

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"cryptosignals/internal/model"
	"cryptosignals/internal/session"
	"cryptosignals/internal/signal"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// 仪表盘里最近信号的条数
const recentLimit = 5

type SignalService interface {
	// 订阅者视图，按当前用户的等级过滤
	List(ctx context.Context, u session.User, req model.SignalListReq) (model.SignalListRes, error)
	Open(ctx context.Context, u session.User) model.SignalListRes
	Closed(ctx context.Context, u session.User) model.SignalListRes
	Dashboard(ctx context.Context, u session.User) model.DashboardRes

	// 管理员操作
	AdminList(ctx context.Context) model.SignalListRes
	Create(ctx context.Context, actor session.User, req model.SignalCreateReq) (signal.Signal, error)
	Close(ctx context.Context, actor session.User, req model.SignalCloseReq) (signal.Signal, error)
	Edit(ctx context.Context, actor session.User, req model.SignalEditReq) (signal.Signal, error)
	Delete(ctx context.Context, actor session.User, req model.SignalDeleteReq) error
}

type signalService struct {
	manager *signal.Manager
	plans   PlanService
}

func NewSignalService(manager *signal.Manager, plans PlanService) *signalService {
	return &signalService{manager: manager, plans: plans}
}

func (s *signalService) store() *signal.Store {
	return s.manager.Store()
}

func (s *signalService) List(_ context.Context, u session.User, req model.SignalListReq) (res model.SignalListRes, err error) {
	status, err := signal.ParseStatusFilter(req.Status)
	if err != nil {
		return res, err
	}
	tier := u.ViewTier()
	res.Tier = tier
	res.IsLoading = s.store().Loading()
	res.Signals = s.store().Query(signal.Query{Tier: tier, Status: status, Search: req.Search})
	return res, nil
}

func (s *signalService) Open(_ context.Context, u session.User) model.SignalListRes {
	return s.view(u, signal.StatusOpen)
}

func (s *signalService) Closed(_ context.Context, u session.User) model.SignalListRes {
	return s.view(u, signal.StatusClosed)
}

func (s *signalService) view(u session.User, status signal.Status) model.SignalListRes {
	tier := u.ViewTier()
	return model.SignalListRes{
		Tier:      tier,
		IsLoading: s.store().Loading(),
		Signals:   signal.SortForDisplay(s.store().FilterByTierAndStatus(tier, signal.StatusFilter(status))),
	}
}

func (s *signalService) Dashboard(_ context.Context, u session.User) model.DashboardRes {
	tier := u.ViewTier()
	visible := signal.SortForDisplay(s.store().FilterByTierAndStatus(tier, signal.StatusAll))

	res := model.DashboardRes{
		Plan:            tier,
		TotalSignals:    len(visible),
		IsLoading:       s.store().Loading(),
		CoinPerformance: []model.CoinPerformance{},
		RecentOpen:      []signal.Signal{},
		RecentClosed:    []signal.Signal{},
	}
	if plan, ok := s.plans.Plan(tier); ok {
		res.PlanName = plan.Name
	}
	if stats, ok := s.plans.StatisticsFor(tier); ok {
		res.Statistics = &stats
	}

	type agg struct {
		count int
		total decimal.Decimal
	}
	perCoin := make(map[string]*agg)
	var coins []string
	for _, sig := range visible {
		switch sig.Type {
		case signal.TypeBuy:
			res.BuySignals++
		case signal.TypeSell:
			res.SellSignals++
		}
		switch sig.Status {
		case signal.StatusOpen:
			res.OpenSignals++
			if len(res.RecentOpen) < recentLimit {
				res.RecentOpen = append(res.RecentOpen, sig)
			}
		case signal.StatusClosed:
			res.ClosedSignals++
			if len(res.RecentClosed) < recentLimit {
				res.RecentClosed = append(res.RecentClosed, sig)
			}
			profit := 0.0
			if sig.Profit != nil {
				profit = *sig.Profit
			}
			if profit > 0 {
				res.SuccessfulSignals++
			}
			a, ok := perCoin[sig.Coin]
			if !ok {
				a = &agg{}
				perCoin[sig.Coin] = a
				coins = append(coins, sig.Coin)
			}
			a.count++
			a.total = a.total.Add(decimal.NewFromFloat(profit))
		}
	}

	if res.ClosedSignals > 0 {
		res.SuccessRate = int(decimal.NewFromInt(int64(res.SuccessfulSignals)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(res.ClosedSignals))).
			Round(0).IntPart())
	}
	for _, coin := range coins {
		a := perCoin[coin]
		res.CoinPerformance = append(res.CoinPerformance, model.CoinPerformance{
			Coin:      coin,
			Signals:   a.count,
			AvgProfit: a.total.Div(decimal.NewFromInt(int64(a.count))).Round(2).InexactFloat64(),
		})
	}
	return res
}

func (s *signalService) AdminList(_ context.Context) model.SignalListRes {
	return model.SignalListRes{
		Tier:      signal.TierPremium,
		IsLoading: s.store().Loading(),
		Signals:   signal.SortForDisplay(s.store().All()),
	}
}

func (s *signalService) Create(ctx context.Context, actor session.User, req model.SignalCreateReq) (signal.Signal, error) {
	return s.manager.Create(signal.WithActor(ctx, actor.Email), signal.CreateInput{
		Coin:        req.Coin,
		Type:        signal.Type(strings.ToLower(req.Type)),
		EntryPrice:  req.EntryPrice,
		TargetPrice: req.TargetPrice,
		StopLoss:    req.StopLoss,
	})
}

func (s *signalService) Close(ctx context.Context, actor session.User, req model.SignalCloseReq) (signal.Signal, error) {
	return s.manager.Close(signal.WithActor(ctx, actor.Email), req.ID, parseExitPrice(req.ExitPrice))
}

// parseExitPrice 只接受 JSON 数字和数字字符串。其他输入返回 NaN，
// 由 Manager 在确认信号存在之后统一按无效价格处理。
func parseExitPrice(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := cast.ToFloat64E(strings.TrimSpace(x)); err == nil {
			return f
		}
	}
	return math.NaN()
}

func (s *signalService) Edit(ctx context.Context, actor session.User, req model.SignalEditReq) (signal.Signal, error) {
	in := signal.EditInput{
		Coin:        req.Coin,
		EntryPrice:  req.EntryPrice,
		TargetPrice: req.TargetPrice,
		StopLoss:    req.StopLoss,
	}
	if req.Type != nil {
		t := signal.Type(strings.ToLower(*req.Type))
		in.Type = &t
	}
	return s.manager.Edit(signal.WithActor(ctx, actor.Email), req.ID, in)
}

func (s *signalService) Delete(ctx context.Context, actor session.User, req model.SignalDeleteReq) error {
	return s.manager.Delete(signal.WithActor(ctx, actor.Email), req.ID)
}
