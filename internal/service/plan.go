package service

import (
	"context"
	"sync"

	"cryptosignals/internal/model"
	"cryptosignals/internal/seed"
	"cryptosignals/internal/signal"
)

type PlanService interface {
	Plans(ctx context.Context) []model.Plan
	Plan(tier signal.Tier) (model.Plan, bool)
	Statistics(ctx context.Context) []model.PlanStatisticsRes
	StatisticsFor(tier signal.Tier) (model.PlanStatistics, bool)
	Performance(ctx context.Context) []model.MonthlyPerformance
	// UpdatePlanCoins 修改计划包含的币种，只影响之后创建的信号
	UpdatePlanCoins(ctx context.Context, req model.PlanCoinsReq) ([]model.Plan, error)
}

type planService struct {
	mu     sync.RWMutex
	plans  []model.Plan
	stats  map[signal.Tier]model.PlanStatistics
	perf   []model.MonthlyPerformance
	policy *signal.Policy
}

func NewPlanService(d *seed.Dataset, policy *signal.Policy) *planService {
	plans := make([]model.Plan, len(d.Plans))
	copy(plans, d.Plans)
	return &planService{
		plans:  plans,
		stats:  d.Statistics,
		perf:   d.Performance,
		policy: policy,
	}
}

func (p *planService) Plans(_ context.Context) []model.Plan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Plan, len(p.plans))
	for i, plan := range p.plans {
		plan.Coins = append([]string(nil), plan.Coins...)
		plan.Features = append([]string(nil), plan.Features...)
		out[i] = plan
	}
	return out
}

func (p *planService) Plan(tier signal.Tier) (model.Plan, bool) {
	for _, plan := range p.Plans(context.Background()) {
		if plan.ID == tier {
			return plan, true
		}
	}
	return model.Plan{}, false
}

func (p *planService) Statistics(_ context.Context) []model.PlanStatisticsRes {
	out := make([]model.PlanStatisticsRes, 0, len(signal.Tiers))
	for _, t := range signal.Tiers {
		if s, ok := p.stats[t]; ok {
			out = append(out, model.PlanStatisticsRes{Plan: t, PlanStatistics: s})
		}
	}
	return out
}

func (p *planService) StatisticsFor(tier signal.Tier) (model.PlanStatistics, bool) {
	s, ok := p.stats[tier]
	return s, ok
}

func (p *planService) Performance(_ context.Context) []model.MonthlyPerformance {
	return append([]model.MonthlyPerformance(nil), p.perf...)
}

func (p *planService) UpdatePlanCoins(ctx context.Context, req model.PlanCoinsReq) ([]model.Plan, error) {
	tier, err := signal.ParseTier(req.PlanID)
	if err != nil {
		return nil, err
	}
	if !tier.Valid() {
		return nil, &signal.ValidationError{Field: "plan_id", Reason: "is required"}
	}
	p.mu.Lock()
	if err := p.policy.Assign(tier, req.Coins); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	// 一个币种只属于一个计划，其他计划的列表也可能变化
	for i := range p.plans {
		p.plans[i].Coins = p.policy.Coins(p.plans[i].ID)
	}
	p.mu.Unlock()
	return p.Plans(ctx), nil
}
