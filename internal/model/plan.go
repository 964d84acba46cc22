package model

import "cryptosignals/internal/signal"

// Plan 订阅计划
type Plan struct {
	ID          signal.Tier `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Price       float64     `json:"price" yaml:"price"` // 月费，美元
	Coins       []string    `json:"coins" yaml:"coins"`
	Features    []string    `json:"features" yaml:"features"`
	Recommended bool        `json:"recommended" yaml:"recommended"`
}

// PlanStatistics 计划的历史表现
type PlanStatistics struct {
	WinRate           float64 `json:"win_rate" yaml:"win_rate"`
	AvgReturn         float64 `json:"avg_return" yaml:"avg_return"`
	TotalSignals      int     `json:"total_signals" yaml:"total_signals"`
	SuccessfulSignals int     `json:"successful_signals" yaml:"successful_signals"`
	MonthlyCost       float64 `json:"monthly_cost" yaml:"monthly_cost"`
}

type MonthlyPerformance struct {
	Month   string  `json:"month" yaml:"month"`
	Basic   float64 `json:"basic" yaml:"basic"`
	Pro     float64 `json:"pro" yaml:"pro"`
	Premium float64 `json:"premium" yaml:"premium"`
}

type PlanStatisticsRes struct {
	Plan signal.Tier `json:"plan"`
	PlanStatistics
}

// 管理员修改计划包含的币种
type PlanCoinsReq struct {
	PlanID string   `json:"plan_id" binding:"required,oneof=basic pro premium"`
	Coins  []string `json:"coins" binding:"required,min=1,dive,required"`
}
