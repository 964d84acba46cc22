package model

import "cryptosignals/internal/signal"

// 订阅者查询信号列表
type SignalListReq struct {
	Status string `form:"status" json:"status"` // all/open/closed/canceled，为空表示全部
	Search string `form:"search" json:"search"` // 币种关键字，忽略大小写
}

type SignalListRes struct {
	Signals   []signal.Signal `json:"signals"`
	Tier      signal.Tier     `json:"tier"`
	IsLoading bool            `json:"is_loading"`
}

type SignalCreateReq struct {
	Coin        string  `json:"coin" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=buy sell"`
	EntryPrice  float64 `json:"entry_price" binding:"required,gt=0"`
	TargetPrice float64 `json:"target_price" binding:"required,gt=0"`
	StopLoss    float64 `json:"stop_loss" binding:"required,gt=0"`
}

// ExitPrice 兼容数字和字符串两种写法
type SignalCloseReq struct {
	ID        string      `json:"id" binding:"required"`
	ExitPrice interface{} `json:"exit_price" binding:"required"`
}

// 只修改非空字段
type SignalEditReq struct {
	ID          string   `json:"id" binding:"required"`
	Coin        *string  `json:"coin"`
	Type        *string  `json:"type" binding:"omitempty,oneof=buy sell"`
	EntryPrice  *float64 `json:"entry_price" binding:"omitempty,gt=0"`
	TargetPrice *float64 `json:"target_price" binding:"omitempty,gt=0"`
	StopLoss    *float64 `json:"stop_loss" binding:"omitempty,gt=0"`
}

type SignalDeleteReq struct {
	ID string `json:"id" binding:"required"`
}

type CoinPerformance struct {
	Coin      string  `json:"coin"`
	Signals   int     `json:"signals"`
	AvgProfit float64 `json:"avg_profit"`
}

// 仪表盘统计，只统计当前用户可见的信号
type DashboardRes struct {
	Plan              signal.Tier       `json:"plan"`
	PlanName          string            `json:"plan_name"`
	Statistics        *PlanStatistics   `json:"statistics,omitempty"`
	TotalSignals      int               `json:"total_signals"`
	OpenSignals       int               `json:"open_signals"`
	ClosedSignals     int               `json:"closed_signals"`
	SuccessfulSignals int               `json:"successful_signals"`
	SuccessRate       int               `json:"success_rate"`
	BuySignals        int               `json:"buy_signals"`
	SellSignals       int               `json:"sell_signals"`
	CoinPerformance   []CoinPerformance `json:"coin_performance"`
	RecentOpen        []signal.Signal   `json:"recent_open"`
	RecentClosed      []signal.Signal   `json:"recent_closed"`
	IsLoading         bool              `json:"is_loading"`
}
