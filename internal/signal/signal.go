package signal

import (
	"math"
	"time"
)

// Type 信号方向
type Type string

const (
	TypeBuy  Type = "buy"
	TypeSell Type = "sell"
)

func (t Type) Valid() bool {
	return t == TypeBuy || t == TypeSell
}

// Status 信号生命周期状态。canceled 预留，目前没有流程会进入该状态。
type Status string

const (
	StatusOpen     Status = "open"
	StatusClosed   Status = "closed"
	StatusCanceled Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusClosed, StatusCanceled:
		return true
	}
	return false
}

// Signal 一条交易建议。
//
// ClosedPrice、Profit、ClosedAt 三个字段当且仅当 Status 为 closed 时存在，
// Profit 由 Type、EntryPrice、ClosedPrice 推导，不能单独修改。
type Signal struct {
	ID                string     `json:"id"`
	Coin              string     `json:"coin"`
	Type              Type       `json:"type"`
	EntryPrice        float64    `json:"entry_price"`
	TargetPrice       float64    `json:"target_price"`
	StopLoss          float64    `json:"stop_loss"`
	Timestamp         time.Time  `json:"timestamp"`
	Status            Status     `json:"status"`
	ClosedPrice       *float64   `json:"closed_price,omitempty"`
	Profit            *float64   `json:"profit,omitempty"`
	ClosedAt          *time.Time `json:"closed_at,omitempty"`
	SubscriptionLevel Tier       `json:"subscription_level"`
}

// IsClosed reports whether the signal carries a realized result.
func (s Signal) IsClosed() bool {
	return s.Status == StatusClosed
}

// clone returns a copy that shares no pointers with s.
func (s Signal) clone() Signal {
	c := s
	if s.ClosedPrice != nil {
		v := *s.ClosedPrice
		c.ClosedPrice = &v
	}
	if s.Profit != nil {
		v := *s.Profit
		c.Profit = &v
	}
	if s.ClosedAt != nil {
		v := *s.ClosedAt
		c.ClosedAt = &v
	}
	return c
}

// ProfitPercent 计算平仓收益率（入场价的百分比，正数为盈利）。
// 买入信号价格上涨盈利，卖出信号价格下跌盈利。
func ProfitPercent(t Type, entryPrice, exitPrice float64) float64 {
	if t == TypeSell {
		return (entryPrice - exitPrice) / entryPrice * 100
	}
	return (exitPrice - entryPrice) / entryPrice * 100
}

// ValidPrice 价格必须是有限的正数
func ValidPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
