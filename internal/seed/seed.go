// Package seed 载入演示用的静态数据：信号、订阅计划、统计与 FAQ。
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cryptosignals/internal/model"
	"cryptosignals/internal/signal"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var builtin []byte

// Record 种子文件中的一条信号，时间以相对载入时刻的偏移表示
type Record struct {
	ID                string        `yaml:"id"`
	Coin              string        `yaml:"coin"`
	Type              string        `yaml:"type"`
	EntryPrice        float64       `yaml:"entry_price"`
	TargetPrice       float64       `yaml:"target_price"`
	StopLoss          float64       `yaml:"stop_loss"`
	OpenedAgo         time.Duration `yaml:"opened_ago"`
	Status            string        `yaml:"status"`
	ClosedPrice       float64       `yaml:"closed_price"`
	ClosedAgo         time.Duration `yaml:"closed_ago"`
	SubscriptionLevel string        `yaml:"subscription_level"`
}

type Dataset struct {
	Records     []Record                             `yaml:"signals"`
	Plans       []model.Plan                         `yaml:"plans"`
	Statistics  map[signal.Tier]model.PlanStatistics `yaml:"statistics"`
	Performance []model.MonthlyPerformance           `yaml:"performance"`
	FAQ         []model.FaqItem                      `yaml:"faq"`
}

// Load reads the dataset at path, or the built-in one when path is empty.
func Load(path string) (*Dataset, error) {
	data := builtin
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read seed file %s: %w", path, err)
		}
	}
	return Parse(data)
}

func Parse(data []byte) (*Dataset, error) {
	var d Dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal seed yaml: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// validate 一次性报告所有不合法的记录
func (d *Dataset) validate() error {
	var errs error
	seen := make(map[string]struct{}, len(d.Records))
	for i, r := range d.Records {
		if err := r.validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("signals[%d] (id %q): %w", i, r.ID, err))
		}
		if _, dup := seen[r.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("signals[%d]: duplicate id %q", i, r.ID))
		}
		seen[r.ID] = struct{}{}
	}
	for i, p := range d.Plans {
		if !p.ID.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("plans[%d]: unknown plan id %q", i, p.ID))
		}
		if p.Price <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("plans[%d]: price must be positive", i))
		}
	}
	for tier := range d.Statistics {
		if !tier.Valid() {
			errs = multierr.Append(errs, fmt.Errorf("statistics: unknown plan %q", tier))
		}
	}
	return errs
}

func (r Record) validate() error {
	var errs error
	if strings.TrimSpace(r.ID) == "" {
		errs = multierr.Append(errs, errors.New("id is required"))
	}
	if strings.TrimSpace(r.Coin) == "" {
		errs = multierr.Append(errs, errors.New("coin is required"))
	}
	if !signal.Type(r.Type).Valid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown type %q", r.Type))
	}
	if !signal.ValidPrice(r.EntryPrice) || !signal.ValidPrice(r.TargetPrice) || !signal.ValidPrice(r.StopLoss) {
		errs = multierr.Append(errs, errors.New("prices must be positive finite numbers"))
	}
	if !signal.Tier(r.SubscriptionLevel).Valid() {
		errs = multierr.Append(errs, fmt.Errorf("unknown subscription level %q", r.SubscriptionLevel))
	}
	switch signal.Status(r.Status) {
	case signal.StatusOpen, signal.StatusCanceled:
	case signal.StatusClosed:
		if !signal.ValidPrice(r.ClosedPrice) {
			errs = multierr.Append(errs, errors.New("closed signal needs a positive finite closed_price"))
		}
		if r.ClosedAgo > r.OpenedAgo {
			errs = multierr.Append(errs, errors.New("closed before it was opened"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown status %q", r.Status))
	}
	return errs
}

// Signals 把种子记录转换为信号，收益率按平仓价重新计算
func (d *Dataset) Signals(now time.Time) []signal.Signal {
	list := make([]signal.Signal, 0, len(d.Records))
	for _, r := range d.Records {
		sig := signal.Signal{
			ID:                r.ID,
			Coin:              strings.TrimSpace(r.Coin),
			Type:              signal.Type(r.Type),
			EntryPrice:        r.EntryPrice,
			TargetPrice:       r.TargetPrice,
			StopLoss:          r.StopLoss,
			Timestamp:         now.Add(-r.OpenedAgo),
			Status:            signal.Status(r.Status),
			SubscriptionLevel: signal.Tier(r.SubscriptionLevel),
		}
		if sig.Status == signal.StatusClosed {
			price := r.ClosedPrice
			profit := signal.ProfitPercent(sig.Type, sig.EntryPrice, price)
			closedAt := now.Add(-r.ClosedAgo)
			sig.ClosedPrice = &price
			sig.Profit = &profit
			sig.ClosedAt = &closedAt
		}
		list = append(list, sig)
	}
	return list
}

// Assignments returns the coin list of every plan, keyed by tier.
func (d *Dataset) Assignments() map[signal.Tier][]string {
	out := make(map[signal.Tier][]string, len(d.Plans))
	for _, p := range d.Plans {
		out[p.ID] = append([]string(nil), p.Coins...)
	}
	return out
}
