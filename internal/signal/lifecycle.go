package signal

import (
	"context"
	"strings"
	"time"

	"cryptosignals/utils/uuid"
)

// ChangeKind 生命周期事件类型
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeClosed  ChangeKind = "closed"
	ChangeEdited  ChangeKind = "edited"
	ChangeDeleted ChangeKind = "deleted"
)

// Change 描述一次成功的写操作。Edited 时 Previous 为被替换的旧记录，
// Deleted 时 Signal 为被删除的记录。
type Change struct {
	Kind     ChangeKind
	Signal   Signal
	Previous *Signal
	Actor    string
	At       time.Time
}

// Observer 接收写操作通知，在锁外同步调用
type Observer interface {
	Observe(ctx context.Context, c Change)
}

type actorKey struct{}

// WithActor 记录发起操作的管理员，用于审计
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFrom(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)
	return v
}

type CreateInput struct {
	Coin        string
	Type        Type
	EntryPrice  float64
	TargetPrice float64
	StopLoss    float64
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.Coin) == "" {
		return &ValidationError{Field: "coin", Reason: "is required"}
	}
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "must be buy or sell"}
	}
	if !ValidPrice(in.EntryPrice) {
		return &ValidationError{Field: "entry_price", Reason: "must be a positive number"}
	}
	if !ValidPrice(in.TargetPrice) {
		return &ValidationError{Field: "target_price", Reason: "must be a positive number"}
	}
	if !ValidPrice(in.StopLoss) {
		return &ValidationError{Field: "stop_loss", Reason: "must be a positive number"}
	}
	return nil
}

// EditInput 只覆盖非 nil 的字段
type EditInput struct {
	Coin        *string
	Type        *Type
	EntryPrice  *float64
	TargetPrice *float64
	StopLoss    *float64
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(next func() string) Option {
	return func(m *Manager) { m.nextID = next }
}

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

// Manager 唯一允许修改信号状态的组件
type Manager struct {
	store     *Store
	policy    *Policy
	now       func() time.Time
	nextID    func() string
	observers []Observer
}

func NewManager(store *Store, policy *Policy, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
		nextID: uuid.NewNode(1).GenSnowString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Store() *Store {
	return m.store
}

func (m *Manager) Policy() *Policy {
	return m.policy
}

// Create 新建一个 open 状态的信号，订阅等级由币种决定。
// 种子数据载入期间所有写操作返回 ErrLoading。
func (m *Manager) Create(ctx context.Context, in CreateInput) (Signal, error) {
	if err := in.validate(); err != nil {
		return Signal{}, err
	}
	coin := strings.TrimSpace(in.Coin)
	sig := Signal{
		ID:                m.nextID(),
		Coin:              coin,
		Type:              in.Type,
		EntryPrice:        in.EntryPrice,
		TargetPrice:       in.TargetPrice,
		StopLoss:          in.StopLoss,
		Timestamp:         m.now(),
		Status:            StatusOpen,
		SubscriptionLevel: m.policy.TierFor(coin),
	}

	m.store.mu.Lock()
	if m.store.loading {
		m.store.mu.Unlock()
		return Signal{}, ErrLoading
	}
	m.store.insertLocked(sig)
	m.store.mu.Unlock()

	m.notify(ctx, Change{Kind: ChangeCreated, Signal: sig})
	return sig, nil
}

// Close 以 exitPrice 平仓并计算收益率。只有 open 状态的信号可以平仓。
func (m *Manager) Close(ctx context.Context, id string, exitPrice float64) (Signal, error) {
	m.store.mu.Lock()
	if m.store.loading {
		m.store.mu.Unlock()
		return Signal{}, ErrLoading
	}
	cur, ok := m.store.byID[id]
	if !ok || cur.Status != StatusOpen {
		m.store.mu.Unlock()
		return Signal{}, &NotFoundError{ID: id}
	}
	if !ValidPrice(exitPrice) {
		m.store.mu.Unlock()
		return Signal{}, &ValidationError{Field: "exit_price", Reason: "must be a positive number"}
	}
	closedAt := m.now()
	profit := ProfitPercent(cur.Type, cur.EntryPrice, exitPrice)
	price := exitPrice

	cur.Status = StatusClosed
	cur.ClosedPrice = &price
	cur.Profit = &profit
	cur.ClosedAt = &closedAt
	sig := cur.clone()
	m.store.mu.Unlock()

	m.notify(ctx, Change{Kind: ChangeClosed, Signal: sig})
	return sig, nil
}

// Edit 删除旧记录并以合并后的字段重新创建，新记录获得新的 id，
// 保留原始的创建时间。只有 open 状态的信号可以编辑。
func (m *Manager) Edit(ctx context.Context, id string, in EditInput) (Signal, error) {
	m.store.mu.Lock()
	if m.store.loading {
		m.store.mu.Unlock()
		return Signal{}, ErrLoading
	}
	cur, ok := m.store.byID[id]
	if !ok {
		m.store.mu.Unlock()
		return Signal{}, &NotFoundError{ID: id}
	}
	if cur.Status != StatusOpen {
		m.store.mu.Unlock()
		return Signal{}, &ValidationError{Field: "status", Reason: "only open signals can be edited"}
	}
	prev := cur.clone()

	merged := CreateInput{
		Coin:        prev.Coin,
		Type:        prev.Type,
		EntryPrice:  prev.EntryPrice,
		TargetPrice: prev.TargetPrice,
		StopLoss:    prev.StopLoss,
	}
	if in.Coin != nil {
		merged.Coin = *in.Coin
	}
	if in.Type != nil {
		merged.Type = *in.Type
	}
	if in.EntryPrice != nil {
		merged.EntryPrice = *in.EntryPrice
	}
	if in.TargetPrice != nil {
		merged.TargetPrice = *in.TargetPrice
	}
	if in.StopLoss != nil {
		merged.StopLoss = *in.StopLoss
	}
	if err := merged.validate(); err != nil {
		m.store.mu.Unlock()
		return Signal{}, err
	}

	coin := strings.TrimSpace(merged.Coin)
	level := prev.SubscriptionLevel
	if coinKey(coin) != coinKey(prev.Coin) {
		level = m.policy.TierFor(coin)
	}
	sig := Signal{
		ID:                m.nextID(),
		Coin:              coin,
		Type:              merged.Type,
		EntryPrice:        merged.EntryPrice,
		TargetPrice:       merged.TargetPrice,
		StopLoss:          merged.StopLoss,
		Timestamp:         prev.Timestamp,
		Status:            StatusOpen,
		SubscriptionLevel: level,
	}
	m.store.replaceLocked(id, sig)
	m.store.mu.Unlock()

	m.notify(ctx, Change{Kind: ChangeEdited, Signal: sig, Previous: &prev})
	return sig, nil
}

// Delete 删除信号，不存在时返回 NotFoundError
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.store.mu.Lock()
	if m.store.loading {
		m.store.mu.Unlock()
		return ErrLoading
	}
	cur, ok := m.store.byID[id]
	if !ok {
		m.store.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	prev := cur.clone()
	m.store.removeLocked(id)
	m.store.mu.Unlock()

	m.notify(ctx, Change{Kind: ChangeDeleted, Signal: prev})
	return nil
}

func (m *Manager) notify(ctx context.Context, c Change) {
	c.Actor = actorFrom(ctx)
	c.At = m.now()
	for _, o := range m.observers {
		o.Observe(ctx, c)
	}
}
