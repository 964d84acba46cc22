package signal

import (
	"strings"
	"sync"
)

// Tier 订阅等级，basic < pro < premium
type Tier string

const (
	TierNone    Tier = ""
	TierBasic   Tier = "basic"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
)

// Tiers lists the subscription tiers in ascending order.
var Tiers = []Tier{TierBasic, TierPro, TierPremium}

// Order returns the rank of t, or -1 for TierNone and unknown values.
func (t Tier) Order() int {
	switch t {
	case TierBasic:
		return 0
	case TierPro:
		return 1
	case TierPremium:
		return 2
	}
	return -1
}

func (t Tier) Valid() bool {
	return t.Order() >= 0
}

// ParseTier accepts the three tier names in any case. An empty string parses
// to TierNone.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t == TierNone || t.Valid() {
		return t, nil
	}
	return TierNone, &ValidationError{Field: "tier", Reason: "unknown tier " + s}
}

// CanView reports whether a subscriber on tier may see sig.
// A signal with an unrecognized level is treated as premium.
func CanView(tier Tier, sig Signal) bool {
	have := tier.Order()
	if have < 0 {
		return false
	}
	need := sig.SubscriptionLevel.Order()
	if need < 0 {
		need = TierPremium.Order()
	}
	return have >= need
}

// Policy 币种到订阅等级的映射。未配置的币种按 premium 处理。
type Policy struct {
	mu    sync.RWMutex
	plans map[Tier][]string
	index map[string]Tier
}

func NewPolicy(assignments map[Tier][]string) *Policy {
	p := &Policy{
		plans: make(map[Tier][]string),
		index: make(map[string]Tier),
	}
	for _, t := range Tiers {
		if coins, ok := assignments[t]; ok {
			p.assignLocked(t, coins)
		}
	}
	return p
}

func coinKey(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin))
}

// TierFor returns the tier a new signal on coin is published under.
func (p *Policy) TierFor(coin string) Tier {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if t, ok := p.index[coinKey(coin)]; ok {
		return t
	}
	return TierPremium
}

// Coins returns the coins assigned to tier in their configured order.
func (p *Policy) Coins(tier Tier) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.plans[tier]...)
}

// Assign replaces the coin list of tier. A coin listed here is removed from
// any other tier. Signals that already exist keep their level.
func (p *Policy) Assign(tier Tier, coins []string) error {
	if !tier.Valid() {
		return &ValidationError{Field: "tier", Reason: "unknown tier " + string(tier)}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assignLocked(tier, coins)
	return nil
}

func (p *Policy) assignLocked(tier Tier, coins []string) {
	list := make([]string, 0, len(coins))
	taken := make(map[string]struct{}, len(coins))
	for _, c := range coins {
		c = strings.TrimSpace(c)
		key := coinKey(c)
		if key == "" {
			continue
		}
		if _, dup := taken[key]; dup {
			continue
		}
		taken[key] = struct{}{}
		list = append(list, c)
	}

	for _, other := range Tiers {
		if other == tier {
			continue
		}
		kept := make([]string, 0, len(p.plans[other]))
		for _, c := range p.plans[other] {
			if _, moved := taken[coinKey(c)]; !moved {
				kept = append(kept, c)
			}
		}
		if _, ok := p.plans[other]; ok {
			p.plans[other] = kept
		}
	}
	p.plans[tier] = list

	p.index = make(map[string]Tier)
	for _, t := range Tiers {
		for _, c := range p.plans[t] {
			p.index[coinKey(c)] = t
		}
	}
}
