package signal

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// StatusFilter 按状态过滤，StatusAll 表示不过滤
type StatusFilter string

const StatusAll StatusFilter = "all"

// ParseStatusFilter maps "", "all", "open", "closed" and "canceled" to a
// filter. Anything else is a ValidationError.
func ParseStatusFilter(s string) (StatusFilter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" || v == string(StatusAll) {
		return StatusAll, nil
	}
	if !Status(v).Valid() {
		return "", &ValidationError{Field: "status", Reason: "unknown status " + s}
	}
	return StatusFilter(v), nil
}

func (f StatusFilter) match(s Status) bool {
	return f == "" || f == StatusAll || Status(f) == s
}

// Query 订阅者的一次列表查询：等级过滤 -> 状态过滤 -> 币种搜索 -> 排序
type Query struct {
	Tier   Tier
	Status StatusFilter
	Search string
}

// Store 会话内唯一的信号集合。
// 对外只提供只读视图，写操作只能通过 Manager 进行。
type Store struct {
	mu      sync.RWMutex
	order   []string
	byID    map[string]*Signal
	loading bool
}

func NewStore(seed ...Signal) *Store {
	s := &Store{byID: make(map[string]*Signal)}
	s.load(seed)
	return s
}

func (s *Store) load(seed []Signal) {
	s.order = s.order[:0]
	s.byID = make(map[string]*Signal, len(seed))
	for _, sig := range seed {
		if _, dup := s.byID[sig.ID]; dup {
			continue
		}
		c := sig.clone()
		s.byID[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
}

// LoadAsync replaces the store content with seed after delay. Until then
// Loading reports true. The returned channel is closed once the seed is in
// place or ctx is done.
func (s *Store) LoadAsync(ctx context.Context, delay time.Duration, seed []Signal) <-chan struct{} {
	done := make(chan struct{})
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	go func() {
		defer close(done)
		if delay > 0 {
			t := time.NewTimer(delay)
			defer t.Stop()
			select {
			case <-ctx.Done():
				s.mu.Lock()
				s.loading = false
				s.mu.Unlock()
				return
			case <-t.C:
			}
		}
		s.mu.Lock()
		s.load(seed)
		s.loading = false
		s.mu.Unlock()
	}()
	return done
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// All returns every signal in stable insertion order.
func (s *Store) All() []Signal {
	return s.collect(func(Signal) bool { return true })
}

// Open returns open signals, newest first by Timestamp.
func (s *Store) Open() []Signal {
	list := s.collect(func(sig Signal) bool { return sig.Status == StatusOpen })
	sortByOpened(list)
	return list
}

// Closed returns closed signals, newest first by ClosedAt.
func (s *Store) Closed() []Signal {
	list := s.collect(func(sig Signal) bool { return sig.Status == StatusClosed })
	sortByClosed(list)
	return list
}

func (s *Store) Get(id string) (Signal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.byID[id]
	if !ok {
		return Signal{}, false
	}
	return sig.clone(), true
}

// FilterByTierAndStatus returns the signals tier can view whose status
// matches status, in insertion order.
func (s *Store) FilterByTierAndStatus(tier Tier, status StatusFilter) []Signal {
	return s.collect(func(sig Signal) bool {
		return CanView(tier, sig) && status.match(sig.Status)
	})
}

// Query runs the subscriber list pipeline and sorts the result for display.
func (s *Store) Query(q Query) []Signal {
	return SortForDisplay(Search(s.FilterByTierAndStatus(q.Tier, q.Status), q.Search))
}

func (s *Store) collect(keep func(Signal) bool) []Signal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Signal, 0, len(s.order))
	for _, id := range s.order {
		sig := s.byID[id]
		if keep(*sig) {
			list = append(list, sig.clone())
		}
	}
	return list
}

// Search keeps the signals whose coin contains term, ignoring case.
// An empty term returns signals unchanged.
func Search(signals []Signal, term string) []Signal {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return signals
	}
	out := make([]Signal, 0, len(signals))
	for _, sig := range signals {
		if strings.Contains(strings.ToLower(sig.Coin), term) {
			out = append(out, sig)
		}
	}
	return out
}

// SortForDisplay puts not-yet-closed signals first, newest first by
// Timestamp, followed by closed signals newest first by ClosedAt.
func SortForDisplay(signals []Signal) []Signal {
	var pending, closed []Signal
	for _, sig := range signals {
		if sig.Status == StatusClosed {
			closed = append(closed, sig)
		} else {
			pending = append(pending, sig)
		}
	}
	sortByOpened(pending)
	sortByClosed(closed)
	return append(pending, closed...)
}

func sortByOpened(list []Signal) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.After(list[j].Timestamp)
	})
}

func sortByClosed(list []Signal) {
	sort.SliceStable(list, func(i, j int) bool {
		return closedTime(list[i]).After(closedTime(list[j]))
	})
}

func closedTime(sig Signal) time.Time {
	if sig.ClosedAt != nil {
		return *sig.ClosedAt
	}
	return sig.Timestamp
}

// mutations, used by Manager only

func (s *Store) insertLocked(sig Signal) {
	c := sig.clone()
	s.byID[c.ID] = &c
	s.order = append(s.order, c.ID)
}

func (s *Store) removeLocked(id string) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// replaceLocked swaps the record at oldID for sig, keeping its position.
func (s *Store) replaceLocked(oldID string, sig Signal) {
	c := sig.clone()
	delete(s.byID, oldID)
	s.byID[c.ID] = &c
	for i, v := range s.order {
		if v == oldID {
			s.order[i] = c.ID
			return
		}
	}
	s.order = append(s.order, c.ID)
}
