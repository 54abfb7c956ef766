package storage

import (
	"context"
	"sync"

	"github.com/claude/liftlog/internal/metrics"
)

// Change is delivered to subscribers after a committed write.
type Change struct {
	Table string `json:"table"`
}

type subscriber struct {
	tables map[string]bool
	ch     chan Change
}

// hub fans committed-write notifications out to subscribers.
type hub struct {
	mu      sync.Mutex
	subs    map[*subscriber]struct{}
	closed  bool
	metrics *metrics.Manager
}

func newHub(m *metrics.Manager) *hub {
	return &hub{subs: make(map[*subscriber]struct{}), metrics: m}
}

func (h *hub) subscribe(tables []string) (*subscriber, bool) {
	s := &subscriber{tables: make(map[string]bool, len(tables)), ch: make(chan Change, 16)}
	for _, t := range tables {
		s.tables[t] = true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s, false
	}
	h.subs[s] = struct{}{}
	h.metrics.GaugeLiveSubscribers.Inc()
	return s, true
}

func (h *hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
	h.metrics.GaugeLiveSubscribers.Dec()
}

// notify never blocks; a subscriber with a full buffer already has a
// notification pending and drops the extra one.
func (h *hub) notify(tables []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		for _, t := range tables {
			if len(s.tables) > 0 && !s.tables[t] {
				continue
			}
			select {
			case s.ch <- Change{Table: t}:
			default:
			}
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		close(s.ch)
		h.metrics.GaugeLiveSubscribers.Dec()
	}
	h.subs = nil
}

// Subscribe returns a channel that receives a Change after every committed
// write touching one of tables (any table when none are given). The cancel
// function closes the channel.
func (db *DB) Subscribe(tables ...string) (<-chan Change, func()) {
	s, ok := db.live.subscribe(tables)
	if !ok {
		return s.ch, func() {}
	}
	var once sync.Once
	return s.ch, func() { once.Do(func() { db.live.unsubscribe(s) }) }
}

// Result is one delivery of a watched query.
type Result[T any] struct {
	Value T
	Err   error
}

// Watch runs query immediately and again after every committed write to
// tables, delivering each result until ctx is done or the store closes.
func Watch[T any](ctx context.Context, db *DB, query func(context.Context) (T, error), tables ...string) <-chan Result[T] {
	changes, cancel := db.Subscribe(tables...)
	out := make(chan Result[T])

	go func() {
		defer close(out)
		defer cancel()

		deliver := func() bool {
			v, err := query(ctx)
			select {
			case out <- Result[T]{Value: v, Err: err}:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if !deliver() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				// Coalesce a burst of writes into one re-run.
				drain(changes)
				if !deliver() {
					return
				}
			}
		}
	}()
	return out
}

func drain(ch <-chan Change) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
