package store

import (
	"sync"
	"time"
)

// Change announces that a table's contents were mutated. Notifications are
// debounced per table so a burst of writes triggers a single reload.
type Change struct {
	Table string
}

const debounceDelay = 300 * time.Millisecond

type hub struct {
	mu      sync.Mutex
	subs    []chan Change
	pending map[string]*time.Timer
	delay   time.Duration
}

func newHub(delay time.Duration) *hub {
	return &hub{
		pending: make(map[string]*time.Timer),
		delay:   delay,
	}
}

func (h *hub) subscribe() <-chan Change {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan Change, 16)
	h.subs = append(h.subs, ch)
	return ch
}

func (h *hub) notify(table string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if timer, ok := h.pending[table]; ok {
		timer.Reset(h.delay)
		return
	}
	h.pending[table] = time.AfterFunc(h.delay, func() {
		h.fire(table)
	})
}

func (h *hub) fire(table string) {
	h.mu.Lock()
	delete(h.pending, table)
	subs := make([]chan Change, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- Change{Table: table}:
		default:
			// Slow subscriber, drop rather than block writers.
		}
	}
}
