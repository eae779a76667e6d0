package service

import (
	"sync"

	"github.com/livetest-app/livetest/internal/dto"
)

const resultBufferSize = 16

// ResultHub fans graded-sheet events out to live dashboard subscribers.
// Slow subscribers drop events rather than blocking the grading loop; a
// dashboard that misses one simply refetches on the next.
type ResultHub struct {
	mu   sync.RWMutex
	subs map[chan dto.ResultEvent]struct{}
}

// NewResultHub constructs an empty hub.
func NewResultHub() *ResultHub {
	return &ResultHub{subs: make(map[chan dto.ResultEvent]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called on
// teardown; it closes the channel and releases the slot.
func (h *ResultHub) Subscribe() (<-chan dto.ResultEvent, func()) {
	ch := make(chan dto.ResultEvent, resultBufferSize)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Publish delivers the event to every subscriber, skipping full buffers.
func (h *ResultHub) Publish(event dto.ResultEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers reports the number of attached listeners.
func (h *ResultHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
