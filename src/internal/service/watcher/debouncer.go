package watcher

import (
	"sort"
	"sync"
	"time"

	"dtdash/src/internal/domain"
)

// BatchDebouncer collects events and emits them once the directory has been
// quiet for the configured delay. Repeated events for the same path collapse
// into the latest one.
type BatchDebouncer struct {
	delay  time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	events map[string]domain.AssetEvent
	emit   func([]domain.AssetEvent)
}

// NewBatchDebouncer creates a new batch debouncer
func NewBatchDebouncer(delay time.Duration, emit func([]domain.AssetEvent)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:  delay,
		events: make(map[string]domain.AssetEvent),
		emit:   emit,
	}
}

// Add adds an event to the batch and restarts the quiet period.
func (b *BatchDebouncer) Add(event domain.AssetEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.Path] = event

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.flush)
}

// flush emits collected events ordered by path
func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	events := make([]domain.AssetEvent, 0, len(b.events))
	for _, ev := range b.events {
		events = append(events, ev)
	}
	b.events = make(map[string]domain.AssetEvent)
	b.timer = nil
	b.mu.Unlock()

	if len(events) == 0 || b.emit == nil {
		return
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Path < events[j].Path })
	b.emit(events)
}

// Cancel drops any pending events
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.events = make(map[string]domain.AssetEvent)
}

// Flush immediately emits any pending events
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// Pending returns the number of paths waiting to be emitted
func (b *BatchDebouncer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
