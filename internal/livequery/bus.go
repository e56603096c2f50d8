// Package livequery implements the reactive read layer over the local
// database: a table-change notification bus, a generic live query that
// re-emits on invalidation, and the stream combinators the services build on.
package livequery

import "sync"

// Bus fans table-change notifications out to live-query subscribers.
// Repositories call Notify after every successful write; queries subscribe
// to the tables they read from.
type Bus struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber
}

type subscriber struct {
	tables map[string]struct{}
	// signal is buffered with capacity 1 so back-to-back notifications
	// coalesce instead of queueing; a live query refetches at most once
	// per wakeup anyway.
	signal chan struct{}
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Notify wakes every subscriber watching at least one of the given tables.
// It never blocks.
func (b *Bus) Notify(tables ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		for _, t := range tables {
			if _, ok := s.tables[t]; ok {
				select {
				case s.signal <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}

// Subscribe registers interest in the given tables. The returned channel
// receives a (coalesced) signal after each matching Notify. The cancel
// function removes the subscription; it is safe to call more than once.
func (b *Bus) Subscribe(tables ...string) (<-chan struct{}, func()) {
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	s := &subscriber{tables: set, signal: make(chan struct{}, 1)}
	b.subs[id] = s
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
	return s.signal, cancel
}
