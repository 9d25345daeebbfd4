package server

import (
	"context"
	"fmt"
	"sync"
)

// recordStore keeps the dispatch history, newest first.
type recordStore interface {
	insert(ctx context.Context, rec dispatchRecord) error
	list(ctx context.Context, limit int) ([]dispatchRecord, error)
	kind() string
	close() error
}

// memoryStore is a fixed-size ring of records.
type memoryStore struct {
	mu      sync.Mutex
	records []dispatchRecord
	next    int
	count   int
}

func newMemoryStore(capacity int) *memoryStore {
	if capacity < 1 {
		capacity = 1
	}
	return &memoryStore{records: make([]dispatchRecord, capacity)}
}

func (m *memoryStore) insert(_ context.Context, rec dispatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[m.next] = rec
	m.next = (m.next + 1) % len(m.records)
	if m.count < len(m.records) {
		m.count++
	}
	return nil
}

func (m *memoryStore) list(_ context.Context, limit int) ([]dispatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > m.count {
		limit = m.count
	}
	out := make([]dispatchRecord, limit)
	for i := range out {
		out[i] = m.records[(m.next-1-i+len(m.records))%len(m.records)]
	}
	return out, nil
}

func (m *memoryStore) kind() string { return "memory" }

func (m *memoryStore) close() error { return nil }

type recordListener struct {
	subscriber string
	records    chan dispatchRecord
}

// recordNotifier fans new records out to stream subscribers. A subscriber
// that cannot keep up misses records rather than stalling dispatch.
type recordNotifier struct {
	mu        sync.Mutex
	listeners []recordListener
}

func (n *recordNotifier) notify(subscriber string) (<-chan dispatchRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, l := range n.listeners {
		if l.subscriber == subscriber {
			return nil, fmt.Errorf("subscriber '%s' already registered", subscriber)
		}
	}
	ch := make(chan dispatchRecord, 16)
	n.listeners = append(n.listeners, recordListener{subscriber, ch})
	return ch, nil
}

func (n *recordNotifier) unNotify(subscriber string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, l := range n.listeners {
		if l.subscriber == subscriber {
			close(l.records)
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}

func (n *recordNotifier) publish(rec dispatchRecord) (dropped int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, l := range n.listeners {
		select {
		case l.records <- rec:
		default:
			dropped++
		}
	}
	return dropped
}

func (n *recordNotifier) subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
