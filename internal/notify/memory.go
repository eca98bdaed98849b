package notify

import (
	"context"
	"sync"
)

type subscriber struct {
	ch     chan Event
	topics []string
}

// MemoryBroker is an in-process Broker.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}
}

// NewMemoryBroker returns an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: make(map[string]map[*subscriber]struct{})}
}

// Publish delivers ev to every current subscriber of topic without blocking.
func (b *MemoryBroker) Publish(_ context.Context, topic string, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[topic] {
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber for topics. The subscription also ends when ctx is done.
func (b *MemoryBroker) Subscribe(ctx context.Context, topics ...string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer), topics: topics}

	b.mu.Lock()
	for _, t := range topics {
		if b.topics[t] == nil {
			b.topics[t] = make(map[*subscriber]struct{})
		}
		b.topics[t][sub] = struct{}{}
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			for _, t := range sub.topics {
				delete(b.topics[t], sub)
				if len(b.topics[t]) == 0 {
					delete(b.topics, t)
				}
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return sub.ch, cancel
}
