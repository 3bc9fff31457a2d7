package bus

import (
	"context"
	"sync"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

type subscription struct {
	topics  map[string]bool
	handler Handler
}

// Memory is an in-process bus for tests and single-node development.
// Publish dispatches synchronously to every matching subscriber.
type Memory struct {
	mu        sync.Mutex
	subs      []subscription
	published map[string][]schema.Event
}

// NewMemory initializes an empty in-memory bus.
func NewMemory() *Memory {
	return &Memory{published: make(map[string][]schema.Event)}
}

func (b *Memory) Publish(ctx context.Context, topic string, event schema.Event) error {
	b.mu.Lock()
	b.published[topic] = append(b.published[topic], event)
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		if s.topics[topic] {
			// Handler errors are swallowed here exactly as the Kafka
			// consumer logs and skips them.
			_ = s.handler(ctx, topic, event)
		}
	}
	return nil
}

// Subscribe registers handler for the given topics.
func (b *Memory) Subscribe(topics []string, handler Handler) {
	set := make(map[string]bool, len(topics))
	for _, t := range topics {
		set[t] = true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, subscription{topics: set, handler: handler})
}

// Published returns the events emitted on a topic, for inspection in tests.
func (b *Memory) Published(topic string) []schema.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]schema.Event, len(b.published[topic]))
	copy(events, b.published[topic])
	return events
}
