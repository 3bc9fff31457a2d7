package bus

import (
	"context"
	"testing"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

func TestMemoryPublishDispatchesToSubscriber(t *testing.T) {
	b := NewMemory()

	var got []string
	b.Subscribe(schema.PeopleTopics(), func(_ context.Context, topic string, event schema.Event) error {
		got = append(got, topic+"/"+event.EventType)
		return nil
	})

	ev, err := schema.NewEvent(schema.EventPersonDeleted, schema.PersonDeletedEvent{ID: 9}, nil)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if err := b.Publish(context.Background(), schema.TopicPeopleDeleted, ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if len(got) != 1 || got[0] != "people.deleted/PersonDeleted" {
		t.Errorf("Expected one delivery, got %v", got)
	}
}

func TestMemoryTopicFiltering(t *testing.T) {
	b := NewMemory()

	calls := 0
	b.Subscribe([]string{schema.TopicPeopleDeleted}, func(_ context.Context, _ string, _ schema.Event) error {
		calls++
		return nil
	})

	ev, _ := schema.NewEvent(schema.EventPersonCreated, schema.PersonCreatedEvent{ID: 1}, nil)
	b.Publish(context.Background(), schema.TopicPeopleCreated, ev)

	if calls != 0 {
		t.Errorf("Subscriber received an event from an unsubscribed topic")
	}
	if n := len(b.Published(schema.TopicPeopleCreated)); n != 1 {
		t.Errorf("Expected 1 recorded publish, got %d", n)
	}
}
