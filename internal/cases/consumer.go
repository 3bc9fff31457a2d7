package cases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

// PersonConsumer reacts to person lifecycle events from the people service.
// Created and Updated are audit-logged only; Deleted clears the person
// reference from every case that held it. Handling is idempotent: replaying
// a PersonDeleted event re-runs an UPDATE that matches zero rows.
type PersonConsumer struct {
	store Store
	log   zerolog.Logger
}

// NewPersonConsumer builds the consumer over the case store.
func NewPersonConsumer(store Store, log zerolog.Logger) *PersonConsumer {
	return &PersonConsumer{store: store, log: log}
}

// Handle processes one delivered event. It satisfies bus.Handler. Malformed
// payloads and unknown event types return an error for the caller to log;
// the message is not retried.
func (c *PersonConsumer) Handle(ctx context.Context, topic string, event schema.Event) error {
	c.log.Info().Str("topic", topic).Str("eventType", event.EventType).Msg("Received event")

	switch event.EventType {
	case schema.EventPersonCreated:
		var data schema.PersonCreatedEvent
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decode PersonCreated payload: %w", err)
		}
		c.log.Info().Int64("personId", data.ID).Msg("Person created event received")
		return nil

	case schema.EventPersonUpdated:
		var data schema.PersonUpdatedEvent
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decode PersonUpdated payload: %w", err)
		}
		c.log.Info().Int64("personId", data.ID).Msg("Person updated event received")
		return nil

	case schema.EventPersonDeleted:
		var data schema.PersonDeletedEvent
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return fmt.Errorf("decode PersonDeleted payload: %w", err)
		}
		affected, err := c.store.ClearPersonRefs(ctx, data.ID)
		if err != nil {
			return fmt.Errorf("clear person refs for %d: %w", data.ID, err)
		}
		c.log.Info().Int64("personId", data.ID).Int64("casesUpdated", affected).
			Msg("Cases updated after person deletion")
		return nil

	default:
		return fmt.Errorf("unknown event type %q on topic %s", event.EventType, topic)
	}
}
