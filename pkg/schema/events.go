package schema

import (
	"encoding/json"
	"time"
)

// Kafka topics. One topic per entity type and lifecycle phase.
const (
	TopicPeopleCreated = "people.created"
	TopicPeopleUpdated = "people.updated"
	TopicPeopleDeleted = "people.deleted"

	TopicCaseCreated = "case.created"
	TopicCaseUpdated = "case.updated"
	TopicCaseDeleted = "case.deleted"
)

// PeopleTopics lists the topics the case service consumes.
func PeopleTopics() []string {
	return []string{TopicPeopleCreated, TopicPeopleUpdated, TopicPeopleDeleted}
}

// Event type tags carried in the envelope.
const (
	EventPersonCreated = "PersonCreated"
	EventPersonUpdated = "PersonUpdated"
	EventPersonDeleted = "PersonDeleted"
)

// EventMetadata identifies the actor and request that produced an event.
type EventMetadata struct {
	UserID        int64  `json:"userId,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Event is the envelope published to the bus. Data is kept raw so a consumer
// can dispatch on EventType before committing to a payload shape.
type Event struct {
	EventType string          `json:"eventType"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Metadata  *EventMetadata  `json:"metadata,omitempty"`
}

// NewEvent builds an envelope around payload, stamping it with the current time.
func NewEvent(eventType string, payload any, meta *EventMetadata) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
		Metadata:  meta,
	}, nil
}

// PersonCreatedEvent is the payload of a PersonCreated event.
type PersonCreatedEvent struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     *string `json:"email,omitempty"`
}

// PersonUpdatedEvent carries the fields that changed, keyed by column name.
type PersonUpdatedEvent struct {
	ID      int64          `json:"id"`
	Changes map[string]any `json:"changes"`
}

// PersonDeletedEvent is the payload of a PersonDeleted event.
type PersonDeletedEvent struct {
	ID int64 `json:"id"`
}
