// Package bus defines the event bus contract the services publish to and
// consume from, with Kafka and in-memory backends.
package bus

import (
	"context"

	"github.com/caseflow-io/caseflow/pkg/schema"
)

// Publisher emits lifecycle events. Delivery is at-least-once; messages
// carrying the same acting-user id land on the same partition, so one user's
// events keep their relative order.
type Publisher interface {
	Publish(ctx context.Context, topic string, event schema.Event) error
}

// Handler processes one delivered event. A non-nil error is logged by the
// consumer but does not stop the subscription or hold back the offset:
// an unprocessable message is skipped, not retried.
type Handler func(ctx context.Context, topic string, event schema.Event) error
