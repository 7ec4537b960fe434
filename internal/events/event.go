package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions announced after a mutation commits.
const (
	ActionTransactionRecorded = "transaction_recorded"
	ActionTransactionDeleted  = "transaction_deleted"
	ActionTransactionPaid     = "transaction_paid"
	ActionPacketsConverted    = "packets_converted"
	ActionProductCreated      = "product_created"
	ActionExpenseCreated      = "expense_created"
	ActionExpenseDeleted      = "expense_deleted"
)

// Event is the envelope sent to websocket clients and the Kafka topic.
type Event struct {
	Type       string      `json:"type"`
	Action     string      `json:"action"`
	OwnerID    uuid.UUID   `json:"owner_id"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// New stamps an inventory event for owner.
func New(ownerID uuid.UUID, action string, data interface{}, message string) Event {
	return Event{
		Type:       "INVENTORY_UPDATE",
		Action:     action,
		OwnerID:    ownerID,
		Data:       data,
		Message:    message,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher must not block the caller for long; delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Multi fans an event out to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, evt)
		}
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}
