package sales

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
)

// saveEvents writes the aggregate's pending events to the outbox in the
// caller's transaction, then clears them.
func saveEvents(ctx context.Context, outbox shared.OutboxRepository, aggregate shared.AggregateRoot) error {
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", event.EventType(), err)
		}
		entries = append(entries, shared.NewOutboxEntry(event, payload))
	}

	if err := outbox.Save(ctx, entries...); err != nil {
		return fmt.Errorf("save outbox entries: %w", err)
	}
	aggregate.ClearDomainEvents()
	return nil
}
