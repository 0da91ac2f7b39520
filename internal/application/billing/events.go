package billing

import (
	"context"

	"github.com/condominio/backend/internal/domain/shared"
)

// domainEventSource is any aggregate that records domain events
type domainEventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// eventBatch collects the aggregates touched inside a transaction so their
// events can be published once the transaction has committed. Publishing
// from inside the scope would leak events for work that later rolls back.
type eventBatch struct {
	sources []domainEventSource
}

func (b *eventBatch) add(sources ...domainEventSource) {
	b.sources = append(b.sources, sources...)
}

// publishEvents publishes and clears the pending events of the given
// aggregates. Publish errors are handled by the event bus, not propagated;
// ledger writes never fail because a subscriber did.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, sources ...domainEventSource) {
	if publisher == nil {
		return
	}
	for _, src := range sources {
		if src == nil {
			continue
		}
		events := src.GetDomainEvents()
		if len(events) == 0 {
			continue
		}
		_ = publisher.Publish(ctx, events...)
		src.ClearDomainEvents()
	}
}
