package community

import (
	"context"

	"github.com/condominio/backend/internal/domain/shared"
)

// domainEventSource is any aggregate that records domain events
type domainEventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents publishes and clears the pending events of the given
// aggregates. Publish errors are handled by the event bus, not propagated.
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
