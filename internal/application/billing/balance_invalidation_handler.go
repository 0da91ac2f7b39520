package billing

import (
	"context"
	"fmt"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BalanceInvalidationHandler drops cached unit balances whenever an event
// changes the figures a balance is computed from. Invalidation is idempotent,
// so duplicate delivery of the same event is harmless.
type BalanceInvalidationHandler struct {
	cache  billing.UnitBalanceCache
	logger *zap.Logger
}

// NewBalanceInvalidationHandler creates a new handler for balance-changing events
func NewBalanceInvalidationHandler(cache billing.UnitBalanceCache, logger *zap.Logger) *BalanceInvalidationHandler {
	return &BalanceInvalidationHandler{
		cache:  cache,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BalanceInvalidationHandler) EventTypes() []string {
	return []string{
		billing.EventTypeMonthlyChargeCreated,
		billing.EventTypeChargeStatusChanged,
		billing.EventTypeChargePaid,
		billing.EventTypeChargeVoided,
		billing.EventTypePaymentApproved,
		billing.EventTypePaymentAllocated,
		billing.EventTypeAllocationIncreased,
	}
}

// Handle invalidates the cached balance of the unit the event belongs to
func (h *BalanceInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var unitID uuid.UUID
	switch e := event.(type) {
	case *billing.MonthlyChargeCreatedEvent:
		unitID = e.UnitID
	case *billing.ChargeStatusChangedEvent:
		unitID = e.UnitID
	case *billing.ChargePaidEvent:
		unitID = e.UnitID
	case *billing.ChargeVoidedEvent:
		unitID = e.UnitID
	case *billing.PaymentApprovedEvent:
		unitID = e.UnitID
	case *billing.PaymentAllocatedEvent:
		unitID = e.UnitID
	case *billing.AllocationIncreasedEvent:
		unitID = e.UnitID
	default:
		h.logger.Error("unexpected event type for balance invalidation",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type for balance invalidation: %s", event.EventType())
	}

	if err := h.cache.Invalidate(ctx, unitID); err != nil {
		h.logger.Error("failed to invalidate unit balance cache",
			zap.String("unit_id", unitID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to invalidate unit balance cache: %w", err)
	}

	h.logger.Debug("unit balance cache invalidated",
		zap.String("unit_id", unitID.String()),
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// Ensure BalanceInvalidationHandler implements shared.EventHandler
var _ shared.EventHandler = (*BalanceInvalidationHandler)(nil)
