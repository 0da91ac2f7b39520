package billing

import (
	"context"
	"fmt"

	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LedgerMetricsHandler feeds business counters from billing events so the
// services stay free of metrics plumbing. Recording is fire-and-forget; a
// missed sample never blocks the write that produced the event.
type LedgerMetricsHandler struct {
	metrics *telemetry.BusinessMetrics
	logger  *zap.Logger
}

// NewLedgerMetricsHandler creates a new handler for metric-bearing events
func NewLedgerMetricsHandler(metrics *telemetry.BusinessMetrics, logger *zap.Logger) *LedgerMetricsHandler {
	return &LedgerMetricsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *LedgerMetricsHandler) EventTypes() []string {
	return []string{
		billing.EventTypeMonthlyChargeCreated,
		billing.EventTypePaymentApproved,
		billing.EventTypePaymentRejected,
		billing.EventTypePaymentAllocated,
		billing.EventTypeAllocationIncreased,
	}
}

// Handle records the counter samples the event maps to
func (h *LedgerMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.MonthlyChargeCreatedEvent:
		h.metrics.RecordChargeWithAmount(ctx, e.CommunityID(), e.Amount)
	case *billing.PaymentApprovedEvent:
		h.metrics.RecordPaymentReviewed(ctx, e.CommunityID(), telemetry.ReviewDecisionApproved)
	case *billing.PaymentRejectedEvent:
		h.metrics.RecordPaymentReviewed(ctx, e.CommunityID(), telemetry.ReviewDecisionRejected)
	case *billing.PaymentAllocatedEvent:
		h.metrics.RecordAllocationAmount(ctx, e.CommunityID(), e.Amount)
		h.metrics.RecordCreditApplied(ctx, e.CommunityID())
	case *billing.AllocationIncreasedEvent:
		h.metrics.RecordAllocationAmount(ctx, e.CommunityID(), e.Delta)
		h.metrics.RecordCreditApplied(ctx, e.CommunityID())
	default:
		h.logger.Error("unexpected event type for ledger metrics",
			zap.String("event_type", event.EventType()),
		)
		return fmt.Errorf("unexpected event type for ledger metrics: %s", event.EventType())
	}

	h.logger.Debug("ledger metrics recorded",
		zap.String("event_type", event.EventType()),
	)
	return nil
}

// Ensure LedgerMetricsHandler implements shared.EventHandler
var _ shared.EventHandler = (*LedgerMetricsHandler)(nil)
