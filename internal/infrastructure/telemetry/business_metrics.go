// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the billing ledger.
// It tracks charge generation, payment review activity, and ledger health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	chargeGeneratedTotal  *Counter
	chargeAmountTotal     *Counter
	paymentReviewedTotal  *Counter
	allocationAmountTotal *Counter
	creditAppliedTotal    *Counter

	// Gauge metrics (point-in-time values)
	openChargesCount     *Gauge
	delinquentUnitsCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data providers for periodic collection
	ledgerProvider LedgerMetricsProvider
}

// LedgerMetricsProvider provides ledger data for periodic metrics collection.
// This interface allows the telemetry layer to query charge state without
// depending on the billing domain directly.
type LedgerMetricsProvider interface {
	// GetOpenChargeCountsByStatus returns open charge counts per status for a community
	GetOpenChargeCountsByStatus(ctx context.Context, communityID uuid.UUID) (map[string]int64, error)

	// GetDelinquentUnitCount returns the number of units with at least one overdue open charge
	GetDelinquentUnitCount(ctx context.Context, communityID uuid.UUID) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	LedgerProvider  LedgerMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:          cfg.Meter,
		logger:         logger,
		stopChan:       make(chan struct{}),
		ledgerProvider: cfg.LedgerProvider,
	}

	// Initialize counter metrics
	var err error

	// Charge metrics
	bm.chargeGeneratedTotal, err = NewCounter(
		cfg.Meter,
		"condo_charge_generated_total",
		"Total number of monthly charges generated",
		"{charges}",
	)
	if err != nil {
		return nil, err
	}

	bm.chargeAmountTotal, err = NewCounter(
		cfg.Meter,
		"condo_charge_amount_total",
		"Total generated charge amount in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	// Payment review metrics
	bm.paymentReviewedTotal, err = NewCounter(
		cfg.Meter,
		"condo_payment_reviewed_total",
		"Total number of payment submissions reviewed",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	// Allocation metrics
	bm.allocationAmountTotal, err = NewCounter(
		cfg.Meter,
		"condo_allocation_amount_total",
		"Total amount allocated to charges in centavos",
		"{centavos}",
	)
	if err != nil {
		return nil, err
	}

	bm.creditAppliedTotal, err = NewCounter(
		cfg.Meter,
		"condo_credit_applied_total",
		"Total number of credit applications to charges",
		"{applications}",
	)
	if err != nil {
		return nil, err
	}

	// Ledger gauge metrics
	bm.openChargesCount, err = NewGauge(
		cfg.Meter,
		"condo_charges_open",
		"Current number of open monthly charges by status",
		"{charges}",
	)
	if err != nil {
		return nil, err
	}

	bm.delinquentUnitsCount, err = NewGauge(
		cfg.Meter,
		"condo_delinquent_units",
		"Number of units with at least one overdue open charge",
		"{units}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Charge Metrics
// =============================================================================

// RecordChargeGenerated records a charge creation event.
func (bm *BusinessMetrics) RecordChargeGenerated(ctx context.Context, communityID uuid.UUID) {
	bm.chargeGeneratedTotal.Inc(ctx,
		AttrCommunityID.String(communityID.String()),
	)
}

// RecordChargeAmount records the charge amount.
// Amount should be in the smallest currency unit (centavos).
func (bm *BusinessMetrics) RecordChargeAmount(ctx context.Context, communityID uuid.UUID, amountCentavos int64) {
	bm.chargeAmountTotal.Add(ctx, amountCentavos,
		AttrCommunityID.String(communityID.String()),
	)
}

// RecordChargeWithAmount is a convenience method that records both charge count and amount.
func (bm *BusinessMetrics) RecordChargeWithAmount(ctx context.Context, communityID uuid.UUID, amount decimal.Decimal) {
	bm.RecordChargeGenerated(ctx, communityID)

	// Convert to centavos (multiply by 100)
	amountCentavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordChargeAmount(ctx, communityID, amountCentavos)
}

// =============================================================================
// Payment Review Metrics
// =============================================================================

// ReviewDecision represents the outcome of a payment review for metrics labeling.
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "approved"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

// RecordPaymentReviewed records a payment review decision.
func (bm *BusinessMetrics) RecordPaymentReviewed(ctx context.Context, communityID uuid.UUID, decision ReviewDecision) {
	bm.paymentReviewedTotal.Inc(ctx,
		AttrCommunityID.String(communityID.String()),
		AttrDecision.String(string(decision)),
	)
}

// =============================================================================
// Allocation Metrics
// =============================================================================

// RecordAllocationAmount records money applied to a charge.
func (bm *BusinessMetrics) RecordAllocationAmount(ctx context.Context, communityID uuid.UUID, amount decimal.Decimal) {
	amountCentavos := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.allocationAmountTotal.Add(ctx, amountCentavos,
		AttrCommunityID.String(communityID.String()),
	)
}

// RecordCreditApplied records one credit application pass against a charge.
func (bm *BusinessMetrics) RecordCreditApplied(ctx context.Context, communityID uuid.UUID) {
	bm.creditAppliedTotal.Inc(ctx,
		AttrCommunityID.String(communityID.String()),
	)
}

// =============================================================================
// Ledger Gauge Metrics
// =============================================================================

// RecordOpenCharges records the current open charge count for a community and status.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenCharges(ctx context.Context, communityID uuid.UUID, status string, count int64) {
	bm.openChargesCount.Record(ctx, count,
		AttrCommunityID.String(communityID.String()),
		AttrChargeStatus.String(status),
	)
}

// RecordDelinquentUnits records the number of units with overdue open charges.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordDelinquentUnits(ctx context.Context, communityID uuid.UUID, count int64) {
	bm.delinquentUnitsCount.Record(ctx, count,
		AttrCommunityID.String(communityID.String()),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// CommunityProvider provides community IDs for periodic metrics collection.
type CommunityProvider interface {
	GetActiveCommunityIDs(ctx context.Context) ([]uuid.UUID, error)
}

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects ledger metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, communityProvider CommunityProvider, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, communityProvider, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, communityProvider CommunityProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectLedgerMetrics(ctx, communityProvider)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectLedgerMetrics(ctx, communityProvider)
		}
	}
}

// collectLedgerMetrics collects ledger gauge metrics for all communities.
func (bm *BusinessMetrics) collectLedgerMetrics(ctx context.Context, communityProvider CommunityProvider) {
	if bm.ledgerProvider == nil {
		bm.logger.Debug("No ledger provider configured, skipping ledger metrics collection")
		return
	}

	communityIDs, err := communityProvider.GetActiveCommunityIDs(ctx)
	if err != nil {
		bm.logger.Error("Failed to get community IDs for metrics collection", zap.Error(err))
		return
	}

	for _, communityID := range communityIDs {
		bm.collectCommunityLedgerMetrics(ctx, communityID)
	}
}

// collectCommunityLedgerMetrics collects ledger metrics for a single community.
func (bm *BusinessMetrics) collectCommunityLedgerMetrics(ctx context.Context, communityID uuid.UUID) {
	// Collect open charge counts by status
	openByStatus, err := bm.ledgerProvider.GetOpenChargeCountsByStatus(ctx, communityID)
	if err != nil {
		bm.logger.Warn("Failed to get open charge counts for community",
			zap.String("community_id", communityID.String()),
			zap.Error(err),
		)
	} else {
		for status, count := range openByStatus {
			bm.RecordOpenCharges(ctx, communityID, status, count)
		}
	}

	// Collect delinquent unit count
	delinquentCount, err := bm.ledgerProvider.GetDelinquentUnitCount(ctx, communityID)
	if err != nil {
		bm.logger.Warn("Failed to get delinquent unit count for community",
			zap.String("community_id", communityID.String()),
			zap.Error(err),
		)
	} else {
		bm.RecordDelinquentUnits(ctx, communityID, delinquentCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
