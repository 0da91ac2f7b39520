package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewBusinessMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_RecordChargeGenerated(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()

	// Should not panic
	bm.RecordChargeGenerated(ctx, communityID)
	bm.RecordChargeGenerated(ctx, communityID)
}

func TestBusinessMetrics_RecordChargeAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()

	// Should not panic
	bm.RecordChargeAmount(ctx, communityID, 120000) // 1200.00 MXN
	bm.RecordChargeAmount(ctx, communityID, 135000)
}

func TestBusinessMetrics_RecordChargeWithAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()
	amount := decimal.RequireFromString("1200.00")

	// Should not panic and record both count and amount
	bm.RecordChargeWithAmount(ctx, communityID, amount)
}

func TestBusinessMetrics_RecordPaymentReviewed(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()

	// Should not panic
	bm.RecordPaymentReviewed(ctx, communityID, telemetry.ReviewDecisionApproved)
	bm.RecordPaymentReviewed(ctx, communityID, telemetry.ReviewDecisionRejected)
}

func TestBusinessMetrics_RecordAllocationAmount(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()

	// Should not panic
	bm.RecordAllocationAmount(ctx, communityID, decimal.RequireFromString("750.00"))
	bm.RecordCreditApplied(ctx, communityID)
}

func TestBusinessMetrics_RecordOpenCharges(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()

	// Should not panic
	bm.RecordOpenCharges(ctx, communityID, "PENDING", 12)
	bm.RecordOpenCharges(ctx, communityID, "PARTIAL", 3)
}

func TestBusinessMetrics_RecordDelinquentUnits(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	ctx := context.Background()
	communityID := uuid.New()

	// Should not panic
	bm.RecordDelinquentUnits(ctx, communityID, 5)
	bm.RecordDelinquentUnits(ctx, communityID, 2)
}

// Mock implementations for testing periodic collection

type mockCommunityProvider struct {
	communityIDs []uuid.UUID
	err          error
}

func (m *mockCommunityProvider) GetActiveCommunityIDs(ctx context.Context) ([]uuid.UUID, error) {
	return m.communityIDs, m.err
}

type mockLedgerProvider struct {
	openByStatus    map[string]int64
	delinquentCount int64
	err             error
}

func (m *mockLedgerProvider) GetOpenChargeCountsByStatus(ctx context.Context, communityID uuid.UUID) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.openByStatus, nil
}

func (m *mockLedgerProvider) GetDelinquentUnitCount(ctx context.Context, communityID uuid.UUID) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.delinquentCount, nil
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	communityID := uuid.New()

	ledgerProvider := &mockLedgerProvider{
		openByStatus: map[string]int64{
			"PENDING": 12,
			"PARTIAL": 3,
		},
		delinquentCount: 5,
	}

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          meter,
		Logger:         zap.NewNop(),
		LedgerProvider: ledgerProvider,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	communityProvider := &mockCommunityProvider{
		communityIDs: []uuid.UUID{communityID},
	}

	// Start periodic collection with short interval for testing
	bm.StartPeriodicCollection(ctx, communityProvider, 100*time.Millisecond)

	// Wait for at least one collection cycle
	time.Sleep(150 * time.Millisecond)

	// Stop collection
	bm.Stop()

	// Should complete without error
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
		// No ledger provider
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	communityProvider := &mockCommunityProvider{
		communityIDs: []uuid.UUID{uuid.New()},
	}

	// Should not panic with no ledger provider
	bm.StartPeriodicCollection(ctx, communityProvider, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: meter,
	})
	require.NoError(t, err)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meter,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	communityProvider := &mockCommunityProvider{
		communityIDs: []uuid.UUID{},
	}

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, communityProvider, time.Hour)
	bm.StartPeriodicCollection(ctx, communityProvider, time.Minute)
	bm.StartPeriodicCollection(ctx, communityProvider, time.Second)

	bm.Stop()
}

func TestReviewDecision_Values(t *testing.T) {
	assert.Equal(t, telemetry.ReviewDecision("approved"), telemetry.ReviewDecisionApproved)
	assert.Equal(t, telemetry.ReviewDecision("rejected"), telemetry.ReviewDecisionRejected)
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
