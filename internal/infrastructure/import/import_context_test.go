package csvimport

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityType(t *testing.T) {
	t.Run("ValidEntityTypes", func(t *testing.T) {
		types := ValidEntityTypes()
		assert.Contains(t, types, EntityFeeSchedules)
		assert.Contains(t, types, EntityOwners)
		assert.Contains(t, types, EntityUnits)
	})

	t.Run("IsValidEntityType", func(t *testing.T) {
		assert.True(t, IsValidEntityType("fee_schedules"))
		assert.True(t, IsValidEntityType("owners"))
		assert.True(t, IsValidEntityType("units"))
		assert.False(t, IsValidEntityType("invalid"))
		assert.False(t, IsValidEntityType(""))
	})
}

func TestImportSession(t *testing.T) {
	communityID := uuid.New()
	requestedBy := uuid.New()

	t.Run("NewImportSession", func(t *testing.T) {
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		assert.NotEqual(t, uuid.Nil, session.ID)
		assert.Equal(t, communityID, session.CommunityID)
		assert.Equal(t, requestedBy, session.RequestedBy)
		assert.Equal(t, EntityFeeSchedules, session.EntityType)
		assert.Equal(t, "fees.csv", session.FileName)
		assert.Equal(t, int64(1024), session.FileSize)
		assert.Equal(t, StateCreated, session.State)
		assert.Nil(t, session.CompletedAt)
	})

	t.Run("UpdateState", func(t *testing.T) {
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		session.UpdateState(StateValidating)
		assert.Equal(t, StateValidating, session.State)
		assert.Nil(t, session.CompletedAt)

		session.UpdateState(StateCompleted)
		assert.Equal(t, StateCompleted, session.State)
		assert.NotNil(t, session.CompletedAt)
	})

	t.Run("SetValidationResult", func(t *testing.T) {
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)
		result := &ValidationResult{
			ValidationID: session.ID.String(),
			TotalRows:    100,
			ValidRows:    95,
			ErrorRows:    5,
			Errors:       []RowError{{Row: 10, Column: "amount", Message: "required"}},
			Preview:      []map[string]any{{"amount": "950.00", "effective_from": "2026-01-01"}},
		}

		session.SetValidationResult(result)

		assert.Equal(t, 100, session.TotalRows)
		assert.Equal(t, 95, session.ValidRows)
		assert.Equal(t, 5, session.ErrorRows)
		assert.Len(t, session.Errors, 1)
		assert.Len(t, session.Preview, 1)
	})

	t.Run("IsValid", func(t *testing.T) {
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)
		session.ErrorRows = 0
		assert.True(t, session.IsValid())

		session.ErrorRows = 5
		assert.False(t, session.IsValid())
	})
}

func TestImportContext(t *testing.T) {
	communityID := uuid.New()
	requestedBy := uuid.New()
	session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

	t.Run("NewImportContext", func(t *testing.T) {
		ctx := context.Background()
		importCtx := NewImportContext(ctx, session)

		assert.NotNil(t, importCtx.Context())
		assert.Equal(t, session, importCtx.Session())
		assert.Nil(t, importCtx.Parser())
	})

	t.Run("Cancel", func(t *testing.T) {
		ctx := context.Background()
		importCtx := NewImportContext(ctx, session)

		importCtx.Cancel()

		assert.Equal(t, context.Canceled, importCtx.Context().Err())
		assert.Equal(t, StateCancelled, session.State)
	})

	t.Run("Valid rows management", func(t *testing.T) {
		ctx := context.Background()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)
		importCtx := NewImportContext(ctx, session)

		row1 := &Row{LineNumber: 2, Data: map[string]string{"amount": "950.00"}}
		row2 := &Row{LineNumber: 3, Data: map[string]string{"amount": "1100.00"}}

		importCtx.AddValidRow(row1)
		importCtx.AddValidRow(row2)

		validRows := importCtx.ValidRows()
		assert.Len(t, validRows, 2)
	})

	t.Run("Error row tracking", func(t *testing.T) {
		ctx := context.Background()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)
		importCtx := NewImportContext(ctx, session)

		importCtx.MarkRowError(5)
		importCtx.MarkRowError(10)

		assert.True(t, importCtx.HasRowError(5))
		assert.True(t, importCtx.HasRowError(10))
		assert.False(t, importCtx.HasRowError(7))
		assert.Equal(t, 2, importCtx.ErrorCount())
	})

	t.Run("With validators", func(t *testing.T) {
		ctx := context.Background()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		rules := []FieldRule{Field("amount").Required().Build()}
		fieldVal := NewFieldValidator(rules, 10)

		importCtx := NewImportContext(ctx, session, WithFieldValidator(fieldVal))

		assert.NotNil(t, importCtx)
	})
}

func TestImportProcessor(t *testing.T) {
	t.Run("NewImportProcessor with defaults", func(t *testing.T) {
		processor := NewImportProcessor()
		assert.NotNil(t, processor)
	})

	t.Run("NewImportProcessor with options", func(t *testing.T) {
		processor := NewImportProcessor(
			WithMaxFileSize(5*1024*1024),
			WithMaxRows(50000),
			WithMaxErrors(50),
			WithPreviewRows(10),
		)
		assert.NotNil(t, processor)
	})

	t.Run("Validate simple CSV", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from,notes\n950.00,2026-01-01,annual adjustment\n1100.00,2026-07-01,pool maintenance\n1100.00,2027-01-01,"
		rules := []FieldRule{
			Field("amount").Required().Decimal().Build(),
			Field("effective_from").Required().Date().Build(),
			Field("notes").MaxLength(500).Build(),
		}

		result, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 3, result.ValidRows)
		assert.Equal(t, 0, result.ErrorRows)
		assert.True(t, result.IsValid())
	})

	t.Run("Validate CSV with errors", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n950.00,2026-01-01\n,2026-02-01\nnot-a-number,2026-03-01"
		rules := []FieldRule{
			Field("amount").Required().Decimal().Build(),
			Field("effective_from").Required().Date().Build(),
		}

		result, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 1, result.ValidRows)
		assert.Equal(t, 2, result.ErrorRows)
		assert.False(t, result.IsValid())
		assert.GreaterOrEqual(t, len(result.Errors), 2)
	})

	t.Run("Validate generates preview", func(t *testing.T) {
		processor := NewImportProcessor(WithPreviewRows(3))
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n900.00,2026-01-01\n950.00,2026-07-01\n1000.00,2027-01-01\n1050.00,2027-07-01\n1100.00,2028-01-01"
		rules := []FieldRule{
			Field("amount").Build(),
			Field("effective_from").Build(),
		}

		result, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Len(t, result.Preview, 3)
		assert.Equal(t, "900.00", result.Preview[0]["amount"])
		assert.Equal(t, "950.00", result.Preview[1]["amount"])
		assert.Equal(t, "1000.00", result.Preview[2]["amount"])
	})

	t.Run("Validate with reference lookup", func(t *testing.T) {
		lookupFn := func(refType, value string) (bool, error) {
			return value == "las-palmas", nil
		}

		processor := NewImportProcessor(WithReferenceLookup(lookupFn))
		requestedBy := uuid.New()
		session := NewImportSession(uuid.Nil, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "community_code,amount\nlas-palmas,950.00\nno-such-community,950.00"
		rules := []FieldRule{
			Field("community_code").Required().Reference("community").Build(),
			Field("amount").Required().Decimal().Build(),
		}

		result, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
	})

	t.Run("Validate with uniqueness lookup", func(t *testing.T) {
		lookupFn := func(entityType, field, value string) (bool, error) {
			return value == "2026-01-01", nil
		}

		processor := NewImportProcessor(WithUniqueLookup(lookupFn))
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n950.00,2026-07-01\n950.00,2026-01-01"
		rules := []FieldRule{
			Field("amount").Required().Decimal().Build(),
			Field("effective_from").Required().Date().Unique().Build(),
		}

		result, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Equal(t, 1, result.ErrorRows)
	})

	t.Run("Validate context cancellation", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		ctx, cancel := context.WithCancel(context.Background())
		cancel() // Cancel immediately

		csv := "amount,effective_from\n950.00,2026-01-01"
		rules := []FieldRule{
			Field("amount").Build(),
		}

		_, err := processor.Validate(ctx, session, strings.NewReader(csv), rules)

		assert.Error(t, err)
		assert.Equal(t, StateCancelled, session.State)
	})

	t.Run("Session state updates", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n950.00,2026-01-01"
		rules := []FieldRule{
			Field("amount").Build(),
			Field("effective_from").Build(),
		}

		_, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Equal(t, StateValidated, session.State)
	})

	t.Run("Session state updates on error", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n,2026-01-01" // Missing required field
		rules := []FieldRule{
			Field("amount").Required().Build(),
			Field("effective_from").Build(),
		}

		_, err := processor.Validate(context.Background(), session, strings.NewReader(csv), rules)

		require.NoError(t, err)
		assert.Equal(t, StateFailed, session.State)
	})

	t.Run("Apply creates and skips rows", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n950.00,2026-01-01\n1100.00,2026-07-01\n1100.00,2027-01-01"
		rules := []FieldRule{
			Field("amount").Required().Decimal().Build(),
			Field("effective_from").Required().Date().Build(),
		}

		var applied []string
		apply := func(ctx context.Context, row *Row) (bool, error) {
			applied = append(applied, row.Get("effective_from"))
			// Pretend the 2026-07-01 version already exists
			return row.Get("effective_from") != "2026-07-01", nil
		}

		result, err := processor.Apply(context.Background(), session, strings.NewReader(csv), rules, apply)

		require.NoError(t, err)
		assert.Equal(t, 3, result.TotalRows)
		assert.Equal(t, 3, result.ValidRows)
		assert.Equal(t, 2, result.CreatedRows)
		assert.Equal(t, 1, result.SkippedRows)
		assert.Equal(t, 0, result.ErrorRows)
		assert.Equal(t, []string{"2026-01-01", "2026-07-01", "2027-01-01"}, applied)
		assert.Equal(t, StateCompleted, session.State)
	})

	t.Run("Apply collects applier errors", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\n950.00,2026-01-01\n1100.00,2026-07-01"
		rules := []FieldRule{
			Field("amount").Required().Decimal().Build(),
			Field("effective_from").Required().Date().Build(),
		}

		apply := func(ctx context.Context, row *Row) (bool, error) {
			if row.Get("effective_from") == "2026-07-01" {
				return false, fmt.Errorf("schedule rejected")
			}
			return true, nil
		}

		result, err := processor.Apply(context.Background(), session, strings.NewReader(csv), rules, apply)

		require.NoError(t, err)
		assert.Equal(t, 1, result.CreatedRows)
		assert.Equal(t, 1, result.ErrorRows)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, ErrCodeImportApplyFailed, result.Errors[0].Code)
		assert.Equal(t, StateFailed, session.State)
	})

	t.Run("Apply does not call the applier for invalid rows", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		csv := "amount,effective_from\nnot-a-number,2026-01-01\n950.00,2026-07-01"
		rules := []FieldRule{
			Field("amount").Required().Decimal().Build(),
			Field("effective_from").Required().Date().Build(),
		}

		var calls int
		apply := func(ctx context.Context, row *Row) (bool, error) {
			calls++
			return true, nil
		}

		result, err := processor.Apply(context.Background(), session, strings.NewReader(csv), rules, apply)

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, result.CreatedRows)
		assert.Equal(t, 1, result.ErrorRows)
	})

	t.Run("Apply requires an applier", func(t *testing.T) {
		processor := NewImportProcessor()
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		_, err := processor.Apply(context.Background(), session, strings.NewReader("amount\n950.00"), nil, nil)

		assert.Error(t, err)
	})
}

func TestInMemorySessionStore(t *testing.T) {
	t.Run("Save and Get", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		err := store.Save(session)
		require.NoError(t, err)

		retrieved, err := store.Get(session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, retrieved.ID)
	})

	t.Run("Get non-existent session", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)

		session, err := store.Get(uuid.New())
		require.NoError(t, err)
		assert.Nil(t, session)
	})

	t.Run("Delete session", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		store.Save(session)
		err := store.Delete(session.ID)
		require.NoError(t, err)

		retrieved, _ := store.Get(session.ID)
		assert.Nil(t, retrieved)
	})

	t.Run("GetByCommunity", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Hour)
		communityID := uuid.New()
		requestedBy := uuid.New()

		session1 := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees1.csv", 1024)
		session2 := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees2.csv", 1024)
		session3 := NewImportSession(uuid.New(), requestedBy, EntityFeeSchedules, "fees3.csv", 1024) // Different community

		store.Save(session1)
		store.Save(session2)
		store.Save(session3)

		sessions, err := store.GetByCommunity(communityID, 10)
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
	})

	t.Run("TTL expiration", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Millisecond * 10)
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		store.Save(session)

		// Wait for TTL to expire
		time.Sleep(time.Millisecond * 20)

		retrieved, err := store.Get(session.ID)
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("Cleanup removes expired", func(t *testing.T) {
		store := NewInMemorySessionStore(time.Millisecond * 10)
		communityID := uuid.New()
		requestedBy := uuid.New()
		session := NewImportSession(communityID, requestedBy, EntityFeeSchedules, "fees.csv", 1024)

		store.Save(session)

		// Wait for TTL to expire
		time.Sleep(time.Millisecond * 20)

		store.Cleanup()

		// Direct check - should have been cleaned up
		store.mu.RLock()
		defer store.mu.RUnlock()
		assert.Empty(t, store.sessions)
	})
}
