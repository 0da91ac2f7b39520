// Package importer loads fee schedule versions from CSV files into the
// ledger. Files carry amount, effective_from and an optional notes column;
// a community_code column routes rows to communities by their short code,
// otherwise every row goes to the default community of the run.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	billingapp "github.com/condominio/backend/internal/application/billing"
	"github.com/condominio/backend/internal/domain/community"
	"github.com/condominio/backend/internal/domain/shared"
	csvimport "github.com/condominio/backend/internal/infrastructure/import"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Required columns of a fee schedule CSV.
var requiredFeeColumns = []string{"amount", "effective_from"}

// ImportRequest controls one fee schedule import run
type ImportRequest struct {
	// DefaultCommunityID receives rows when the file has no community_code
	// column. A file with the column ignores it.
	DefaultCommunityID uuid.UUID
	RequestedBy        uuid.UUID
	FileName           string
	FileSize           int64
	// DryRun validates the whole file without creating schedules
	DryRun bool
}

// ImportReport summarizes one import run. FailedRows counts rows that were
// rejected by validation or by schedule creation; the run itself still
// completes and valid rows are kept.
type ImportReport struct {
	SessionID       uuid.UUID
	DryRun          bool
	TotalRows       int
	Created         int
	SkippedExisting int
	FailedRows      int
	Errors          []csvimport.RowError
}

// FeeScheduleImporter drives fee schedule CSV imports against the fee
// schedule service. Rows whose (community, effective_from) version already
// exists are skipped rather than rejected, so re-running a file is safe.
type FeeScheduleImporter struct {
	fees        *billingapp.FeeScheduleService
	communities community.CommunityRepository
	sessions    csvimport.SessionStore
	processor   *csvimport.ImportProcessor
}

// NewFeeScheduleImporter creates a new FeeScheduleImporter
func NewFeeScheduleImporter(fees *billingapp.FeeScheduleService, communities community.CommunityRepository) *FeeScheduleImporter {
	imp := &FeeScheduleImporter{
		fees:        fees,
		communities: communities,
	}
	imp.processor = csvimport.NewImportProcessor(
		csvimport.WithReferenceLookup(imp.lookupReference),
	)
	return imp
}

// SetSessionStore sets the store that keeps finished import sessions
func (i *FeeScheduleImporter) SetSessionStore(store csvimport.SessionStore) {
	i.sessions = store
}

// Import runs one fee schedule import. The whole file is validated row by
// row; valid rows are applied as they are read unless DryRun is set. Row
// failures are reported in the result, a non-nil error means the run itself
// could not proceed (unreadable file, missing columns, no community).
func (i *FeeScheduleImporter) Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "fee_import", "import")
	defer span.End()

	data, err := io.ReadAll(r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	header, err := csvimport.ParseFromBytes(data)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := header.ParseHeader(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if missing := header.ValidateHeaders(requiredFeeColumns); len(missing) > 0 {
		err := fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
		telemetry.RecordError(span, err)
		return nil, err
	}

	hasCommunityColumn := header.HasHeader("community_code")
	if !hasCommunityColumn && req.DefaultCommunityID == uuid.Nil {
		err := shared.NewDomainError("MISSING_COMMUNITY",
			"File has no community_code column and no default community was given")
		telemetry.RecordError(span, err)
		return nil, err
	}

	fileSize := req.FileSize
	if fileSize == 0 {
		fileSize = int64(len(data))
	}
	session := csvimport.NewImportSession(req.DefaultCommunityID, req.RequestedBy,
		csvimport.EntityFeeSchedules, req.FileName, fileSize)
	if i.sessions != nil {
		defer func() {
			_ = i.sessions.Save(session)
		}()
	}

	rules := feeFieldRules(hasCommunityColumn)

	var result *csvimport.ValidationResult
	if req.DryRun {
		result, err = i.processor.Validate(ctx, session, bytes.NewReader(data), rules)
	} else {
		run := &feeRun{
			importer:         i,
			defaultCommunity: req.DefaultCommunityID,
			communityByCode:  make(map[string]uuid.UUID),
			existingDates:    make(map[uuid.UUID]map[string]bool),
		}
		result, err = i.processor.Apply(ctx, session, bytes.NewReader(data), rules, run.applyRow)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCommunityID, req.DefaultCommunityID.String(),
		"total_rows", result.TotalRows,
		"failed_rows", result.ErrorRows,
	)

	return &ImportReport{
		SessionID:       session.ID,
		DryRun:          req.DryRun,
		TotalRows:       result.TotalRows,
		Created:         result.CreatedRows,
		SkippedExisting: result.SkippedRows,
		FailedRows:      result.ErrorRows,
		Errors:          result.Errors,
	}, nil
}

// lookupReference resolves reference validations against the registry.
// The processor's lookup signature carries no context, so registry reads
// run under the background context.
func (i *FeeScheduleImporter) lookupReference(refType, value string) (bool, error) {
	switch refType {
	case "community":
		comm, err := i.communities.FindByCode(context.Background(), value)
		if err != nil {
			return false, err
		}
		return comm != nil, nil
	default:
		return false, fmt.Errorf("unknown reference type %q", refType)
	}
}

func feeFieldRules(withCommunityColumn bool) []csvimport.FieldRule {
	rules := []csvimport.FieldRule{
		csvimport.Field("amount").Required().Decimal().
			Range(decimal.New(1, -2), decimal.NewFromInt(1000000)).Build(),
		csvimport.Field("effective_from").Required().Date().Build(),
		csvimport.Field("notes").MaxLength(500).Build(),
	}
	if withCommunityColumn {
		rules = append(rules,
			csvimport.Field("community_code").Required().MaxLength(50).Reference("community").Build())
	}
	return rules
}

// feeRun holds the per-run caches: community codes resolved so far and the
// effective dates already on file per community.
type feeRun struct {
	importer         *FeeScheduleImporter
	defaultCommunity uuid.UUID
	communityByCode  map[string]uuid.UUID
	existingDates    map[uuid.UUID]map[string]bool
}

func (r *feeRun) applyRow(ctx context.Context, row *csvimport.Row) (bool, error) {
	communityID := r.defaultCommunity
	if code := row.Get("community_code"); code != "" {
		id, err := r.resolveCommunity(ctx, code)
		if err != nil {
			return false, err
		}
		communityID = id
	}

	amount, err := decimal.NewFromString(row.Get("amount"))
	if err != nil {
		return false, fmt.Errorf("invalid amount %q", row.Get("amount"))
	}
	effectiveFrom, err := time.Parse("2006-01-02", row.Get("effective_from"))
	if err != nil {
		return false, fmt.Errorf("invalid effective_from %q, expected YYYY-MM-DD", row.Get("effective_from"))
	}

	existing, err := r.existingFor(ctx, communityID)
	if err != nil {
		return false, err
	}
	dateKey := effectiveFrom.Format("2006-01-02")
	if existing[dateKey] {
		return false, nil
	}

	if _, err := r.importer.fees.CreateSchedule(ctx, billingapp.CreateFeeScheduleRequest{
		CommunityID:   communityID,
		Amount:        amount,
		EffectiveFrom: effectiveFrom,
		Notes:         row.GetOrDefault("notes", ""),
	}); err != nil {
		return false, err
	}
	existing[dateKey] = true
	return true, nil
}

func (r *feeRun) resolveCommunity(ctx context.Context, code string) (uuid.UUID, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if id, ok := r.communityByCode[key]; ok {
		return id, nil
	}

	comm, err := r.importer.communities.FindByCode(ctx, code)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up community %q: %w", code, err)
	}
	if comm == nil {
		return uuid.Nil, fmt.Errorf("community %q not found", code)
	}

	r.communityByCode[key] = comm.ID
	return comm.ID, nil
}

// existingFor loads the effective dates a community already has, once per
// community and run. Dates created during the run are added by applyRow so
// an in-file duplicate is skipped, not doubled.
func (r *feeRun) existingFor(ctx context.Context, communityID uuid.UUID) (map[string]bool, error) {
	if dates, ok := r.existingDates[communityID]; ok {
		return dates, nil
	}

	schedules, err := r.importer.fees.ListSchedules(ctx, communityID, shared.Filter{})
	if err != nil {
		return nil, err
	}

	dates := make(map[string]bool, len(schedules))
	for _, schedule := range schedules {
		dates[schedule.EffectiveFrom.Format("2006-01-02")] = true
	}
	r.existingDates[communityID] = dates
	return dates, nil
}
