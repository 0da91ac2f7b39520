package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	billingapp "github.com/condominio/backend/internal/application/billing"
	"github.com/condominio/backend/internal/application/importer"
	"github.com/condominio/backend/internal/domain/billing"
	"github.com/condominio/backend/internal/infrastructure/cache"
	"github.com/condominio/backend/internal/infrastructure/config"
	"github.com/condominio/backend/internal/infrastructure/event"
	"github.com/condominio/backend/internal/infrastructure/logger"
	"github.com/condominio/backend/internal/infrastructure/persistence"
	"github.com/condominio/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	code := run(context.Background(), cfg, log, command, args[1:])
	_ = logger.Sync(log)
	if code != 0 {
		os.Exit(code)
	}
}

// run wires the full service stack, executes one command and tears the
// stack down again. Wiring failures and command failures both map to a
// non-zero exit code; deferred shutdowns still run so telemetry is flushed.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, command string, args []string) int {
	// Telemetry providers (no-op when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize tracer provider", zap.Error(err))
		return 1
	}
	defer shutdownWithTimeout(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize meter provider", zap.Error(err))
		return 1
	}
	defer shutdownWithTimeout(log, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize logger provider", zap.Error(err))
		return 1
	}
	defer shutdownWithTimeout(log, "logger provider", loggerProvider.Shutdown)

	if loggerProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: loggerProvider,
			Level:          zapcore.InfoLevel,
		})
		log = log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, otelCore)
		}))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:             cfg.Profiling.Enabled,
		ServerAddress:       cfg.Profiling.ServerAddress,
		ApplicationName:     cfg.Profiling.ApplicationName,
		BasicAuthUser:       cfg.Profiling.BasicAuthUser,
		BasicAuthPassword:   cfg.Profiling.BasicAuthPassword,
		ProfileCPU:          true,
		ProfileAllocObjects: true,
		ProfileAllocSpace:   true,
		ProfileInuseObjects: true,
		ProfileInuseSpace:   true,
		ProfileGoroutines:   true,
	}, log)
	if err != nil {
		log.Error("Failed to start profiler", zap.Error(err))
		return 1
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Profiling.Enabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Database with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	tracingPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        "postgresql",
	}, log)
	if err := tracingPlugin.RegisterOtelGorm(db.DB); err != nil {
		log.Error("Failed to register database tracing", zap.Error(err))
		return 1
	}

	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.Enabled = cfg.Telemetry.Enabled
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.NewDBMetrics(meterProvider.Meter("condominio-db"), dbMetricsCfg, log)
	if err != nil {
		log.Error("Failed to initialize database metrics", zap.Error(err))
		return 1
	}
	if err := db.DB.Use(telemetry.NewDBMetricsPlugin(dbMetrics, log)); err != nil {
		log.Error("Failed to register database metrics plugin", zap.Error(err))
		return 1
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		dbMetrics.SetSQLDB(sqlDB)
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	// Repositories and services
	communityRepo := persistence.NewGormCommunityRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	scheduleRepo := persistence.NewGormFeeScheduleRepository(db.DB)
	chargeRepo := persistence.NewGormMonthlyChargeRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentSubmissionRepository(db.DB)
	allocationRepo := persistence.NewGormPaymentAllocationRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	allocationService := billingapp.NewAllocationService(scope)
	chargeService := billingapp.NewChargeService(scope, communityRepo, unitRepo, allocationService)
	paymentService := billingapp.NewPaymentService(scope, unitRepo, paymentRepo, allocationService)
	feeService := billingapp.NewFeeScheduleService(scheduleRepo)
	feeImporter := importer.NewFeeScheduleImporter(feeService, communityRepo)
	statementService := billingapp.NewStatementService(unitRepo, chargeRepo, paymentRepo, allocationRepo)

	// Balance cache (Redis with in-memory fallback)
	cacheFactory := cache.NewBalanceCacheFactory(cfg.Redis,
		cache.WithTTL(cfg.Cache.BalanceTTL),
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	balanceCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Error("Failed to create balance cache", zap.Error(err))
		return 1
	}
	statementService.SetBalanceCache(balanceCache)

	// Business metrics with a one-shot gauge snapshot per invocation
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meterProvider.Meter("condominio-billing"),
		Logger:          log,
		CollectInterval: cfg.Telemetry.MetricsCollectInterval,
		LedgerProvider:  telemetry.NewGormLedgerMetricsProvider(db.DB),
	})
	if err != nil {
		log.Error("Failed to initialize business metrics", zap.Error(err))
		return 1
	}
	businessMetrics.StartPeriodicCollection(ctx, telemetry.NewGormCommunityProvider(db.DB), cfg.Telemetry.MetricsCollectInterval)
	defer businessMetrics.Stop()

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(billingapp.NewBalanceInvalidationHandler(balanceCache, log))
	eventBus.Subscribe(billingapp.NewLedgerMetricsHandler(businessMetrics, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Error("Failed to start event bus", zap.Error(err))
		return 1
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	allocationService.SetEventPublisher(eventBus)
	chargeService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	feeService.SetEventPublisher(eventBus)

	printer := newPrinter(cfg.App.Locale, log)

	var cmdErr error
	switch command {
	case "generate":
		cmdErr = runGenerate(ctx, args, chargeService, printer)
	case "balance":
		cmdErr = runBalance(ctx, args, statementService, printer)
	case "statement":
		cmdErr = runStatement(ctx, args, statementService, printer)
	case "submit":
		cmdErr = runSubmit(ctx, args, paymentService, printer)
	case "approve":
		cmdErr = runApprove(ctx, args, paymentService, printer)
	case "reject":
		cmdErr = runReject(ctx, args, paymentService, printer)
	case "allocate":
		cmdErr = runAllocate(ctx, args, allocationService, printer)
	case "void":
		cmdErr = runVoid(ctx, args, chargeService, printer)
	case "import-fees":
		cmdErr = runImportFees(ctx, args, feeImporter, printer, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}

	if cmdErr != nil {
		if errors.Is(cmdErr, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmdErr)
		log.Error("Command failed", zap.String("command", command), zap.Error(cmdErr))
		return 1
	}
	return 0
}

func runGenerate(ctx context.Context, args []string, charges *billingapp.ChargeService, p *message.Printer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	communityStr := fs.String("community", "", "Community ID (required)")
	fromStr := fs.String("from", "", "First period, YYYY-MM (required)")
	toStr := fs.String("to", "", "Last period, YYYY-MM (defaults to -from)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	communityID, err := parseUUID(*communityStr, "community")
	if err != nil {
		return err
	}
	if *fromStr == "" {
		return fmt.Errorf("-from is required")
	}
	from, err := billing.ParsePeriod(*fromStr)
	if err != nil {
		return err
	}
	to := from
	if *toStr != "" {
		if to, err = billing.ParsePeriod(*toStr); err != nil {
			return err
		}
	}

	result, err := charges.GenerateCharges(ctx, billingapp.GenerateChargesRequest{
		CommunityID: communityID,
		PeriodFrom:  from,
		PeriodTo:    to,
	})
	if err != nil {
		return err
	}

	p.Printf("Generated %d charge(s) for %s through %s, %d already existed\n",
		result.Created, billing.FormatPeriod(result.PeriodFrom), billing.FormatPeriod(result.PeriodTo), result.SkippedExisting)
	if len(result.MissingFeePeriods) > 0 {
		p.Printf("No fee schedule in force for: %s\n", strings.Join(result.MissingFeePeriods, ", "))
	}
	if result.CreditApplied.IsPositive() {
		p.Printf("Available credit applied to new charges: %s\n", formatMoney(p, result.CreditApplied))
	}
	return nil
}

func runBalance(ctx context.Context, args []string, statements *billingapp.StatementService, p *message.Printer) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	unitStr := fs.String("unit", "", "Unit ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	unitID, err := parseUUID(*unitStr, "unit")
	if err != nil {
		return err
	}

	balance, err := statements.GetUnitBalance(ctx, unitID)
	if err != nil {
		return err
	}

	p.Printf("Unit %s\n", balance.UnitID)
	p.Printf("  Total charged:    %s\n", formatMoney(p, balance.TotalCharged))
	p.Printf("  Total applied:    %s\n", formatMoney(p, balance.TotalApplied))
	p.Printf("  Balance due:      %s\n", formatMoney(p, balance.BalanceDue))
	p.Printf("  Credit available: %s\n", formatMoney(p, balance.CreditAvailable))
	p.Printf("  Unpaid months:    %d\n", balance.UnpaidMonths)
	if balance.LastPaymentAt != nil {
		p.Printf("  Last payment:     %s\n", balance.LastPaymentAt.Format("2006-01-02"))
	}
	return nil
}

func runStatement(ctx context.Context, args []string, statements *billingapp.StatementService, p *message.Printer) error {
	fs := flag.NewFlagSet("statement", flag.ContinueOnError)
	unitStr := fs.String("unit", "", "Unit ID (required)")
	limit := fs.Int("limit", 24, "Maximum number of months to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	unitID, err := parseUUID(*unitStr, "unit")
	if err != nil {
		return err
	}

	rows, err := statements.GetUnitStatement(ctx, unitID, *limit)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		p.Printf("No charges on record for unit %s\n", unitID)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tAMOUNT\tAPPLIED\tBALANCE\tSTATUS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			billing.FormatPeriod(row.Period),
			formatMoney(p, row.Amount),
			formatMoney(p, row.Applied),
			formatMoney(p, row.Balance),
			row.Status,
		)
	}
	return w.Flush()
}

func runSubmit(ctx context.Context, args []string, payments *billingapp.PaymentService, p *message.Printer) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	unitStr := fs.String("unit", "", "Unit ID (required)")
	amountStr := fs.String("amount", "", "Payment amount (required)")
	reference := fs.String("reference", "", "Transfer folio or reference")
	if err := fs.Parse(args); err != nil {
		return err
	}
	unitID, err := parseUUID(*unitStr, "unit")
	if err != nil {
		return err
	}
	if *amountStr == "" {
		return fmt.Errorf("-amount is required")
	}
	amount, err := decimal.NewFromString(*amountStr)
	if err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}

	resp, err := payments.SubmitPayment(ctx, billingapp.SubmitPaymentRequest{
		UnitID:    unitID,
		Amount:    amount,
		Reference: *reference,
	})
	if err != nil {
		return err
	}

	p.Printf("Payment %s submitted for review: %s for unit %s\n", resp.ID, formatMoney(p, resp.Amount), resp.UnitID)
	return nil
}

func runApprove(ctx context.Context, args []string, payments *billingapp.PaymentService, p *message.Printer) error {
	fs := flag.NewFlagSet("approve", flag.ContinueOnError)
	paymentStr := fs.String("payment", "", "Payment ID (required)")
	reviewerStr := fs.String("reviewer", "", "Reviewer ID (required)")
	noAutoAllocate := fs.Bool("no-auto-allocate", false, "Approve without allocating to open charges")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paymentID, err := parseUUID(*paymentStr, "payment")
	if err != nil {
		return err
	}
	reviewerID, err := parseUUID(*reviewerStr, "reviewer")
	if err != nil {
		return err
	}

	result, err := payments.ApprovePayment(ctx, billingapp.ApprovePaymentRequest{
		PaymentID:    paymentID,
		ReviewerID:   reviewerID,
		AutoAllocate: !*noAutoAllocate,
	})
	if err != nil {
		return err
	}

	if result.AlreadyReviewed {
		p.Printf("Payment %s was already %s, nothing changed\n",
			result.Payment.ID, strings.ToLower(string(result.Payment.Status)))
		return nil
	}
	p.Printf("Payment %s approved\n", result.Payment.ID)
	if result.AllocatedTotal.IsPositive() {
		p.Printf("Allocated %s across %d charge(s)\n", formatMoney(p, result.AllocatedTotal), result.ChargesRecomputed)
	}
	return nil
}

func runReject(ctx context.Context, args []string, payments *billingapp.PaymentService, p *message.Printer) error {
	fs := flag.NewFlagSet("reject", flag.ContinueOnError)
	paymentStr := fs.String("payment", "", "Payment ID (required)")
	reviewerStr := fs.String("reviewer", "", "Reviewer ID (required)")
	notes := fs.String("notes", "", "Reason shown to the owner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paymentID, err := parseUUID(*paymentStr, "payment")
	if err != nil {
		return err
	}
	reviewerID, err := parseUUID(*reviewerStr, "reviewer")
	if err != nil {
		return err
	}

	result, err := payments.RejectPayment(ctx, billingapp.RejectPaymentRequest{
		PaymentID:  paymentID,
		ReviewerID: reviewerID,
		Notes:      *notes,
	})
	if err != nil {
		return err
	}

	if result.AlreadyReviewed {
		p.Printf("Payment %s was already %s, nothing changed\n",
			result.Payment.ID, strings.ToLower(string(result.Payment.Status)))
		return nil
	}
	p.Printf("Payment %s rejected\n", result.Payment.ID)
	if result.ChargesRecomputed > 0 {
		p.Printf("Recomputed %d charge(s) previously covered by this payment\n", result.ChargesRecomputed)
	}
	return nil
}

func runAllocate(ctx context.Context, args []string, allocations *billingapp.AllocationService, p *message.Printer) error {
	fs := flag.NewFlagSet("allocate", flag.ContinueOnError)
	paymentStr := fs.String("payment", "", "Payment ID (required)")
	chargeStr := fs.String("charge", "", "Charge ID (required)")
	amountStr := fs.String("amount", "", "Amount to apply (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	paymentID, err := parseUUID(*paymentStr, "payment")
	if err != nil {
		return err
	}
	chargeID, err := parseUUID(*chargeStr, "charge")
	if err != nil {
		return err
	}
	if *amountStr == "" {
		return fmt.Errorf("-amount is required")
	}
	amount, err := decimal.NewFromString(*amountStr)
	if err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}

	resp, err := allocations.AllocateManually(ctx, billingapp.AllocateManuallyRequest{
		PaymentID: paymentID,
		ChargeID:  chargeID,
		Amount:    amount,
	})
	if err != nil {
		return err
	}

	p.Printf("Applied %s from payment %s to charge %s\n", formatMoney(p, amount), resp.PaymentID, resp.ChargeID)
	p.Printf("Charge is now %s with %s applied in total from this payment\n",
		strings.ToLower(string(resp.ChargeStatus)), formatMoney(p, resp.AmountApplied))
	return nil
}

func runVoid(ctx context.Context, args []string, charges *billingapp.ChargeService, p *message.Printer) error {
	fs := flag.NewFlagSet("void", flag.ContinueOnError)
	chargeStr := fs.String("charge", "", "Charge ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	chargeID, err := parseUUID(*chargeStr, "charge")
	if err != nil {
		return err
	}

	resp, err := charges.VoidCharge(ctx, chargeID)
	if err != nil {
		return err
	}

	p.Printf("Charge %s for %s voided\n", resp.ID, billing.FormatPeriod(resp.Period))
	return nil
}

// runImportFees loads fee schedule versions from a CSV with headers
// amount, effective_from and optional notes and community_code columns.
// Rows go to the community named by their code, or to -community when the
// file has no code column. Rows that fail validation are reported with
// their line number and skipped; any failed row makes the command exit
// non-zero so scripts notice.
func runImportFees(ctx context.Context, args []string, imp *importer.FeeScheduleImporter, p *message.Printer, log *zap.Logger) error {
	fs := flag.NewFlagSet("import-fees", flag.ContinueOnError)
	communityStr := fs.String("community", "", "Default community ID for files without a community_code column")
	filePath := fs.String("file", "", "Path to the CSV file (required)")
	dryRun := fs.Bool("dry-run", false, "Validate the file without creating schedules")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *filePath == "" {
		return fmt.Errorf("-file is required")
	}
	communityID := uuid.Nil
	if *communityStr != "" {
		var err error
		communityID, err = parseUUID(*communityStr, "community")
		if err != nil {
			return err
		}
	}

	f, err := os.Open(*filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *filePath, err)
	}
	defer f.Close()

	report, err := imp.Import(ctx, f, importer.ImportRequest{
		DefaultCommunityID: communityID,
		FileName:           filepath.Base(*filePath),
		DryRun:             *dryRun,
	})
	if err != nil {
		return err
	}

	for _, rowErr := range report.Errors {
		log.Warn("Skipping fee schedule row",
			zap.Int("line", rowErr.Row),
			zap.String("column", rowErr.Column),
			zap.String("code", rowErr.Code),
		)
		fmt.Fprintf(os.Stderr, "  %v\n", rowErr)
	}

	if report.DryRun {
		p.Printf("Validated %d row(s), %d with errors\n", report.TotalRows, report.FailedRows)
	} else {
		p.Printf("Imported %d fee schedule version(s), %d already on file\n",
			report.Created, report.SkippedExisting)
	}
	if report.FailedRows > 0 {
		return fmt.Errorf("%d row(s) failed validation", report.FailedRows)
	}
	return nil
}

func parseUUID(value, name string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("-%s is required", name)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid -%s: %w", name, err)
	}
	return id, nil
}

// newPrinter builds the locale-aware printer used for all command output.
// An unparseable locale falls back to es-MX rather than failing the run.
func newPrinter(locale string, log *zap.Logger) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		log.Warn("Invalid locale, falling back to es-MX", zap.String("locale", locale), zap.Error(err))
		tag = language.MustParse("es-MX")
	}
	return message.NewPrinter(tag)
}

// formatMoney renders a two-decimal amount with the locale's digit grouping.
func formatMoney(p *message.Printer, amount decimal.Decimal) string {
	f, _ := amount.Float64()
	return p.Sprintf("$%v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

func printUsage() {
	fmt.Println(`Condominio Ledger Tool

Usage:
  ledgerctl [flags] <command> [command flags]

Commands:
  generate      Generate monthly charges for a community over a period range
  balance       Show the financial summary of a unit
  statement     Show a unit's recent charges with applied amounts
  submit        Record a payment reported for a unit
  approve       Approve a submitted payment and allocate it to open charges
  reject        Reject a submitted payment
  allocate      Apply part of an approved payment to a specific charge
  void          Void a charge so it stops counting toward debt
  import-fees   Load fee schedule versions from a CSV file

Command flags:
  generate      -community <id> -from <YYYY-MM> [-to <YYYY-MM>]
  balance       -unit <id>
  statement     -unit <id> [-limit <n>]
  submit        -unit <id> -amount <n> [-reference <text>]
  approve       -payment <id> -reviewer <id> [-no-auto-allocate]
  reject        -payment <id> -reviewer <id> [-notes <text>]
  allocate      -payment <id> -charge <id> -amount <n>
  void          -charge <id>
  import-fees   [-community <id>] -file <path> [-dry-run]

Flags:
  -log-level string   Log level override: debug, info, warn, error

Configuration is read from config.toml plus CONDO_* environment variables.

Examples:
  # Generate the first quarter for a community
  ledgerctl generate -community 6f1c... -from 2026-01 -to 2026-03

  # Review a submitted payment
  ledgerctl approve -payment 9d2e... -reviewer 41aa...

  # Check what a unit owes
  ledgerctl balance -unit 7b3f...`)
}

// shutdownWithTimeout runs a provider shutdown with a bounded context so a
// hung collector cannot wedge the CLI on exit.
func shutdownWithTimeout(log *zap.Logger, name string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
