package billing

import (
	"sort"
	"time"

	"github.com/condominio/backend/internal/domain/shared"
	"github.com/condominio/backend/internal/domain/shared/strategy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditSource represents an approved payment with unspent credit that can
// be drawn from to cover a charge
type CreditSource struct {
	PaymentID   uuid.UUID
	Available   decimal.Decimal
	ReviewedAt  *time.Time
	SubmittedAt time.Time
}

// consumeOrder is the timestamp credit is consumed by, review time first,
// submission time for approved-but-unreviewed edge cases
func (s CreditSource) consumeOrder() time.Time {
	if s.ReviewedAt != nil {
		return *s.ReviewedAt
	}
	return s.SubmittedAt
}

// CreditDraw represents money taken from one payment's unspent credit
type CreditDraw struct {
	PaymentID uuid.UUID
	Amount    decimal.Decimal
}

// CreditApplicationResult summarizes one credit-application pass over a charge
type CreditApplicationResult struct {
	Draws            []CreditDraw
	TotalApplied     decimal.Decimal
	RemainingBalance decimal.Decimal
	FullyCovered     bool
	SourcesSpent     int // Sources drained to zero
	SourcesPartial   int // Sources drawn from but not drained
}

// FIFOCreditStrategy consumes unspent payment credit oldest-first until the
// charge balance is covered or the credit runs out
type FIFOCreditStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOCreditStrategy creates a new FIFO credit strategy
func NewFIFOCreditStrategy() *FIFOCreditStrategy {
	return &FIFOCreditStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"fifo_credit",
			strategy.StrategyTypeAllocation,
			"Consumes unspent approved-payment credit oldest review first",
		),
	}
}

// Draw walks the credit sources oldest-first and plans draws until the
// balance reaches zero. Sources are not mutated; the caller persists the
// resulting allocations.
func (s *FIFOCreditStrategy) Draw(balance decimal.Decimal, sources []CreditSource) (*CreditApplicationResult, error) {
	if balance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Balance cannot be negative")
	}

	ordered := make([]CreditSource, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		oi, oj := ordered[i].consumeOrder(), ordered[j].consumeOrder()
		if !oi.Equal(oj) {
			return oi.Before(oj)
		}
		if !ordered[i].SubmittedAt.Equal(ordered[j].SubmittedAt) {
			return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
		}
		return ordered[i].PaymentID.String() < ordered[j].PaymentID.String()
	})

	result := &CreditApplicationResult{
		Draws:            make([]CreditDraw, 0, len(ordered)),
		TotalApplied:     decimal.Zero,
		RemainingBalance: balance,
	}

	for _, src := range ordered {
		if result.RemainingBalance.IsZero() {
			break
		}

		toApply := decimal.Min(src.Available, result.RemainingBalance)
		if toApply.LessThanOrEqual(decimal.Zero) {
			continue
		}

		result.Draws = append(result.Draws, CreditDraw{
			PaymentID: src.PaymentID,
			Amount:    toApply,
		})
		result.TotalApplied = result.TotalApplied.Add(toApply)
		result.RemainingBalance = result.RemainingBalance.Sub(toApply)

		if toApply.Equal(src.Available) {
			result.SourcesSpent++
		} else {
			result.SourcesPartial++
		}
	}

	result.FullyCovered = result.RemainingBalance.IsZero()

	return result, nil
}

// ChargeTarget represents an open charge that auto-allocation can pay into
type ChargeTarget struct {
	ChargeID    uuid.UUID
	Period      time.Time
	Outstanding decimal.Decimal
	CreatedAt   time.Time
}

// ChargeAllocation represents money planned onto one charge
type ChargeAllocation struct {
	ChargeID uuid.UUID
	Period   time.Time
	Amount   decimal.Decimal
}

// AutoAllocationResult summarizes one auto-allocation pass of a payment
// across a unit's open charges
type AutoAllocationResult struct {
	Allocations     []ChargeAllocation
	TotalAllocated  decimal.Decimal
	RemainingCredit decimal.Decimal
	ChargesCovered  int // Charges whose outstanding went to zero
	ChargesPartial  int // Charges only partially covered
}

// OldestPeriodFirstStrategy distributes a payment's credit across open
// charges starting from the oldest billing period
type OldestPeriodFirstStrategy struct {
	strategy.BaseStrategy
}

// NewOldestPeriodFirstStrategy creates a new oldest-period-first strategy
func NewOldestPeriodFirstStrategy() *OldestPeriodFirstStrategy {
	return &OldestPeriodFirstStrategy{
		BaseStrategy: strategy.NewBaseStrategy(
			"oldest_period_first",
			strategy.StrategyTypeAllocation,
			"Distributes payment credit across open charges oldest period first",
		),
	}
}

// Distribute walks the open charges oldest period first and plans
// allocations until the credit is spent or every charge is covered
func (s *OldestPeriodFirstStrategy) Distribute(credit decimal.Decimal, targets []ChargeTarget) (*AutoAllocationResult, error) {
	if credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit cannot be negative")
	}

	ordered := make([]ChargeTarget, len(targets))
	copy(ordered, targets)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].Period.Equal(ordered[j].Period) {
			return ordered[i].Period.Before(ordered[j].Period)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	result := &AutoAllocationResult{
		Allocations:     make([]ChargeAllocation, 0, len(ordered)),
		TotalAllocated:  decimal.Zero,
		RemainingCredit: credit,
	}

	for _, target := range ordered {
		if result.RemainingCredit.IsZero() {
			break
		}

		toApply := decimal.Min(result.RemainingCredit, target.Outstanding)
		if toApply.LessThanOrEqual(decimal.Zero) {
			continue
		}

		result.Allocations = append(result.Allocations, ChargeAllocation{
			ChargeID: target.ChargeID,
			Period:   target.Period,
			Amount:   toApply,
		})
		result.TotalAllocated = result.TotalAllocated.Add(toApply)
		result.RemainingCredit = result.RemainingCredit.Sub(toApply)

		if toApply.Equal(target.Outstanding) {
			result.ChargesCovered++
		} else {
			result.ChargesPartial++
		}
	}

	return result, nil
}
