package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitBalance is the financial summary of one unit, derived from its
// charges, approved payments, and allocations. All totals are clamped at
// zero; missing rows aggregate to zero, never to an error.
type UnitBalance struct {
	UnitID          uuid.UUID       `json:"unit_id"`
	CommunityID     uuid.UUID       `json:"community_id"`
	TotalCharged    decimal.Decimal `json:"total_charged"`    // Sum of non-VOID charge amounts
	TotalApplied    decimal.Decimal `json:"total_applied"`    // Sum of approved-payment allocations
	CreditAvailable decimal.Decimal `json:"credit_available"` // Approved money not yet allocated
	BalanceDue      decimal.Decimal `json:"balance_due"`      // Net debt
	UnpaidMonths    int             `json:"unpaid_months"`    // Non-VOID, non-PAID charge count
	LastPaymentAt   *time.Time      `json:"last_payment_at,omitempty"`
	ComputedAt      time.Time       `json:"computed_at"`
}

// BuildUnitBalance assembles a UnitBalance from raw ledger sums, applying
// the zero floor to credit and debt
func BuildUnitBalance(unitID, communityID uuid.UUID, charged, applied, approvedTotal decimal.Decimal, unpaidMonths int, lastPaymentAt *time.Time) *UnitBalance {
	return &UnitBalance{
		UnitID:          unitID,
		CommunityID:     communityID,
		TotalCharged:    charged,
		TotalApplied:    applied,
		CreditAvailable: clampZero(approvedTotal.Sub(applied)),
		BalanceDue:      clampZero(charged.Sub(applied)),
		UnpaidMonths:    unpaidMonths,
		LastPaymentAt:   lastPaymentAt,
		ComputedAt:      time.Now(),
	}
}

// StatementRow is one month of a unit's account statement
type StatementRow struct {
	ChargeID uuid.UUID       `json:"charge_id"`
	Period   time.Time       `json:"period"`
	Amount   decimal.Decimal `json:"amount"`
	Applied  decimal.Decimal `json:"applied"`
	Balance  decimal.Decimal `json:"balance"`
	Status   ChargeStatus    `json:"status"`
}

// BuildStatementRow annotates a charge with its applied total and the
// non-negative remainder
func BuildStatementRow(charge *MonthlyCharge, applied decimal.Decimal) StatementRow {
	return StatementRow{
		ChargeID: charge.ID,
		Period:   charge.Period,
		Amount:   charge.Amount,
		Applied:  applied,
		Balance:  clampZero(charge.Amount.Sub(applied)),
		Status:   charge.Status,
	}
}
