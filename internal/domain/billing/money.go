package billing

import (
	"github.com/condominio/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// validatePositiveAmount checks that a monetary amount is strictly positive
// and carries at most 2 decimal places
func validatePositiveAmount(code string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(code, "Amount must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return shared.NewDomainError(code, "Amount cannot have more than 2 decimal places")
	}
	return nil
}

// clampZero floors a monetary value at zero
// Balances and remainders are never reported negative
func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
