package billing

import (
	"time"

	"github.com/condominio/backend/internal/domain/shared"
)

// PeriodLayout is the canonical textual form of a billing period (year-month)
const PeriodLayout = "2006-01"

// NewPeriod returns the billing period for the given year and month,
// the first day of the month at midnight UTC
func NewPeriod(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// PeriodOf normalizes an arbitrary date to its billing period
func PeriodOf(t time.Time) time.Time {
	return NewPeriod(t.Year(), t.Month())
}

// ParsePeriod parses a period in "YYYY-MM" form
func ParsePeriod(s string) (time.Time, error) {
	t, err := time.Parse(PeriodLayout, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_PERIOD", "Period must be in YYYY-MM format")
	}
	return PeriodOf(t), nil
}

// FormatPeriod renders a period in "YYYY-MM" form
func FormatPeriod(t time.Time) string {
	return t.Format(PeriodLayout)
}

// ValidatePeriod checks that a date is a valid billing period (first day of a month)
func ValidatePeriod(t time.Time) error {
	if t.IsZero() {
		return shared.NewDomainError("INVALID_PERIOD", "Period is required")
	}
	if t.Day() != 1 {
		return shared.NewDomainError("INVALID_PERIOD", "Period must be the first day of the month")
	}
	return nil
}

// NextPeriod returns the period one month after the given one
func NextPeriod(t time.Time) time.Time {
	return PeriodOf(t).AddDate(0, 1, 0)
}

// PeriodsBetween returns every period from start to end inclusive, in
// ascending order. Both bounds are normalized to their month first.
// An inverted range yields an empty slice.
func PeriodsBetween(start, end time.Time) []time.Time {
	from := PeriodOf(start)
	to := PeriodOf(end)
	if to.Before(from) {
		return nil
	}

	periods := make([]time.Time, 0, MonthsBetween(from, to)+1)
	for cur := from; !cur.After(to); cur = NextPeriod(cur) {
		periods = append(periods, cur)
	}
	return periods
}

// MonthsBetween returns the number of whole months from one period to another
func MonthsBetween(from, to time.Time) int {
	from = PeriodOf(from)
	to = PeriodOf(to)
	return (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
}

// SamePeriod reports whether two dates fall in the same billing period
func SamePeriod(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
