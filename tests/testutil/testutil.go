// Package testutil provides common test utilities for the condominio
// backend: deterministic IDs, decimal assertions and event capture helpers
// shared between the package-level tests and the integration suite.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewTestUUID generates a deterministic UUID for testing.
// Uses the provided seed string to create a reproducible UUID.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestCommunityID returns a standard community ID for tests.
func TestCommunityID() uuid.UUID {
	return NewTestUUID("test-community")
}

// TestReviewerID returns a standard reviewer ID for tests.
func TestReviewerID() uuid.UUID {
	return NewTestUUID("test-reviewer")
}

// Money parses a decimal string, failing the test on bad input. It keeps
// fixture amounts readable at the call site.
func Money(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err, "invalid decimal %q", value)
	return d
}

// RequireDecimalEqual fails the test unless actual equals the expected
// decimal string. Comparison uses decimal.Equal, so "50" matches "50.00".
func RequireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	want, err := decimal.NewFromString(expected)
	require.NoError(t, err, "invalid expected decimal %q", expected)
	require.True(t, want.Equal(actual), "expected %s, got %s", expected, actual)
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

// ContextWithCancel creates a cancellable context for tests.
func ContextWithCancel(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithCancel(context.Background())
}

// AssertEventually retries an assertion function until it passes or times out.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	t.Fatalf("Condition not met within %v: %v", timeout, msgAndArgs)
}
