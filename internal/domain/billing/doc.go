// Package billing provides domain models for the monthly fee ledger of
// residential communities.
//
// This package implements the billing bounded context, which is responsible for:
//   - Versioning the monthly fee of each community over time
//   - Issuing one charge per unit per month and tracking what remains unpaid
//   - Recording owner payments and allocating them across open charges
//
// Key Aggregates:
//   - FeeSchedule: One version of a community's monthly fee, effective from a date
//   - MonthlyCharge: The amount a unit owes for one calendar month
//   - PaymentSubmission: An owner's reported payment awaiting review
//   - PaymentAllocation: The portion of an approved payment applied to a charge
//
// Value Objects:
//   - UnitBalance: A unit's open debt and unallocated credit
//   - StatementRow: One charge with its payments in a unit's history
//
// The billing domain integrates with:
//   - Community domain: For community, unit and owner records
package billing
