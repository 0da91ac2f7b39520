package telemetry

// Billing operation names used in profiling labels and span attributes.
const (
	OperationGenerateCharges = "generate_charges"
	OperationApplyCredit     = "apply_credit"
	OperationApprovePayment  = "approve_payment"
	OperationRejectPayment   = "reject_payment"
	OperationUnitBalance     = "unit_balance"
	OperationUnitStatement   = "unit_statement"
)

// Span attribute keys for billing spans.
const (
	SpanAttrCommunityID = "community_id"
	SpanAttrUnitID      = "unit_id"
	SpanAttrChargeID    = "charge_id"
	SpanAttrPeriod      = "period"
	SpanAttrReviewer    = "reviewer"
)

// BillingOperationLabels creates profiling labels for a billing operation.
// The detail label distinguishes variants of the same operation, for example
// the call site that triggered a credit application.
func BillingOperationLabels(operation, detail string) map[string]string {
	labels := map[string]string{
		ProfilingLabelOperation: operation,
	}
	if detail != "" {
		labels["detail"] = detail
	}
	return labels
}
