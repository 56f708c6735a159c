package audithook

// Action constants for audit events.
const (
	// Invoice actions
	ActionInvoiceCreated   = "invoice.created"
	ActionInvoicePaid      = "invoice.paid"
	ActionInvoiceOverpaid  = "invoice.overpaid"
	ActionInvoiceCancelled = "invoice.cancelled"
	ActionInvoiceWithdrawn = "invoice.withdrawn"

	// Pending return actions
	ActionPendingReturnWithdrawn = "pending_return.withdrawn"

	// Transfer actions
	ActionTransferFailed = "transfer.failed"
)

// Resource constants for audit events.
const (
	ResourceInvoice       = "invoice"
	ResourcePendingReturn = "pending_return"
	ResourceTransfer      = "transfer"
)

// Category constants for audit events.
const (
	CategoryBilling = "billing"
	CategoryPayment = "payment"
	CategoryPayout  = "payout"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
