package topics

const (
	// Depósitos
	DepositSubmitted = "deposit_submitted"
	DepositReviewed  = "deposit_reviewed"

	// DLQs
	DepositReviewedDLQ = "deposit_reviewed_dlq"
)
