package domain

import "time"

// SubmissionStatus enumerates lifecycle states for redemption claims.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
	SubmissionStatusPaid     SubmissionStatus = "paid"
	SubmissionStatusClosed   SubmissionStatus = "closed"
)

// SubmissionStatuses lists every accepted status value, in workflow order.
var SubmissionStatuses = []SubmissionStatus{
	SubmissionStatusPending,
	SubmissionStatusApproved,
	SubmissionStatusRejected,
	SubmissionStatusPaid,
	SubmissionStatusClosed,
}

// ValidSubmissionStatus reports membership in the status enumeration.
// Operators may move a claim between any two members; only the membership
// itself is enforced.
func ValidSubmissionStatus(s string) bool {
	for _, status := range SubmissionStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

// Submission is the aggregate for a gift-card redemption claim.
type Submission struct {
	ID             int64
	UserID         int64
	TicketUserName string
	GCCode         string
	GCPhone        string
	TicketNumber   string
	UPIID          string
	Amount         float64
	ProofVideoURL  string
	Status         SubmissionStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubmissionWithOwner joins a submission with its owner's email for
// operator views.
type SubmissionWithOwner struct {
	Submission
	OwnerEmail string
}
