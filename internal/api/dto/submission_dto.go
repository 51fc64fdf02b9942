package dto

import (
	"time"

	"github.com/spec-kit/redemption-intake/internal/domain"
)

// CreateSubmissionRequest payload.
type CreateSubmissionRequest struct {
	TicketUserName string  `json:"ticket_user_name"`
	GCCode         string  `json:"gc_code"`
	GCPhone        string  `json:"gc_phone"`
	TicketNumber   string  `json:"ticket_number"`
	UPIID          string  `json:"upi_id"`
	Amount         float64 `json:"amount"`
	ProofVideoURL  string  `json:"proof_video_url"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SubmissionResponse represents one claim.
type SubmissionResponse struct {
	ID             int64                   `json:"id"`
	UserID         int64                   `json:"user_id"`
	TicketUserName string                  `json:"ticket_user_name"`
	GCCode         string                  `json:"gc_code"`
	GCPhone        string                  `json:"gc_phone"`
	TicketNumber   string                  `json:"ticket_number"`
	UPIID          string                  `json:"upi_id"`
	Amount         float64                 `json:"amount"`
	ProofVideoURL  string                  `json:"proof_video_url"`
	Status         domain.SubmissionStatus `json:"status"`
	OwnerEmail     string                  `json:"owner_email,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// NewSubmissionResponse maps a domain submission.
func NewSubmissionResponse(sub *domain.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:             sub.ID,
		UserID:         sub.UserID,
		TicketUserName: sub.TicketUserName,
		GCCode:         sub.GCCode,
		GCPhone:        sub.GCPhone,
		TicketNumber:   sub.TicketNumber,
		UPIID:          sub.UPIID,
		Amount:         sub.Amount,
		ProofVideoURL:  sub.ProofVideoURL,
		Status:         sub.Status,
		CreatedAt:      sub.CreatedAt,
		UpdatedAt:      sub.UpdatedAt,
	}
}

// NewSubmissionWithOwnerResponse maps an operator-view submission.
func NewSubmissionWithOwnerResponse(sub *domain.SubmissionWithOwner) SubmissionResponse {
	resp := NewSubmissionResponse(&sub.Submission)
	resp.OwnerEmail = sub.OwnerEmail
	return resp
}
