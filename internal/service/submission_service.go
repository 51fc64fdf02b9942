package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/redemption-intake/internal/domain"
	"github.com/spec-kit/redemption-intake/internal/repository"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// SubmissionService coordinates the redemption claim lifecycle.
type SubmissionService struct {
	submissions repository.SubmissionRepository
}

// SubmissionCreateInput describes claim creation payload.
type SubmissionCreateInput struct {
	TicketUserName string
	GCCode         string
	GCPhone        string
	TicketNumber   string
	UPIID          string
	Amount         float64
	ProofVideoURL  string
}

// NewSubmissionService constructs the service.
func NewSubmissionService(submissions repository.SubmissionRepository) *SubmissionService {
	return &SubmissionService{submissions: submissions}
}

// Create validates the claim and stores it. The owner comes from the
// authenticated caller and the initial status is always pending, whatever
// the caller sent.
func (s *SubmissionService) Create(ctx context.Context, ownerID int64, input SubmissionCreateInput) (*domain.Submission, error) {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"ticket_user_name": input.TicketUserName,
		"gc_code":          input.GCCode,
		"gc_phone":         input.GCPhone,
		"ticket_number":    input.TicketNumber,
		"upi_id":           input.UPIID,
		"proof_video_url":  input.ProofVideoURL,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if input.Amount <= 0 {
		missing["amount"] = "must be positive"
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("all claim fields are required", missing)
	}

	sub := &domain.Submission{
		UserID:         ownerID,
		TicketUserName: strings.TrimSpace(input.TicketUserName),
		GCCode:         strings.TrimSpace(input.GCCode),
		GCPhone:        strings.TrimSpace(input.GCPhone),
		TicketNumber:   strings.TrimSpace(input.TicketNumber),
		UPIID:          strings.TrimSpace(input.UPIID),
		Amount:         input.Amount,
		ProofVideoURL:  strings.TrimSpace(input.ProofVideoURL),
		Status:         domain.SubmissionStatusPending,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListForUser returns the owner's claims, newest first. The caller's proven
// identity must match the requested owner.
func (s *SubmissionService) ListForUser(ctx context.Context, caller *domain.User, ownerID int64) ([]domain.Submission, error) {
	if caller == nil || caller.ID != ownerID {
		return nil, apperrors.NewForbidden("submissions belong to another user")
	}
	return s.submissions.ListByUser(ctx, ownerID)
}

// ListAll returns every claim joined with the owner's email, newest first.
// Operator surface: no per-row authorization.
func (s *SubmissionService) ListAll(ctx context.Context) ([]domain.SubmissionWithOwner, error) {
	return s.submissions.ListAllWithOwner(ctx)
}

// Get returns one claim joined with the owner's email.
func (s *SubmissionService) Get(ctx context.Context, id int64) (*domain.SubmissionWithOwner, error) {
	sub, err := s.submissions.GetWithOwner(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("submission", nil)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// UpdateStatus moves a claim to the requested status. Only membership in the
// status enumeration is checked, not a transition graph; a non-member is
// rejected before storage is touched, with the allowed list echoed back.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id int64, status string) (*domain.Submission, error) {
	if !domain.ValidSubmissionStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{
			"allowed": domain.SubmissionStatuses,
		})
	}

	sub, err := s.submissions.UpdateStatus(ctx, id, domain.SubmissionStatus(status))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("submission", nil)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
