package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/redemption-intake/internal/config"
	"github.com/spec-kit/redemption-intake/internal/domain"
	"github.com/spec-kit/redemption-intake/internal/otp"
	"github.com/spec-kit/redemption-intake/internal/repository"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// OTPService drives the passcode issue/verify flows against the external
// provider and keeps the local otps table in sync for the store-backed guard.
type OTPService struct {
	client    *otp.Client
	passcodes repository.PasscodeRepository
	limiter   *otp.SendLimiter
	codeTTL   time.Duration
	logger    *zap.Logger
}

// NewOTPService constructs the service.
func NewOTPService(cfg config.OTPConfig, client *otp.Client, passcodes repository.PasscodeRepository, limiter *otp.SendLimiter, logger *zap.Logger) *OTPService {
	return &OTPService{
		client:    client,
		passcodes: passcodes,
		limiter:   limiter,
		codeTTL:   cfg.CodeTTL(),
		logger:    logger,
	}
}

// SendUserOTP asks the provider to mail a passcode and mirrors the issued
// code locally. Sends are rate limited per email.
func (s *OTPService) SendUserOTP(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", apperrors.NewValidationError("email required", nil)
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", apperrors.NewRateLimited("too many passcode requests, try again later")
	}

	result, err := s.client.SendUserOTP(ctx, email)
	if err != nil {
		return "", err
	}

	s.mirror(ctx, email, result.OTP, domain.PasscodeCategoryUser)
	return result.Message, nil
}

// VerifyUserOTP delegates verification to the provider and marks the local
// record verified on success.
func (s *OTPService) VerifyUserOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return apperrors.NewValidationError("email and otp required", nil)
	}
	if err := s.client.VerifyUserOTP(ctx, email, code); err != nil {
		return err
	}
	if err := s.passcodes.MarkVerified(ctx, email, code, domain.PasscodeCategoryUser); err != nil {
		// provider accepted the code; a stale mirror only degrades the
		// store-backed guard, so log and move on
		s.logger.Warn("failed to mark passcode verified", zap.Error(err))
	}
	return nil
}

// SendAdminOTP issues an operator passcode.
func (s *OTPService) SendAdminOTP(ctx context.Context) (string, error) {
	allowed, err := s.limiter.Allow(ctx, domain.AdminEmailSentinel)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", apperrors.NewRateLimited("too many passcode requests, try again later")
	}

	result, err := s.client.SendAdminOTP(ctx)
	if err != nil {
		return "", err
	}

	s.mirror(ctx, domain.AdminEmailSentinel, result.OTP, domain.PasscodeCategoryAdmin)
	return result.Message, nil
}

// VerifyAdminOTP delegates operator verification to the provider. The local
// record stays unconsumed: consumption happens at guard time, one action per
// code.
func (s *OTPService) VerifyAdminOTP(ctx context.Context, code string) error {
	if code == "" {
		return apperrors.NewValidationError("otp required", nil)
	}
	if err := s.client.VerifyAdminOTP(ctx, code); err != nil {
		return err
	}
	if err := s.passcodes.MarkVerified(ctx, domain.AdminEmailSentinel, code, domain.PasscodeCategoryAdmin); err != nil {
		s.logger.Warn("failed to mark passcode verified", zap.Error(err))
	}
	return nil
}

// ProviderStatus passes the provider's bookkeeping state through.
func (s *OTPService) ProviderStatus(ctx context.Context) (otp.Status, error) {
	return s.client.CheckStatus(ctx)
}

// mirror records an issued code locally. Providers that withhold the code
// leave nothing to mirror; the provider-backed verifier still works then.
func (s *OTPService) mirror(ctx context.Context, email, code string, category domain.PasscodeCategory) {
	if code == "" {
		return
	}
	now := time.Now()
	record := &domain.Passcode{
		Email:     email,
		Code:      code,
		Category:  category,
		ExpiresAt: otp.ExpiryFrom(now, s.codeTTL),
	}
	if err := s.passcodes.Create(ctx, record); err != nil {
		s.logger.Warn("failed to mirror passcode", zap.Error(err))
	}
}
