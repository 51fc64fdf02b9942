package otp

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/redemption-intake/internal/repository"
)

// ErrCodeInvalid reports a passcode that is unknown, unverified, expired, or
// already consumed. Guards translate it to an authorization failure; any
// other error is an infrastructure fault.
var ErrCodeInvalid = errors.New("passcode invalid or expired")

// Verifier is the passcode-proof capability behind both guards. Two
// interchangeable backings exist; callers never know which one is wired.
//
// VerifyUser is repeatable and must not mutate any record. ConsumeAdmin is
// one-shot: a successful call invalidates the code for every later call,
// including concurrent ones.
type Verifier interface {
	VerifyUser(ctx context.Context, email, code string) error
	ConsumeAdmin(ctx context.Context, code string) error
}

// StoreVerifier checks passcodes against locally mirrored records.
type StoreVerifier struct {
	passcodes repository.PasscodeRepository
}

// NewStoreVerifier builds the store-backed verifier.
func NewStoreVerifier(passcodes repository.PasscodeRepository) *StoreVerifier {
	return &StoreVerifier{passcodes: passcodes}
}

// VerifyUser succeeds iff a verified, unexpired record matches email and code.
func (v *StoreVerifier) VerifyUser(ctx context.Context, email, code string) error {
	_, err := v.passcodes.FindValidUser(ctx, email, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCodeInvalid
	}
	return err
}

// ConsumeAdmin atomically spends an admin code. The conditional update in the
// repository guarantees at most one success per record under concurrency.
func (v *StoreVerifier) ConsumeAdmin(ctx context.Context, code string) error {
	ok, err := v.passcodes.ConsumeAdmin(ctx, code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCodeInvalid
	}
	return nil
}

// ProviderVerifier delegates passcode checks to the provider's verify
// endpoints instead of the local store.
type ProviderVerifier struct {
	client *Client
}

// NewProviderVerifier builds the provider-backed verifier.
func NewProviderVerifier(client *Client) *ProviderVerifier {
	return &ProviderVerifier{client: client}
}

func (v *ProviderVerifier) VerifyUser(ctx context.Context, email, code string) error {
	return mapProviderVerify(v.client.VerifyUserOTP(ctx, email, code))
}

func (v *ProviderVerifier) ConsumeAdmin(ctx context.Context, code string) error {
	return mapProviderVerify(v.client.VerifyAdminOTP(ctx, code))
}

// mapProviderVerify folds a provider rejection into ErrCodeInvalid while
// letting transport faults pass through as infrastructure errors.
func mapProviderVerify(err error) error {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return ErrCodeInvalid
	}
	return err
}
