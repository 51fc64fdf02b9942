package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/redemption-intake/internal/config"
	"github.com/spec-kit/redemption-intake/internal/domain"
	"github.com/spec-kit/redemption-intake/internal/otp"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

type memPasscodeStore struct {
	created  []domain.Passcode
	verified []string
}

func (r *memPasscodeStore) Create(_ context.Context, code *domain.Passcode) error {
	r.created = append(r.created, *code)
	return nil
}

func (r *memPasscodeStore) FindValidUser(context.Context, string, string) (*domain.Passcode, error) {
	return nil, nil
}

func (r *memPasscodeStore) ConsumeAdmin(context.Context, string) (bool, error) {
	return false, nil
}

func (r *memPasscodeStore) MarkVerified(_ context.Context, email, code string, _ domain.PasscodeCategory) error {
	r.verified = append(r.verified, email+":"+code)
	return nil
}

func newOTPFixture(t *testing.T, providerURL string, sendLimit int) (*OTPService, *memPasscodeStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.OTPConfig{
		ProviderBaseURL: providerURL,
		TimeoutSeconds:  2,
		CodeTTLMinutes:  60,
	}
	store := &memPasscodeStore{}
	svc := NewOTPService(cfg, otp.NewClient(cfg), store,
		otp.NewSendLimiter(client, sendLimit, time.Hour), zap.NewNop())
	return svc, store
}

func stubProvider(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL
}

func TestSendUserOTPMirrorsIssuedCode(t *testing.T) {
	url := stubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/send-otp", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent", "otp": "123456"})
	})
	svc, store := newOTPFixture(t, url, 5)

	msg, err := svc.SendUserOTP(context.Background(), "seller@example.com")
	require.NoError(t, err)
	require.Equal(t, "OTP sent", msg)

	require.Len(t, store.created, 1)
	rec := store.created[0]
	require.Equal(t, "seller@example.com", rec.Email)
	require.Equal(t, "123456", rec.Code)
	require.Equal(t, domain.PasscodeCategoryUser, rec.Category)
	require.True(t, rec.ExpiresAt.After(time.Now()))
}

func TestSendUserOTPSkipsMirrorWhenProviderWithholdsCode(t *testing.T) {
	url := stubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent"})
	})
	svc, store := newOTPFixture(t, url, 5)

	_, err := svc.SendUserOTP(context.Background(), "seller@example.com")
	require.NoError(t, err)
	require.Empty(t, store.created)
}

func TestSendUserOTPRateLimited(t *testing.T) {
	url := stubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent", "otp": "123456"})
	})
	svc, _ := newOTPFixture(t, url, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.SendUserOTP(ctx, "seller@example.com")
		require.NoError(t, err)
	}

	_, err := svc.SendUserOTP(ctx, "seller@example.com")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "RATE_LIMITED", domainErr.Code)
}

func TestVerifyUserOTPMarksMirrorVerified(t *testing.T) {
	url := stubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify-otp", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "verified"})
	})
	svc, store := newOTPFixture(t, url, 5)

	require.NoError(t, svc.VerifyUserOTP(context.Background(), "seller@example.com", "123456"))
	require.Equal(t, []string{"seller@example.com:123456"}, store.verified)
}

func TestVerifyUserOTPProviderRejectionIsNotMirrored(t *testing.T) {
	url := stubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid OTP"})
	})
	svc, store := newOTPFixture(t, url, 5)

	err := svc.VerifyUserOTP(context.Background(), "seller@example.com", "000000")
	require.Error(t, err)
	require.Empty(t, store.verified)
}

func TestAdminFlowsUseSentinelIdentity(t *testing.T) {
	url := stubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/admin/send-otp":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "admin OTP sent", "otp": "424242"})
		case "/admin/verify-otp":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "verified"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	svc, store := newOTPFixture(t, url, 5)
	ctx := context.Background()

	_, err := svc.SendAdminOTP(ctx)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	require.Equal(t, domain.AdminEmailSentinel, store.created[0].Email)
	require.Equal(t, domain.PasscodeCategoryAdmin, store.created[0].Category)

	require.NoError(t, svc.VerifyAdminOTP(ctx, "424242"))
	require.Equal(t, []string{domain.AdminEmailSentinel + ":424242"}, store.verified)
}

func TestSendUserOTPRequiresEmail(t *testing.T) {
	svc, _ := newOTPFixture(t, "http://127.0.0.1:0", 5)

	_, err := svc.SendUserOTP(context.Background(), "")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}
