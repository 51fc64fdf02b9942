package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/redemption-intake/internal/domain"
	"github.com/spec-kit/redemption-intake/internal/otp"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

// stubVerifier implements otp.Verifier with canned outcomes. ConsumeAdmin
// spends the accepted code on first use, mirroring the store semantics.
type stubVerifier struct {
	mu          sync.Mutex
	userEmail   string
	userCode    string
	adminCode   string
	adminSpent  bool
	userCalls   int
	infraBroken bool
}

func (v *stubVerifier) VerifyUser(_ context.Context, email, code string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.userCalls++
	if v.infraBroken {
		return errors.New("store unavailable")
	}
	if email == v.userEmail && code == v.userCode {
		return nil
	}
	return otp.ErrCodeInvalid
}

func (v *stubVerifier) ConsumeAdmin(_ context.Context, code string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if code == v.adminCode && !v.adminSpent {
		v.adminSpent = true
		return nil
	}
	return otp.ErrCodeInvalid
}

// stubUserRepo implements repository.UserRepository over a fixed user set.
type stubUserRepo struct {
	byEmail map[string]*domain.User
}

func (r *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *stubUserRepo) List(context.Context) ([]domain.User, error) { return nil, nil }
func (r *stubUserRepo) Delete(context.Context, int64) error         { return nil }

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

// testErrorAdapter mirrors the transport error middleware closely enough
// for status assertions.
func testErrorAdapter(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
		"success": false,
		"error":   fiber.Map{"code": domainErr.Code, "message": domainErr.Message},
	})
}

func newGuardApp(t *testing.T, verifier otp.Verifier) (*fiber.App, *stubUserRepo) {
	t.Helper()
	users := &stubUserRepo{byEmail: map[string]*domain.User{
		"seller@example.com": {ID: 7, Name: "Seller", Email: "seller@example.com"},
	}}
	guard := NewOTPGuard(verifier, users)

	app := fiber.New()
	app.Use(testErrorAdapter)
	app.Get("/guarded", guard.RequireUser, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		require.NotNil(t, principal.User)
		return c.JSON(fiber.Map{"user_id": principal.User.ID})
	})
	app.Post("/admin-guarded", guard.RequireAdmin, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		require.True(t, ok)
		require.True(t, principal.Admin)
		return c.JSON(fiber.Map{"done": true})
	})
	return app, users
}

func doGuarded(t *testing.T, app *fiber.App, method, path string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestUserGuardMissingHeadersIsBadRequest(t *testing.T) {
	verifier := &stubVerifier{userEmail: "seller@example.com", userCode: "111111"}
	app, _ := newGuardApp(t, verifier)

	resp := doGuarded(t, app, http.MethodGet, "/guarded", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doGuarded(t, app, http.MethodGet, "/guarded", map[string]string{
		HeaderAuthEmail: "seller@example.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// no lookup happens before both headers are present
	require.Equal(t, 0, verifier.userCalls)
}

func TestUserGuardInvalidCodeIsUnauthorized(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{userEmail: "seller@example.com", userCode: "111111"})

	resp := doGuarded(t, app, http.MethodGet, "/guarded", map[string]string{
		HeaderAuthEmail: "seller@example.com",
		HeaderAuthOTP:   "999999",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserGuardAttachesPrincipalAndIsRepeatable(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{userEmail: "seller@example.com", userCode: "111111"})
	headers := map[string]string{
		HeaderAuthEmail: "seller@example.com",
		HeaderAuthOTP:   "111111",
	}

	for i := 0; i < 3; i++ {
		resp := doGuarded(t, app, http.MethodGet, "/guarded", headers)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"user_id":7`)
	}
}

func TestUserGuardUnknownUserIsUnauthorized(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{userEmail: "ghost@example.com", userCode: "111111"})

	resp := doGuarded(t, app, http.MethodGet, "/guarded", map[string]string{
		HeaderAuthEmail: "ghost@example.com",
		HeaderAuthOTP:   "111111",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUserGuardInfrastructureFaultIsInternal(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{infraBroken: true})

	resp := doGuarded(t, app, http.MethodGet, "/guarded", map[string]string{
		HeaderAuthEmail: "seller@example.com",
		HeaderAuthOTP:   "111111",
	})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestAdminGuardMissingHeaderIsBadRequest(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{adminCode: "424242"})

	resp := doGuarded(t, app, http.MethodPost, "/admin-guarded", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminGuardConsumesCodeOnFirstUse(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{adminCode: "424242"})
	headers := map[string]string{HeaderAdminOTP: "424242"}

	resp := doGuarded(t, app, http.MethodPost, "/admin-guarded", headers)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// replaying the consumed code must be refused
	resp = doGuarded(t, app, http.MethodPost, "/admin-guarded", headers)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminGuardUnknownCodeIsUnauthorized(t *testing.T) {
	app, _ := newGuardApp(t, &stubVerifier{adminCode: "424242"})

	resp := doGuarded(t, app, http.MethodPost, "/admin-guarded", map[string]string{
		HeaderAdminOTP: "000000",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
