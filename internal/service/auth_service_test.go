package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/redemption-intake/internal/config"
	"github.com/spec-kit/redemption-intake/internal/domain"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

type memAccountRepo struct {
	byEmail map[string]*domain.User
	nextID  int64
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{byEmail: map[string]*domain.User{}}
}

func (r *memAccountRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	user.ID = r.nextID
	clone := *user
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *memAccountRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := r.byEmail[email]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memAccountRepo) GetByID(context.Context, int64) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *memAccountRepo) List(context.Context) ([]domain.User, error) { return nil, nil }
func (r *memAccountRepo) Delete(context.Context, int64) error         { return nil }

func newAuthFixture() (*AuthService, *memAccountRepo) {
	repo := newMemAccountRepo()
	cfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		BcryptCost:            bcrypt.MinCost,
	}
	return NewAuthService(cfg, repo), repo
}

func TestRegisterIssuesSessionToken(t *testing.T) {
	svc, repo := newAuthFixture()

	user, token, exp, err := svc.RegisterUser(context.Background(), "Seller", " Seller@Example.COM ", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "seller@example.com", user.Email)
	require.NotEmpty(t, token)
	require.False(t, exp.IsZero())

	stored := repo.byEmail["seller@example.com"]
	require.NotNil(t, stored)
	require.NotEqual(t, "s3cret", stored.PasswordHash)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "seller@example.com", claims.Email)
	id, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, user.ID, id)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.RegisterUser(ctx, "Seller", "seller@example.com", "s3cret")
	require.NoError(t, err)

	_, _, _, err = svc.RegisterUser(ctx, "Imposter", "seller@example.com", "other")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "CONFLICT", domainErr.Code)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, _, err := svc.RegisterUser(context.Background(), "", "seller@example.com", "s3cret")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestLoginVerifiesPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.RegisterUser(ctx, "Seller", "seller@example.com", "s3cret")
	require.NoError(t, err)

	user, token, _, err := svc.LoginUser(ctx, "seller@example.com", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "seller@example.com", user.Email)
	require.NotEmpty(t, token)

	// wrong password and unknown account fail the same way
	_, _, _, err = svc.LoginUser(ctx, "seller@example.com", "wrong")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)
	require.Equal(t, "invalid credentials", domainErr.Message)

	_, _, _, err = svc.LoginUser(ctx, "nobody@example.com", "s3cret")
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "UNAUTHORIZED", domainErr.Code)
	require.Equal(t, "invalid credentials", domainErr.Message)
}

func TestLoginNormalizesEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.RegisterUser(ctx, "Seller", "seller@example.com", "s3cret")
	require.NoError(t, err)

	_, _, _, err = svc.LoginUser(ctx, strings.ToUpper(" seller@example.com "), "s3cret")
	require.NoError(t, err)
}
