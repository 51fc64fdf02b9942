package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/redemption-intake/internal/domain"
	apperrors "github.com/spec-kit/redemption-intake/pkg/util"
)

type memMessageRepo struct {
	records map[int64]*domain.Message
	nextID  int64
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{records: map[int64]*domain.Message{}}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now()
	clone := *msg
	r.records[msg.ID] = &clone
	return nil
}

func (r *memMessageRepo) list(userID int64, all, asc bool) []domain.Message {
	var out []domain.Message
	for _, msg := range r.records {
		if all || msg.UserID == userID {
			out = append(out, *msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r *memMessageRepo) ListByUserAsc(_ context.Context, userID int64) ([]domain.Message, error) {
	return r.list(userID, false, true), nil
}

func (r *memMessageRepo) ListByUserDesc(_ context.Context, userID int64) ([]domain.Message, error) {
	return r.list(userID, false, false), nil
}

func (r *memMessageRepo) ListAllDesc(_ context.Context) ([]domain.Message, error) {
	return r.list(0, true, false), nil
}

func (r *memMessageRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.records[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.records, id)
	return nil
}

type memUserRepo struct {
	users map[int64]*domain.User
}

func (r *memUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *memUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}
func (r *memUserRepo) List(context.Context) ([]domain.User, error) { return nil, nil }
func (r *memUserRepo) Delete(context.Context, int64) error         { return nil }

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func newMessageFixture() (*MessageService, *memMessageRepo) {
	messages := newMemMessageRepo()
	users := &memUserRepo{users: map[int64]*domain.User{
		7: {ID: 7, Name: "Seller", Email: "seller@example.com"},
	}}
	return NewMessageService(messages, users), messages
}

func TestPostAndListForUserConversationOrder(t *testing.T) {
	svc, _ := newMessageFixture()
	ctx := context.Background()
	caller := &domain.User{ID: 7}

	for _, content := range []string{"first", "second", "third"} {
		_, err := svc.Post(ctx, caller, 7, content)
		require.NoError(t, err)
	}

	msgs, err := svc.ListForUser(ctx, caller, 7)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// conversation reads oldest first
	require.Equal(t, "first", msgs[0].Content)
	require.Equal(t, "third", msgs[2].Content)
	require.Equal(t, domain.MessageSenderUser, msgs[0].Sender)
}

func TestPostRefusesOtherConversations(t *testing.T) {
	svc, _ := newMessageFixture()
	caller := &domain.User{ID: 7}

	_, err := svc.Post(context.Background(), caller, 8, "hello")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestListForUserRefusesOtherConversations(t *testing.T) {
	svc, _ := newMessageFixture()

	_, err := svc.ListForUser(context.Background(), &domain.User{ID: 7}, 8)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)

	_, err = svc.ListForUser(context.Background(), nil, 8)
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestPostRejectsBlankContent(t *testing.T) {
	svc, _ := newMessageFixture()
	caller := &domain.User{ID: 7}

	_, err := svc.Post(context.Background(), caller, 7, "   ")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestAdminPostTagsSenderAndChecksUserExists(t *testing.T) {
	svc, _ := newMessageFixture()
	ctx := context.Background()

	msg, err := svc.AdminPost(ctx, 7, "payment on the way")
	require.NoError(t, err)
	require.Equal(t, domain.MessageSenderAdmin, msg.Sender)
	require.Equal(t, int64(7), msg.UserID)

	_, err = svc.AdminPost(ctx, 999, "hello?")
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestAdminListingsNewestFirst(t *testing.T) {
	svc, _ := newMessageFixture()
	ctx := context.Background()
	caller := &domain.User{ID: 7}

	_, err := svc.Post(ctx, caller, 7, "first")
	require.NoError(t, err)
	_, err = svc.AdminPost(ctx, 7, "second")
	require.NoError(t, err)

	all, err := svc.AdminListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "second", all[0].Content)
	require.Equal(t, "first", all[1].Content)

	forUser, err := svc.AdminListForUser(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "second", forUser[0].Content)
}

func TestAdminDelete(t *testing.T) {
	svc, messages := newMessageFixture()
	ctx := context.Background()

	msg, err := svc.AdminPost(ctx, 7, "to be removed")
	require.NoError(t, err)

	require.NoError(t, svc.AdminDelete(ctx, msg.ID))
	require.Empty(t, messages.records)

	err = svc.AdminDelete(ctx, msg.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, "NOT_FOUND", domainErr.Code)
}
