package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

func adminUpdate(t *testing.T, payload string) *dto.AdminUpdateUserRequest {
	t.Helper()
	var req dto.AdminUpdateUserRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))
	return &req
}

func TestAdminUpdate_FieldLevel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	admin := f.actor(t, models.UserRoleAdmin)
	target := f.user(t, "Target", "target@example.com", "password123", models.UserRoleUser, models.UserStatusPending)

	// ADMIN: только статус, старые ключи фронта
	resp, err := f.svc.Users.AdminUpdate(ctx, admin, target.ID, adminUpdate(t, `{"estado_registro":"aprobado"}`))
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)

	_, err = f.svc.Users.AdminUpdate(ctx, admin, target.ID, adminUpdate(t, `{"rol_id":1}`))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))
	appErr, _ := apperrors.AsAppError(err)
	assert.Equal(t, map[string][]string{"fields": {"role"}}, appErr.Details)

	_, err = f.svc.Users.AdminUpdate(ctx, admin, target.ID, adminUpdate(t, `{"nombre":"Otro","correo":"otro@example.com"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	// те же значения - не изменение, проверка прав не срабатывает
	resp, err = f.svc.Users.AdminUpdate(ctx, admin, target.ID, adminUpdate(t, `{"name":"Target","status":"APPROVED"}`))
	require.NoError(t, err)
	assert.Equal(t, "Target", resp.Name)

	// SUPERADMIN меняет все
	resp, err = f.svc.Users.AdminUpdate(ctx, root, target.ID, adminUpdate(t, `{"rol_id":2,"name":"Promoted","email":"Promoted@Example.com"}`))
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", resp.Role)
	assert.Equal(t, "Promoted", resp.Name)
	assert.Equal(t, "promoted@example.com", resp.Email)

	_, err = f.svc.Users.AdminUpdate(ctx, root, target.ID, adminUpdate(t, `{}`))
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpdate)

	_, err = f.svc.Users.AdminUpdate(ctx, root, root.ID, adminUpdate(t, `{"role":"USER"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCannotModifySelf))

	_, err = f.svc.Users.AdminUpdate(ctx, admin, root.ID, adminUpdate(t, `{"status":"BLOCKED"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	_, err = f.svc.Users.AdminUpdate(ctx, root, "missing", adminUpdate(t, `{"status":"BLOCKED"}`))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAdminUpdate_PasswordRevokesTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	target := f.user(t, "Target", "pw@example.com", "password123", models.UserRoleUser, models.UserStatusApproved)
	require.NoError(t, f.store.RefreshTokens().Create(ctx, &models.RefreshToken{UserID: target.ID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := f.svc.Users.AdminUpdate(ctx, root, target.ID, adminUpdate(t, `{"password":"brand-new-pass"}`))
	require.NoError(t, err)

	_, err = f.store.RefreshTokens().FindByToken(ctx, "tok")
	assert.ErrorIs(t, err, repositories.ErrRefreshTokenNotFound)

	stored, err := f.store.Users().FindByID(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPasswordHash("brand-new-pass", stored.PasswordHash))
}

func TestAdminUpdate_PasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	target := f.user(t, "Target", "long@example.com", "password123", models.UserRoleUser, models.UserStatusApproved)

	// 40 символов, но 80 байт
	long := strings.Repeat("ñ", 40)
	_, err := f.svc.Users.AdminUpdate(ctx, root, target.ID, &dto.AdminUpdateUserRequest{Password: &long})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusOf(err))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	stored, err := f.store.Users().FindByID(ctx, target.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPasswordHash("password123", stored.PasswordHash))
}

func TestUpdateOwnProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "Self", "self@example.com", "password123", models.UserRoleUser, models.UserStatusApproved)
	actor := auth.ActorFromUser(u)

	resp, err := f.svc.Users.UpdateOwnProfile(ctx, actor, &dto.UpdateProfileRequest{Name: strPtr("  Self Renamed ")})
	require.NoError(t, err)
	assert.Equal(t, "Self Renamed", resp.Name)
	assert.Equal(t, "USER", resp.Role)

	_, err = f.svc.Users.UpdateOwnProfile(ctx, actor, &dto.UpdateProfileRequest{Password: strPtr("newpass123"), CurrentPassword: "nope"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = f.svc.Users.UpdateOwnProfile(ctx, actor, &dto.UpdateProfileRequest{Password: strPtr("newpass123"), CurrentPassword: "password123"})
	require.NoError(t, err)

	_, err = f.svc.Users.UpdateOwnProfile(ctx, actor, &dto.UpdateProfileRequest{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyUpdate)
}

func seedCascade(t *testing.T, f *fixture) (victim, neighbour *models.User, ownPost, foreignPost *models.Post) {
	t.Helper()
	ctx := context.Background()

	victim = f.user(t, "Victim", "victim@example.com", "password123", models.UserRoleUser, models.UserStatusApproved)
	neighbour = f.user(t, "Neighbour", "neighbour@example.com", "password123", models.UserRoleUser, models.UserStatusApproved)

	key := "posts/" + victim.ID + "/cover.png"
	require.NoError(t, f.files.Save(ctx, key, bytes.NewReader([]byte("png")), "image/png"))
	ownPost = &models.Post{
		UserID: victim.ID, Title: "Propio", Price: 10, Currency: "CLP",
		ReviewStatus: models.PostStatusPublished, IsActive: true,
		Images: []models.PostImage{{Path: key, URL: f.files.URL(key), IsCover: true}},
	}
	require.NoError(t, f.store.Posts().Create(ctx, ownPost))
	foreignPost = f.post(t, neighbour.ID, models.PostStatusPublished, true)

	_, err := f.store.Reviews().Upsert(ctx, &models.Review{PostID: foreignPost.ID, UserID: victim.ID, Rating: 5})
	require.NoError(t, err)
	_, err = f.store.Reviews().Upsert(ctx, &models.Review{PostID: ownPost.ID, UserID: neighbour.ID, Rating: 2})
	require.NoError(t, err)
	require.NoError(t, f.store.RefreshTokens().Create(ctx, &models.RefreshToken{UserID: victim.ID, Token: "victim-token", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, f.store.Tickets().Create(ctx, &models.SupportTicket{UserID: victim.ID, Subject: "Ayuda", Body: "No puedo publicar", Status: models.TicketStatusOpen}))
	return victim, neighbour, ownPost, foreignPost
}

func TestDelete_Cascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	victim, neighbour, ownPost, foreignPost := seedCascade(t, f)

	require.NoError(t, f.svc.Users.Delete(ctx, root, victim.ID))

	_, err := f.store.Users().FindByID(ctx, victim.ID)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	_, err = f.store.Posts().FindByID(ctx, ownPost.ID)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)
	_, err = f.store.RefreshTokens().FindByToken(ctx, "victim-token")
	assert.ErrorIs(t, err, repositories.ErrRefreshTokenNotFound)

	stats, err := f.store.Reviews().Stats(ctx, foreignPost.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.ReviewCount)

	tickets, total, err := f.store.Tickets().List(ctx, "", repositories.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, tickets)

	_, err = f.store.Users().FindByID(ctx, neighbour.ID)
	assert.NoError(t, err)

	exists, err := f.files.Exists(ctx, "posts/"+victim.ID+"/cover.png")
	require.NoError(t, err)
	assert.False(t, exists)

	events, err := f.svc.Moderation.ListEvents(ctx, models.EntityUser, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "DELETED", events[0].ToStatus)
	assert.Equal(t, victim.ID, events[0].EntityID)
}

func TestDelete_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	admin := f.actor(t, models.UserRoleAdmin)

	assert.ErrorIs(t, f.svc.Users.Delete(ctx, admin, root.ID), apperrors.ErrInsufficientPermissions)
	assert.ErrorIs(t, f.svc.Users.Delete(ctx, root, root.ID), apperrors.ErrCannotModifySelf)
	assert.True(t, apperrors.HasCode(f.svc.Users.Delete(ctx, root, "missing"), apperrors.CodeNotFound))
}

// failingStore ломает удаление пользователя внутри транзакции.
type failingStore struct {
	repositories.Store
}

func (s failingStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repositories.Store) error {
		return fn(failingTx{tx})
	})
}

type failingTx struct {
	repositories.Store
}

func (t failingTx) Users() repositories.UserRepository {
	return failingUsers{t.Store.Users()}
}

type failingUsers struct {
	repositories.UserRepository
}

func (failingUsers) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func TestDelete_AtomicOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	victim, _, ownPost, foreignPost := seedCascade(t, f)

	svc := NewUserService(failingStore{f.store}, NewAuthorizationService(), f.files, nil, nil)
	err := svc.Delete(ctx, root, victim.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeDatabaseError))

	// ничего не удалено
	_, err = f.store.Users().FindByID(ctx, victim.ID)
	assert.NoError(t, err)
	_, err = f.store.Posts().FindByID(ctx, ownPost.ID)
	assert.NoError(t, err)
	_, err = f.store.RefreshTokens().FindByToken(ctx, "victim-token")
	assert.NoError(t, err)

	stats, err := f.store.Reviews().Stats(ctx, foreignPost.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ReviewCount)

	exists, err := f.files.Exists(ctx, "posts/"+victim.ID+"/cover.png")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.actor(t, models.UserRoleUser)
	f.user(t, "P1", "p1@example.com", "password123", models.UserRoleUser, models.UserStatusPending)
	f.post(t, owner.ID, models.PostStatusPendingReview, true)
	f.post(t, owner.ID, models.PostStatusPublished, false)

	overview, err := f.svc.Users.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), overview.Users["PENDING"])
	assert.Equal(t, int64(1), overview.Users["APPROVED"])
	assert.Equal(t, int64(0), overview.Users["BLOCKED"])
	assert.Equal(t, int64(1), overview.Posts.Inactive)
	assert.Len(t, overview.PendingUsers, 1)
	assert.Len(t, overview.PendingPosts, 1)
}
