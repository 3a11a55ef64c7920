package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/models"
	"marketvue_backend/pkg/apperrors"
)

func TestModeration_UserStatusIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	target := f.user(t, "Pending", "pending@example.com", "password123", models.UserRoleUser, models.UserStatusPending)

	resp, err := f.svc.Moderation.Approve(ctx, root, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)

	resp, err = f.svc.Moderation.Approve(ctx, root, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", resp.Status)

	events, err := f.svc.Moderation.ListEvents(ctx, models.EntityUser, 0)
	require.NoError(t, err)
	require.Len(t, events, 1, "повтор не пишет аудит")
	assert.Equal(t, "PENDING", events[0].FromStatus)
	assert.Equal(t, "APPROVED", events[0].ToStatus)
	assert.Equal(t, root.ID, events[0].ActorID)
}

func TestModeration_UserGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	admin := f.actor(t, models.UserRoleAdmin)
	user := f.actor(t, models.UserRoleUser)
	target := f.user(t, "Target", "target@example.com", "password123", models.UserRoleUser, models.UserStatusPending)

	_, err := f.svc.Moderation.Approve(ctx, admin, target.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	// ADMIN может менять статус через общий путь, но не SUPERADMIN
	resp, err := f.svc.Moderation.SetUserStatus(ctx, admin, target.ID, models.UserStatusBlocked)
	require.NoError(t, err)
	assert.Equal(t, "BLOCKED", resp.Status)

	_, err = f.svc.Moderation.SetUserStatus(ctx, admin, root.ID, models.UserStatusBlocked)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	_, err = f.svc.Moderation.SetUserStatus(ctx, user, target.ID, models.UserStatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	_, err = f.svc.Moderation.Block(ctx, root, root.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCannotModifySelf))

	_, err = f.svc.Moderation.Deny(ctx, root, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Moderation.SetUserStatus(ctx, root, target.ID, models.UserStatus("LIMBO"))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))
}

func TestModeration_LeavingApprovedRevokesTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := f.actor(t, models.UserRoleSuperAdmin)
	target := f.user(t, "Active", "active@example.com", "password123", models.UserRoleUser, models.UserStatusApproved)
	require.NoError(t, f.store.RefreshTokens().Create(ctx, &models.RefreshToken{UserID: target.ID, Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := f.svc.Moderation.Deny(ctx, root, target.ID)
	require.NoError(t, err)

	_, err = f.store.RefreshTokens().FindByToken(ctx, "tok")
	assert.Error(t, err)
}

func TestModeration_PostStatusAndToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.actor(t, models.UserRoleAdmin)
	owner := f.actor(t, models.UserRoleUser)
	stranger := f.actor(t, models.UserRoleUser)
	post := f.post(t, owner.ID, models.PostStatusPendingReview, true)

	_, err := f.svc.Moderation.SetPostStatus(ctx, owner, post.ID, models.PostStatusPublished)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	resp, err := f.svc.Moderation.SetPostStatus(ctx, admin, post.ID, models.PostStatusPublished)
	require.NoError(t, err)
	assert.Equal(t, "PUBLISHED", resp.ReviewStatus)
	assert.True(t, resp.Listable)

	// Переключатель владельца не трогает статус модерации
	resp, err = f.svc.Moderation.ToggleActive(ctx, owner, post.ID, nil)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)
	assert.Equal(t, "PUBLISHED", resp.ReviewStatus)
	assert.False(t, resp.Listable)

	resp, err = f.svc.Moderation.ToggleActive(ctx, owner, post.ID, boolPtr(true))
	require.NoError(t, err)
	assert.True(t, resp.IsActive)

	_, err = f.svc.Moderation.ToggleActive(ctx, stranger, post.ID, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInsufficientPermissions))

	_, err = f.svc.Moderation.SetPostStatus(ctx, admin, post.ID, models.PostStatusHidden)
	require.NoError(t, err)
	_, err = f.svc.Moderation.ToggleActive(ctx, owner, post.ID, boolPtr(false))
	require.NoError(t, err)

	_, err = f.svc.Moderation.ToggleActive(ctx, owner, post.ID, boolPtr(true))
	assert.True(t, apperrors.HasCode(err, apperrors.CodePostUnavailable))

	// Модератор не заблокирован
	resp, err = f.svc.Moderation.ToggleActive(ctx, admin, post.ID, boolPtr(true))
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "HIDDEN", resp.ReviewStatus)

	events, err := f.svc.Moderation.ListEvents(ctx, models.EntityPost, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "HIDDEN", events[0].ToStatus)
	assert.Equal(t, "PUBLISHED", events[1].ToStatus)

	_, err = f.svc.Moderation.ListEvents(ctx, "ticket", 10)
	assert.Error(t, err)

	f.svc.Notifier.Wait()
	assert.Len(t, f.mail.Sent(), 2)
}
