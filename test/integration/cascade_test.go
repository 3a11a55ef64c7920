package integration_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/repositories"
	"marketvue_backend/test/helpers"
)

// TestDeleteUser_Cascade - удаление пользователя убирает его посты, отзывы и токены
func TestDeleteUser_Cascade(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	ctx := context.Background()
	rootToken, _ := helpers.CreateAndLoginUser(t, ts, "Root", models.UserRoleSuperAdmin)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Moderator", models.UserRoleAdmin)
	victimToken, victim := helpers.CreateAndLoginUser(t, ts, "Leaving", models.UserRoleUser)
	_, neighbour := helpers.CreateAndLoginUser(t, ts, "Neighbour", models.UserRoleUser)

	own := helpers.CreatePost(t, ts, victim, "Propio", models.PostStatusPublished, true)
	foreign := helpers.CreatePost(t, ts, neighbour, "Ajeno", models.PostStatusPublished, true)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/posts/"+foreign.ID+"/reviews", victimToken, map[string]interface{}{"rating": 5})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	// ADMIN удалять не может
	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/admin/users/"+victim.ID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodDelete, "/api/v1/admin/users/"+victim.ID, rootToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	_, err := ts.Store.Users().FindByID(ctx, victim.ID)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	_, err = ts.Store.Posts().FindByID(ctx, own.ID)
	assert.ErrorIs(t, err, repositories.ErrPostNotFound)

	stats, err := ts.Store.Reviews().Stats(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.ReviewCount)

	// Чужой пост не тронут
	_, err = ts.Store.Posts().FindByID(ctx, foreign.ID)
	assert.NoError(t, err)

	// Выданный токен больше не работает
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", victimToken, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/admin/users/"+victim.ID, rootToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
