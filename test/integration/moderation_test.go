package integration_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/models"
	"marketvue_backend/test/helpers"
)

// TestApproveDeny_OnlySuperAdmin - одобрять регистрации может только SUPERADMIN
func TestApproveDeny_OnlySuperAdmin(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	pending := helpers.CreateUser(t, ts, "Waiting", helpers.UniqueEmail("pending"), "password123", models.UserRoleUser, models.UserStatusPending)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Moderator", models.UserRoleAdmin)
	rootToken, _ := helpers.CreateAndLoginUser(t, ts, "Root", models.UserRoleSuperAdmin)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+pending.ID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, body, "INSUFFICIENT_PERMISSIONS")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/users/pending", rootToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, pending.ID)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+pending.ID+"/deny", rootToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"status":"DENIED"`)

	// Повтор того же решения - no-op
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+pending.ID+"/deny", rootToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"DENIED"`)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/users/missing-id/approve", rootToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// TestAdminUpdate_FieldLevel - ADMIN меняет только статус, SUPERADMIN - все
func TestAdminUpdate_FieldLevel(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	target := helpers.CreateUser(t, ts, "Target", helpers.UniqueEmail("target"), "password123", models.UserRoleUser, models.UserStatusPending)
	adminToken, admin := helpers.CreateAndLoginUser(t, ts, "Moderator", models.UserRoleAdmin)
	rootToken, root := helpers.CreateAndLoginUser(t, ts, "Root", models.UserRoleSuperAdmin)
	path := "/api/v1/admin/users/" + target.ID

	// Старый формат фронта: estado_registro
	res, body := ts.SendRequest(t, http.MethodPut, path, adminToken, map[string]interface{}{
		"estado_registro": "aprobado",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"status":"APPROVED"`)

	res, body = ts.SendRequest(t, http.MethodPut, path, adminToken, map[string]interface{}{
		"rol_id": 1,
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, body, "INSUFFICIENT_PERMISSIONS")

	res, _ = ts.SendRequest(t, http.MethodPut, path, adminToken, map[string]interface{}{
		"name": "Renamed",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// ADMIN не трогает SUPERADMIN
	res, _ = ts.SendRequest(t, http.MethodPut, "/api/v1/admin/users/"+root.ID, adminToken, map[string]interface{}{
		"status": "BLOCKED",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Никто не меняет собственный статус
	res, body = ts.SendRequest(t, http.MethodPut, "/api/v1/admin/users/"+admin.ID, adminToken, map[string]interface{}{
		"status": "BLOCKED",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, body, "CANNOT_MODIFY_SELF")

	res, body = ts.SendRequest(t, http.MethodPut, path, rootToken, map[string]interface{}{
		"rol_id": 2,
		"nombre": "Promoted",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"role":"ADMIN"`)
	assert.Contains(t, body, `"name":"Promoted"`)

	res, body = ts.SendRequest(t, http.MethodPut, path, rootToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodPut, path, rootToken, map[string]interface{}{
		"status": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, body)
}

// TestRegularUserLocked - USER не видит административные маршруты
func TestRegularUserLocked(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	token, _ := helpers.CreateAndLoginUser(t, ts, "Plain", models.UserRoleUser)

	for _, path := range []string{"/api/v1/admin/overview", "/api/v1/admin/users", "/api/v1/users/pending", "/api/v1/admin/events"} {
		res, body := ts.SendRequest(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusForbidden, res.StatusCode, path)
		assert.Contains(t, body, "INSUFFICIENT_PERMISSIONS", path)
	}

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/overview", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

// TestPostModeration - публикация модератором и переключатель владельца
func TestPostModeration(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	ownerToken, owner := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)
	otherToken, _ := helpers.CreateAndLoginUser(t, ts, "Stranger", models.UserRoleUser)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Moderator", models.UserRoleAdmin)
	post := helpers.CreatePost(t, ts, owner, "Bicicleta de montaña", models.PostStatusPendingReview, true)

	// Не опубликован - для посторонних его нет
	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/posts/"+post.ID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/posts/"+post.ID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPatch, "/api/v1/admin/posts/"+post.ID+"/status", ownerToken, map[string]string{"status": "PUBLISHED"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPatch, "/api/v1/admin/posts/"+post.ID+"/status", adminToken, map[string]string{"status": "PUBLISHED"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"review_status":"PUBLISHED"`)
	assert.Contains(t, body, `"listable":true`)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Bicicleta")

	// Посторонний не переключает чужой пост
	res, _ = ts.SendRequest(t, http.MethodPatch, "/api/v1/posts/"+post.ID+"/toggle", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodPatch, "/api/v1/posts/"+post.ID+"/toggle", ownerToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"is_active":false`)
	assert.Contains(t, body, `"review_status":"PUBLISHED"`)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// Отклоненный пост владелец включить не может
	res, _ = ts.SendRequest(t, http.MethodPatch, "/api/v1/admin/posts/"+post.ID+"/status", adminToken, map[string]string{"status": "REJECTED"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	res, body = ts.SendRequest(t, http.MethodPatch, "/api/v1/posts/"+post.ID+"/toggle", ownerToken, map[string]bool{"is_active": true})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, body, "POST_UNAVAILABLE")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/admin/events?entity=post", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, post.ID)
	assert.Contains(t, body, `"to_status":"REJECTED"`)

	stored, err := ts.Store.Posts().FindByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusRejected, stored.ReviewStatus)
	assert.False(t, stored.IsActive)
}
