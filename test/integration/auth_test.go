package integration_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/test/helpers"
)

// TestAuthFlow - регистрация создает PENDING пользователя, логин которого отклоняется
func TestAuthFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	email := helpers.UniqueEmail("register")

	registerBody := map[string]interface{}{
		"name":     "Ana Pérez",
		"email":    email,
		"password": "super_password123",
	}
	regRes, regBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)

	assert.Equal(t, http.StatusCreated, regRes.StatusCode)
	assert.Contains(t, regBodyStr, `"status":"PENDING"`)
	assert.Contains(t, regBodyStr, `"role":"USER"`)
	assert.NotContains(t, regBodyStr, "password")

	// Повторная регистрация
	dupRes, dupBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", registerBody)
	assert.Equal(t, http.StatusConflict, dupRes.StatusCode)
	assert.Contains(t, dupBodyStr, "EMAIL_ALREADY_EXISTS")

	logRes, logBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "super_password123",
	})
	assert.Equal(t, http.StatusForbidden, logRes.StatusCode)
	assert.Contains(t, logBodyStr, "ACCOUNT_NOT_APPROVED")
	assert.Contains(t, logBodyStr, "PENDING")
}

// TestLogin_Statuses - 401 на неверный пароль, 403 на неодобренный аккаунт, 200 после одобрения
func TestLogin_Statuses(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	email := helpers.UniqueEmail("ana")
	user := helpers.CreateUser(t, ts, "Ana", email, "secret123", models.UserRoleUser, models.UserStatusPending)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "INVALID_CREDENTIALS")

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, body, "ACCOUNT_NOT_APPROVED")

	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Root", models.UserRoleSuperAdmin)
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+user.ID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"status":"APPROVED"`)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var auth dto.AuthResponse
	helpers.DecodeJSON(t, body, &auth)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)
	assert.Equal(t, "Bearer", auth.TokenType)
	assert.Equal(t, user.ID, auth.User.ID)
}

// TestUnknownEmail - неизвестный email неотличим от неверного пароля
func TestUnknownEmail(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": helpers.UniqueEmail("nobody"), "password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "INVALID_CREDENTIALS")
}

// TestGetMe - /auth/me требует токен и отдает роль из хранилища
func TestGetMe(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "UNAUTHORIZED")

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")

	token, user := helpers.CreateAndLoginUser(t, ts, "Me", models.UserRoleAdmin)
	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, user.ID)
	assert.Contains(t, body, `"role":"ADMIN"`)
	assert.Contains(t, body, `"role_tier":2`)
}

// TestRefreshRotation - refresh-токен одноразовый, logout его отзывает
func TestRefreshRotation(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	user := helpers.CreateUser(t, ts, "Rotator", helpers.UniqueEmail("rotate"), "password123", models.UserRoleUser, models.UserStatusApproved)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": user.Email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var first dto.AuthResponse
	helpers.DecodeJSON(t, body, &first)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": first.RefreshToken,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var second dto.AuthResponse
	helpers.DecodeJSON(t, body, &second)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Старый токен уже использован
	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": first.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{
		"refresh_token": second.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": second.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

// TestBlockedUserLosesAccess - блокировка действует на уже выданный access-токен
func TestBlockedUserLosesAccess(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	token, user := helpers.CreateAndLoginUser(t, ts, "Soon Blocked", models.UserRoleUser)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Root", models.UserRoleSuperAdmin)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/"+user.ID+"/block", adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, body, "ACCOUNT_NOT_APPROVED")
}
