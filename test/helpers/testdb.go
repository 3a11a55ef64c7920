package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/models"
)

// UniqueEmail - email, не пересекающийся между параллельными тестами
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@test.local", prefix, strings.ReplaceAll(uuid.NewString()[:8], "-", ""))
}

// CreateUser создает пользователя прямо в хранилище с хешированием пароля
func CreateUser(t *testing.T, ts *TestServer, name, email, password string, role models.UserRole, status models.UserStatus) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}
	require.NoError(t, ts.Store.Users().Create(context.Background(), user), "создание тестового пользователя")
	return user
}

// Login логинит через API и возвращает access-токен
func Login(t *testing.T, ts *TestServer, email, password string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "логин: %s", body)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

// CreateAndLoginUser создает APPROVED пользователя с ролью и логинит его
func CreateAndLoginUser(t *testing.T, ts *TestServer, name string, role models.UserRole) (string, *models.User) {
	t.Helper()

	const password = "password123"
	user := CreateUser(t, ts, name, UniqueEmail(strings.ToLower(string(role))), password, role, models.UserStatusApproved)
	return Login(t, ts, user.Email, password), user
}

// CreatePost создает пост напрямую в хранилище
func CreatePost(t *testing.T, ts *TestServer, owner *models.User, title string, status models.PostStatus, active bool) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:       owner.ID,
		Title:        title,
		Description:  "Test description",
		Price:        15000,
		Currency:     "CLP",
		ReviewStatus: status,
		IsActive:     active,
	}
	require.NoError(t, ts.Store.Posts().Create(context.Background(), post))
	return post
}

// PNG возвращает валидную картинку заданного размера
func PNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// DecodeJSON разбирает тело ответа
func DecodeJSON(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), "тело ответа: %s", body)
}
