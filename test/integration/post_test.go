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

// TestCreatePost_WithImage - multipart-создание, пост уходит на модерацию
func TestCreatePost_WithImage(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	token, owner := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)

	res, body := ts.SendMultipart(t, "/api/v1/posts", token, map[string]string{
		"title":       "Guitarra acústica",
		"description": "Poco uso",
		"price":       "120000",
	}, map[string][]byte{
		"image": helpers.PNG(t, 64, 48),
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var post dto.PostResponse
	helpers.DecodeJSON(t, body, &post)
	assert.Equal(t, "PENDING_REVIEW", post.ReviewStatus)
	assert.True(t, post.IsActive)
	assert.False(t, post.Listable)
	assert.Equal(t, "CLP", post.Currency)
	assert.Equal(t, owner.ID, post.Seller.ID)
	require.Len(t, post.Images, 1)
	assert.True(t, post.Images[0].IsCover)
	assert.NotEmpty(t, post.CoverURL)

	// Еще не опубликован - в публичной ленте его нет, в "моих" есть
	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/posts?page_size=100", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotContains(t, body, post.ID)

	res, body = ts.SendRequest(t, http.MethodGet, "/api/v1/posts/mine", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, post.ID)
}

// TestCreatePost_RejectsBadUploads - не картинка, пустой заголовок, без сессии
func TestCreatePost_RejectsBadUploads(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	token, _ := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)

	res, body := ts.SendMultipart(t, "/api/v1/posts", token, map[string]string{
		"title": "Archivo raro",
		"price": "10",
	}, map[string][]byte{
		"image": []byte("#!/bin/sh\necho not an image\n"),
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, res.StatusCode, body)
	assert.Contains(t, body, "VALIDATION_FAILED")

	res, _ = ts.SendMultipart(t, "/api/v1/posts", token, map[string]string{
		"price": "10",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = ts.SendMultipart(t, "/api/v1/posts", "", map[string]string{
		"title": "Sin sesión",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

// TestDeletePost - удаляет владелец или администратор
func TestDeletePost(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	ownerToken, owner := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)
	otherToken, _ := helpers.CreateAndLoginUser(t, ts, "Stranger", models.UserRoleUser)
	post := helpers.CreatePost(t, ts, owner, "Lámpara", models.PostStatusPublished, true)

	res, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/posts/"+post.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/posts/"+post.ID, ownerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// TestCreatePost_NonFinitePrice - Inf и NaN отклоняются, лента владельца остается валидным JSON
func TestCreatePost_NonFinitePrice(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	token, _ := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)

	for _, price := range []string{"Inf", "-Inf", "NaN", "1e300"} {
		res, body := ts.SendMultipart(t, "/api/v1/posts", token, map[string]string{
			"title": "Precio raro",
			"price": price,
		}, nil)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, price+": "+body)
	}

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/posts/mine", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var list dto.PostListResponse
	helpers.DecodeJSON(t, body, &list)
	assert.Zero(t, list.Total)
}

// TestUpdatePost - правка владельцем возвращает пост на модерацию
func TestUpdatePost(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	ownerToken, owner := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)
	otherToken, _ := helpers.CreateAndLoginUser(t, ts, "Stranger", models.UserRoleUser)
	adminToken, _ := helpers.CreateAndLoginUser(t, ts, "Moderator", models.UserRoleAdmin)
	post := helpers.CreatePost(t, ts, owner, "Silla plegable", models.PostStatusPublished, true)
	path := "/api/v1/posts/" + post.ID

	res, _ := ts.SendRequest(t, http.MethodPut, path, otherToken, map[string]string{"title": "Robada"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodPut, path, "", map[string]string{"title": "Anónima"})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodPut, path, ownerToken, map[string]interface{}{"price": 1e300})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	res, _ = ts.SendRequest(t, http.MethodPut, path, ownerToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPut, path, ownerToken, map[string]interface{}{
		"title": "Silla plegable azul",
		"price": 9900,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	var updated dto.PostResponse
	helpers.DecodeJSON(t, body, &updated)
	assert.Equal(t, "Silla plegable azul", updated.Title)
	assert.Equal(t, 9900.0, updated.Price)
	assert.Equal(t, "PENDING_REVIEW", updated.ReviewStatus)

	// снова не виден публично
	res, _ = ts.SendRequest(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodPatch, "/api/v1/admin/posts/"+post.ID+"/status", adminToken, map[string]string{"status": "PUBLISHED"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	// правка модератором статус не меняет
	res, body = ts.SendRequest(t, http.MethodPut, path, adminToken, map[string]string{"description": "Revisado"})
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, `"review_status":"PUBLISHED"`)
}
