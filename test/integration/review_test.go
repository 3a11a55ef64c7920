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

// TestReviewUpsert - одна запись на пару (пост, автор), второй POST перезаписывает первую
func TestReviewUpsert(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	_, seller := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)
	buyerToken, buyer := helpers.CreateAndLoginUser(t, ts, "Buyer", models.UserRoleUser)
	post := helpers.CreatePost(t, ts, seller, "Sofá de tres cuerpos", models.PostStatusPublished, true)
	path := "/api/v1/posts/" + post.ID + "/reviews"

	res, body := ts.SendRequest(t, http.MethodPost, path, buyerToken, map[string]interface{}{
		"rating":  4,
		"comment": "Buen estado",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var first dto.UpsertReviewResponse
	helpers.DecodeJSON(t, body, &first)
	assert.True(t, first.Created)
	assert.Equal(t, buyer.ID, first.Review.UserID)
	assert.Equal(t, int64(1), first.Stats.ReviewCount)

	res, body = ts.SendRequest(t, http.MethodPost, path, buyerToken, map[string]interface{}{
		"rating":  2,
		"comment": "Cambié de opinión",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	var second dto.UpsertReviewResponse
	helpers.DecodeJSON(t, body, &second)
	assert.False(t, second.Created)
	assert.Equal(t, first.Review.ID, second.Review.ID)
	assert.Equal(t, 2, second.Review.Rating)
	assert.Equal(t, int64(1), second.Stats.ReviewCount)
	assert.InDelta(t, 2.0, second.Stats.AverageRating, 0.001)

	res, body = ts.SendRequest(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var list dto.ReviewListResponse
	helpers.DecodeJSON(t, body, &list)
	require.Len(t, list.Reviews, 1)
	assert.Equal(t, "Cambié de opinión", list.Reviews[0].Comment)
}

// TestReviewRules - валидация рейтинга, запрет на свой пост и на неопубликованный
func TestReviewRules(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	sellerToken, seller := helpers.CreateAndLoginUser(t, ts, "Seller", models.UserRoleUser)
	buyerToken, _ := helpers.CreateAndLoginUser(t, ts, "Buyer", models.UserRoleUser)
	published := helpers.CreatePost(t, ts, seller, "Mesa", models.PostStatusPublished, true)
	hidden := helpers.CreatePost(t, ts, seller, "Silla", models.PostStatusHidden, true)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/posts/"+published.ID+"/reviews", "", map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/posts/"+published.ID+"/reviews", buyerToken, map[string]interface{}{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, "VALIDATION_FAILED")

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/posts/"+published.ID+"/reviews", sellerToken, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, body = ts.SendRequest(t, http.MethodPost, "/api/v1/posts/"+hidden.ID+"/reviews", buyerToken, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, body, "POST_UNAVAILABLE")

	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/posts/"+hidden.ID+"/reviews", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/posts/does-not-exist/reviews", buyerToken, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
