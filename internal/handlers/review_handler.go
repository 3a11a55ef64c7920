package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	reviews := rg.Group("/posts/:id/reviews")
	{
		reviews.GET("", g.Optional, h.ListReviews)
		reviews.POST("", g.Auth, h.UpsertReview)
	}
}

// ListReviews godoc
// @Summary Отзывы к посту
// @Tags reviews
// @Produce json
// @Param id path string true "ID поста"
// @Success 200 {object} dto.ReviewListResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/{id}/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	resp, err := h.reviewService.ListByPost(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpsertReview godoc
// @Summary Оставить или обновить отзыв
// @Description Один отзыв на пост от пользователя; повторная отправка перезаписывает оценку и текст
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body dto.UpsertReviewRequest true "Оценка 1..5 и комментарий"
// @Success 201 {object} dto.UpsertReviewResponse "Отзыв создан"
// @Success 200 {object} dto.UpsertReviewResponse "Отзыв обновлен"
// @Failure 403 {object} apperrors.ErrorResponse "Отзыв на свой пост"
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse "Пост не опубликован"
// @Router /posts/{id}/reviews [post]
func (h *ReviewHandler) UpsertReview(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.UpsertReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.reviewService.Upsert(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}
