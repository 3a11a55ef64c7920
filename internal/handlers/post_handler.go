package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

// maxImagesPerPost - сколько картинок принимается в одном запросе
const maxImagesPerPost = 8

type PostHandler struct {
	*BaseHandler
	postService       services.PostService
	moderationService services.ModerationService
	maxUploadSize     int64
}

func NewPostHandler(
	base *BaseHandler,
	postService services.PostService,
	moderationService services.ModerationService,
	maxUploadSize int64,
) *PostHandler {
	return &PostHandler{
		BaseHandler:       base,
		postService:       postService,
		moderationService: moderationService,
		maxUploadSize:     maxUploadSize,
	}
}

func (h *PostHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	posts := rg.Group("/posts")
	{
		posts.GET("", h.ListPublic)
		posts.GET("/mine", g.Auth, h.ListMine)
		posts.GET("/:id", g.Optional, h.GetPost)
		posts.POST("", g.Auth, h.CreatePost)
		posts.PUT("/:id", g.Auth, h.UpdatePost)
		posts.PATCH("/:id/toggle", g.Auth, h.ToggleActive)
		posts.DELETE("/:id", g.Auth, h.DeletePost)
	}
}

// ListPublic godoc
// @Summary Публичная лента
// @Description Только PUBLISHED и активные посты
// @Tags posts
// @Produce json
// @Param q query string false "Поиск по заголовку и описанию"
// @Param category_id query string false "Категория"
// @Param min_price query number false "Цена от"
// @Param max_price query number false "Цена до"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.PostListResponse
// @Router /posts [get]
func (h *PostHandler) ListPublic(c *gin.Context) {
	var query dto.PostListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.postService.ListPublic(c.Request.Context(), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetPost godoc
// @Summary Пост по ID
// @Description Неопубликованный пост виден только владельцу и администраторам
// @Tags posts
// @Produce json
// @Param id path string true "ID поста"
// @Success 200 {object} dto.PostResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPublic(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListMine godoc
// @Summary Мои посты (любой статус)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.PostListResponse
// @Router /posts/mine [get]
func (h *PostHandler) ListMine(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var query dto.PostListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.postService.ListMine(c.Request.Context(), actor, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePost godoc
// @Summary Создать пост
// @Description multipart/form-data; картинки в полях image/images необязательны. Пост уходит на модерацию.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Заголовок"
// @Param description formData string false "Описание"
// @Param price formData number false "Цена"
// @Param currency formData string false "Валюта (CLP)"
// @Param category_id formData string false "Категория"
// @Param image formData file false "Картинка"
// @Success 201 {object} dto.PostResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 413 {object} apperrors.ErrorResponse
// @Failure 415 {object} apperrors.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	images, err := h.readImages(c)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	post, err := h.postService.Create(c.Request.Context(), actor, &req, images)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// readImages читает файлы из полей image и images; JSON-запрос картинок не несет
func (h *PostHandler) readImages(c *gin.Context) ([]dto.UploadedImage, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, apperrors.NewBadRequestError("Invalid multipart form: " + err.Error())
	}

	var headers []*multipart.FileHeader
	headers = append(headers, form.File["image"]...)
	headers = append(headers, form.File["images"]...)
	if len(headers) > maxImagesPerPost {
		return nil, apperrors.ValidationError(map[string]string{
			"images": fmt.Sprintf("at most %d images allowed", maxImagesPerPost),
		})
	}

	images := make([]dto.UploadedImage, 0, len(headers))
	for _, fh := range headers {
		if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
			return nil, apperrors.ErrFileTooLarge.WithDetails(map[string]interface{}{
				"file":     fh.Filename,
				"max_size": h.maxUploadSize,
			})
		}
		data, err := readFile(fh, h.maxUploadSize)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Failed to read uploaded file " + fh.Filename)
		}
		images = append(images, dto.UploadedImage{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if limit <= 0 {
		return io.ReadAll(f)
	}
	// +1 чтобы сервис увидел превышение лимита
	return io.ReadAll(io.LimitReader(f, limit+1))
}

// ToggleActive godoc
// @Summary Включить или скрыть свой пост
// @Description Пустое тело переключает флаг; владелец не может включить REJECTED или HIDDEN пост (409)
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body dto.ToggleActiveRequest false "Явное значение"
// @Success 200 {object} dto.PostResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /posts/{id}/toggle [patch]
func (h *PostHandler) ToggleActive(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.ToggleActiveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.HandleServiceError(c, apperrors.NewBadRequestError("Invalid request body: "+err.Error()))
			return
		}
	}

	post, err := h.moderationService.ToggleActive(c.Request.Context(), actor, c.Param("id"), req.IsActive)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// UpdatePost godoc
// @Summary Изменить пост
// @Description Частичная правка. Правка владельцем PUBLISHED или REJECTED поста возвращает его в PENDING_REVIEW.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body dto.UpdatePostRequest true "Изменяемые поля"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	post, err := h.postService.Update(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary Удалить пост
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Post deleted"})
}
