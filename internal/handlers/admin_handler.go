package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

// AdminHandler - сводка, модерация постов и журнал событий
type AdminHandler struct {
	*BaseHandler
	userService       services.UserService
	postService       services.PostService
	moderationService services.ModerationService
}

func NewAdminHandler(
	base *BaseHandler,
	userService services.UserService,
	postService services.PostService,
	moderationService services.ModerationService,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:       base,
		userService:       userService,
		postService:       postService,
		moderationService: moderationService,
	}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	admin := rg.Group("/admin")
	admin.Use(g.Auth, middleware.RequireRoles(models.UserRoleSuperAdmin, models.UserRoleAdmin))
	{
		admin.GET("/overview", h.Overview)
		admin.GET("/dashboard", h.Overview)
		admin.GET("/posts", h.ListPosts)
		admin.PATCH("/posts/:id/status", h.UpdatePostStatus)
		admin.GET("/events", h.ListEvents)
	}
}

// Overview godoc
// @Summary Сводка для админ-панели
// @Description Счетчики пользователей и постов по статусам, старейшие ожидающие регистрации и посты на модерации
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OverviewResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	resp, err := h.userService.Overview(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListPosts godoc
// @Summary Все посты (любой статус)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING_REVIEW | PUBLISHED | REJECTED | HIDDEN"
// @Param q query string false "Поиск"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.PostListResponse
// @Router /admin/posts [get]
func (h *AdminHandler) ListPosts(c *gin.Context) {
	var query dto.PostListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.postService.ListAll(c.Request.Context(), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdatePostStatus godoc
// @Summary Сменить статус модерации поста
// @Description Принимает ключи status, review_status и estado
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID поста"
// @Param request body dto.UpdatePostStatusRequest true "Новый статус"
// @Success 200 {object} dto.PostResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/posts/{id}/status [patch]
func (h *AdminHandler) UpdatePostStatus(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.UpdatePostStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	status, valid := models.ParsePostStatus(req.Status)
	if !valid {
		h.HandleServiceError(c, apperrors.ErrInvalidStatus("posts", "Unknown post status"))
		return
	}

	post, err := h.moderationService.SetPostStatus(c.Request.Context(), actor, c.Param("id"), status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListEvents godoc
// @Summary Журнал модерации
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param entity query string false "user | post"
// @Param limit query int false "Не больше 200"
// @Success 200 {array} dto.EventResponse
// @Router /admin/events [get]
func (h *AdminHandler) ListEvents(c *gin.Context) {
	events, err := h.moderationService.ListEvents(c.Request.Context(), c.Query("entity"), ParseQueryInt(c, "limit", 0))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
