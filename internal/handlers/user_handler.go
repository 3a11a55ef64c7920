package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/auth"
	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
)

// UserHandler - модерация и администрирование учетных записей
type UserHandler struct {
	*BaseHandler
	userService       services.UserService
	moderationService services.ModerationService
}

func NewUserHandler(base *BaseHandler, userService services.UserService, moderationService services.ModerationService) *UserHandler {
	return &UserHandler{
		BaseHandler:       base,
		userService:       userService,
		moderationService: moderationService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	// Решения по регистрациям принимает только SUPERADMIN
	users := rg.Group("/users")
	users.Use(g.Auth, middleware.RoleMiddleware(models.UserRoleSuperAdmin))
	{
		users.GET("/pending", h.ListPending)
		users.POST("/:id/approve", h.Approve)
		users.POST("/:id/deny", h.Deny)
		users.POST("/:id/block", h.Block)
	}

	admin := rg.Group("/admin/users")
	admin.Use(g.Auth, middleware.RequireRoles(models.UserRoleSuperAdmin, models.UserRoleAdmin))
	{
		admin.GET("", h.ListUsers)
		admin.PUT("/:id", h.UpdateUser)
		admin.DELETE("/:id", middleware.RoleMiddleware(models.UserRoleSuperAdmin), h.DeleteUser)
	}
}

// ListPending godoc
// @Summary Ожидающие подтверждения
// @Description Самые старые регистрации первыми
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Router /users/pending [get]
func (h *UserHandler) ListPending(c *gin.Context) {
	users, err := h.userService.ListPending(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Approve godoc
// @Summary Одобрить пользователя
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} dto.UserResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /users/{id}/approve [post]
func (h *UserHandler) Approve(c *gin.Context) {
	h.decide(c, h.moderationService.Approve)
}

// Deny godoc
// @Summary Отклонить регистрацию
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} dto.UserResponse
// @Router /users/{id}/deny [post]
func (h *UserHandler) Deny(c *gin.Context) {
	h.decide(c, h.moderationService.Deny)
}

// Block godoc
// @Summary Заблокировать пользователя
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} dto.UserResponse
// @Router /users/{id}/block [post]
func (h *UserHandler) Block(c *gin.Context) {
	h.decide(c, h.moderationService.Block)
}

type userAction func(ctx context.Context, actor *auth.Actor, userID string) (*dto.UserResponse, error)

func (h *UserHandler) decide(c *gin.Context, action userAction) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	user, err := action(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary Список пользователей
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "PENDING | APPROVED | DENIED | BLOCKED"
// @Param role query string false "SUPERADMIN | ADMIN | USER"
// @Param q query string false "Поиск по имени и email"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.UserListResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var query dto.UserListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	query.Page, query.PageSize = ParsePagination(c)

	resp, err := h.userService.List(c.Request.Context(), &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUser godoc
// @Summary Изменить пользователя
// @Description ADMIN может менять только статус; имя, email, пароль и роль - только SUPERADMIN.
// @Description Значения, совпадающие с текущими, изменением не считаются.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Param request body dto.AdminUpdateUserRequest true "Изменяемые поля"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.AdminUpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.AdminUpdate(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Удалить пользователя
// @Description Каскадно удаляет посты, картинки, отзывы, токены и обращения пользователя
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} dto.MessageResponse
// @Failure 403 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted"})
}
