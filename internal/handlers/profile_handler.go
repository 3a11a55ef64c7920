package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
)

type ProfileHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewProfileHandler(base *BaseHandler, userService services.UserService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	profile := rg.Group("/profile")
	profile.Use(g.Auth)
	{
		profile.PUT("", h.UpdateProfile)
	}
}

// UpdateProfile godoc
// @Summary Изменить свой профиль
// @Description Только имя, email и пароль; смена пароля требует current_password
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Изменяемые поля"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateOwnProfile(c.Request.Context(), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
