package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
)

type CatalogHandler struct {
	*BaseHandler
	catalogService services.CatalogService
}

func NewCatalogHandler(base *BaseHandler, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler:    base,
		catalogService: catalogService,
	}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	rg.GET("/categories", h.ListCategories)
	rg.POST("/admin/categories", g.Auth, middleware.RoleMiddleware(models.UserRoleSuperAdmin), h.CreateCategory)
}

// ListCategories godoc
// @Summary Категории
// @Tags categories
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Router /categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory godoc
// @Summary Создать категорию
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCategoryRequest true "Название и slug"
// @Success 201 {object} dto.CategoryResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /admin/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}
