package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/middleware"
	"marketvue_backend/internal/models"
	"marketvue_backend/internal/services"
	"marketvue_backend/internal/services/dto"
)

type SupportHandler struct {
	*BaseHandler
	supportService services.SupportService
}

func NewSupportHandler(base *BaseHandler, supportService services.SupportService) *SupportHandler {
	return &SupportHandler{
		BaseHandler:    base,
		supportService: supportService,
	}
}

func (h *SupportHandler) RegisterRoutes(rg *gin.RouterGroup, g Guards) {
	rg.POST("/support/tickets", g.Auth, h.CreateTicket)

	admin := rg.Group("/admin/support/tickets")
	admin.Use(g.Auth, middleware.RequireRoles(models.UserRoleSuperAdmin, models.UserRoleAdmin))
	{
		admin.GET("", h.ListTickets)
		admin.PATCH("/:id/close", h.CloseTicket)
	}
}

// CreateTicket godoc
// @Summary Обращение в поддержку
// @Tags support
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTicketRequest true "Тема и текст"
// @Success 201 {object} dto.TicketResponse
// @Router /support/tickets [post]
func (h *SupportHandler) CreateTicket(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	ticket, err := h.supportService.CreateTicket(c.Request.Context(), actor, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// ListTickets godoc
// @Summary Обращения в поддержку
// @Tags support
// @Produce json
// @Security BearerAuth
// @Param status query string false "OPEN | CLOSED"
// @Param page query int false "Страница"
// @Param page_size query int false "Размер страницы"
// @Success 200 {object} dto.TicketListResponse
// @Router /admin/support/tickets [get]
func (h *SupportHandler) ListTickets(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.supportService.ListTickets(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CloseTicket godoc
// @Summary Закрыть обращение
// @Tags support
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID обращения"
// @Success 200 {object} dto.TicketResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /admin/support/tickets/{id}/close [patch]
func (h *SupportHandler) CloseTicket(c *gin.Context) {
	actor, ok := h.GetAndAuthorizeActor(c)
	if !ok {
		return
	}

	ticket, err := h.supportService.CloseTicket(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}
