package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketvue_backend/internal/logger"
	"marketvue_backend/internal/repositories"
)

type HealthHandler struct {
	store repositories.Store
}

func NewHealthHandler(store repositories.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health godoc
// @Summary Проверка доступности
// @Description 503, если хранилище не отвечает
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.CtxWithError(c.Request.Context(), "health check failed", err, "store", h.store.Mode())
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"store":  h.store.Mode(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"store":  h.store.Mode(),
	})
}
