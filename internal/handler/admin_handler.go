package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"objectivebot/internal/model"
)

// AdminStore is the read surface the operator endpoint needs.
type AdminStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Objective, error)
}

type AdminHandler struct {
	store  AdminStore
	logger *zap.Logger
}

func NewAdminHandler(store AdminStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// GetObjectives handles GET /admin/objectives?user_id= for operators.
func (h *AdminHandler) GetObjectives(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	objectives, err := h.store.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Admin list failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch objectives"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"objectives": objectives})
}
