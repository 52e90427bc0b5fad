package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/internal/application/services"
)

// NotificationHandler exposes the caller's notification feed
type NotificationHandler struct {
	svc *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(svc *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List handles GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	session := GetUserFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	notifications, err := h.svc.List(c.Request.Context(), session.ID, limit)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
