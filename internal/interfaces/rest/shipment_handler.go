package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/domain/models"
)

// ShipmentHandler exposes the shipment lifecycle over HTTP
type ShipmentHandler struct {
	svc *services.ShipmentService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(svc *services.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

// ScheduleRequest carries the transit SLA window, zero disables tracking
type ScheduleRequest struct {
	TransitHours int `json:"transit_hours"`
}

// Create handles POST /api/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateShipmentRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Create(c.Request.Context(), &req, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc})
}

// Get handles GET /api/shipments/:id
func (h *ShipmentHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Schedule handles POST /api/shipments/:id/schedule
func (h *ShipmentHandler) Schedule(c *gin.Context) {
	user := GetUserFromContext(c)

	var req ScheduleRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Schedule(c.Request.Context(), c.Param("id"), req.TransitHours, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Dispatch handles POST /api/shipments/:id/dispatch
func (h *ShipmentHandler) Dispatch(c *gin.Context) {
	h.simple(c, h.svc.Dispatch)
}

// Deliver handles POST /api/shipments/:id/deliver
func (h *ShipmentHandler) Deliver(c *gin.Context) {
	user := GetUserFromContext(c)

	doc, met, err := h.svc.Deliver(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, gin.H{"sla_met": met})
}

// Cancel handles POST /api/shipments/:id/cancel
func (h *ShipmentHandler) Cancel(c *gin.Context) {
	h.simple(c, h.svc.Cancel)
}

func (h *ShipmentHandler) simple(c *gin.Context, op func(ctx context.Context, id, actorID string) (*models.Document, error)) {
	user := GetUserFromContext(c)

	doc, err := op(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}
