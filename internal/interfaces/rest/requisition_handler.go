package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/domain/models"
)

// RequisitionHandler exposes the material requisition lifecycle over HTTP
type RequisitionHandler struct {
	svc *services.RequisitionService
}

// NewRequisitionHandler creates a new RequisitionHandler
func NewRequisitionHandler(svc *services.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{svc: svc}
}

// Create handles POST /api/requisitions
func (h *RequisitionHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateRequisitionRequest
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

// Get handles GET /api/requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	doc, lines, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, gin.H{"lines": lines})
}

// Submit handles POST /api/requisitions/:id/submit
func (h *RequisitionHandler) Submit(c *gin.Context) {
	user := GetUserFromContext(c)

	doc, route, err := h.svc.Submit(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, gin.H{"route": route})
}

// StartReview handles POST /api/requisitions/:id/review
func (h *RequisitionHandler) StartReview(c *gin.Context) {
	h.simple(c, h.svc.StartReview)
}

// Approve handles POST /api/requisitions/:id/approve
func (h *RequisitionHandler) Approve(c *gin.Context) {
	h.simple(c, h.svc.Approve)
}

// Reject handles POST /api/requisitions/:id/reject
func (h *RequisitionHandler) Reject(c *gin.Context) {
	h.simple(c, h.svc.Reject)
}

// CheckStock handles POST /api/requisitions/:id/check-stock
func (h *RequisitionHandler) CheckStock(c *gin.Context) {
	user := GetUserFromContext(c)

	doc, lines, err := h.svc.CheckStock(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, gin.H{"lines": lines})
}

// Fulfill handles POST /api/requisitions/:id/fulfill
func (h *RequisitionHandler) Fulfill(c *gin.Context) {
	h.simple(c, h.svc.Fulfill)
}

// Cancel handles POST /api/requisitions/:id/cancel
func (h *RequisitionHandler) Cancel(c *gin.Context) {
	h.simple(c, h.svc.Cancel)
}

func (h *RequisitionHandler) simple(c *gin.Context, op func(ctx context.Context, id, actorID string) (*models.Document, error)) {
	user := GetUserFromContext(c)

	doc, err := op(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}
