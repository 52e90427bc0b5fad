package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/domain/models"
)

// JobOrderHandler exposes the job order lifecycle over HTTP
type JobOrderHandler struct {
	svc *services.JobOrderService
}

// NewJobOrderHandler creates a new JobOrderHandler
func NewJobOrderHandler(svc *services.JobOrderService) *JobOrderHandler {
	return &JobOrderHandler{svc: svc}
}

// DecideRequest is an approve/reject verdict on a pending job order
type DecideRequest struct {
	Approved    bool     `json:"approved"`
	QuoteAmount *float64 `json:"quote_amount,omitempty"`
	Comments    string   `json:"comments"`
}

// HoldRequest carries the optional stop-clock reason
type HoldRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// AssignRequest names the worker taking the order
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" binding:"required"`
}

// Create handles POST /api/job-orders
func (h *JobOrderHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateJobOrderRequest
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

// Get handles GET /api/job-orders/:id
func (h *JobOrderHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Submit handles POST /api/job-orders/:id/submit
func (h *JobOrderHandler) Submit(c *gin.Context) {
	user := GetUserFromContext(c)

	doc, route, err := h.svc.Submit(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, gin.H{"route": route})
}

// Decide handles POST /api/job-orders/:id/decide
func (h *JobOrderHandler) Decide(c *gin.Context) {
	user := GetUserFromContext(c)

	var req DecideRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Decide(c.Request.Context(), c.Param("id"), user.ID, req.Approved, req.QuoteAmount, req.Comments)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Assign handles POST /api/job-orders/:id/assign
func (h *JobOrderHandler) Assign(c *gin.Context) {
	user := GetUserFromContext(c)

	var req AssignRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Assign(c.Request.Context(), c.Param("id"), req.AssigneeID, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Start handles POST /api/job-orders/:id/start
func (h *JobOrderHandler) Start(c *gin.Context) {
	h.simple(c, h.svc.Start)
}

// Hold handles POST /api/job-orders/:id/hold
func (h *JobOrderHandler) Hold(c *gin.Context) {
	user := GetUserFromContext(c)

	var req HoldRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Hold(c.Request.Context(), c.Param("id"), req.Reason, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Resume handles POST /api/job-orders/:id/resume
func (h *JobOrderHandler) Resume(c *gin.Context) {
	h.simple(c, h.svc.Resume)
}

// Complete handles POST /api/job-orders/:id/complete
func (h *JobOrderHandler) Complete(c *gin.Context) {
	user := GetUserFromContext(c)

	doc, met, err := h.svc.Complete(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, gin.H{"sla_met": met})
}

// Invoice handles POST /api/job-orders/:id/invoice
func (h *JobOrderHandler) Invoice(c *gin.Context) {
	h.simple(c, h.svc.Invoice)
}

// Cancel handles POST /api/job-orders/:id/cancel
func (h *JobOrderHandler) Cancel(c *gin.Context) {
	h.simple(c, h.svc.Cancel)
}

func (h *JobOrderHandler) simple(c *gin.Context, op func(ctx context.Context, id, actorID string) (*models.Document, error)) {
	user := GetUserFromContext(c)

	doc, err := op(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}
