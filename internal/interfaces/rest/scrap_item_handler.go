package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/domain/models"
)

// ScrapItemHandler exposes the scrap disposal lifecycle over HTTP
type ScrapItemHandler struct {
	svc *services.ScrapItemService
}

// NewScrapItemHandler creates a new ScrapItemHandler
func NewScrapItemHandler(svc *services.ScrapItemService) *ScrapItemHandler {
	return &ScrapItemHandler{svc: svc}
}

// ReportRequest carries the photo evidence count
type ReportRequest struct {
	PhotoCount int `json:"photo_count"`
}

// GateRequest flips one disposal sign-off gate
type GateRequest struct {
	Gate     services.ScrapGate `json:"gate" binding:"required"`
	Approved bool               `json:"approved"`
}

// SellRequest records the sale proceeds
type SellRequest struct {
	SaleAmount float64 `json:"sale_amount"`
}

// Create handles POST /api/scrap-items
func (h *ScrapItemHandler) Create(c *gin.Context) {
	user := GetUserFromContext(c)

	var req services.CreateScrapItemRequest
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

// Get handles GET /api/scrap-items/:id
func (h *ScrapItemHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Report handles POST /api/scrap-items/:id/report
func (h *ScrapItemHandler) Report(c *gin.Context) {
	user := GetUserFromContext(c)

	var req ReportRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Report(c.Request.Context(), c.Param("id"), req.PhotoCount, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// SetGate handles POST /api/scrap-items/:id/gates
func (h *ScrapItemHandler) SetGate(c *gin.Context) {
	user := GetUserFromContext(c)

	var req GateRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.SetGate(c.Request.Context(), c.Param("id"), req.Gate, req.Approved, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Approve handles POST /api/scrap-items/:id/approve
func (h *ScrapItemHandler) Approve(c *gin.Context) {
	h.simple(c, h.svc.Approve)
}

// Reject handles POST /api/scrap-items/:id/reject
func (h *ScrapItemHandler) Reject(c *gin.Context) {
	h.simple(c, h.svc.Reject)
}

// MoveToSSC handles POST /api/scrap-items/:id/move-to-ssc
func (h *ScrapItemHandler) MoveToSSC(c *gin.Context) {
	h.simple(c, h.svc.MoveToSSC)
}

// Sell handles POST /api/scrap-items/:id/sell
func (h *ScrapItemHandler) Sell(c *gin.Context) {
	user := GetUserFromContext(c)

	var req SellRequest
	if !BindJSON(c, &req) {
		return
	}

	doc, err := h.svc.Sell(c.Request.Context(), c.Param("id"), req.SaleAmount, user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}

// Dispose handles POST /api/scrap-items/:id/dispose
func (h *ScrapItemHandler) Dispose(c *gin.Context) {
	h.simple(c, h.svc.Dispose)
}

// Close handles POST /api/scrap-items/:id/close
func (h *ScrapItemHandler) Close(c *gin.Context) {
	h.simple(c, h.svc.Close)
}

func (h *ScrapItemHandler) simple(c *gin.Context, op func(ctx context.Context, id, actorID string) (*models.Document, error)) {
	user := GetUserFromContext(c)

	doc, err := op(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondDocument(c, doc, nil)
}
