package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/domain/models"
)

// ApprovalHandler exposes parallel approval groups and the decision log
type ApprovalHandler struct {
	groups   *services.ParallelApprovalService
	approval *services.ApprovalService
	sla      *services.SlaService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(groups *services.ParallelApprovalService, approval *services.ApprovalService, sla *services.SlaService) *ApprovalHandler {
	return &ApprovalHandler{groups: groups, approval: approval, sla: sla}
}

// CreateGroupRequest opens a parallel approval group for a document
type CreateGroupRequest struct {
	DocumentType models.DocumentType `json:"document_type" binding:"required"`
	DocumentID   string              `json:"document_id" binding:"required"`
	Level        int                 `json:"level"`
	Mode         models.GroupMode    `json:"mode" binding:"required"`
	ApproverIDs  []string            `json:"approver_ids" binding:"required"`
}

// RespondRequest is one approver's decision inside a group
type RespondRequest struct {
	Approved bool   `json:"approved"`
	Comments string `json:"comments"`
}

// CreateGroup handles POST /api/approval-groups
func (h *ApprovalHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if !BindJSON(c, &req) {
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), req.DocumentType, req.DocumentID, req.Level, req.Mode, req.ApproverIDs)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// Respond handles POST /api/approval-groups/:id/respond
func (h *ApprovalHandler) Respond(c *gin.Context) {
	user := GetUserFromContext(c)

	var req RespondRequest
	if !BindJSON(c, &req) {
		return
	}

	group, err := h.groups.Respond(c.Request.Context(), c.Param("id"), user.ID, req.Approved, req.Comments)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// GetGroup handles GET /api/approval-groups/:id
func (h *ApprovalHandler) GetGroup(c *gin.Context) {
	group, err := h.groups.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// History handles GET /api/documents/:id/approvals
func (h *ApprovalHandler) History(c *gin.Context) {
	records, err := h.approval.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// GetSla handles GET /api/documents/:id/sla
func (h *ApprovalHandler) GetSla(c *gin.Context) {
	rec, err := h.sla.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sla":     rec,
		"overdue": h.sla.IsOverdue(rec),
	})
}
