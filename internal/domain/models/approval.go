package models

import (
	"time"
)

// ApprovalRecord is one immutable entry in the append-only decision log
type ApprovalRecord struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"document_id"`
	ApproverID string  `json:"approver_id"`
	Approved   bool    `json:"approved"`
	Level      int     `json:"level"`
	// QuoteAmount, when present, revises the document's working amount
	// (approvers price out a request during review).
	QuoteAmount *float64  `json:"quote_amount,omitempty"`
	Comments    string    `json:"comments"`
	DecidedAt   time.Time `json:"decided_at"`
}

// ApprovalWorkflowRule routes sequential approvals by amount range.
// For one document type the [MinAmount, MaxAmount) ranges must partition
// the amount axis; MaxAmount nil means unbounded above.
type ApprovalWorkflowRule struct {
	ID           string       `json:"id"`
	DocumentType DocumentType `json:"document_type"`
	MinAmount    float64      `json:"min_amount"`
	MaxAmount    *float64     `json:"max_amount,omitempty"`
	ApproverRole string       `json:"approver_role"`
	SlaHours     int          `json:"sla_hours"`
	// Condition is an optional expr filter evaluated against the document
	// (amount, document_type, warehouse_id). Empty means always applicable.
	Condition string `json:"condition,omitempty"`
}

// Matches reports whether the rule's range contains the amount.
// Lower bound inclusive, upper bound exclusive.
func (r *ApprovalWorkflowRule) Matches(amount float64) bool {
	if amount < r.MinAmount {
		return false
	}
	return r.MaxAmount == nil || amount < *r.MaxAmount
}

// ApprovalRoute is the routing outcome for a submitted document
type ApprovalRoute struct {
	ApproverRole string `json:"approver_role"`
	SlaHours     int    `json:"sla_hours"`
}

// GroupMode is the resolution policy of a parallel approval group
type GroupMode string

const (
	// GroupModeAll requires every expected approver to approve
	GroupModeAll GroupMode = "all"
	// GroupModeAny resolves on the first approval
	GroupModeAny GroupMode = "any"
)

// GroupStatus is the lifecycle state of a parallel approval group
type GroupStatus string

const (
	GroupStatusPending  GroupStatus = "pending"
	GroupStatusApproved GroupStatus = "approved"
	GroupStatusRejected GroupStatus = "rejected"
)

// ApprovalResponse is one approver's decision inside a parallel group
type ApprovalResponse struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	ApproverID string    `json:"approver_id"`
	Approved   bool      `json:"approved"`
	Comments   string    `json:"comments"`
	DecidedAt  time.Time `json:"decided_at"`
}

// ParallelApprovalGroup gates one transition behind multiple independent
// approvers. The group resolves the moment the mode's condition becomes
// decidable and rejects further responses as stale afterwards.
type ParallelApprovalGroup struct {
	ID            string       `json:"id"`
	DocumentType  DocumentType `json:"document_type"`
	DocumentID    string       `json:"document_id"`
	ApprovalLevel int          `json:"approval_level"`
	Mode          GroupMode    `json:"mode"`
	Status        GroupStatus  `json:"status"`
	// ExpectedApprovers is the full roster; one outstanding slot each.
	ExpectedApprovers []string           `json:"expected_approvers"`
	Responses         []ApprovalResponse `json:"responses,omitempty"`
	CreatedDate       time.Time          `json:"created_date"`
	ResolvedDate      *time.Time         `json:"resolved_date,omitempty"`
}

// IsResolved reports whether the group reached a final status
func (g *ParallelApprovalGroup) IsResolved() bool {
	return g.Status != GroupStatusPending
}

// HasResponded reports whether the approver already cast a decision
func (g *ParallelApprovalGroup) HasResponded(approverID string) bool {
	for _, r := range g.Responses {
		if r.ApproverID == approverID {
			return true
		}
	}
	return false
}

// IsExpected reports whether the approver belongs to the group roster
func (g *ParallelApprovalGroup) IsExpected(approverID string) bool {
	for _, id := range g.ExpectedApprovers {
		if id == approverID {
			return true
		}
	}
	return false
}

// Resolve recomputes the group status from its responses under the mode.
// all: approved once every expected approver approved, rejected on the
// first rejection. any: approved on the first approval, rejected only when
// every expected approver rejected.
func (g *ParallelApprovalGroup) Resolve() GroupStatus {
	approvals := 0
	rejections := 0
	for _, r := range g.Responses {
		if r.Approved {
			approvals++
		} else {
			rejections++
		}
	}

	switch g.Mode {
	case GroupModeAny:
		if approvals > 0 {
			return GroupStatusApproved
		}
		if rejections >= len(g.ExpectedApprovers) {
			return GroupStatusRejected
		}
	default: // GroupModeAll
		if rejections > 0 {
			return GroupStatusRejected
		}
		if approvals >= len(g.ExpectedApprovers) {
			return GroupStatusApproved
		}
	}
	return GroupStatusPending
}

// User is an authenticated actor. Role drives approval routing targets.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedDate  time.Time `json:"created_date"`
}

// Notification is one best-effort delivery row written by the notifier
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	DocumentID  string    `json:"document_id"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	CreatedDate time.Time `json:"created_date"`
}
