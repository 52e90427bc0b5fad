package models

import (
	"time"
)

// DocumentType identifies which workflow graph and business rules apply
type DocumentType string

const (
	DocTypeJobOrder    DocumentType = "job_order"
	DocTypeRequisition DocumentType = "material_requisition"
	DocTypeScrapItem   DocumentType = "scrap_item"
	DocTypeShipment    DocumentType = "shipment"
)

// Status is a document workflow state. The valid set depends on the
// document type; the transition guard owns the legality rules.
type Status string

// Job Order states
const (
	StatusDraft           Status = "draft"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusAssigned        Status = "assigned"
	StatusInProgress      Status = "in_progress"
	StatusOnHold          Status = "on_hold"
	StatusCompleted       Status = "completed"
	StatusInvoiced        Status = "invoiced"
	StatusCancelled       Status = "cancelled"
)

// Material Requisition states (draft/approved/rejected/cancelled shared above)
const (
	StatusSubmitted     Status = "submitted"
	StatusUnderReview   Status = "under_review"
	StatusCheckingStock Status = "checking_stock"
	StatusFromStock     Status = "from_stock"
	StatusNeedsPurchase Status = "needs_purchase"
	StatusFulfilled     Status = "fulfilled"
)

// Scrap Item states
const (
	StatusIdentified Status = "identified"
	StatusReported   Status = "reported"
	StatusInSSC      Status = "in_ssc"
	StatusSold       Status = "sold"
	StatusDisposed   Status = "disposed"
	StatusClosed     Status = "closed"
)

// Shipment states (draft/cancelled shared above)
const (
	StatusScheduled Status = "scheduled"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
)

// Document is one business record under workflow control. Status is mutated
// only through a successful guarded transition; documents are never deleted,
// only moved to a terminal state.
type Document struct {
	ID             string       `json:"id"`
	DocumentNumber string       `json:"document_number"`
	DocumentType   DocumentType `json:"document_type"`
	Status         Status       `json:"status"`
	Title          string       `json:"title"`
	Description    *string      `json:"description,omitempty"`
	// Amount drives approval escalation; nil for types without amount gating.
	Amount      *float64 `json:"amount,omitempty"`
	WarehouseID *string  `json:"warehouse_id,omitempty"`

	// Scrap Item approval gates. Each flips independently while the item is
	// in the reported state; all three must be set before approve.
	SiteManagerApproved bool `json:"site_manager_approved"`
	QCApproved          bool `json:"qc_approved"`
	StorekeeperApproved bool `json:"storekeeper_approved"`
	// PhotoCount records how many photo references were attached; scrap
	// items cannot be reported without at least one.
	PhotoCount int `json:"photo_count"`

	// LinkedDocumentID points at a related record updated best-effort on
	// certain transitions (e.g. the receiving document of a shipment).
	LinkedDocumentID *string `json:"linked_document_id,omitempty"`

	AssignedToID *string    `json:"assigned_to_id,omitempty"`
	CreatedByID  string     `json:"created_by_id"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	// Version is the optimistic concurrency token. Every successful status
	// update increments it; a stale version on write is a ConflictError.
	Version int `json:"version"`

	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}

// HasAmount reports whether an amount has been set on the document
func (d *Document) HasAmount() bool {
	return d.Amount != nil
}

// AllScrapGatesApproved reports whether all three independent scrap
// disposal sign-offs are in place
func (d *Document) AllScrapGatesApproved() bool {
	return d.SiteManagerApproved && d.QCApproved && d.StorekeeperApproved
}

// RequisitionLine is one requested item on a material requisition.
// Sourcing fields are filled during the checking_stock transition.
type RequisitionLine struct {
	ID          string `json:"id"`
	DocumentID  string `json:"document_id"`
	ItemID      string `json:"item_id"`
	WarehouseID string `json:"warehouse_id"`
	QtyRequested int   `json:"qty_requested"`

	// Sourcing decision, derived from stock lookup.
	Sourcing        LineSourcing `json:"sourcing,omitempty"`
	QtyFromStock    int          `json:"qty_from_stock"`
	QtyFromPurchase int          `json:"qty_from_purchase"`
}

// LineSourcing classifies how a requisition line will be satisfied
type LineSourcing string

const (
	// SourcingFromStock means available stock fully covers the line
	SourcingFromStock LineSourcing = "from_stock"
	// SourcingBoth means stock covers part of the line, the rest is purchased
	SourcingBoth LineSourcing = "both"
	// SourcingPurchase means no stock is available for the line
	SourcingPurchase LineSourcing = "purchase_required"
)
