package ports

import (
	"context"

	"github.com/wareflow/backend/internal/domain/models"
)

// DocumentRepository persists workflow documents. Implementations must
// honour the transaction carried in the context so one transition's writes
// commit or roll back together.
type DocumentRepository interface {
	// Get returns the document or a NotFoundError
	Get(ctx context.Context, id string) (*models.Document, error)
	Insert(ctx context.Context, doc *models.Document) error
	// Update writes the document using its Version as the optimistic
	// concurrency token and increments it; a stale version is a
	// ConflictError.
	Update(ctx context.Context, doc *models.Document) error
	// GetLines returns the requisition lines of a material requisition
	GetLines(ctx context.Context, documentID string) ([]models.RequisitionLine, error)
	InsertLine(ctx context.Context, line *models.RequisitionLine) error
	UpdateLineSourcing(ctx context.Context, line *models.RequisitionLine) error
}

// SlaRepository persists SLA deadline records, one per tracked document
type SlaRepository interface {
	// GetByDocument returns the record or a NotFoundError
	GetByDocument(ctx context.Context, documentID string) (*models.SlaRecord, error)
	// FindByDocument returns nil without error when no SLA is tracked
	FindByDocument(ctx context.Context, documentID string) (*models.SlaRecord, error)
	Insert(ctx context.Context, rec *models.SlaRecord) error
	Update(ctx context.Context, rec *models.SlaRecord) error
	// ListOverdue returns unevaluated, unpaused records whose due date has
	// passed. Used only by the sweep, never by transitions.
	ListOverdue(ctx context.Context, limit int) ([]models.SlaRecord, error)
}

// ApprovalRepository persists the append-only decision log and the
// read-only workflow rule configuration
type ApprovalRepository interface {
	InsertRecord(ctx context.Context, rec *models.ApprovalRecord) error
	ListRecords(ctx context.Context, documentID string) ([]models.ApprovalRecord, error)
	// ListRules returns every configured rule for the document type,
	// ordered by min_amount ascending
	ListRules(ctx context.Context, docType models.DocumentType) ([]models.ApprovalWorkflowRule, error)
	InsertRule(ctx context.Context, rule *models.ApprovalWorkflowRule) error
	CountRules(ctx context.Context) (int, error)
}

// ApprovalGroupRepository persists parallel approval groups and responses
type ApprovalGroupRepository interface {
	// Get returns the group with its responses or a NotFoundError
	Get(ctx context.Context, id string) (*models.ParallelApprovalGroup, error)
	FindByDocument(ctx context.Context, documentID string, level int) (*models.ParallelApprovalGroup, error)
	Insert(ctx context.Context, group *models.ParallelApprovalGroup) error
	InsertResponse(ctx context.Context, resp *models.ApprovalResponse) error
	UpdateStatus(ctx context.Context, group *models.ParallelApprovalGroup) error
}

// StockLookup answers per-warehouse availability questions during the
// material requisition stock check
type StockLookup interface {
	GetStockLevel(ctx context.Context, itemID, warehouseID string) (int, error)
}

// StockRepository extends the lookup with the write side used when a
// requisition is fulfilled from stock
type StockRepository interface {
	StockLookup
	// AdjustStock applies a delta to the on-hand quantity, creating the
	// row when none exists
	AdjustStock(ctx context.Context, itemID, warehouseID string, delta int) error
}

// DocumentNumberer generates one human-readable business number per
// document, invoked once at creation and never re-invoked
type DocumentNumberer interface {
	GenerateDocumentNumber(ctx context.Context, docType models.DocumentType) (string, error)
}

// NotificationRepository stores best-effort delivery rows
type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	// ListForRecipient returns recent notifications for a user, newest first
	ListForRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
}

// UserRepository resolves authenticated actors
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	CountUsers(ctx context.Context) (int, error)
}
