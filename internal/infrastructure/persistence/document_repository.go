package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/utils"
)

// DocumentRepository persists workflow documents in MySQL. All statement
// methods resolve their executor from the context so they join the
// surrounding transaction when one is in flight.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = "id, document_number, document_type, status, title, description, amount, " +
	"warehouse_id, site_manager_approved, qc_approved, storekeeper_approved, photo_count, " +
	"linked_document_id, assigned_to_id, created_by_id, completed_at, version, created_date, last_modified_date"

// Get returns the document or a NotFoundError
func (r *DocumentRepository) Get(ctx context.Context, id string) (*models.Document, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", documentColumns, constants.TableDocument)
	row := executor(ctx, r.db).QueryRowContext(ctx, query, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("document", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	return doc, nil
}

// Insert creates a document row. Version starts at 1.
func (r *DocumentRepository) Insert(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = utils.GenerateID()
	}
	if doc.Version == 0 {
		doc.Version = 1
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableDocument, documentColumns)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		doc.ID, doc.DocumentNumber, doc.DocumentType, doc.Status, doc.Title, doc.Description,
		doc.Amount, doc.WarehouseID, doc.SiteManagerApproved, doc.QCApproved, doc.StorekeeperApproved,
		doc.PhotoCount, doc.LinkedDocumentID, doc.AssignedToID, doc.CreatedByID, doc.CompletedAt,
		doc.Version, doc.CreatedDate, doc.LastModifiedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// Update writes the document guarded by its current version. Zero affected
// rows means a concurrent writer got there first: ConflictError, caller
// reloads and retries the whole operation.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	query := fmt.Sprintf("UPDATE %s SET status = ?, title = ?, description = ?, amount = ?, "+
		"site_manager_approved = ?, qc_approved = ?, storekeeper_approved = ?, photo_count = ?, "+
		"linked_document_id = ?, assigned_to_id = ?, completed_at = ?, version = version + 1, "+
		"last_modified_date = ? WHERE id = ? AND version = ?", constants.TableDocument)

	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		doc.Status, doc.Title, doc.Description, doc.Amount,
		doc.SiteManagerApproved, doc.QCApproved, doc.StorekeeperApproved, doc.PhotoCount,
		doc.LinkedDocumentID, doc.AssignedToID, doc.CompletedAt,
		doc.LastModifiedDate, doc.ID, doc.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", doc.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.NewConflictError("document", doc.ID)
	}

	doc.Version++
	return nil
}

// GetLines returns the requisition lines of a material requisition
func (r *DocumentRepository) GetLines(ctx context.Context, documentID string) ([]models.RequisitionLine, error) {
	query := fmt.Sprintf("SELECT id, document_id, item_id, warehouse_id, qty_requested, "+
		"sourcing, qty_from_stock, qty_from_purchase FROM %s WHERE document_id = ? ORDER BY id",
		constants.TableRequisitionLine)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requisition lines for %s: %w", documentID, err)
	}
	defer rows.Close()

	var lines []models.RequisitionLine
	for rows.Next() {
		var line models.RequisitionLine
		var sourcing sql.NullString
		if err := rows.Scan(&line.ID, &line.DocumentID, &line.ItemID, &line.WarehouseID,
			&line.QtyRequested, &sourcing, &line.QtyFromStock, &line.QtyFromPurchase); err != nil {
			return nil, fmt.Errorf("failed to scan requisition line: %w", err)
		}
		if sourcing.Valid {
			line.Sourcing = models.LineSourcing(sourcing.String)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// InsertLine creates one requisition line
func (r *DocumentRepository) InsertLine(ctx context.Context, line *models.RequisitionLine) error {
	if line.ID == "" {
		line.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (id, document_id, item_id, warehouse_id, qty_requested, "+
		"sourcing, qty_from_stock, qty_from_purchase) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableRequisitionLine)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		line.ID, line.DocumentID, line.ItemID, line.WarehouseID, line.QtyRequested,
		nullableString(string(line.Sourcing)), line.QtyFromStock, line.QtyFromPurchase,
	)
	if err != nil {
		return fmt.Errorf("failed to insert requisition line: %w", err)
	}
	return nil
}

// UpdateLineSourcing persists the stock-check classification of one line
func (r *DocumentRepository) UpdateLineSourcing(ctx context.Context, line *models.RequisitionLine) error {
	query := fmt.Sprintf("UPDATE %s SET sourcing = ?, qty_from_stock = ?, qty_from_purchase = ? WHERE id = ?",
		constants.TableRequisitionLine)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		string(line.Sourcing), line.QtyFromStock, line.QtyFromPurchase, line.ID)
	if err != nil {
		return fmt.Errorf("failed to update sourcing for line %s: %w", line.ID, err)
	}
	return nil
}

// rowScanner lets scanDocument work with both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID, &doc.DocumentNumber, &doc.DocumentType, &doc.Status, &doc.Title, &doc.Description,
		&doc.Amount, &doc.WarehouseID, &doc.SiteManagerApproved, &doc.QCApproved, &doc.StorekeeperApproved,
		&doc.PhotoCount, &doc.LinkedDocumentID, &doc.AssignedToID, &doc.CreatedByID, &doc.CompletedAt,
		&doc.Version, &doc.CreatedDate, &doc.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
