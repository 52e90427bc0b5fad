package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
	"github.com/wareflow/backend/pkg/utils"
)

// ApprovalRepository persists the append-only approval decision log and the
// workflow rule configuration. ApprovalRecord rows are immutable once
// written; there is deliberately no update statement here.
type ApprovalRepository struct {
	db *sql.DB
}

// NewApprovalRepository creates a new ApprovalRepository
func NewApprovalRepository(db *sql.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// InsertRecord appends one approval decision
func (r *ApprovalRepository) InsertRecord(ctx context.Context, rec *models.ApprovalRecord) error {
	if rec.ID == "" {
		rec.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (id, document_id, approver_id, approved, level, "+
		"quote_amount, comments, decided_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", constants.TableApprovalRecord)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		rec.ID, rec.DocumentID, rec.ApproverID, rec.Approved, rec.Level,
		rec.QuoteAmount, rec.Comments, rec.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval record: %w", err)
	}
	return nil
}

// ListRecords returns the decision log for a document, newest first
func (r *ApprovalRepository) ListRecords(ctx context.Context, documentID string) ([]models.ApprovalRecord, error) {
	query := fmt.Sprintf("SELECT id, document_id, approver_id, approved, level, quote_amount, "+
		"comments, decided_at FROM %s WHERE document_id = ? ORDER BY decided_at DESC", constants.TableApprovalRecord)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval records for %s: %w", documentID, err)
	}
	defer rows.Close()

	var records []models.ApprovalRecord
	for rows.Next() {
		var rec models.ApprovalRecord
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.ApproverID, &rec.Approved, &rec.Level,
			&rec.QuoteAmount, &rec.Comments, &rec.DecidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan approval record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRules returns every configured rule for the document type, ordered by
// min_amount ascending so partition validation can walk them in one pass
func (r *ApprovalRepository) ListRules(ctx context.Context, docType models.DocumentType) ([]models.ApprovalWorkflowRule, error) {
	query := fmt.Sprintf("SELECT id, document_type, min_amount, max_amount, approver_role, "+
		"sla_hours, rule_condition FROM %s WHERE document_type = ? ORDER BY min_amount", constants.TableWorkflowRule)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, docType)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow rules for %s: %w", docType, err)
	}
	defer rows.Close()

	var rules []models.ApprovalWorkflowRule
	for rows.Next() {
		var rule models.ApprovalWorkflowRule
		var condition sql.NullString
		if err := rows.Scan(&rule.ID, &rule.DocumentType, &rule.MinAmount, &rule.MaxAmount,
			&rule.ApproverRole, &rule.SlaHours, &condition); err != nil {
			return nil, fmt.Errorf("failed to scan workflow rule: %w", err)
		}
		rule.Condition = condition.String
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// InsertRule creates one workflow rule (bootstrap/seeding only; rules are
// read-only configuration at runtime)
func (r *ApprovalRepository) InsertRule(ctx context.Context, rule *models.ApprovalWorkflowRule) error {
	if rule.ID == "" {
		rule.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (id, document_type, min_amount, max_amount, approver_role, "+
		"sla_hours, rule_condition) VALUES (?, ?, ?, ?, ?, ?, ?)", constants.TableWorkflowRule)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		rule.ID, rule.DocumentType, rule.MinAmount, rule.MaxAmount,
		rule.ApproverRole, rule.SlaHours, nullableString(rule.Condition),
	)
	if err != nil {
		return fmt.Errorf("failed to insert workflow rule: %w", err)
	}
	return nil
}

// CountRules returns the total number of configured rules
func (r *ApprovalRepository) CountRules(ctx context.Context) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", constants.TableWorkflowRule)

	var count int
	if err := executor(ctx, r.db).QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count workflow rules: %w", err)
	}
	return count, nil
}
