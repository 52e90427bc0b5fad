package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/utils"
)

// GroupRepository persists parallel approval groups. The expected approver
// roster is a JSON column; responses live in their own table and are loaded
// with the group.
type GroupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Get returns the group with its responses or a NotFoundError
func (r *GroupRepository) Get(ctx context.Context, id string) (*models.ParallelApprovalGroup, error) {
	query := fmt.Sprintf("SELECT id, document_type, document_id, approval_level, mode, status, "+
		"expected_approvers, created_date, resolved_date FROM %s WHERE id = ?", constants.TableApprovalGroup)

	group, err := r.scanGroup(executor(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("approval group", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load approval group %s: %w", id, err)
	}

	if err := r.loadResponses(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// FindByDocument returns the group gating a document at the given level,
// nil when none exists
func (r *GroupRepository) FindByDocument(ctx context.Context, documentID string, level int) (*models.ParallelApprovalGroup, error) {
	query := fmt.Sprintf("SELECT id, document_type, document_id, approval_level, mode, status, "+
		"expected_approvers, created_date, resolved_date FROM %s WHERE document_id = ? AND approval_level = ?",
		constants.TableApprovalGroup)

	group, err := r.scanGroup(executor(ctx, r.db).QueryRowContext(ctx, query, documentID, level))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find approval group for document %s: %w", documentID, err)
	}

	if err := r.loadResponses(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Insert creates a group in pending status
func (r *GroupRepository) Insert(ctx context.Context, group *models.ParallelApprovalGroup) error {
	if group.ID == "" {
		group.ID = utils.GenerateID()
	}

	roster, err := json.Marshal(group.ExpectedApprovers)
	if err != nil {
		return fmt.Errorf("failed to marshal approver roster: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (id, document_type, document_id, approval_level, mode, "+
		"status, expected_approvers, created_date, resolved_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableApprovalGroup)

	_, err = executor(ctx, r.db).ExecContext(ctx, query,
		group.ID, group.DocumentType, group.DocumentID, group.ApprovalLevel, group.Mode,
		group.Status, roster, group.CreatedDate, group.ResolvedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval group: %w", err)
	}
	return nil
}

// InsertResponse appends one approver decision to the group
func (r *GroupRepository) InsertResponse(ctx context.Context, resp *models.ApprovalResponse) error {
	if resp.ID == "" {
		resp.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (id, group_id, approver_id, approved, comments, decided_at) "+
		"VALUES (?, ?, ?, ?, ?, ?)", constants.TableApprovalResponse)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		resp.ID, resp.GroupID, resp.ApproverID, resp.Approved, resp.Comments, resp.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert approval response: %w", err)
	}
	return nil
}

// UpdateStatus writes a resolved group status
func (r *GroupRepository) UpdateStatus(ctx context.Context, group *models.ParallelApprovalGroup) error {
	query := fmt.Sprintf("UPDATE %s SET status = ?, resolved_date = ? WHERE id = ?", constants.TableApprovalGroup)

	_, err := executor(ctx, r.db).ExecContext(ctx, query, group.Status, group.ResolvedDate, group.ID)
	if err != nil {
		return fmt.Errorf("failed to update approval group %s: %w", group.ID, err)
	}
	return nil
}

func (r *GroupRepository) scanGroup(row rowScanner) (*models.ParallelApprovalGroup, error) {
	var group models.ParallelApprovalGroup
	var roster []byte
	err := row.Scan(&group.ID, &group.DocumentType, &group.DocumentID, &group.ApprovalLevel,
		&group.Mode, &group.Status, &roster, &group.CreatedDate, &group.ResolvedDate)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(roster, &group.ExpectedApprovers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approver roster: %w", err)
	}
	return &group, nil
}

func (r *GroupRepository) loadResponses(ctx context.Context, group *models.ParallelApprovalGroup) error {
	query := fmt.Sprintf("SELECT id, group_id, approver_id, approved, comments, decided_at FROM %s "+
		"WHERE group_id = ? ORDER BY decided_at", constants.TableApprovalResponse)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, group.ID)
	if err != nil {
		return fmt.Errorf("failed to load responses for group %s: %w", group.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var resp models.ApprovalResponse
		if err := rows.Scan(&resp.ID, &resp.GroupID, &resp.ApproverID, &resp.Approved,
			&resp.Comments, &resp.DecidedAt); err != nil {
			return fmt.Errorf("failed to scan approval response: %w", err)
		}
		group.Responses = append(group.Responses, resp)
	}
	return rows.Err()
}
