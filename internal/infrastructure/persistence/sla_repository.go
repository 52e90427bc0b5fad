package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/utils"
)

// SlaRepository persists SLA deadline records, one per tracked document
type SlaRepository struct {
	db *sql.DB
}

// NewSlaRepository creates a new SlaRepository
func NewSlaRepository(db *sql.DB) *SlaRepository {
	return &SlaRepository{db: db}
}

const slaColumns = "id, document_id, start_date, due_date, response_hours, " +
	"stop_clock_start, stop_clock_end, stop_clock_reason, met, created_date, last_modified_date"

// GetByDocument returns the record or a NotFoundError
func (r *SlaRepository) GetByDocument(ctx context.Context, documentID string) (*models.SlaRecord, error) {
	rec, err := r.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.NewNotFoundError("SLA record", documentID)
	}
	return rec, nil
}

// FindByDocument returns nil without error when no SLA is tracked
func (r *SlaRepository) FindByDocument(ctx context.Context, documentID string) (*models.SlaRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE document_id = ?", slaColumns, constants.TableSlaRecord)
	row := executor(ctx, r.db).QueryRowContext(ctx, query, documentID)

	rec, err := scanSlaRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load SLA record for document %s: %w", documentID, err)
	}
	return rec, nil
}

// Insert creates an SLA record
func (r *SlaRepository) Insert(ctx context.Context, rec *models.SlaRecord) error {
	if rec.ID == "" {
		rec.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableSlaRecord, slaColumns)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		rec.ID, rec.DocumentID, rec.StartDate, rec.DueDate, rec.ResponseHours,
		rec.StopClockStart, rec.StopClockEnd, rec.StopClockReason, rec.Met,
		rec.CreatedDate, rec.LastModifiedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert SLA record: %w", err)
	}
	return nil
}

// Update writes the mutable SLA fields
func (r *SlaRepository) Update(ctx context.Context, rec *models.SlaRecord) error {
	query := fmt.Sprintf("UPDATE %s SET due_date = ?, stop_clock_start = ?, stop_clock_end = ?, "+
		"stop_clock_reason = ?, met = ?, last_modified_date = ? WHERE id = ?", constants.TableSlaRecord)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		rec.DueDate, rec.StopClockStart, rec.StopClockEnd, rec.StopClockReason,
		rec.Met, rec.LastModifiedDate, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update SLA record %s: %w", rec.ID, err)
	}
	return nil
}

// ListOverdue returns unevaluated, unpaused records past their due date.
// Used only by the overdue sweep, never on the transition path.
func (r *SlaRepository) ListOverdue(ctx context.Context, limit int) ([]models.SlaRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE met IS NULL AND due_date < ? "+
		"AND (stop_clock_start IS NULL OR stop_clock_end IS NOT NULL) ORDER BY due_date LIMIT ?",
		slaColumns, constants.TableSlaRecord)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, time.Now().UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue SLA records: %w", err)
	}
	defer rows.Close()

	var records []models.SlaRecord
	for rows.Next() {
		rec, err := scanSlaRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan SLA record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanSlaRecord(row rowScanner) (*models.SlaRecord, error) {
	var rec models.SlaRecord
	err := row.Scan(
		&rec.ID, &rec.DocumentID, &rec.StartDate, &rec.DueDate, &rec.ResponseHours,
		&rec.StopClockStart, &rec.StopClockEnd, &rec.StopClockReason, &rec.Met,
		&rec.CreatedDate, &rec.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
