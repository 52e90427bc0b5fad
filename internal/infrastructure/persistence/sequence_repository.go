package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
	"github.com/wareflow/backend/pkg/constants"
)

// SequenceRepository generates document numbers from a per-type, per-year
// counter table. Numbers look like JO-2026-000042 and are issued exactly
// once per document, at creation.
type SequenceRepository struct {
	db    *sql.DB
	clock ports.Clock
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db *sql.DB, clock ports.Clock) *SequenceRepository {
	return &SequenceRepository{db: db, clock: clock}
}

var docPrefixes = map[models.DocumentType]string{
	models.DocTypeJobOrder:    constants.PrefixJobOrder,
	models.DocTypeRequisition: constants.PrefixRequisition,
	models.DocTypeScrapItem:   constants.PrefixScrapItem,
	models.DocTypeShipment:    constants.PrefixShipment,
}

// GenerateDocumentNumber increments and formats the counter for the type.
// The LAST_INSERT_ID trick makes increment-and-read atomic on MySQL without
// an extra round trip or explicit lock.
func (r *SequenceRepository) GenerateDocumentNumber(ctx context.Context, docType models.DocumentType) (string, error) {
	prefix, ok := docPrefixes[docType]
	if !ok {
		return "", fmt.Errorf("no document number prefix configured for type %s", docType)
	}

	year := r.clock.Now().UTC().Year()
	ex := executor(ctx, r.db)

	upsert := fmt.Sprintf("INSERT INTO %s (doc_type, seq_year, seq) VALUES (?, ?, 1) "+
		"ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)", constants.TableDocSequence)
	result, err := ex.ExecContext(ctx, upsert, docType, year)
	if err != nil {
		return "", fmt.Errorf("failed to advance document sequence for %s: %w", docType, err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("failed to read document sequence for %s: %w", docType, err)
	}
	if seq == 0 {
		// Fresh row: the insert path doesn't set LAST_INSERT_ID
		seq = 1
	}

	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq), nil
}

// currentSequence reads the counter without advancing it (tests only)
func (r *SequenceRepository) currentSequence(ctx context.Context, docType models.DocumentType, year int) (int64, error) {
	query := fmt.Sprintf("SELECT seq FROM %s WHERE doc_type = ? AND seq_year = ?", constants.TableDocSequence)

	var seq int64
	err := executor(ctx, r.db).QueryRowContext(ctx, query, docType, year).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return seq, err
}
