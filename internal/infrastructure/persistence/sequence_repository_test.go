package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
)

// frozenClock pins Now for sequence tests so the year in the document
// number is deterministic.
type frozenClock struct{ at time.Time }

func (c frozenClock) Now() time.Time { return c.at }

func sequenceClock() frozenClock {
	return frozenClock{at: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func TestSequenceRepository_GenerateDocumentNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSequenceRepository(db, sequenceClock())

	mock.ExpectExec("INSERT INTO "+constants.TableDocSequence).
		WithArgs(models.DocTypeJobOrder, 2026).
		WillReturnResult(sqlmock.NewResult(42, 1))

	number, err := repo.GenerateDocumentNumber(context.Background(), models.DocTypeJobOrder)
	assert.NoError(t, err)
	assert.Equal(t, "JO-2026-000042", number)
}

func TestSequenceRepository_FirstNumberOfTheYear(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSequenceRepository(db, sequenceClock())

	// The insert path leaves LAST_INSERT_ID at zero
	mock.ExpectExec("INSERT INTO "+constants.TableDocSequence).
		WithArgs(models.DocTypeScrapItem, 2026).
		WillReturnResult(sqlmock.NewResult(0, 1))

	number, err := repo.GenerateDocumentNumber(context.Background(), models.DocTypeScrapItem)
	assert.NoError(t, err)
	assert.Equal(t, "SCR-2026-000001", number)
}

func TestSequenceRepository_CurrentSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewSequenceRepository(db, sequenceClock())

	query := fmt.Sprintf("SELECT seq FROM %s WHERE doc_type = ? AND seq_year = ?", constants.TableDocSequence)
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(models.DocTypeJobOrder, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(7))

	seq, err := repo.currentSequence(context.Background(), models.DocTypeJobOrder, 2026)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), seq)

	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(models.DocTypeShipment, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}))

	seq, err = repo.currentSequence(context.Background(), models.DocTypeShipment, 2026)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), seq, "an untouched counter reads as zero")
}
