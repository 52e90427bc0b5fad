package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/pkg/constants"
	"github.com/wareflow/backend/pkg/utils"
)

// NotificationRepository stores best-effort delivery rows. Writers treat
// failures here as log-and-continue; nothing on the transition path depends
// on these inserts.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert creates one notification row
func (r *NotificationRepository) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = utils.GenerateID()
	}

	query := fmt.Sprintf("INSERT INTO %s (id, recipient_id, document_id, kind, message, created_date) "+
		"VALUES (?, ?, ?, ?, ?, ?)", constants.TableNotification)

	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		n.ID, n.RecipientID, n.DocumentID, n.Kind, n.Message, n.CreatedDate)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListForRecipient returns recent notifications for a user, newest first
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	query := fmt.Sprintf("SELECT id, recipient_id, document_id, kind, message, created_date FROM %s "+
		"WHERE recipient_id = ? ORDER BY created_date DESC LIMIT ?", constants.TableNotification)

	rows, err := executor(ctx, r.db).QueryContext(ctx, query, recipientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", recipientID, err)
	}
	defer rows.Close()

	var result []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.DocumentID, &n.Kind, &n.Message, &n.CreatedDate); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
