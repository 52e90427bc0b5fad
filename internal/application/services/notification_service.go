package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wareflow/backend/internal/domain/events"
	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
)

const defaultNotificationLimit = 50

// NotificationService turns workflow events into notification rows.
// Delivery is best-effort: a failed insert is logged and never propagated
// back to the transition that raised the event.
type NotificationService struct {
	notifications ports.NotificationRepository
	clock         ports.Clock
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications ports.NotificationRepository, clock ports.Clock) *NotificationService {
	return &NotificationService{notifications: notifications, clock: clock}
}

// RegisterHandlers subscribes the notifier to the events it cares about
func (s *NotificationService) RegisterHandlers(bus *EventBus) {
	bus.Subscribe(events.DocumentTransitioned, s.onTransition)
	bus.Subscribe(events.GroupResolved, s.onGroupResolved)
	bus.Subscribe(events.SlaBreached, s.onSlaBreached)
}

func (s *NotificationService) onTransition(ctx context.Context, payload interface{}) error {
	p, ok := payload.(TransitionEventPayload)
	if !ok {
		return nil
	}

	recipient := p.Document.CreatedByID
	if p.Document.AssignedToID != nil {
		recipient = *p.Document.AssignedToID
	}
	s.insert(ctx, &models.Notification{
		RecipientID: recipient,
		DocumentID:  p.Document.ID,
		Kind:        "transition",
		Message:     fmt.Sprintf("%s %s moved from %s to %s", p.Document.DocumentType, p.Document.DocumentNumber, p.FromStatus, p.ToStatus),
	})
	return nil
}

func (s *NotificationService) onGroupResolved(ctx context.Context, payload interface{}) error {
	p, ok := payload.(GroupEventPayload)
	if !ok {
		return nil
	}

	for _, approverID := range p.Group.ExpectedApprovers {
		s.insert(ctx, &models.Notification{
			RecipientID: approverID,
			DocumentID:  p.Group.DocumentID,
			Kind:        "group_resolved",
			Message:     fmt.Sprintf("approval group for document %s resolved: %s", p.Group.DocumentID, p.Group.Status),
		})
	}
	return nil
}

func (s *NotificationService) onSlaBreached(ctx context.Context, payload interface{}) error {
	p, ok := payload.(SlaEventPayload)
	if !ok {
		return nil
	}

	s.insert(ctx, &models.Notification{
		RecipientID: "", // resolved by the delivery channel, not known here
		DocumentID:  p.DocumentID,
		Kind:        "sla_breached",
		Message:     fmt.Sprintf("document %s is past its response deadline", p.DocumentID),
	})
	return nil
}

// List returns the recipient's recent notifications, newest first
func (s *NotificationService) List(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	return s.notifications.ListForRecipient(ctx, recipientID, limit)
}

func (s *NotificationService) insert(ctx context.Context, n *models.Notification) {
	n.CreatedDate = s.clock.Now()
	if err := s.notifications.Insert(ctx, n); err != nil {
		log.Printf("⚠️ Failed to store notification for document %s: %v", n.DocumentID, err)
	}
}
