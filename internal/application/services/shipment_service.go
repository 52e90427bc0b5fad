package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wareflow/backend/internal/domain"
	"github.com/wareflow/backend/internal/domain/events"
	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
	apperrors "github.com/wareflow/backend/pkg/errors"
)

// ShipmentService orchestrates the shipment lifecycle from scheduling to
// delivery. Delivery stamps the delivered-at time, evaluates an SLA when
// one is tracked and marks the linked receiving document best-effort.
type ShipmentService struct {
	orchestrator
	numberer ports.DocumentNumberer
	sla      *SlaService
}

// NewShipmentService creates a new ShipmentService
func NewShipmentService(
	docs ports.DocumentRepository,
	guard *domain.TransitionGuard,
	txMgr TransactionRunner,
	clock ports.Clock,
	eventBus *EventBus,
	numberer ports.DocumentNumberer,
	sla *SlaService,
) *ShipmentService {
	return &ShipmentService{
		orchestrator: orchestrator{docs: docs, guard: guard, txMgr: txMgr, clock: clock, eventBus: eventBus},
		numberer:     numberer,
		sla:          sla,
	}
}

// CreateShipmentRequest carries the fields of a new shipment
type CreateShipmentRequest struct {
	Title            string  `json:"title" binding:"required"`
	Description      *string `json:"description,omitempty"`
	WarehouseID      *string `json:"warehouse_id,omitempty"`
	LinkedDocumentID *string `json:"linked_document_id,omitempty"`
}

// Create opens a draft shipment, optionally linked to a receiving document
func (s *ShipmentService) Create(ctx context.Context, req *CreateShipmentRequest, actorID string) (*models.Document, error) {
	var doc *models.Document

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		number, err := s.numberer.GenerateDocumentNumber(txCtx, models.DocTypeShipment)
		if err != nil {
			return fmt.Errorf("failed to generate document number: %w", err)
		}

		now := s.clock.Now()
		doc = &models.Document{
			DocumentNumber:   number,
			DocumentType:     models.DocTypeShipment,
			Status:           models.StatusDraft,
			Title:            req.Title,
			Description:      req.Description,
			WarehouseID:      req.WarehouseID,
			LinkedDocumentID: req.LinkedDocumentID,
			CreatedByID:      actorID,
			CreatedDate:      now,
			LastModifiedDate: now,
		}
		return s.docs.Insert(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(events.DocumentCreated, TransitionEventPayload{Document: doc, ToStatus: doc.Status, ActorID: actorID})
	log.Printf("✅ Shipment %s created", doc.DocumentNumber)
	return doc, nil
}

// Schedule books the shipment and starts a transit SLA when hours are given
func (s *ShipmentService) Schedule(ctx context.Context, id string, transitHours int, actorID string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeShipment)
		if err != nil {
			return err
		}
		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusScheduled, actorID); err != nil {
			return err
		}
		if transitHours > 0 {
			if _, err := s.sla.Start(txCtx, doc.ID, transitHours); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(doc, from, actorID)
	return doc, nil
}

// Dispatch puts the scheduled shipment on the road
func (s *ShipmentService) Dispatch(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusInTransit, actorID)
}

// Deliver completes the shipment. The delivered-at time is stamped, a
// tracked SLA is evaluated, and the linked receiving document is marked
// best-effort: a failure there is logged and never fails the delivery.
func (s *ShipmentService) Deliver(ctx context.Context, id, actorID string) (*models.Document, *bool, error) {
	var (
		doc  *models.Document
		from models.Status
		met  *bool
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeShipment)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		doc.CompletedAt = &now
		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusDelivered, actorID); err != nil {
			return err
		}

		met, err = s.sla.Evaluate(txCtx, doc.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.announce(doc, from, actorID)

	if doc.LinkedDocumentID != nil {
		s.markLinkedReceived(ctx, *doc.LinkedDocumentID, actorID)
	}
	return doc, met, nil
}

// Cancel aborts the shipment before it leaves
func (s *ShipmentService) Cancel(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusCancelled, actorID)
}

// Get returns the shipment by id
func (s *ShipmentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.load(ctx, id, models.DocTypeShipment)
}

// markLinkedReceived marks the receiving document delivered in its own
// transaction, outside the delivery's. Errors are logged only.
func (s *ShipmentService) markLinkedReceived(ctx context.Context, linkedID, actorID string) {
	var (
		linked *models.Document
		from   models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		linked, err = s.docs.Get(txCtx, linkedID)
		if err != nil {
			return err
		}
		if !s.guard.CanTransition(linked.DocumentType, linked.Status, models.StatusDelivered) {
			return apperrors.NewInvalidTransitionError(string(linked.DocumentType), string(linked.Status), string(models.StatusDelivered))
		}
		from = linked.Status
		return s.transition(txCtx, linked, models.StatusDelivered, actorID)
	})
	if err != nil {
		log.Printf("⚠️ Could not mark linked document %s received: %v", linkedID, err)
		return
	}
	s.announce(linked, from, actorID)
}

func (s *ShipmentService) simple(ctx context.Context, id string, to models.Status, actorID string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeShipment)
		if err != nil {
			return err
		}
		from = doc.Status
		return s.transition(txCtx, doc, to, actorID)
	})
	if err != nil {
		return nil, err
	}
	s.announce(doc, from, actorID)
	return doc, nil
}
