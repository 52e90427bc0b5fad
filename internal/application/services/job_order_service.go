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

// JobOrderService orchestrates the job order lifecycle: amount-escalated
// submit routing, sequential approval, assignment, execution with hold and
// resume, completion and invoicing. Hold and resume drive the SLA stop
// clock; complete evaluates the SLA against the adjusted due date.
type JobOrderService struct {
	orchestrator
	numberer ports.DocumentNumberer
	sla      *SlaService
	approval *ApprovalService
}

// NewJobOrderService creates a new JobOrderService
func NewJobOrderService(
	docs ports.DocumentRepository,
	guard *domain.TransitionGuard,
	txMgr TransactionRunner,
	clock ports.Clock,
	eventBus *EventBus,
	numberer ports.DocumentNumberer,
	sla *SlaService,
	approval *ApprovalService,
) *JobOrderService {
	return &JobOrderService{
		orchestrator: orchestrator{docs: docs, guard: guard, txMgr: txMgr, clock: clock, eventBus: eventBus},
		numberer:     numberer,
		sla:          sla,
		approval:     approval,
	}
}

// CreateJobOrderRequest carries the fields of a new job order
type CreateJobOrderRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	WarehouseID *string  `json:"warehouse_id,omitempty"`
}

// Create opens a draft job order with a generated document number
func (s *JobOrderService) Create(ctx context.Context, req *CreateJobOrderRequest, actorID string) (*models.Document, error) {
	var doc *models.Document

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		number, err := s.numberer.GenerateDocumentNumber(txCtx, models.DocTypeJobOrder)
		if err != nil {
			return fmt.Errorf("failed to generate document number: %w", err)
		}

		now := s.clock.Now()
		doc = &models.Document{
			DocumentNumber:   number,
			DocumentType:     models.DocTypeJobOrder,
			Status:           models.StatusDraft,
			Title:            req.Title,
			Description:      req.Description,
			Amount:           req.Amount,
			WarehouseID:      req.WarehouseID,
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
	log.Printf("✅ Job order %s created", doc.DocumentNumber)
	return doc, nil
}

// Submit moves a draft into pending_approval. The amount is routed through
// the workflow rules and the matched rule's hours start the SLA clock.
// Submitting without an amount is a business rule violation, not a guard one.
func (s *JobOrderService) Submit(ctx context.Context, id, actorID string) (*models.Document, *models.ApprovalRoute, error) {
	var (
		doc   *models.Document
		from  models.Status
		route *models.ApprovalRoute
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeJobOrder)
		if err != nil {
			return err
		}

		route, err = s.approval.Route(txCtx, doc)
		if err != nil {
			return err
		}

		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusPendingApproval, actorID); err != nil {
			return err
		}

		_, err = s.sla.Start(txCtx, doc.ID, route.SlaHours)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.announce(doc, from, actorID)
	return doc, route, nil
}

// Decide records an approver's verdict and advances the document to
// approved or rejected. A quote amount revises the document's working
// amount before the record is kept.
func (s *JobOrderService) Decide(ctx context.Context, id, approverID string, approved bool, quoteAmount *float64, comments string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeJobOrder)
		if err != nil {
			return err
		}

		target := models.StatusApproved
		if !approved {
			target = models.StatusRejected
		}
		if err := s.guard.AssertTransition(doc.DocumentType, doc.Status, target); err != nil {
			return err
		}

		if quoteAmount != nil {
			doc.Amount = quoteAmount
		}

		if _, err := s.approval.RecordDecision(txCtx, doc.ID, approverID, approved, 1, quoteAmount, comments); err != nil {
			return err
		}
		from = doc.Status
		if err := s.transition(txCtx, doc, target, approverID); err != nil {
			return err
		}

		// Rejection ends the lifecycle, so compliance is decided here.
		// On approval the clock keeps running until completion.
		if !approved {
			if _, err := s.sla.Evaluate(txCtx, doc.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(doc, from, approverID)
	return doc, nil
}

// Assign hands the approved order to a worker
func (s *JobOrderService) Assign(ctx context.Context, id, assigneeID, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusAssigned, actorID, func(doc *models.Document) error {
		if assigneeID == "" {
			return apperrors.NewValidationError("assignee_id", "assignee is required")
		}
		doc.AssignedToID = &assigneeID
		return nil
	})
}

// Start begins work on an assigned order
func (s *JobOrderService) Start(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusInProgress, actorID, nil)
}

// Hold suspends an in-progress order and pauses its SLA clock with the
// given reason. A second hold without a resume is AlreadyPausedError.
func (s *JobOrderService) Hold(ctx context.Context, id string, reason *string, actorID string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeJobOrder)
		if err != nil {
			return err
		}
		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusOnHold, actorID); err != nil {
			return err
		}
		if _, err := s.sla.Pause(txCtx, doc.ID, reason); err != nil && !apperrors.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(doc, from, actorID)
	return doc, nil
}

// Resume puts a held order back in progress and restarts its SLA clock,
// pushing the due date forward by the hold duration
func (s *JobOrderService) Resume(ctx context.Context, id, actorID string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeJobOrder)
		if err != nil {
			return err
		}
		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusInProgress, actorID); err != nil {
			return err
		}
		if _, err := s.sla.Resume(txCtx, doc.ID); err != nil && !apperrors.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.announce(doc, from, actorID)
	return doc, nil
}

// Complete finishes the work, stamps the completion time and evaluates
// whether the SLA was met against the adjusted due date
func (s *JobOrderService) Complete(ctx context.Context, id, actorID string) (*models.Document, *bool, error) {
	var (
		doc  *models.Document
		from models.Status
		met  *bool
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeJobOrder)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		doc.CompletedAt = &now
		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusCompleted, actorID); err != nil {
			return err
		}

		met, err = s.sla.Evaluate(txCtx, doc.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	s.announce(doc, from, actorID)
	return doc, met, nil
}

// Invoice closes out a completed order
func (s *JobOrderService) Invoice(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusInvoiced, actorID, nil)
}

// Cancel aborts the order from any non-terminal pre-completion state
func (s *JobOrderService) Cancel(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusCancelled, actorID, nil)
}

// Get returns the job order by id
func (s *JobOrderService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.load(ctx, id, models.DocTypeJobOrder)
}

// simple runs a transition with an optional pre-persist mutation and no
// SLA or approval side effects
func (s *JobOrderService) simple(ctx context.Context, id string, to models.Status, actorID string, mutate func(*models.Document) error) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeJobOrder)
		if err != nil {
			return err
		}
		if err := s.guard.AssertTransition(doc.DocumentType, doc.Status, to); err != nil {
			return err
		}
		if mutate != nil {
			if err := mutate(doc); err != nil {
				return err
			}
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
