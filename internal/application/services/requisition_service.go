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

// RequisitionService orchestrates the material requisition lifecycle:
// amount-banded submission routing, review, approval and the stock check
// that classifies each requested line as covered, partially covered or
// purchase-only.
type RequisitionService struct {
	orchestrator
	numberer ports.DocumentNumberer
	stock    ports.StockRepository
	sla      *SlaService
	approval *ApprovalService
}

// NewRequisitionService creates a new RequisitionService
func NewRequisitionService(
	docs ports.DocumentRepository,
	guard *domain.TransitionGuard,
	txMgr TransactionRunner,
	clock ports.Clock,
	eventBus *EventBus,
	numberer ports.DocumentNumberer,
	stock ports.StockRepository,
	sla *SlaService,
	approval *ApprovalService,
) *RequisitionService {
	return &RequisitionService{
		orchestrator: orchestrator{docs: docs, guard: guard, txMgr: txMgr, clock: clock, eventBus: eventBus},
		numberer:     numberer,
		stock:        stock,
		sla:          sla,
		approval:     approval,
	}
}

// RequisitionLineRequest is one requested item on a new requisition
type RequisitionLineRequest struct {
	ItemID       string `json:"item_id" binding:"required"`
	WarehouseID  string `json:"warehouse_id" binding:"required"`
	QtyRequested int    `json:"qty_requested" binding:"required"`
}

// CreateRequisitionRequest carries the fields of a new material requisition.
// The estimated amount drives the review routing band; a requisition without
// one routes at zero.
type CreateRequisitionRequest struct {
	Title           string                   `json:"title" binding:"required"`
	Description     *string                  `json:"description,omitempty"`
	WarehouseID     *string                  `json:"warehouse_id,omitempty"`
	EstimatedAmount *float64                 `json:"estimated_amount,omitempty"`
	Lines           []RequisitionLineRequest `json:"lines"`
}

// Create opens a draft requisition with its lines
func (s *RequisitionService) Create(ctx context.Context, req *CreateRequisitionRequest, actorID string) (*models.Document, error) {
	var doc *models.Document

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		number, err := s.numberer.GenerateDocumentNumber(txCtx, models.DocTypeRequisition)
		if err != nil {
			return fmt.Errorf("failed to generate document number: %w", err)
		}

		now := s.clock.Now()
		doc = &models.Document{
			DocumentNumber:   number,
			DocumentType:     models.DocTypeRequisition,
			Status:           models.StatusDraft,
			Title:            req.Title,
			Description:      req.Description,
			WarehouseID:      req.WarehouseID,
			Amount:           req.EstimatedAmount,
			CreatedByID:      actorID,
			CreatedDate:      now,
			LastModifiedDate: now,
		}
		if err := s.docs.Insert(txCtx, doc); err != nil {
			return err
		}

		for _, lr := range req.Lines {
			line := &models.RequisitionLine{
				DocumentID:   doc.ID,
				ItemID:       lr.ItemID,
				WarehouseID:  lr.WarehouseID,
				QtyRequested: lr.QtyRequested,
			}
			if err := s.docs.InsertLine(txCtx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.eventBus.PublishAsync(events.DocumentCreated, TransitionEventPayload{Document: doc, ToStatus: doc.Status, ActorID: actorID})
	log.Printf("✅ Requisition %s created with %d lines", doc.DocumentNumber, len(req.Lines))
	return doc, nil
}

// Submit sends the draft for review. A requisition with no lines, or a
// line without a positive quantity, cannot be submitted. The estimated
// amount is routed through the requisition workflow rules and the matched
// rule's hours start the review SLA clock; the lowest band covers a
// requisition that carries no estimate.
func (s *RequisitionService) Submit(ctx context.Context, id, actorID string) (*models.Document, *models.ApprovalRoute, error) {
	var (
		doc   *models.Document
		from  models.Status
		route *models.ApprovalRoute
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeRequisition)
		if err != nil {
			return err
		}

		lines, err := s.docs.GetLines(txCtx, doc.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperrors.NewBusinessRuleError("lines_required", "a requisition needs at least one line before submission")
		}
		for _, line := range lines {
			if line.QtyRequested <= 0 {
				return apperrors.NewBusinessRuleError("positive_quantity_required",
					fmt.Sprintf("line for item '%s' requests a non-positive quantity", line.ItemID))
			}
		}

		routed := *doc
		if !routed.HasAmount() {
			zero := 0.0
			routed.Amount = &zero
		}
		route, err = s.approval.Route(txCtx, &routed)
		if err != nil {
			return err
		}

		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusSubmitted, actorID); err != nil {
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

// StartReview takes the submitted requisition under review
func (s *RequisitionService) StartReview(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusUnderReview, actorID, nil)
}

// Approve accepts the requisition after review
func (s *RequisitionService) Approve(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusApproved, actorID, nil)
}

// Reject turns the requisition down after review. Rejection ends the
// lifecycle, so the review SLA is judged here.
func (s *RequisitionService) Reject(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusRejected, actorID, func(txCtx context.Context, doc *models.Document) error {
		_, err := s.sla.Evaluate(txCtx, doc.ID)
		return err
	})
}

// CheckStock classifies every line against warehouse availability and
// moves the requisition to from_stock when stock fully covers all lines,
// otherwise to needs_purchase. The stock level is read once per line.
func (s *RequisitionService) CheckStock(ctx context.Context, id, actorID string) (*models.Document, []models.RequisitionLine, error) {
	var (
		doc   *models.Document
		entry models.Status
		lines []models.RequisitionLine
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeRequisition)
		if err != nil {
			return err
		}

		entry = doc.Status
		// Intermediate marker state; the classification decides the exit.
		if err := s.transition(txCtx, doc, models.StatusCheckingStock, actorID); err != nil {
			return err
		}

		lines, err = s.docs.GetLines(txCtx, doc.ID)
		if err != nil {
			return err
		}

		allCovered := true
		for i := range lines {
			line := &lines[i]
			available, err := s.stock.GetStockLevel(txCtx, line.ItemID, line.WarehouseID)
			if err != nil {
				return fmt.Errorf("stock lookup failed for item '%s': %w", line.ItemID, err)
			}

			classifyLine(line, available)
			if line.Sourcing != models.SourcingFromStock {
				allCovered = false
			}
			if err := s.docs.UpdateLineSourcing(txCtx, line); err != nil {
				return err
			}
		}

		outcome := models.StatusFromStock
		if !allCovered {
			outcome = models.StatusNeedsPurchase
		}
		return s.transition(txCtx, doc, outcome, actorID)
	})
	if err != nil {
		return nil, nil, err
	}

	s.announce(doc, entry, actorID)
	log.Printf("📦 Requisition %s stock check: %s", doc.DocumentNumber, doc.Status)
	return doc, lines, nil
}

// Fulfill closes out the requisition once goods were issued or purchased.
// Quantities sourced from stock are deducted from the warehouse on-hand
// levels in the same transaction.
func (s *RequisitionService) Fulfill(ctx context.Context, id, actorID string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeRequisition)
		if err != nil {
			return err
		}
		lines, err := s.docs.GetLines(txCtx, doc.ID)
		if err != nil {
			return err
		}
		now := s.clock.Now()
		doc.CompletedAt = &now
		from = doc.Status
		if err := s.transition(txCtx, doc, models.StatusFulfilled, actorID); err != nil {
			return err
		}
		for _, line := range lines {
			if line.QtyFromStock <= 0 {
				continue
			}
			if err := s.stock.AdjustStock(txCtx, line.ItemID, line.WarehouseID, -line.QtyFromStock); err != nil {
				return fmt.Errorf("stock deduction failed for item '%s': %w", line.ItemID, err)
			}
		}
		if _, err := s.sla.Evaluate(txCtx, doc.ID); err != nil {
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

// Cancel aborts the requisition from any non-terminal state
func (s *RequisitionService) Cancel(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusCancelled, actorID, nil)
}

// Get returns the requisition with its lines
func (s *RequisitionService) Get(ctx context.Context, id string) (*models.Document, []models.RequisitionLine, error) {
	doc, err := s.load(ctx, id, models.DocTypeRequisition)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.docs.GetLines(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return doc, lines, nil
}

func (s *RequisitionService) simple(ctx context.Context, id string, to models.Status, actorID string, precheck func(context.Context, *models.Document) error) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeRequisition)
		if err != nil {
			return err
		}
		if err := s.guard.AssertTransition(doc.DocumentType, doc.Status, to); err != nil {
			return err
		}
		if precheck != nil {
			if err := precheck(txCtx, doc); err != nil {
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

// classifyLine applies the coverage rule: full coverage sources from stock,
// partial splits the quantity, zero availability goes entirely to purchase.
func classifyLine(line *models.RequisitionLine, available int) {
	switch {
	case available >= line.QtyRequested:
		line.Sourcing = models.SourcingFromStock
		line.QtyFromStock = line.QtyRequested
		line.QtyFromPurchase = 0
	case available > 0:
		line.Sourcing = models.SourcingBoth
		line.QtyFromStock = available
		line.QtyFromPurchase = line.QtyRequested - available
	default:
		line.Sourcing = models.SourcingPurchase
		line.QtyFromStock = 0
		line.QtyFromPurchase = line.QtyRequested
	}
}
