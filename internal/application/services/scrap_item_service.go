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

// ScrapGate identifies one of the three independent sign-offs a reported
// scrap item needs before it can be approved for disposal
type ScrapGate string

const (
	GateSiteManager ScrapGate = "site_manager"
	GateQC          ScrapGate = "qc"
	GateStorekeeper ScrapGate = "storekeeper"
)

// disposalApprovalLevel is the approval level a parallel group gates when
// one is attached to a scrap item.
const disposalApprovalLevel = 1

// ScrapItemService orchestrates the scrap disposal lifecycle: an identified
// item is reported with photo evidence, signed off by three independent
// roles, approved, moved to the scrap sales center and sold or disposed.
type ScrapItemService struct {
	orchestrator
	numberer ports.DocumentNumberer
	groups   *ParallelApprovalService
}

// NewScrapItemService creates a new ScrapItemService
func NewScrapItemService(
	docs ports.DocumentRepository,
	guard *domain.TransitionGuard,
	txMgr TransactionRunner,
	clock ports.Clock,
	eventBus *EventBus,
	numberer ports.DocumentNumberer,
	groups *ParallelApprovalService,
) *ScrapItemService {
	return &ScrapItemService{
		orchestrator: orchestrator{docs: docs, guard: guard, txMgr: txMgr, clock: clock, eventBus: eventBus},
		numberer:     numberer,
		groups:       groups,
	}
}

// CreateScrapItemRequest carries the fields of a newly identified scrap item
type CreateScrapItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description,omitempty"`
	WarehouseID *string `json:"warehouse_id,omitempty"`
}

// Create registers an identified scrap item
func (s *ScrapItemService) Create(ctx context.Context, req *CreateScrapItemRequest, actorID string) (*models.Document, error) {
	var doc *models.Document

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		number, err := s.numberer.GenerateDocumentNumber(txCtx, models.DocTypeScrapItem)
		if err != nil {
			return fmt.Errorf("failed to generate document number: %w", err)
		}

		now := s.clock.Now()
		doc = &models.Document{
			DocumentNumber:   number,
			DocumentType:     models.DocTypeScrapItem,
			Status:           models.StatusIdentified,
			Title:            req.Title,
			Description:      req.Description,
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
	log.Printf("✅ Scrap item %s identified", doc.DocumentNumber)
	return doc, nil
}

// Report files the scrap item for sign-off. At least one attached photo is
// required before an item may be reported.
func (s *ScrapItemService) Report(ctx context.Context, id string, photoCount int, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusReported, actorID, func(doc *models.Document) error {
		if photoCount < 1 {
			return apperrors.NewBusinessRuleError("photos_required", "a scrap item cannot be reported without at least one photo")
		}
		doc.PhotoCount = photoCount
		return nil
	})
}

// SetGate flips one of the three sign-off gates. Gates are only settable
// while the item sits in the reported state; each flips independently.
func (s *ScrapItemService) SetGate(ctx context.Context, id string, gate ScrapGate, approved bool, actorID string) (*models.Document, error) {
	var doc *models.Document

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeScrapItem)
		if err != nil {
			return err
		}
		if doc.Status != models.StatusReported {
			return apperrors.NewBusinessRuleError("gate_requires_reported",
				fmt.Sprintf("sign-off gates can only change while the item is reported, current status is '%s'", doc.Status))
		}

		switch gate {
		case GateSiteManager:
			doc.SiteManagerApproved = approved
		case GateQC:
			doc.QCApproved = approved
		case GateStorekeeper:
			doc.StorekeeperApproved = approved
		default:
			return apperrors.NewValidationError("gate", fmt.Sprintf("unknown gate '%s'", gate))
		}

		doc.LastModifiedDate = s.clock.Now()
		return s.docs.Update(txCtx, doc)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📝 Scrap item %s gate %s = %t", doc.DocumentNumber, gate, approved)
	return doc, nil
}

// Approve accepts the reported item for disposal. All three gates must be
// set; the guard check alone is not sufficient here. When a parallel
// approval group is attached to the item, the group must have resolved
// approved as well: a pending group blocks, a rejected one blocks for good.
func (s *ScrapItemService) Approve(ctx context.Context, id, actorID string) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeScrapItem)
		if err != nil {
			return err
		}
		if !doc.AllScrapGatesApproved() {
			return apperrors.NewBusinessRuleError("gates_incomplete",
				"site manager, QC and storekeeper must all sign off before approval")
		}

		group, err := s.groups.FindForDocument(txCtx, doc.ID, disposalApprovalLevel)
		if err != nil {
			return err
		}
		if group != nil && group.Status != models.GroupStatusApproved {
			return apperrors.NewBusinessRuleError("group_not_approved",
				fmt.Sprintf("disposal approval group %s is %s", group.ID, group.Status))
		}

		from = doc.Status
		return s.transition(txCtx, doc, models.StatusApproved, actorID)
	})
	if err != nil {
		return nil, err
	}
	s.announce(doc, from, actorID)
	return doc, nil
}

// Reject turns the reported item down
func (s *ScrapItemService) Reject(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusRejected, actorID, nil)
}

// MoveToSSC relocates the approved item to the scrap sales center
func (s *ScrapItemService) MoveToSSC(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusInSSC, actorID, nil)
}

// Sell records that the item was sold from the sales center. The sale
// amount becomes the document amount.
func (s *ScrapItemService) Sell(ctx context.Context, id string, saleAmount float64, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusSold, actorID, func(doc *models.Document) error {
		if saleAmount < 0 {
			return apperrors.NewValidationError("sale_amount", "sale amount cannot be negative")
		}
		doc.Amount = &saleAmount
		return nil
	})
}

// Dispose records that the item was scrapped without sale
func (s *ScrapItemService) Dispose(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusDisposed, actorID, nil)
}

// Close finishes the paperwork on a sold or disposed item
func (s *ScrapItemService) Close(ctx context.Context, id, actorID string) (*models.Document, error) {
	return s.simple(ctx, id, models.StatusClosed, actorID, func(doc *models.Document) error {
		now := s.clock.Now()
		doc.CompletedAt = &now
		return nil
	})
}

// Get returns the scrap item by id
func (s *ScrapItemService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.load(ctx, id, models.DocTypeScrapItem)
}

func (s *ScrapItemService) simple(ctx context.Context, id string, to models.Status, actorID string, mutate func(*models.Document) error) (*models.Document, error) {
	var (
		doc  *models.Document
		from models.Status
	)

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		doc, err = s.load(txCtx, id, models.DocTypeScrapItem)
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
