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

// orchestrator carries the collaborators every document orchestrator shares
// and the common load-guard-persist sequence of a transition.
type orchestrator struct {
	docs     ports.DocumentRepository
	guard    *domain.TransitionGuard
	txMgr    TransactionRunner
	clock    ports.Clock
	eventBus *EventBus
}

// transition moves a loaded document to a new status after the guard has
// accepted the edge. The caller runs it inside a transaction with type
// preconditions already checked. The version check in Update makes the
// write atomic against concurrent transitions. The caller announces the
// transition once the transaction has committed.
func (o *orchestrator) transition(ctx context.Context, doc *models.Document, to models.Status, actorID string) error {
	from := doc.Status
	if err := o.guard.AssertTransition(doc.DocumentType, from, to); err != nil {
		return err
	}

	doc.Status = to
	doc.LastModifiedDate = o.clock.Now()
	if err := o.docs.Update(ctx, doc); err != nil {
		doc.Status = from
		return err
	}
	return nil
}

// announce publishes and logs a committed transition. Called outside the
// transaction so a rollback never leaks an event for a status change that
// was never persisted.
func (o *orchestrator) announce(doc *models.Document, from models.Status, actorID string) {
	o.eventBus.PublishAsync(events.DocumentTransitioned, TransitionEventPayload{
		Document:   doc,
		FromStatus: from,
		ToStatus:   doc.Status,
		ActorID:    actorID,
	})
	log.Printf("📝 %s %s: %s → %s", doc.DocumentType, doc.DocumentNumber, from, doc.Status)
}

// load fetches the document and checks it has the type the orchestrator owns
func (o *orchestrator) load(ctx context.Context, id string, docType models.DocumentType) (*models.Document, error) {
	doc, err := o.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.DocumentType != docType {
		return nil, apperrors.NewBusinessRuleError("wrong_document_type",
			fmt.Sprintf("document %s is a %s, not a %s", doc.ID, doc.DocumentType, docType))
	}
	return doc, nil
}
