package domain

import (
	"sort"

	apperrors "github.com/wareflow/backend/pkg/errors"

	"github.com/wareflow/backend/internal/domain/models"
)

// TransitionGuard enforces legal status transitions per document type.
// The transition table is static configuration built once at process start;
// lookups are pure and safe for concurrent use (fail-fast approach).
type TransitionGuard struct {
	// successors maps (document type, current status) -> allowed next statuses
	successors map[typeStateKey]statusSet
}

type typeStateKey struct {
	docType models.DocumentType
	status  models.Status
}

type statusSet map[models.Status]struct{}

// NewTransitionGuard creates the guard with every document type's lifecycle.
//
// Job Order:
//
//	draft → pending_approval → {approved, rejected}
//	approved → assigned → in_progress ⇄ on_hold
//	in_progress → completed → invoiced
//	cancelled reachable from every non-terminal state except completed
//
// Material Requisition:
//
//	draft → submitted → under_review → {approved, rejected}
//	approved → checking_stock → {from_stock, needs_purchase} → fulfilled
//	cancelled from draft/submitted/under_review/approved
//
// Scrap Item:
//
//	identified → reported → {approved, rejected}
//	approved → in_ssc → {sold, disposed} → closed
//
// Shipment:
//
//	draft → scheduled → in_transit → delivered
//	cancelled from draft/scheduled
func NewTransitionGuard() *TransitionGuard {
	g := &TransitionGuard{
		successors: make(map[typeStateKey]statusSet),
	}

	// Job Order
	jo := models.DocTypeJobOrder
	g.add(jo, models.StatusDraft, models.StatusPendingApproval, models.StatusCancelled)
	g.add(jo, models.StatusPendingApproval, models.StatusApproved, models.StatusRejected, models.StatusCancelled)
	g.add(jo, models.StatusApproved, models.StatusAssigned, models.StatusCancelled)
	g.add(jo, models.StatusAssigned, models.StatusInProgress, models.StatusCancelled)
	g.add(jo, models.StatusInProgress, models.StatusOnHold, models.StatusCompleted, models.StatusCancelled)
	g.add(jo, models.StatusOnHold, models.StatusInProgress, models.StatusCancelled)
	g.add(jo, models.StatusCompleted, models.StatusInvoiced)
	g.terminal(jo, models.StatusInvoiced)
	g.terminal(jo, models.StatusRejected)
	g.terminal(jo, models.StatusCancelled)

	// Material Requisition
	mr := models.DocTypeRequisition
	g.add(mr, models.StatusDraft, models.StatusSubmitted, models.StatusCancelled)
	g.add(mr, models.StatusSubmitted, models.StatusUnderReview, models.StatusCancelled)
	g.add(mr, models.StatusUnderReview, models.StatusApproved, models.StatusRejected, models.StatusCancelled)
	g.add(mr, models.StatusApproved, models.StatusCheckingStock, models.StatusCancelled)
	g.add(mr, models.StatusCheckingStock, models.StatusFromStock, models.StatusNeedsPurchase)
	g.add(mr, models.StatusFromStock, models.StatusFulfilled)
	g.add(mr, models.StatusNeedsPurchase, models.StatusFulfilled)
	g.terminal(mr, models.StatusFulfilled)
	g.terminal(mr, models.StatusRejected)
	g.terminal(mr, models.StatusCancelled)

	// Scrap Item
	si := models.DocTypeScrapItem
	g.add(si, models.StatusIdentified, models.StatusReported)
	g.add(si, models.StatusReported, models.StatusApproved, models.StatusRejected)
	g.add(si, models.StatusApproved, models.StatusInSSC)
	g.add(si, models.StatusInSSC, models.StatusSold, models.StatusDisposed)
	g.add(si, models.StatusSold, models.StatusClosed)
	g.add(si, models.StatusDisposed, models.StatusClosed)
	g.terminal(si, models.StatusClosed)
	g.terminal(si, models.StatusRejected)

	// Shipment
	sh := models.DocTypeShipment
	g.add(sh, models.StatusDraft, models.StatusScheduled, models.StatusCancelled)
	g.add(sh, models.StatusScheduled, models.StatusInTransit, models.StatusCancelled)
	g.add(sh, models.StatusInTransit, models.StatusDelivered)
	g.terminal(sh, models.StatusDelivered)
	g.terminal(sh, models.StatusCancelled)

	return g
}

func (g *TransitionGuard) add(docType models.DocumentType, from models.Status, to ...models.Status) {
	key := typeStateKey{docType: docType, status: from}
	set, ok := g.successors[key]
	if !ok {
		set = make(statusSet)
		g.successors[key] = set
	}
	for _, s := range to {
		set[s] = struct{}{}
	}
}

// terminal registers a state with an empty successor set so the guard can
// tell "terminal" apart from "unknown state".
func (g *TransitionGuard) terminal(docType models.DocumentType, state models.Status) {
	key := typeStateKey{docType: docType, status: state}
	if _, ok := g.successors[key]; !ok {
		g.successors[key] = make(statusSet)
	}
}

// AssertTransition succeeds silently when to is in the configured successor
// set of (docType, from); otherwise it returns an InvalidTransitionError
// naming the illegal pair.
func (g *TransitionGuard) AssertTransition(docType models.DocumentType, from, to models.Status) error {
	set, ok := g.successors[typeStateKey{docType: docType, status: from}]
	if !ok {
		return apperrors.NewInvalidTransitionError(string(docType), string(from), string(to))
	}
	if _, ok := set[to]; !ok {
		return apperrors.NewInvalidTransitionError(string(docType), string(from), string(to))
	}
	return nil
}

// CanTransition checks if a transition is valid without performing it.
func (g *TransitionGuard) CanTransition(docType models.DocumentType, from, to models.Status) bool {
	return g.AssertTransition(docType, from, to) == nil
}

// ValidTransitions returns all valid successor statuses from the given
// state, sorted for deterministic output.
func (g *TransitionGuard) ValidTransitions(docType models.DocumentType, from models.Status) []models.Status {
	set, ok := g.successors[typeStateKey{docType: docType, status: from}]
	if !ok {
		return nil
	}
	result := make([]models.Status, 0, len(set))
	for s := range set {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// IsTerminal returns true if the state is configured with no successors.
func (g *TransitionGuard) IsTerminal(docType models.DocumentType, state models.Status) bool {
	set, ok := g.successors[typeStateKey{docType: docType, status: state}]
	return ok && len(set) == 0
}

// KnownStates returns every configured state for a document type, sorted.
func (g *TransitionGuard) KnownStates(docType models.DocumentType) []models.Status {
	var result []models.Status
	for key := range g.successors {
		if key.docType == docType {
			result = append(result, key.status)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
