package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wareflow/backend/internal/domain/models"
	apperrors "github.com/wareflow/backend/pkg/errors"
)

func TestTransitionGuard_JobOrderTransitions(t *testing.T) {
	g := NewTransitionGuard()
	jo := models.DocTypeJobOrder

	tests := []struct {
		name        string
		from        models.Status
		to          models.Status
		shouldError bool
	}{
		// Valid transitions
		{"draft -> pending_approval", models.StatusDraft, models.StatusPendingApproval, false},
		{"pending_approval -> approved", models.StatusPendingApproval, models.StatusApproved, false},
		{"pending_approval -> rejected", models.StatusPendingApproval, models.StatusRejected, false},
		{"approved -> assigned", models.StatusApproved, models.StatusAssigned, false},
		{"assigned -> in_progress", models.StatusAssigned, models.StatusInProgress, false},
		{"in_progress -> on_hold", models.StatusInProgress, models.StatusOnHold, false},
		{"on_hold -> in_progress", models.StatusOnHold, models.StatusInProgress, false},
		{"in_progress -> completed", models.StatusInProgress, models.StatusCompleted, false},
		{"completed -> invoiced", models.StatusCompleted, models.StatusInvoiced, false},
		{"draft -> cancelled", models.StatusDraft, models.StatusCancelled, false},
		{"on_hold -> cancelled", models.StatusOnHold, models.StatusCancelled, false},

		// Invalid transitions
		{"draft -> approved (skips approval)", models.StatusDraft, models.StatusApproved, true},
		{"approved -> in_progress (skips assign)", models.StatusApproved, models.StatusInProgress, true},
		{"completed -> cancelled (cancel after completion)", models.StatusCompleted, models.StatusCancelled, true},
		{"invoiced -> anything (terminal)", models.StatusInvoiced, models.StatusDraft, true},
		{"cancelled -> draft (terminal)", models.StatusCancelled, models.StatusDraft, true},
		{"on_hold -> completed (must resume first)", models.StatusOnHold, models.StatusCompleted, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := g.AssertTransition(jo, tc.from, tc.to)
			if tc.shouldError {
				assert.Error(t, err)
				assert.True(t, apperrors.IsInvalidTransition(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// Every configured (type, from) pair must accept exactly its successor set
// and reject every other known status of the same type.
func TestTransitionGuard_Completeness(t *testing.T) {
	g := NewTransitionGuard()

	docTypes := []models.DocumentType{
		models.DocTypeJobOrder,
		models.DocTypeRequisition,
		models.DocTypeScrapItem,
		models.DocTypeShipment,
	}

	for _, dt := range docTypes {
		states := g.KnownStates(dt)
		assert.NotEmpty(t, states, "no states configured for %s", dt)

		for _, from := range states {
			allowed := make(map[models.Status]bool)
			for _, to := range g.ValidTransitions(dt, from) {
				allowed[to] = true
			}

			for _, to := range states {
				err := g.AssertTransition(dt, from, to)
				if allowed[to] {
					assert.NoError(t, err, "%s: %s -> %s should be legal", dt, from, to)
				} else {
					assert.Error(t, err, "%s: %s -> %s should be illegal", dt, from, to)
				}
			}
		}
	}
}

func TestTransitionGuard_UnknownStateRejected(t *testing.T) {
	g := NewTransitionGuard()

	// scrap items never pass through submitted
	err := g.AssertTransition(models.DocTypeScrapItem, models.StatusSubmitted, models.StatusApproved)
	assert.Error(t, err)
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestTransitionGuard_IsTerminal(t *testing.T) {
	g := NewTransitionGuard()

	assert.True(t, g.IsTerminal(models.DocTypeJobOrder, models.StatusInvoiced))
	assert.True(t, g.IsTerminal(models.DocTypeJobOrder, models.StatusCancelled))
	assert.True(t, g.IsTerminal(models.DocTypeRequisition, models.StatusFulfilled))
	assert.True(t, g.IsTerminal(models.DocTypeScrapItem, models.StatusClosed))
	assert.True(t, g.IsTerminal(models.DocTypeShipment, models.StatusDelivered))

	assert.False(t, g.IsTerminal(models.DocTypeJobOrder, models.StatusCompleted)) // invoiced still ahead
	assert.False(t, g.IsTerminal(models.DocTypeJobOrder, models.StatusOnHold))
	assert.False(t, g.IsTerminal(models.DocTypeShipment, models.StatusInTransit))
}

func TestTransitionGuard_CanTransition(t *testing.T) {
	g := NewTransitionGuard()

	assert.True(t, g.CanTransition(models.DocTypeRequisition, models.StatusCheckingStock, models.StatusFromStock))
	assert.True(t, g.CanTransition(models.DocTypeRequisition, models.StatusCheckingStock, models.StatusNeedsPurchase))
	assert.False(t, g.CanTransition(models.DocTypeRequisition, models.StatusCheckingStock, models.StatusCancelled))
	assert.False(t, g.CanTransition(models.DocTypeShipment, models.StatusInTransit, models.StatusCancelled))
}
