package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wareflow/backend/internal/domain/events"
	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
	apperrors "github.com/wareflow/backend/pkg/errors"
)

// ParallelApprovalService is the multi-party flavor of the approval
// coordinator: several independent approvers gate one transition, resolved
// under an "all" or "any" policy the moment the outcome is decidable.
type ParallelApprovalService struct {
	groups   ports.ApprovalGroupRepository
	txMgr    TransactionRunner
	clock    ports.Clock
	eventBus *EventBus
}

// TransactionRunner runs a function inside one database transaction.
// Satisfied by persistence.TransactionManager; tests substitute a pass-through.
type TransactionRunner interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

// NewParallelApprovalService creates a new ParallelApprovalService
func NewParallelApprovalService(groups ports.ApprovalGroupRepository, txMgr TransactionRunner, clock ports.Clock, eventBus *EventBus) *ParallelApprovalService {
	return &ParallelApprovalService{
		groups:   groups,
		txMgr:    txMgr,
		clock:    clock,
		eventBus: eventBus,
	}
}

// CreateGroup opens a pending group with one outstanding slot per approver
func (s *ParallelApprovalService) CreateGroup(ctx context.Context, docType models.DocumentType, documentID string, level int, mode models.GroupMode, approverIDs []string) (*models.ParallelApprovalGroup, error) {
	if len(approverIDs) == 0 {
		return nil, apperrors.NewValidationError("approver_ids", "a parallel approval group needs at least one approver")
	}
	if mode != models.GroupModeAll && mode != models.GroupModeAny {
		return nil, apperrors.NewValidationError("mode", fmt.Sprintf("unknown group mode '%s'", mode))
	}

	seen := make(map[string]bool, len(approverIDs))
	for _, id := range approverIDs {
		if seen[id] {
			return nil, apperrors.NewValidationError("approver_ids", fmt.Sprintf("duplicate approver '%s'", id))
		}
		seen[id] = true
	}

	group := &models.ParallelApprovalGroup{
		DocumentType:      docType,
		DocumentID:        documentID,
		ApprovalLevel:     level,
		Mode:              mode,
		Status:            models.GroupStatusPending,
		ExpectedApprovers: approverIDs,
		CreatedDate:       s.clock.Now(),
	}

	if err := s.groups.Insert(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create approval group: %w", err)
	}

	s.eventBus.PublishAsync(events.ApprovalRequested, GroupEventPayload{Group: group})
	log.Printf("👥 Parallel approval group %s created for document %s (%s, %d approvers)",
		group.ID, documentID, mode, len(approverIDs))
	return group, nil
}

// Respond records one approver's decision and re-evaluates the group. A
// second response from the same approver is AlreadyRespondedError; a
// response after resolution is GroupResolvedError (stale, not retryable).
func (s *ParallelApprovalService) Respond(ctx context.Context, groupID, approverID string, approved bool, comments string) (*models.ParallelApprovalGroup, error) {
	var group *models.ParallelApprovalGroup

	err := s.txMgr.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		group, err = s.groups.Get(txCtx, groupID)
		if err != nil {
			return err
		}

		if group.IsResolved() {
			return apperrors.NewGroupResolvedError(groupID, string(group.Status))
		}
		if !group.IsExpected(approverID) {
			return apperrors.NewBusinessRuleError("approver_not_in_group",
				fmt.Sprintf("approver '%s' is not part of group '%s'", approverID, groupID))
		}
		if group.HasResponded(approverID) {
			return apperrors.NewAlreadyRespondedError(groupID, approverID)
		}

		resp := &models.ApprovalResponse{
			GroupID:    groupID,
			ApproverID: approverID,
			Approved:   approved,
			Comments:   comments,
			DecidedAt:  s.clock.Now(),
		}
		if err := s.groups.InsertResponse(txCtx, resp); err != nil {
			return err
		}
		group.Responses = append(group.Responses, *resp)

		// Re-evaluate under the mode; persist only on resolution
		if newStatus := group.Resolve(); newStatus != models.GroupStatusPending {
			group.Status = newStatus
			now := s.clock.Now()
			group.ResolvedDate = &now
			if err := s.groups.UpdateStatus(txCtx, group); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if group.IsResolved() {
		s.eventBus.PublishAsync(events.GroupResolved, GroupEventPayload{Group: group})
		log.Printf("👥 Approval group %s resolved: %s", groupID, group.Status)
	}
	return group, nil
}

// Status returns the group's current state, used by orchestrators to decide
// whether to advance the gated document
func (s *ParallelApprovalService) Status(ctx context.Context, groupID string) (*models.ParallelApprovalGroup, error) {
	return s.groups.Get(ctx, groupID)
}

// FindForDocument returns the group gating a document at a level, nil when
// none exists
func (s *ParallelApprovalService) FindForDocument(ctx context.Context, documentID string, level int) (*models.ParallelApprovalGroup, error) {
	return s.groups.FindByDocument(ctx, documentID, level)
}
