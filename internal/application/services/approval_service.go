package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wareflow/backend/internal/domain/events"
	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/expression"
)

// ApprovalService is the sequential, amount-escalated flavor of the
// approval coordinator: it routes a submitted document to the approver role
// whose configured amount range contains the document amount, and appends
// immutable decision records.
type ApprovalService struct {
	approvals ports.ApprovalRepository
	expr      *expression.Engine
	clock     ports.Clock
	eventBus  *EventBus
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(approvals ports.ApprovalRepository, expr *expression.Engine, clock ports.Clock, eventBus *EventBus) *ApprovalService {
	return &ApprovalService{
		approvals: approvals,
		expr:      expr,
		clock:     clock,
		eventBus:  eventBus,
	}
}

// Route selects the workflow rule whose [min, max) range contains the
// document amount and returns its approver role and SLA hours. A gap in the
// configured ranges surfaces as NoMatchingRuleError; it is a configuration
// error, never silently defaulted.
func (s *ApprovalService) Route(ctx context.Context, doc *models.Document) (*models.ApprovalRoute, error) {
	if !doc.HasAmount() {
		return nil, apperrors.NewBusinessRuleError("amount_required",
			fmt.Sprintf("document %s has no amount to route approval by", doc.ID))
	}
	amount := *doc.Amount

	rules, err := s.approvals.ListRules(ctx, doc.DocumentType)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow rules: %w", err)
	}

	if err := ValidateRulePartition(rules); err != nil {
		return nil, err
	}

	env := s.conditionEnv(doc)
	for i := range rules {
		rule := &rules[i]
		if !rule.Matches(amount) {
			continue
		}
		ok, err := s.expr.EvaluateBool(rule.Condition, env)
		if err != nil {
			return nil, fmt.Errorf("workflow rule %s has a broken condition: %w", rule.ID, err)
		}
		if !ok {
			continue
		}
		return &models.ApprovalRoute{ApproverRole: rule.ApproverRole, SlaHours: rule.SlaHours}, nil
	}

	return nil, apperrors.NewNoMatchingRuleError(string(doc.DocumentType), amount)
}

// RecordDecision appends one approval decision to the append-only log
func (s *ApprovalService) RecordDecision(ctx context.Context, documentID, approverID string, approved bool, level int, quoteAmount *float64, comments string) (*models.ApprovalRecord, error) {
	rec := &models.ApprovalRecord{
		DocumentID:  documentID,
		ApproverID:  approverID,
		Approved:    approved,
		Level:       level,
		QuoteAmount: quoteAmount,
		Comments:    comments,
		DecidedAt:   s.clock.Now(),
	}

	if err := s.approvals.InsertRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to record approval decision: %w", err)
	}

	s.eventBus.PublishAsync(events.ApprovalDecided, rec)
	log.Printf("📝 Approval decision recorded for document %s: approved=%v by %s", documentID, approved, approverID)
	return rec, nil
}

// History returns the decision log for a document, newest first
func (s *ApprovalService) History(ctx context.Context, documentID string) ([]models.ApprovalRecord, error) {
	return s.approvals.ListRecords(ctx, documentID)
}

func (s *ApprovalService) conditionEnv(doc *models.Document) map[string]interface{} {
	env := map[string]interface{}{
		"document_type": string(doc.DocumentType),
		"status":        string(doc.Status),
	}
	if doc.Amount != nil {
		env["amount"] = *doc.Amount
	}
	if doc.WarehouseID != nil {
		env["warehouse_id"] = *doc.WarehouseID
	}
	return env
}

// ValidateRulePartition checks that the configured ranges for one document
// type cover the amount axis from zero upward without gaps or overlaps.
// Rules must arrive sorted by min_amount ascending (the repository
// guarantees this).
func ValidateRulePartition(rules []models.ApprovalWorkflowRule) error {
	if len(rules) == 0 {
		return apperrors.NewValidationError("workflow_rules", "no approval workflow rules configured")
	}

	if rules[0].MinAmount != 0 {
		return apperrors.NewValidationError("workflow_rules",
			fmt.Sprintf("rule ranges must start at 0, first range starts at %.2f", rules[0].MinAmount))
	}

	for i := 0; i < len(rules)-1; i++ {
		cur, next := &rules[i], &rules[i+1]
		if cur.MaxAmount == nil {
			return apperrors.NewValidationError("workflow_rules",
				fmt.Sprintf("unbounded range starting at %.2f is shadowed by a later range", cur.MinAmount))
		}
		if *cur.MaxAmount != next.MinAmount {
			return apperrors.NewValidationError("workflow_rules",
				fmt.Sprintf("rule ranges have a gap or overlap between %.2f and %.2f", *cur.MaxAmount, next.MinAmount))
		}
	}

	if last := &rules[len(rules)-1]; last.MaxAmount != nil {
		return apperrors.NewValidationError("workflow_rules",
			fmt.Sprintf("rule ranges must be unbounded above, last range ends at %.2f", *last.MaxAmount))
	}

	return nil
}
