package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/wareflow/backend/internal/application/services"
	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
)

func f(v float64) *float64 { return &v }

// defaultRules is the stock amount-escalation configuration, seeded only
// when no rules exist so operator changes survive restarts.
var defaultRules = []models.ApprovalWorkflowRule{
	{DocumentType: models.DocTypeJobOrder, MinAmount: 0, MaxAmount: f(1000), ApproverRole: "supervisor", SlaHours: 24},
	{DocumentType: models.DocTypeJobOrder, MinAmount: 1000, MaxAmount: f(10000), ApproverRole: "manager", SlaHours: 48},
	{DocumentType: models.DocTypeJobOrder, MinAmount: 10000, MaxAmount: nil, ApproverRole: "director", SlaHours: 72},
	{DocumentType: models.DocTypeRequisition, MinAmount: 0, MaxAmount: f(5000), ApproverRole: "warehouse_manager", SlaHours: 24},
	{DocumentType: models.DocTypeRequisition, MinAmount: 5000, MaxAmount: nil, ApproverRole: "procurement_head", SlaHours: 48},
}

// InitializeWorkflowRules seeds the default approval escalation rules and
// verifies every seeded document type carries a complete partition
func InitializeWorkflowRules(ctx context.Context, approvals ports.ApprovalRepository) error {
	count, err := approvals.CountRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to count workflow rules: %w", err)
	}
	if count > 0 {
		log.Printf("📋 Workflow rules already present (%d), skipping seed", count)
		return nil
	}

	for i := range defaultRules {
		rule := defaultRules[i]
		if err := approvals.InsertRule(ctx, &rule); err != nil {
			return fmt.Errorf("failed to seed workflow rule for %s: %w", rule.DocumentType, err)
		}
	}
	log.Printf("📋 Seeded %d workflow rules", len(defaultRules))

	for _, docType := range []models.DocumentType{models.DocTypeJobOrder, models.DocTypeRequisition} {
		rules, err := approvals.ListRules(ctx, docType)
		if err != nil {
			return err
		}
		if err := services.ValidateRulePartition(rules); err != nil {
			return fmt.Errorf("workflow rules for %s are inconsistent: %w", docType, err)
		}
	}
	return nil
}
