package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareflow/backend/internal/domain/models"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/expression"
)

func amt(v float64) *float64 { return &v }

func jobOrderRules() []models.ApprovalWorkflowRule {
	return []models.ApprovalWorkflowRule{
		{ID: "r1", DocumentType: models.DocTypeJobOrder, MinAmount: 0, MaxAmount: amt(1000), ApproverRole: "supervisor", SlaHours: 24},
		{ID: "r2", DocumentType: models.DocTypeJobOrder, MinAmount: 1000, MaxAmount: amt(10000), ApproverRole: "manager", SlaHours: 48},
		{ID: "r3", DocumentType: models.DocTypeJobOrder, MinAmount: 10000, ApproverRole: "director", SlaHours: 72},
	}
}

func newApprovalFixture(rules ...models.ApprovalWorkflowRule) *ApprovalService {
	return NewApprovalService(newFakeApprovalRepo(rules...), expression.NewEngine(), newFakeClock(), NewEventBus())
}

func jobOrderDoc(amount *float64) *models.Document {
	return &models.Document{
		ID:           "doc-1",
		DocumentType: models.DocTypeJobOrder,
		Status:       models.StatusDraft,
		Amount:       amount,
	}
}

func TestApprovalService_RouteBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		wantRole  string
		wantHours int
	}{
		{"zero amount", 0, "supervisor", 24},
		{"just below boundary", 999, "supervisor", 24},
		{"exactly at boundary", 1000, "manager", 48},
		{"mid range", 5000, "manager", 48},
		{"top range unbounded", 1000000, "director", 72},
	}

	svc := newApprovalFixture(jobOrderRules()...)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, err := svc.Route(context.Background(), jobOrderDoc(amt(tt.amount)))
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, route.ApproverRole)
			assert.Equal(t, tt.wantHours, route.SlaHours)
		})
	}
}

func TestApprovalService_RouteWithoutAmount(t *testing.T) {
	svc := newApprovalFixture(jobOrderRules()...)

	_, err := svc.Route(context.Background(), jobOrderDoc(nil))
	var ruleErr *apperrors.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "amount_required", ruleErr.Rule)
}

func TestApprovalService_RouteNoRulesConfigured(t *testing.T) {
	svc := newApprovalFixture()

	_, err := svc.Route(context.Background(), jobOrderDoc(amt(500)))
	assert.Error(t, err)
}

func TestApprovalService_RouteConditionFilter(t *testing.T) {
	rules := jobOrderRules()
	rules[1].Condition = `warehouse_id == "WH-MAIN"`
	svc := newApprovalFixture(rules...)

	doc := jobOrderDoc(amt(5000))
	wh := "WH-MAIN"
	doc.WarehouseID = &wh
	route, err := svc.Route(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "manager", route.ApproverRole)

	// A non-matching condition drops the rule from consideration.
	other := "WH-NORTH"
	doc.WarehouseID = &other
	_, err = svc.Route(context.Background(), doc)
	var noRule *apperrors.NoMatchingRuleError
	require.ErrorAs(t, err, &noRule)
	assert.Equal(t, float64(5000), noRule.Amount)
}

func TestValidateRulePartition(t *testing.T) {
	tests := []struct {
		name    string
		rules   []models.ApprovalWorkflowRule
		wantErr bool
	}{
		{"complete partition", jobOrderRules(), false},
		{"empty", nil, true},
		{
			"gap between ranges",
			[]models.ApprovalWorkflowRule{
				{MinAmount: 0, MaxAmount: amt(1000)},
				{MinAmount: 2000, MaxAmount: nil},
			},
			true,
		},
		{
			"does not start at zero",
			[]models.ApprovalWorkflowRule{
				{MinAmount: 100, MaxAmount: nil},
			},
			true,
		},
		{
			"bounded top range",
			[]models.ApprovalWorkflowRule{
				{MinAmount: 0, MaxAmount: amt(1000)},
				{MinAmount: 1000, MaxAmount: amt(5000)},
			},
			true,
		},
		{
			"single unbounded rule",
			[]models.ApprovalWorkflowRule{
				{MinAmount: 0, MaxAmount: nil},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRulePartition(tt.rules)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApprovalService_RecordDecisionAppendOnly(t *testing.T) {
	svc := newApprovalFixture(jobOrderRules()...)
	ctx := context.Background()

	_, err := svc.RecordDecision(ctx, "doc-1", "alice", false, 1, nil, "needs a revised quote")
	require.NoError(t, err)
	_, err = svc.RecordDecision(ctx, "doc-1", "alice", true, 1, amt(4500), "quote accepted")
	require.NoError(t, err)

	history, err := svc.History(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Approved)
	assert.Equal(t, 4500.0, *history[0].QuoteAmount)
	assert.False(t, history[1].Approved)
}
