package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wareflow/backend/internal/domain"
	"github.com/wareflow/backend/internal/domain/models"
	apperrors "github.com/wareflow/backend/pkg/errors"
	"github.com/wareflow/backend/pkg/expression"
)

func requisitionRules() []models.ApprovalWorkflowRule {
	return []models.ApprovalWorkflowRule{
		{ID: "mr1", DocumentType: models.DocTypeRequisition, MinAmount: 0, MaxAmount: amt(5000), ApproverRole: "warehouse_manager", SlaHours: 24},
		{ID: "mr2", DocumentType: models.DocTypeRequisition, MinAmount: 5000, ApproverRole: "procurement_head", SlaHours: 48},
	}
}

func newRequisitionFixture(stockLevels map[string]int) (*RequisitionService, *fakeStock) {
	clock := newFakeClock()
	bus := NewEventBus()
	sla := NewSlaService(newFakeSlaRepo(), clock, bus)
	approval := NewApprovalService(newFakeApprovalRepo(requisitionRules()...), expression.NewEngine(), clock, bus)
	stock := &fakeStock{levels: stockLevels}
	return NewRequisitionService(
		newFakeDocumentRepo(), domain.NewTransitionGuard(), passthroughTx{}, clock, bus,
		&fakeNumberer{}, stock, sla, approval,
	), stock
}

func approvedRequisition(t *testing.T, svc *RequisitionService, lines ...RequisitionLineRequest) *models.Document {
	t.Helper()
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{Title: "Spare parts", Lines: lines}, "user-1")
	require.NoError(t, err)
	_, _, err = svc.Submit(ctx, doc.ID, "user-1")
	require.NoError(t, err)
	_, err = svc.StartReview(ctx, doc.ID, "reviewer-1")
	require.NoError(t, err)
	doc, err = svc.Approve(ctx, doc.ID, "reviewer-1")
	require.NoError(t, err)
	return doc
}

func TestRequisition_CheckStockClassifiesLines(t *testing.T) {
	svc, _ := newRequisitionFixture(map[string]int{
		"bolt":    100, // full coverage
		"bearing": 3,   // partial
		"motor":   0,   // none
	})
	doc := approvedRequisition(t, svc,
		RequisitionLineRequest{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 40},
		RequisitionLineRequest{ItemID: "bearing", WarehouseID: "WH-1", QtyRequested: 8},
		RequisitionLineRequest{ItemID: "motor", WarehouseID: "WH-1", QtyRequested: 1},
	)

	doc, lines, err := svc.CheckStock(context.Background(), doc.ID, "storekeeper-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeedsPurchase, doc.Status)
	require.Len(t, lines, 3)

	byItem := map[string]models.RequisitionLine{}
	for _, l := range lines {
		byItem[l.ItemID] = l
	}

	bolt := byItem["bolt"]
	assert.Equal(t, models.SourcingFromStock, bolt.Sourcing)
	assert.Equal(t, 40, bolt.QtyFromStock)
	assert.Equal(t, 0, bolt.QtyFromPurchase)

	bearing := byItem["bearing"]
	assert.Equal(t, models.SourcingBoth, bearing.Sourcing)
	assert.Equal(t, 3, bearing.QtyFromStock)
	assert.Equal(t, 5, bearing.QtyFromPurchase)

	motor := byItem["motor"]
	assert.Equal(t, models.SourcingPurchase, motor.Sourcing)
	assert.Equal(t, 0, motor.QtyFromStock)
	assert.Equal(t, 1, motor.QtyFromPurchase)
}

func TestRequisition_CheckStockFullyCovered(t *testing.T) {
	svc, stock := newRequisitionFixture(map[string]int{"bolt": 100, "nut": 200})
	doc := approvedRequisition(t, svc,
		RequisitionLineRequest{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 10},
		RequisitionLineRequest{ItemID: "nut", WarehouseID: "WH-1", QtyRequested: 10},
	)

	doc, _, err := svc.CheckStock(context.Background(), doc.ID, "storekeeper-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFromStock, doc.Status)

	// Fulfillment closes out the covered requisition and issues the goods.
	doc, err = svc.Fulfill(context.Background(), doc.ID, "storekeeper-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFulfilled, doc.Status)
	assert.NotNil(t, doc.CompletedAt)
	assert.Equal(t, 90, stock.levels["bolt"])
	assert.Equal(t, 190, stock.levels["nut"])
}

func TestRequisition_ExactCoverageBoundary(t *testing.T) {
	// available == requested is full coverage, not partial.
	svc, _ := newRequisitionFixture(map[string]int{"bolt": 10})
	doc := approvedRequisition(t, svc,
		RequisitionLineRequest{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 10},
	)

	doc, lines, err := svc.CheckStock(context.Background(), doc.ID, "storekeeper-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFromStock, doc.Status)
	assert.Equal(t, models.SourcingFromStock, lines[0].Sourcing)
}

func TestRequisition_SubmitRequiresLines(t *testing.T) {
	svc, _ := newRequisitionFixture(nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{Title: "Empty"}, "user-1")
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, doc.ID, "user-1")
	var ruleErr *apperrors.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "lines_required", ruleErr.Rule)
}

func TestRequisition_SubmitRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newRequisitionFixture(nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{
		Title: "Bad line",
		Lines: []RequisitionLineRequest{{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 0}},
	}, "user-1")
	require.NoError(t, err)

	_, _, err = svc.Submit(ctx, doc.ID, "user-1")
	var ruleErr *apperrors.BusinessRuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "positive_quantity_required", ruleErr.Rule)
}

func TestRequisition_CheckStockRequiresApproval(t *testing.T) {
	svc, _ := newRequisitionFixture(map[string]int{"bolt": 10})
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{
		Title: "Too eager",
		Lines: []RequisitionLineRequest{{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 5}},
	}, "user-1")
	require.NoError(t, err)

	_, _, err = svc.CheckStock(ctx, doc.ID, "storekeeper-1")
	assert.True(t, apperrors.IsInvalidTransition(err))
}

func TestRequisition_SubmitRoutesByEstimatedAmount(t *testing.T) {
	svc, _ := newRequisitionFixture(nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{
		Title:           "Bulk restock",
		EstimatedAmount: amt(7500),
		Lines:           []RequisitionLineRequest{{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 500}},
	}, "user-1")
	require.NoError(t, err)

	doc, route, err := svc.Submit(ctx, doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, doc.Status)
	assert.Equal(t, "procurement_head", route.ApproverRole)
	assert.Equal(t, 48, route.SlaHours)
}

func TestRequisition_SubmitWithoutEstimateRoutesLowestBand(t *testing.T) {
	svc, _ := newRequisitionFixture(nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{
		Title: "Small top-up",
		Lines: []RequisitionLineRequest{{ItemID: "nut", WarehouseID: "WH-1", QtyRequested: 20}},
	}, "user-1")
	require.NoError(t, err)

	_, route, err := svc.Submit(ctx, doc.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "warehouse_manager", route.ApproverRole)
	assert.Equal(t, 24, route.SlaHours)
}

func TestRequisition_RejectPath(t *testing.T) {
	svc, _ := newRequisitionFixture(nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, &CreateRequisitionRequest{
		Title: "Denied",
		Lines: []RequisitionLineRequest{{ItemID: "bolt", WarehouseID: "WH-1", QtyRequested: 5}},
	}, "user-1")
	require.NoError(t, err)
	_, _, err = svc.Submit(ctx, doc.ID, "user-1")
	require.NoError(t, err)
	_, err = svc.StartReview(ctx, doc.ID, "reviewer-1")
	require.NoError(t, err)

	doc, err = svc.Reject(ctx, doc.ID, "reviewer-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, doc.Status)
}
