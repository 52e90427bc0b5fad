package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wareflow/backend/internal/domain/models"
	apperrors "github.com/wareflow/backend/pkg/errors"
)

// fakeClock is a controllable clock for deterministic SLA arithmetic
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// passthroughTx runs the function directly; fakes keep no transactions
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// fakeDocumentRepo is an in-memory DocumentRepository with the same
// optimistic version semantics as the MySQL one
type fakeDocumentRepo struct {
	mu    sync.Mutex
	docs  map[string]models.Document
	lines map[string][]models.RequisitionLine
	seq   int
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:  make(map[string]models.Document),
		lines: make(map[string][]models.RequisitionLine),
	}
}

func (r *fakeDocumentRepo) Get(ctx context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("document", id)
	}
	return &doc, nil
}

func (r *fakeDocumentRepo) Insert(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.ID == "" {
		r.seq++
		doc.ID = fmt.Sprintf("doc-%d", r.seq)
	}
	doc.Version = 1
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[doc.ID]
	if !ok {
		return apperrors.NewNotFoundError("document", doc.ID)
	}
	if stored.Version != doc.Version {
		return apperrors.NewConflictError("document", doc.ID)
	}
	doc.Version++
	r.docs[doc.ID] = *doc
	return nil
}

func (r *fakeDocumentRepo) GetLines(ctx context.Context, documentID string) ([]models.RequisitionLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]models.RequisitionLine, len(r.lines[documentID]))
	copy(lines, r.lines[documentID])
	return lines, nil
}

func (r *fakeDocumentRepo) InsertLine(ctx context.Context, line *models.RequisitionLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if line.ID == "" {
		r.seq++
		line.ID = fmt.Sprintf("line-%d", r.seq)
	}
	r.lines[line.DocumentID] = append(r.lines[line.DocumentID], *line)
	return nil
}

func (r *fakeDocumentRepo) UpdateLineSourcing(ctx context.Context, line *models.RequisitionLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := r.lines[line.DocumentID]
	for i := range lines {
		if lines[i].ID == line.ID {
			lines[i] = *line
			return nil
		}
	}
	return apperrors.NewNotFoundError("requisition_line", line.ID)
}

// fakeSlaRepo is an in-memory SlaRepository keyed by document id
type fakeSlaRepo struct {
	mu        sync.Mutex
	recs      map[string]models.SlaRecord
	seq       int
	insertErr error
}

func newFakeSlaRepo() *fakeSlaRepo {
	return &fakeSlaRepo{recs: make(map[string]models.SlaRecord)}
}

func (r *fakeSlaRepo) GetByDocument(ctx context.Context, documentID string) (*models.SlaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[documentID]
	if !ok {
		return nil, apperrors.NewNotFoundError("sla_record", documentID)
	}
	return &rec, nil
}

func (r *fakeSlaRepo) FindByDocument(ctx context.Context, documentID string) (*models.SlaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[documentID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *fakeSlaRepo) Insert(ctx context.Context, rec *models.SlaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if rec.ID == "" {
		r.seq++
		rec.ID = fmt.Sprintf("sla-%d", r.seq)
	}
	r.recs[rec.DocumentID] = *rec
	return nil
}

func (r *fakeSlaRepo) Update(ctx context.Context, rec *models.SlaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs[rec.DocumentID] = *rec
	return nil
}

func (r *fakeSlaRepo) ListOverdue(ctx context.Context, limit int) ([]models.SlaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SlaRecord
	for _, rec := range r.recs {
		if rec.Met == nil && !rec.IsPaused() && len(out) < limit {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeApprovalRepo keeps rules and the decision log in memory
type fakeApprovalRepo struct {
	mu      sync.Mutex
	rules   []models.ApprovalWorkflowRule
	records []models.ApprovalRecord
	seq     int
}

func newFakeApprovalRepo(rules ...models.ApprovalWorkflowRule) *fakeApprovalRepo {
	return &fakeApprovalRepo{rules: rules}
}

func (r *fakeApprovalRepo) InsertRecord(ctx context.Context, rec *models.ApprovalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	rec.ID = fmt.Sprintf("apr-%d", r.seq)
	r.records = append(r.records, *rec)
	return nil
}

func (r *fakeApprovalRepo) ListRecords(ctx context.Context, documentID string) ([]models.ApprovalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ApprovalRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].DocumentID == documentID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) ListRules(ctx context.Context, docType models.DocumentType) ([]models.ApprovalWorkflowRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ApprovalWorkflowRule
	for _, rule := range r.rules {
		if rule.DocumentType == docType {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) InsertRule(ctx context.Context, rule *models.ApprovalWorkflowRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *fakeApprovalRepo) CountRules(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rules), nil
}

// fakeGroupRepo keeps parallel approval groups in memory
type fakeGroupRepo struct {
	mu     sync.Mutex
	groups map[string]models.ParallelApprovalGroup
	seq    int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[string]models.ParallelApprovalGroup)}
}

func (r *fakeGroupRepo) Get(ctx context.Context, id string) (*models.ParallelApprovalGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("approval_group", id)
	}
	out := g
	out.Responses = append([]models.ApprovalResponse(nil), g.Responses...)
	return &out, nil
}

func (r *fakeGroupRepo) FindByDocument(ctx context.Context, documentID string, level int) (*models.ParallelApprovalGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.DocumentID == documentID && g.ApprovalLevel == level {
			out := g
			return &out, nil
		}
	}
	return nil, nil
}

func (r *fakeGroupRepo) Insert(ctx context.Context, group *models.ParallelApprovalGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID == "" {
		r.seq++
		group.ID = fmt.Sprintf("grp-%d", r.seq)
	}
	r.groups[group.ID] = *group
	return nil
}

func (r *fakeGroupRepo) InsertResponse(ctx context.Context, resp *models.ApprovalResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[resp.GroupID]
	if !ok {
		return apperrors.NewNotFoundError("approval_group", resp.GroupID)
	}
	r.seq++
	resp.ID = fmt.Sprintf("rsp-%d", r.seq)
	g.Responses = append(g.Responses, *resp)
	r.groups[resp.GroupID] = g
	return nil
}

func (r *fakeGroupRepo) UpdateStatus(ctx context.Context, group *models.ParallelApprovalGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[group.ID]
	if !ok {
		return apperrors.NewNotFoundError("approval_group", group.ID)
	}
	g.Status = group.Status
	g.ResolvedDate = group.ResolvedDate
	r.groups[group.ID] = g
	return nil
}

// fakeStock answers stock lookups from a fixed table keyed by item id
type fakeStock struct {
	levels map[string]int
}

func (s *fakeStock) GetStockLevel(ctx context.Context, itemID, warehouseID string) (int, error) {
	return s.levels[itemID], nil
}

func (s *fakeStock) AdjustStock(ctx context.Context, itemID, warehouseID string, delta int) error {
	s.levels[itemID] += delta
	return nil
}

// fakeNumberer generates predictable document numbers
type fakeNumberer struct {
	mu  sync.Mutex
	seq int
}

func (n *fakeNumberer) GenerateDocumentNumber(ctx context.Context, docType models.DocumentType) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.seq++
	return fmt.Sprintf("TST-%06d", n.seq), nil
}
