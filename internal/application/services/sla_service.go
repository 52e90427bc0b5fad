package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wareflow/backend/internal/domain/events"
	"github.com/wareflow/backend/internal/domain/models"
	"github.com/wareflow/backend/internal/domain/ports"
	apperrors "github.com/wareflow/backend/pkg/errors"
)

// SlaService tracks contractual response deadlines with stop-clock support.
// All arithmetic works on absolute timestamps: a resume pushes DueDate
// forward by exactly the paused wall-clock span, so repeated pause/resume
// cycles accumulate additively.
type SlaService struct {
	slas     ports.SlaRepository
	clock    ports.Clock
	eventBus *EventBus
}

// NewSlaService creates a new SlaService
func NewSlaService(slas ports.SlaRepository, clock ports.Clock, eventBus *EventBus) *SlaService {
	return &SlaService{
		slas:     slas,
		clock:    clock,
		eventBus: eventBus,
	}
}

// Start opens the deadline clock for a document:
// startDate = now, dueDate = now + responseHours.
func (s *SlaService) Start(ctx context.Context, documentID string, responseHours int) (*models.SlaRecord, error) {
	now := s.clock.Now()
	rec := &models.SlaRecord{
		DocumentID:       documentID,
		StartDate:        now,
		DueDate:          now.Add(time.Duration(responseHours) * time.Hour),
		ResponseHours:    responseHours,
		CreatedDate:      now,
		LastModifiedDate: now,
	}

	if err := s.slas.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to start SLA for document %s: %w", documentID, err)
	}

	s.eventBus.PublishAsync(events.SlaStarted, SlaEventPayload{Record: rec, DocumentID: documentID})
	log.Printf("⏰ SLA started for document %s: due %s (%dh)", documentID, rec.DueDate.Format(time.RFC3339), responseHours)
	return rec, nil
}

// Pause starts the stop-clock. Pausing an already-paused record is an
// AlreadyPausedError; callers must check state first.
func (s *SlaService) Pause(ctx context.Context, documentID string, reason *string) (*models.SlaRecord, error) {
	rec, err := s.slas.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if rec.IsPaused() {
		return nil, apperrors.NewAlreadyPausedError(documentID)
	}

	now := s.clock.Now()
	rec.StopClockStart = &now
	rec.StopClockEnd = nil
	rec.StopClockReason = reason
	rec.LastModifiedDate = now

	if err := s.slas.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to pause SLA for document %s: %w", documentID, err)
	}

	s.eventBus.PublishAsync(events.SlaPaused, SlaEventPayload{Record: rec, DocumentID: documentID})
	log.Printf("⏸️ SLA paused for document %s", documentID)
	return rec, nil
}

// Resume ends the stop-clock and extends the due date by the paused span.
// A zero-length pause extends by zero. Resume without a recorded pause only
// stamps StopClockEnd and leaves the due date alone (defensive no-op for
// double-resume or resume-without-pause).
func (s *SlaService) Resume(ctx context.Context, documentID string) (*models.SlaRecord, error) {
	rec, err := s.slas.GetByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if rec.IsPaused() {
		paused := now.Sub(*rec.StopClockStart)
		rec.DueDate = rec.DueDate.Add(paused)
	}
	rec.StopClockEnd = &now
	rec.LastModifiedDate = now

	if err := s.slas.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to resume SLA for document %s: %w", documentID, err)
	}

	s.eventBus.PublishAsync(events.SlaResumed, SlaEventPayload{Record: rec, DocumentID: documentID})
	log.Printf("▶️ SLA resumed for document %s: due %s", documentID, rec.DueDate.Format(time.RFC3339))
	return rec, nil
}

// Evaluate decides compliance at completion: met = now <= dueDate. Returns
// nil when no SLA was being tracked for the document. The outcome is
// immutable once set.
func (s *SlaService) Evaluate(ctx context.Context, documentID string) (*bool, error) {
	rec, err := s.slas.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil // No SLA was being tracked
	}
	if rec.IsEvaluated() {
		return rec.Met, nil
	}

	now := s.clock.Now()
	met := !now.After(rec.DueDate)
	rec.Met = &met
	rec.LastModifiedDate = now

	if err := s.slas.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to evaluate SLA for document %s: %w", documentID, err)
	}

	log.Printf("⏰ SLA evaluated for document %s: met=%v", documentID, met)
	return rec.Met, nil
}

// Get returns the SLA record tracked for a document, nil when none exists
func (s *SlaService) Get(ctx context.Context, documentID string) (*models.SlaRecord, error) {
	return s.slas.FindByDocument(ctx, documentID)
}

// IsOverdue is the derived read-time overdue check. Paused and evaluated
// records are never overdue.
func (s *SlaService) IsOverdue(rec *models.SlaRecord) bool {
	if rec == nil || rec.IsEvaluated() || rec.IsPaused() {
		return false
	}
	return s.clock.Now().After(rec.DueDate)
}
