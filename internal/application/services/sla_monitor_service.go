package services

import (
	"context"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/wareflow/backend/internal/domain/events"
	"github.com/wareflow/backend/internal/domain/ports"
	"github.com/wareflow/backend/pkg/constants"
)

// sweepBatchSize bounds one sweep's read so a backlog of breached records
// cannot stall the scheduler.
const sweepBatchSize = 200

// SlaMonitorService periodically sweeps for SLA records past their due
// date and raises breach events. It is an observer only: transitions never
// depend on the sweep, compliance is always computed from the record itself.
type SlaMonitorService struct {
	slas     ports.SlaRepository
	eventBus *EventBus
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
	// notified keeps ids already reported so a breach alerts once per run
	// of the process, not once per sweep.
	notified map[string]bool
}

// NewSlaMonitorService creates a new SlaMonitorService
func NewSlaMonitorService(slas ports.SlaRepository, eventBus *EventBus) *SlaMonitorService {
	return &SlaMonitorService{
		slas:     slas,
		eventBus: eventBus,
		cron:     cron.New(),
		notified: make(map[string]bool),
	}
}

// Start schedules the sweep and runs one immediately
func (s *SlaMonitorService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(constants.SlaSweepSchedule, s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.running = true

	log.Println("⏰ SLA monitor started")
	go s.Sweep()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *SlaMonitorService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	log.Println("⏰ SLA monitor stopped")
}

// Sweep scans unmet, unpaused records past due and publishes a breach
// event for each one not yet reported
func (s *SlaMonitorService) Sweep() {
	ctx := context.Background()

	overdue, err := s.slas.ListOverdue(ctx, sweepBatchSize)
	if err != nil {
		log.Printf("⚠️ SLA sweep failed: %v", err)
		return
	}

	fresh := 0
	for i := range overdue {
		rec := &overdue[i]

		s.mu.Lock()
		seen := s.notified[rec.DocumentID]
		if !seen {
			s.notified[rec.DocumentID] = true
		}
		s.mu.Unlock()
		if seen {
			continue
		}

		fresh++
		s.eventBus.PublishAsync(events.SlaBreached, SlaEventPayload{Record: rec, DocumentID: rec.DocumentID})
	}

	if fresh > 0 {
		log.Printf("⏰ SLA sweep: %d newly overdue of %d past due", fresh, len(overdue))
	}
}
