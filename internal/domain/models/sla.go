package models

import (
	"time"
)

// SlaRecord tracks one response-time deadline for a document. All deadline
// arithmetic uses absolute timestamps so repeated stop-clock cycles compose:
// every resume pushes DueDate forward by exactly the paused wall-clock span.
type SlaRecord struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	StartDate     time.Time `json:"start_date"`
	DueDate       time.Time `json:"due_date"`
	ResponseHours int       `json:"response_hours"`

	// Stop-clock span. StopClockStart set while paused; StopClockEnd set on
	// resume. Both survive after resume so the last pause stays auditable.
	StopClockStart  *time.Time `json:"stop_clock_start,omitempty"`
	StopClockEnd    *time.Time `json:"stop_clock_end,omitempty"`
	StopClockReason *string    `json:"stop_clock_reason,omitempty"`

	// Met is set exactly once, at completion. Nil means either the document
	// has not completed yet or no SLA was being tracked.
	Met *bool `json:"met,omitempty"`

	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}

// IsPaused reports whether the stop-clock is currently running
func (s *SlaRecord) IsPaused() bool {
	return s.StopClockStart != nil && s.StopClockEnd == nil
}

// IsEvaluated reports whether compliance was already decided
func (s *SlaRecord) IsEvaluated() bool {
	return s.Met != nil
}
