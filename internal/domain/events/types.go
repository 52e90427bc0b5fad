package events

// EventType defines the type of event in the system
type EventType string

const (
	// Document Events
	DocumentCreated      EventType = "document.created"
	DocumentTransitioned EventType = "document.transitioned"

	// SLA Events
	SlaStarted  EventType = "sla.started"
	SlaPaused   EventType = "sla.paused"
	SlaResumed  EventType = "sla.resumed"
	SlaBreached EventType = "sla.breached"

	// Approval Events
	ApprovalRequested EventType = "approval.requested"
	ApprovalDecided   EventType = "approval.decided"
	GroupResolved     EventType = "approval.group_resolved"

	// System Events
	SystemStartup EventType = "system.startup"
)

// String returns the string representation of the event type
func (e EventType) String() string {
	return string(e)
}
