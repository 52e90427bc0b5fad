// Package services contains the application layer of the workflow engine:
// the SLA tracker, the approval coordinator (sequential and parallel), and
// one orchestrator per document type composing the transition guard,
// SLA tracker and approval coordinator around that type's business rules.
//
// Every transition operation runs inside a single database transaction so
// the status write and its SLA/approval side effects commit atomically.
// Best-effort side effects (notifications, linked-record updates) run after
// commit and never fail the primary transition.
package services
