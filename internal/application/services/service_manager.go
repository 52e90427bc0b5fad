package services

import (
	"github.com/wareflow/backend/internal/domain"
	"github.com/wareflow/backend/internal/domain/ports"
	"github.com/wareflow/backend/internal/infrastructure/database"
	"github.com/wareflow/backend/internal/infrastructure/persistence"
	"github.com/wareflow/backend/pkg/expression"
)

// ServiceManager wires every service with its dependencies
type ServiceManager struct {
	db *database.Connection

	// Core collaborators
	TxManager *persistence.TransactionManager
	EventBus  *EventBus
	Guard     *domain.TransitionGuard

	// Workflow services
	Sla              *SlaService
	Approval         *ApprovalService
	ParallelApproval *ParallelApprovalService
	SlaMonitor       *SlaMonitorService

	// Document orchestrators
	JobOrders    *JobOrderService
	Requisitions *RequisitionService
	ScrapItems   *ScrapItemService
	Shipments    *ShipmentService

	// Supporting services
	Auth         *AuthService
	Notification *NotificationService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection) *ServiceManager {
	sm := &ServiceManager{db: db}

	sm.TxManager = persistence.NewTransactionManager(db)
	sm.EventBus = NewEventBus()
	sm.Guard = domain.NewTransitionGuard()

	clock := ports.SystemClock{}

	docs := persistence.NewDocumentRepository(db.DB())
	slas := persistence.NewSlaRepository(db.DB())
	approvals := persistence.NewApprovalRepository(db.DB())
	groups := persistence.NewGroupRepository(db.DB())
	stock := persistence.NewStockRepository(db.DB())
	sequences := persistence.NewSequenceRepository(db.DB(), clock)
	users := persistence.NewUserRepository(db.DB())
	notifications := persistence.NewNotificationRepository(db.DB())

	sm.Sla = NewSlaService(slas, clock, sm.EventBus)
	sm.Approval = NewApprovalService(approvals, expression.NewEngine(), clock, sm.EventBus)
	sm.ParallelApproval = NewParallelApprovalService(groups, sm.TxManager, clock, sm.EventBus)
	sm.SlaMonitor = NewSlaMonitorService(slas, sm.EventBus)

	sm.JobOrders = NewJobOrderService(docs, sm.Guard, sm.TxManager, clock, sm.EventBus, sequences, sm.Sla, sm.Approval)
	sm.Requisitions = NewRequisitionService(docs, sm.Guard, sm.TxManager, clock, sm.EventBus, sequences, stock, sm.Sla, sm.Approval)
	sm.ScrapItems = NewScrapItemService(docs, sm.Guard, sm.TxManager, clock, sm.EventBus, sequences, sm.ParallelApproval)
	sm.Shipments = NewShipmentService(docs, sm.Guard, sm.TxManager, clock, sm.EventBus, sequences, sm.Sla)

	sm.Auth = NewAuthService(users, clock)
	sm.Notification = NewNotificationService(notifications, clock)
	sm.Notification.RegisterHandlers(sm.EventBus)

	return sm
}

// Start brings up background workers
func (sm *ServiceManager) Start() error {
	return sm.SlaMonitor.Start()
}

// Stop shuts background workers down
func (sm *ServiceManager) Stop() {
	sm.SlaMonitor.Stop()
}
