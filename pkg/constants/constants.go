package constants

// Table names
const (
	TableDocument         = "documents"
	TableRequisitionLine  = "requisition_lines"
	TableSlaRecord        = "sla_records"
	TableApprovalRecord   = "approval_records"
	TableWorkflowRule     = "approval_workflow_rules"
	TableApprovalGroup    = "parallel_approval_groups"
	TableApprovalResponse = "approval_group_responses"
	TableWarehouseStock   = "warehouse_stock"
	TableDocSequence      = "doc_sequences"
	TableNotification     = "notifications"
	TableUser             = "users"
)

// Common fields
const (
	FieldID           = "id"
	FieldCreatedDate  = "created_date"
	FieldModifiedDate = "last_modified_date"
)

// API headers and context keys
const (
	HeaderAuthorization = "Authorization"
	ContextKeyUser      = "user"
	ResponseError       = "error"
	FieldMessage        = "message"
)

// Document number prefixes per document type
const (
	PrefixJobOrder    = "JO"
	PrefixRequisition = "MR"
	PrefixScrapItem   = "SCR"
	PrefixShipment    = "SHP"
)

// SLA monitor defaults
const (
	// SlaSweepSchedule is the cron spec for the overdue-SLA sweep.
	SlaSweepSchedule = "*/5 * * * *"
)
