package models

// AuditAction names a staff operation recorded in the audit log.
type AuditAction string

const (
	AuditRegister    AuditAction = "REGISTER"
	AuditCreatePlan  AuditAction = "CREATE_PLAN"
	AuditUpdatePlan  AuditAction = "UPDATE_PLAN"
	AuditArchivePlan AuditAction = "ARCHIVE_PLAN"
	AuditRestorePlan AuditAction = "RESTORE_PLAN"
	AuditDeletePlan  AuditAction = "DELETE_PLAN"
	AuditTransfer    AuditAction = "TRANSFER"
)

// AuditLog is one append-only record of who did what to which plan.
// PlanID is nil for actions outside any plan, such as registration.
type AuditLog struct {
	LedgerBase
	StaffID   string      `gorm:"type:uuid;index" json:"staff_id"`
	Action    AuditAction `gorm:"not null" json:"action"`
	PlanID    *string     `gorm:"type:uuid;index" json:"plan_id,omitempty"`
	IPAddress string      `json:"ip_address"`
	Details   string      `json:"details,omitempty"`
}
