package services

import (
	"encoding/json"

	"budgetplan/internal/logger"
	"budgetplan/internal/models"

	"gorm.io/gorm"
)

// AuditEntry describes one staff action. PlanID may be empty.
type AuditEntry struct {
	StaffID   string
	Action    models.AuditAction
	PlanID    string
	IPAddress string
	Details   map[string]interface{}
}

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log appends the entry to the audit log. The action it describes has
// already committed, so failures are logged and swallowed.
func (s *auditService) Log(entry AuditEntry) {
	row := &models.AuditLog{
		StaffID:   entry.StaffID,
		Action:    entry.Action,
		IPAddress: entry.IPAddress,
	}
	if entry.PlanID != "" {
		planID := entry.PlanID
		row.PlanID = &planID
	}
	if len(entry.Details) > 0 {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			logger.Get().Warnw("audit details not serializable", "error", err, "action", entry.Action)
			data = []byte("{}")
		}
		row.Details = string(data)
	}

	if err := s.db.Create(row).Error; err != nil {
		log := logger.Get()
		if entry.PlanID != "" {
			log = logger.ForPlan(entry.PlanID)
		}
		log.Errorw("failed to write audit log",
			"error", err,
			"staff_id", entry.StaffID,
			"action", entry.Action,
		)
	}
}
