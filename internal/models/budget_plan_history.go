package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
)

// HistoryAction names the operation that produced a history entry.
type HistoryAction string

const (
	HistoryActionTransfer     HistoryAction = "transfer"
	HistoryActionHeaderUpdate HistoryAction = "header_update"
)

// BudgetPlanHistory is an append-only snapshot of a plan header taken when
// the plan changed.
type BudgetPlanHistory struct {
	LedgerBase
	PlanID    string        `gorm:"type:uuid;not null;index" json:"plan_id"`
	Action    HistoryAction `gorm:"not null" json:"action"`
	StaffID   string        `gorm:"type:uuid" json:"staff_id,omitempty"`
	ChangedAt time.Time     `gorm:"not null;index" json:"changed_at"`
	Year      int           `gorm:"not null" json:"year"`
	PlanFigures
	NetAvailableResources decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"net_available_resources"`

	Details []BudgetPlanDetailHistory `gorm:"foreignKey:HistoryID" json:"details"`
}

// BudgetPlanDetailHistory is the state of one line item at the time of a
// history entry. IsChanged marks the items the triggering operation
// actually mutated.
type BudgetPlanDetailHistory struct {
	LedgerBase
	HistoryID      string          `gorm:"type:uuid;not null;index" json:"history_id"`
	DetailID       string          `gorm:"type:uuid;not null;index" json:"detail_id"`
	BudgetItem     string          `gorm:"not null" json:"budget_item"`
	Category       budget.Category `gorm:"not null" json:"category"`
	PreviousBudget decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"previous_budget"`
	ProposedBudget decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"proposed_budget"`
	IsChanged      bool            `gorm:"not null;default:false" json:"is_changed"`
}

// BeforeUpdate rejects any modification of a history row.
func (h *BudgetPlanHistory) BeforeUpdate(tx *gorm.DB) error { return apperrors.ErrHistoryImmutable }

// BeforeDelete rejects deletion of a history row.
func (h *BudgetPlanHistory) BeforeDelete(tx *gorm.DB) error { return apperrors.ErrHistoryImmutable }

// BeforeUpdate rejects any modification of a detail history row.
func (h *BudgetPlanDetailHistory) BeforeUpdate(tx *gorm.DB) error {
	return apperrors.ErrHistoryImmutable
}

// BeforeDelete rejects deletion of a detail history row.
func (h *BudgetPlanDetailHistory) BeforeDelete(tx *gorm.DB) error {
	return apperrors.ErrHistoryImmutable
}
