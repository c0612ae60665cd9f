package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/models"
	"budgetplan/internal/pagination"
)

// historyService is the append-only ledger of plan changes.
type historyService struct {
	db *gorm.DB
}

// NewHistoryService creates a new HistoryServicer.
func NewHistoryService(db *gorm.DB) HistoryServicer {
	return &historyService{db: db}
}

// Record appends one header snapshot and a snapshot of every detail in
// entry.After. A detail is marked changed when its amount differs from the
// same detail in entry.Before; details absent from Before count as changed.
// Record must run inside the caller's transaction.
func (s *historyService) Record(tx *gorm.DB, entry HistoryEntry) (*models.BudgetPlanHistory, error) {
	if entry.Plan == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "history entry requires a plan")
	}
	changedAt := entry.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now()
	}

	previous := make(map[string]decimal.Decimal, len(entry.Before))
	for i := range entry.Before {
		previous[entry.Before[i].ID] = entry.Before[i].ProposedBudget
	}

	history := &models.BudgetPlanHistory{
		PlanID:                entry.Plan.ID,
		Action:                entry.Action,
		StaffID:               entry.StaffID,
		ChangedAt:             changedAt,
		Year:                  entry.Plan.Year,
		PlanFigures:           entry.Plan.PlanFigures,
		NetAvailableResources: entry.Plan.NetAvailableResources(),
	}
	if err := tx.Omit(clause.Associations).Create(history).Error; err != nil {
		return nil, err
	}

	rows := make([]models.BudgetPlanDetailHistory, 0, len(entry.After))
	for i := range entry.After {
		d := entry.After[i]
		before, seen := previous[d.ID]
		if !seen {
			before = d.ProposedBudget
		}
		rows = append(rows, models.BudgetPlanDetailHistory{
			HistoryID:      history.ID,
			DetailID:       d.ID,
			BudgetItem:     d.BudgetItem,
			Category:       d.Category,
			PreviousBudget: before,
			ProposedBudget: d.ProposedBudget,
			IsChanged:      !seen || !before.Equal(d.ProposedBudget),
		})
	}
	if len(rows) > 0 {
		if err := tx.Create(&rows).Error; err != nil {
			return nil, err
		}
	}
	history.Details = rows

	return history, nil
}

// ListHistory returns a plan's history entries, newest first.
func (s *historyService) ListHistory(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetPlanHistory], error) {
	page.Defaults()
	db := s.db.WithContext(ctx)

	if err := ensurePlanExists(db, planID); err != nil {
		return nil, err
	}

	base := db.Model(&models.BudgetPlanHistory{}).Where("plan_id = ?", planID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.BudgetPlanHistory
	if err := base.Preload("Details", orderDetailHistory).
		Scopes(pagination.Paginate(page)).
		Order("changed_at DESC").Order("id DESC").
		Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(entries, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPlanAsOf returns the newest history entry recorded at or before at.
func (s *historyService) GetPlanAsOf(ctx context.Context, planID string, at time.Time) (*models.BudgetPlanHistory, error) {
	db := s.db.WithContext(ctx)
	if err := ensurePlanExists(db, planID); err != nil {
		return nil, err
	}

	var entry models.BudgetPlanHistory
	err := db.Preload("Details", orderDetailHistory).
		Where("plan_id = ? AND changed_at <= ?", planID, at).
		Order("changed_at DESC").Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHistoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

func orderDetailHistory(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func ensurePlanExists(db *gorm.DB, planID string) error {
	var count int64
	if err := db.Model(&models.BudgetPlan{}).Where("id = ?", planID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrPlanNotFound
	}
	return nil
}
