package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/logger"
	"budgetplan/internal/models"
	"budgetplan/internal/pagination"
)

var maxPercentage = decimal.NewFromInt(100)

// budgetPlanService handles budget plan persistence and lifecycle.
type budgetPlanService struct {
	db             *gorm.DB
	locker         PlanLocker
	history        HistoryServicer
	blockOverLimit bool
}

// NewBudgetPlanService creates a new BudgetPlanServicer.
func NewBudgetPlanService(db *gorm.DB, locker PlanLocker, history HistoryServicer, blockOverLimit bool) BudgetPlanServicer {
	return &budgetPlanService{
		db:             db,
		locker:         locker,
		history:        history,
		blockOverLimit: blockOverLimit,
	}
}

// CreatePlan persists a submitted draft: the header and every line item in
// one transaction. Plans are unique per year.
func (s *budgetPlanService) CreatePlan(ctx context.Context, staffID string, draft budget.Draft) (*PlanSummary, error) {
	if err := draft.Check(); err != nil {
		return nil, DraftError(err)
	}

	validation := draft.Evaluate()
	if validation.AnyOverLimit && s.blockOverLimit {
		return nil, apperrors.ErrOverLimit
	}

	plan := &models.BudgetPlan{
		Year:        draft.Header.Year,
		PlanFigures: models.FiguresFromHeader(draft.Header),
		Version:     1,
		StaffID:     staffID,
		DateIssued:  time.Now(),
	}
	details := make([]models.BudgetPlanDetail, len(draft.Lines))
	for i, l := range draft.Lines {
		details[i] = models.BudgetPlanDetail{
			BudgetItem:     normalizeItemName(l.Name),
			ProposedBudget: l.Amount,
			Category:       l.Category,
		}
	}
	plan.Recompute(details)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BudgetPlan{}).Where("year = ?", plan.Year).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrDuplicatePlanYear
		}

		if err := tx.Omit(clause.Associations).Create(plan).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicatePlanYear
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		for i := range details {
			details[i].PlanID = plan.ID
		}
		if err := tx.Create(&details).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateBudgetItem
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	plan.Details = details
	logger.ForPlan(plan.ID).Infow("budget plan created",
		"year", plan.Year,
		"items", len(details),
		"any_over_limit", validation.AnyOverLimit,
	)

	return &PlanSummary{Plan: plan, Validation: validation}, nil
}

// GetPlan returns a plan with its line items.
func (s *budgetPlanService) GetPlan(ctx context.Context, planID string) (*models.BudgetPlan, error) {
	return loadPlan(s.db.WithContext(ctx), "id = ?", planID)
}

// GetPlanSummary reads a plan and validates it from one consistent snapshot.
func (s *budgetPlanService) GetPlanSummary(ctx context.Context, planID string) (*PlanSummary, error) {
	return s.summary(ctx, "id = ?", planID)
}

// GetPlanSummaryByYear is GetPlanSummary keyed by fiscal year.
func (s *budgetPlanService) GetPlanSummaryByYear(ctx context.Context, year int) (*PlanSummary, error) {
	return s.summary(ctx, "year = ?", year)
}

func (s *budgetPlanService) summary(ctx context.Context, query string, arg interface{}) (*PlanSummary, error) {
	var plan *models.BudgetPlan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		plan, txErr = loadPlan(tx, query, arg)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return &PlanSummary{
		Plan:       plan,
		Validation: budget.Evaluate(plan.Header(), models.Lines(plan.Details)),
	}, nil
}

// ListPlans returns plans newest year first. A nil archived returns both
// active and archived plans.
func (s *budgetPlanService) ListPlans(ctx context.Context, page pagination.PageRequest, archived *bool) (*pagination.PageResponse[models.BudgetPlan], error) {
	page.Defaults()

	query := s.db.WithContext(ctx).Model(&models.BudgetPlan{})
	if archived != nil {
		query = query.Where("is_archive = ?", *archived)
	}

	var totalItems int64
	if err := query.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var plans []models.BudgetPlan
	if err := query.Scopes(pagination.Paginate(page)).Order("year DESC").Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(plans, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdatePlanHeader changes income figures or percentages, recomputes the
// derived columns and records a header_update history entry. Line items
// are untouched.
func (s *budgetPlanService) UpdatePlanHeader(ctx context.Context, staffID, planID string, update HeaderUpdate) (*PlanSummary, error) {
	var summary *PlanSummary
	err := withPlanLock(ctx, s.locker, planID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			plan, err := loadPlan(tx, "id = ?", planID)
			if err != nil {
				return err
			}
			if plan.IsArchive {
				return apperrors.ErrPlanArchived
			}

			update.apply(&plan.PlanFigures)
			for _, p := range plan.Header().Percentages() {
				if p.IsNegative() || p.GreaterThan(maxPercentage) {
					return apperrors.WithMessage(apperrors.ErrInvalidInput, "percentages must be between 0 and 100")
				}
			}

			validation := budget.Evaluate(plan.Header(), models.Lines(plan.Details))
			if validation.AnyOverLimit && s.blockOverLimit {
				return apperrors.ErrOverLimit
			}

			now := time.Now()
			plan.Recompute(plan.Details)
			columns := figureColumns(plan.PlanFigures)
			columns["version"] = plan.Version + 1
			columns["updated_at"] = now
			res := tx.Model(&models.BudgetPlan{}).
				Where("id = ? AND version = ?", plan.ID, plan.Version).
				Updates(columns)
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrPlanVersionConflict
			}
			plan.Version++
			plan.UpdatedAt = now

			if _, err := s.history.Record(tx, HistoryEntry{
				Plan:      plan,
				Before:    plan.Details,
				After:     plan.Details,
				Action:    models.HistoryActionHeaderUpdate,
				StaffID:   staffID,
				ChangedAt: now,
			}); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			summary = &PlanSummary{Plan: plan, Validation: validation}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// ArchivePlan marks a plan read-only.
func (s *budgetPlanService) ArchivePlan(ctx context.Context, planID string) (*models.BudgetPlan, error) {
	return s.setArchived(ctx, planID, true)
}

// RestorePlan returns an archived plan to the active set.
func (s *budgetPlanService) RestorePlan(ctx context.Context, planID string) (*models.BudgetPlan, error) {
	return s.setArchived(ctx, planID, false)
}

func (s *budgetPlanService) setArchived(ctx context.Context, planID string, archived bool) (*models.BudgetPlan, error) {
	var plan *models.BudgetPlan
	err := withPlanLock(ctx, s.locker, planID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			plan, err = loadPlan(tx, "id = ?", planID)
			if err != nil {
				return err
			}
			if plan.IsArchive == archived {
				return nil
			}
			res := tx.Model(&models.BudgetPlan{}).
				Where("id = ? AND version = ?", plan.ID, plan.Version).
				Updates(map[string]interface{}{
					"is_archive": archived,
					"version":    plan.Version + 1,
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
			}
			if res.RowsAffected == 0 {
				return apperrors.ErrPlanVersionConflict
			}
			plan.IsArchive = archived
			plan.Version++
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan hard-deletes an archived plan that has never been changed.
// Plans with history are kept so the ledger never points at nothing.
func (s *budgetPlanService) DeletePlan(ctx context.Context, planID string) error {
	return withPlanLock(ctx, s.locker, planID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var plan models.BudgetPlan
			if err := tx.First(&plan, "id = ?", planID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrPlanNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if !plan.IsArchive {
				return apperrors.ErrPlanNotArchived
			}

			var entries int64
			if err := tx.Model(&models.BudgetPlanHistory{}).Where("plan_id = ?", planID).Count(&entries).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if entries > 0 {
				return apperrors.ErrPlanHasHistory
			}

			if err := tx.Where("plan_id = ?", planID).Delete(&models.BudgetPlanDetail{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if err := tx.Delete(&plan).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			logger.ForPlan(planID).Infow("budget plan deleted", "year", plan.Year)
			return nil
		})
	})
}

// apply copies the non-nil fields onto f.
func (u HeaderUpdate) apply(f *models.PlanFigures) {
	set := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	set(&f.Balance, u.Balance)
	set(&f.RealtyTaxShare, u.RealtyTaxShare)
	set(&f.TaxAllotment, u.TaxAllotment)
	set(&f.ClearanceAndCertFees, u.ClearanceAndCertFees)
	set(&f.OtherSpecificIncome, u.OtherSpecificIncome)
	set(&f.ActualIncome, u.ActualIncome)
	set(&f.ActualRPT, u.ActualRPT)
	set(&f.PersonalServicesLimit, u.PersonalServicesLimit)
	set(&f.MiscExpenseLimit, u.MiscExpenseLimit)
	set(&f.LocalDevLimit, u.LocalDevLimit)
	set(&f.SKFundLimit, u.SKFundLimit)
	set(&f.CalamityFundLimit, u.CalamityFundLimit)
}

func figureColumns(f models.PlanFigures) map[string]interface{} {
	return map[string]interface{}{
		"balance":                 f.Balance,
		"realty_tax_share":        f.RealtyTaxShare,
		"tax_allotment":           f.TaxAllotment,
		"clearance_and_cert_fees": f.ClearanceAndCertFees,
		"other_specific_income":   f.OtherSpecificIncome,
		"actual_income":           f.ActualIncome,
		"actual_rpt":              f.ActualRPT,
		"personal_services_limit": f.PersonalServicesLimit,
		"misc_expense_limit":      f.MiscExpenseLimit,
		"local_dev_limit":         f.LocalDevLimit,
		"sk_fund_limit":           f.SKFundLimit,
		"calamity_fund_limit":     f.CalamityFundLimit,
		"budgetary_obligations":   f.BudgetaryObligations,
		"bal_unappropriated":      f.BalUnappropriated,
	}
}

// loadPlan fetches one plan and its details in entry order.
func loadPlan(db *gorm.DB, query string, arg interface{}) (*models.BudgetPlan, error) {
	var plan models.BudgetPlan
	err := db.Preload("Details", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC").Order("id ASC")
	}).Where(query, arg).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// DraftError maps a draft validation failure onto an API error.
func DraftError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, budget.ErrDuplicateItem):
		return apperrors.WithMessage(apperrors.ErrDuplicateBudgetItem, err.Error())
	case errors.Is(err, budget.ErrInvalidCategory):
		return apperrors.WithMessage(apperrors.ErrInvalidCategory, err.Error())
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
}

func normalizeItemName(name string) string {
	return strings.TrimSpace(name)
}
