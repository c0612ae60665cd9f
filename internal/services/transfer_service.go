package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/logger"
	"budgetplan/internal/models"
)

// transferService moves allocated funds between line items of one plan.
type transferService struct {
	db             *gorm.DB
	locker         PlanLocker
	history        HistoryServicer
	blockOverLimit bool
}

// NewTransferService creates a new TransferServicer. When blockOverLimit is
// set, a transfer that pushes the destination category over its ceiling is
// rolled back with ErrOverLimit instead of committing with an advisory.
func NewTransferService(db *gorm.DB, locker PlanLocker, history HistoryServicer, blockOverLimit bool) TransferServicer {
	return &transferService{
		db:             db,
		locker:         locker,
		history:        history,
		blockOverLimit: blockOverLimit,
	}
}

// Transfer debits the source item and credits the destination item. Both
// balance updates, the plan version bump and the history entry commit
// together or not at all.
func (s *transferService) Transfer(ctx context.Context, staffID string, req TransferRequest) (*TransferResult, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if req.SourceItemID == "" || req.DestItemID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "source and destination items are required")
	}
	if req.SourceItemID == req.DestItemID {
		return nil, apperrors.ErrSameItemTransfer
	}

	planID, err := s.resolvePlan(ctx, req)
	if err != nil {
		return nil, err
	}

	log := logger.ForPlan(planID).With(
		"source_item_id", req.SourceItemID,
		"dest_item_id", req.DestItemID,
		"amount", req.Amount.String(),
	)

	var result *TransferResult
	err = withPlanLock(ctx, s.locker, planID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var txErr error
			result, txErr = s.transferWithDB(tx, staffID, planID, req)
			return txErr
		})
	})
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			log.Infow("transfer rejected", "code", appErr.Code, "error", appErr.Internal)
			return nil, appErr
		}
		log.Errorw("transfer rolled back", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrTransferFailed, err)
	}

	if result.DestinationOverLimit {
		log.Warnw("transfer pushed destination category over its ceiling", "category", result.Destination.Category)
	}
	log.Infow("transfer committed", "history_id", result.History.ID)

	return result, nil
}

// resolvePlan looks up both items and returns the plan they share.
func (s *transferService) resolvePlan(ctx context.Context, req TransferRequest) (string, error) {
	var items []models.BudgetPlanDetail
	if err := s.db.WithContext(ctx).
		Select("id", "plan_id").
		Where("id IN ?", []string{req.SourceItemID, req.DestItemID}).
		Find(&items).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrTransferFailed, err)
	}

	planOf := make(map[string]string, len(items))
	for _, item := range items {
		planOf[item.ID] = item.PlanID
	}
	sourcePlan, ok := planOf[req.SourceItemID]
	if !ok {
		return "", apperrors.WithMessage(apperrors.ErrUnknownItem, "source budget item not found")
	}
	destPlan, ok := planOf[req.DestItemID]
	if !ok {
		return "", apperrors.WithMessage(apperrors.ErrUnknownItem, "destination budget item not found")
	}

	if sourcePlan != destPlan {
		return "", apperrors.ErrCrossPlanTransfer
	}
	if req.PlanID != "" && req.PlanID != sourcePlan {
		return "", apperrors.ErrCrossPlanTransfer
	}
	return sourcePlan, nil
}

// transferWithDB performs the transfer with a given database connection.
// The caller holds the plan lock and owns the transaction.
func (s *transferService) transferWithDB(tx *gorm.DB, staffID, planID string, req TransferRequest) (*TransferResult, error) {
	var plan models.BudgetPlan
	if err := tx.First(&plan, "id = ?", planID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, err
	}
	if plan.IsArchive {
		return nil, apperrors.ErrPlanArchived
	}

	var before []models.BudgetPlanDetail
	if err := tx.Where("plan_id = ?", planID).Order("created_at ASC").Order("id ASC").Find(&before).Error; err != nil {
		return nil, err
	}

	after := make([]models.BudgetPlanDetail, len(before))
	copy(after, before)

	src, dst := -1, -1
	for i := range after {
		switch after[i].ID {
		case req.SourceItemID:
			src = i
		case req.DestItemID:
			dst = i
		}
	}
	if src < 0 || dst < 0 {
		// Deleted between resolvePlan and taking the lock.
		return nil, apperrors.ErrUnknownItem
	}

	if after[src].ProposedBudget.LessThan(req.Amount) {
		return nil, apperrors.ErrInsufficientBalance
	}

	after[src].ProposedBudget = after[src].ProposedBudget.Sub(req.Amount)
	after[dst].ProposedBudget = after[dst].ProposedBudget.Add(req.Amount)

	validation := budget.Evaluate(plan.Header(), models.Lines(after))
	// A move inside one category leaves its total unchanged, so only a
	// credit from another category can push the destination over.
	destOver := after[src].Category != after[dst].Category &&
		validation.OverLimit[after[dst].Category]

	var advisories []*apperrors.AppError
	if destOver {
		if s.blockOverLimit {
			return nil, apperrors.WithMessage(apperrors.ErrOverLimit,
				"transfer would push "+string(after[dst].Category)+" over its ceiling")
		}
		advisories = append(advisories, apperrors.WithMessage(apperrors.ErrOverLimit,
			string(after[dst].Category)+" is over its ceiling"))
	}

	now := time.Now()
	plan.Recompute(after)
	res := tx.Model(&models.BudgetPlan{}).
		Where("id = ? AND version = ?", plan.ID, plan.Version).
		Updates(map[string]interface{}{
			"version":               plan.Version + 1,
			"budgetary_obligations": plan.BudgetaryObligations,
			"bal_unappropriated":    plan.BalUnappropriated,
			"updated_at":            now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.Wrap(apperrors.ErrTransferFailed, apperrors.ErrPlanVersionConflict)
	}
	plan.Version++
	plan.UpdatedAt = now

	for _, i := range []int{src, dst} {
		if err := tx.Model(&models.BudgetPlanDetail{}).
			Where("id = ?", after[i].ID).
			Updates(map[string]interface{}{
				"proposed_budget": after[i].ProposedBudget,
				"updated_at":      now,
			}).Error; err != nil {
			return nil, err
		}
		after[i].UpdatedAt = now
	}

	history, err := s.history.Record(tx, HistoryEntry{
		Plan:      &plan,
		Before:    before,
		After:     after,
		Action:    models.HistoryActionTransfer,
		StaffID:   staffID,
		ChangedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &TransferResult{
		PlanID:               plan.ID,
		Amount:               req.Amount,
		Source:               transferLeg(before[src], after[src].ProposedBudget),
		Destination:          transferLeg(before[dst], after[dst].ProposedBudget),
		DestinationOverLimit: destOver,
		Advisories:           advisories,
		Validation:           validation,
		History:              history,
	}, nil
}

func transferLeg(d models.BudgetPlanDetail, newBalance decimal.Decimal) TransferLeg {
	return TransferLeg{
		DetailID:        d.ID,
		BudgetItem:      d.BudgetItem,
		Category:        d.Category,
		PreviousBalance: d.ProposedBudget,
		NewBalance:      newBalance,
	}
}
