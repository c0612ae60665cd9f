package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/models"
	"budgetplan/internal/pagination"
)

// StaffServicer defines the contract for staff accounts.
type StaffServicer interface {
	CreateStaff(email, password, firstName, lastName, position string) (*models.Staff, error)
	GetStaffByEmail(email string) (*models.Staff, error)
	GetStaffByID(id string) (*models.Staff, error)
	AttemptLogin(email, password string) (*models.Staff, error)
}

// PlanSummary pairs a plan with a validation computed from the same snapshot.
type PlanSummary struct {
	Plan       *models.BudgetPlan `json:"plan"`
	Validation budget.Validation  `json:"validation"`
}

// HeaderUpdate carries the header fields to change. Nil fields are left as is.
type HeaderUpdate struct {
	Balance              *decimal.Decimal
	RealtyTaxShare       *decimal.Decimal
	TaxAllotment         *decimal.Decimal
	ClearanceAndCertFees *decimal.Decimal
	OtherSpecificIncome  *decimal.Decimal

	ActualIncome *decimal.Decimal
	ActualRPT    *decimal.Decimal

	PersonalServicesLimit *decimal.Decimal
	MiscExpenseLimit      *decimal.Decimal
	LocalDevLimit         *decimal.Decimal
	SKFundLimit           *decimal.Decimal
	CalamityFundLimit     *decimal.Decimal
}

// BudgetPlanServicer defines the contract for budget plan persistence and lifecycle.
type BudgetPlanServicer interface {
	CreatePlan(ctx context.Context, staffID string, draft budget.Draft) (*PlanSummary, error)
	GetPlan(ctx context.Context, planID string) (*models.BudgetPlan, error)
	GetPlanSummary(ctx context.Context, planID string) (*PlanSummary, error)
	GetPlanSummaryByYear(ctx context.Context, year int) (*PlanSummary, error)
	ListPlans(ctx context.Context, page pagination.PageRequest, archived *bool) (*pagination.PageResponse[models.BudgetPlan], error)
	UpdatePlanHeader(ctx context.Context, staffID, planID string, update HeaderUpdate) (*PlanSummary, error)
	ArchivePlan(ctx context.Context, planID string) (*models.BudgetPlan, error)
	RestorePlan(ctx context.Context, planID string) (*models.BudgetPlan, error)
	DeletePlan(ctx context.Context, planID string) error
}

// TransferRequest moves Amount from one line item to another. PlanID is
// optional; when set both items must belong to that plan.
type TransferRequest struct {
	PlanID       string
	SourceItemID string
	DestItemID   string
	Amount       decimal.Decimal
}

// TransferLeg describes one side of a completed transfer.
type TransferLeg struct {
	DetailID        string          `json:"detail_id"`
	BudgetItem      string          `json:"budget_item"`
	Category        budget.Category `json:"category"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
}

// TransferResult is the outcome of a committed transfer.
type TransferResult struct {
	PlanID               string                    `json:"plan_id"`
	Amount               decimal.Decimal           `json:"amount"`
	Source               TransferLeg               `json:"source"`
	Destination          TransferLeg               `json:"destination"`
	DestinationOverLimit bool                      `json:"destination_over_limit"`
	Advisories           []*apperrors.AppError     `json:"advisories,omitempty"`
	Validation           budget.Validation         `json:"validation"`
	History              *models.BudgetPlanHistory `json:"history"`
}

// TransferServicer defines the contract for moving funds between line items.
type TransferServicer interface {
	Transfer(ctx context.Context, staffID string, req TransferRequest) (*TransferResult, error)
}

// HistoryEntry is the input to the history ledger. Before and After are
// the plan's full detail set around the triggering operation.
type HistoryEntry struct {
	Plan      *models.BudgetPlan
	Before    []models.BudgetPlanDetail
	After     []models.BudgetPlanDetail
	Action    models.HistoryAction
	StaffID   string
	ChangedAt time.Time
}

// HistoryServicer defines the contract for the append-only plan history.
type HistoryServicer interface {
	Record(tx *gorm.DB, entry HistoryEntry) (*models.BudgetPlanHistory, error)
	ListHistory(ctx context.Context, planID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetPlanHistory], error)
	GetPlanAsOf(ctx context.Context, planID string, at time.Time) (*models.BudgetPlanHistory, error)
}

// PlanLocker serializes writers of a single plan. The returned unlock
// function must be called exactly once.
type PlanLocker interface {
	Lock(ctx context.Context, planID string) (unlock func(), err error)
}

// AuditServicer records staff actions. Log never fails the caller.
type AuditServicer interface {
	Log(entry AuditEntry)
}
