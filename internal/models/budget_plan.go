package models

import (
	"time"

	"github.com/shopspring/decimal"

	"budgetplan/internal/budget"
)

// PlanFigures holds the declared income figures and tier percentages of a
// budget plan. It is embedded in both the live plan and its history rows.
type PlanFigures struct {
	Balance              decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"balance"`
	RealtyTaxShare       decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"realty_tax_share"`
	TaxAllotment         decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"tax_allotment"`
	ClearanceAndCertFees decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"clearance_and_cert_fees"`
	OtherSpecificIncome  decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"other_specific_income"`

	ActualIncome decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"actual_income"`
	ActualRPT    decimal.Decimal `gorm:"column:actual_rpt;type:numeric(20,4);not null" json:"actual_rpt"`

	PersonalServicesLimit decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"personal_services_limit"`
	MiscExpenseLimit      decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"misc_expense_limit"`
	LocalDevLimit         decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"local_dev_limit"`
	SKFundLimit           decimal.Decimal `gorm:"column:sk_fund_limit;type:numeric(7,4);not null" json:"sk_fund_limit"`
	CalamityFundLimit     decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"calamity_fund_limit"`

	BudgetaryObligations decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"budgetary_obligations"`
	BalUnappropriated    decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"bal_unappropriated"`
}

// BudgetPlan is one fiscal year's budget header.
type BudgetPlan struct {
	Base
	Year int `gorm:"uniqueIndex;not null" json:"year"`
	PlanFigures
	IsArchive  bool      `gorm:"not null;default:false;index" json:"is_archive"`
	Version    int64     `gorm:"not null;default:1" json:"version"`
	StaffID    string    `gorm:"type:uuid;index" json:"staff_id"`
	DateIssued time.Time `gorm:"not null" json:"date_issued"`

	// Relationships
	Details []BudgetPlanDetail `gorm:"foreignKey:PlanID" json:"details,omitempty"`
}

// BudgetPlanDetail is a single line item of a budget plan.
type BudgetPlanDetail struct {
	Base
	PlanID         string          `gorm:"type:uuid;not null;uniqueIndex:idx_plan_budget_item" json:"plan_id"`
	BudgetItem     string          `gorm:"not null;uniqueIndex:idx_plan_budget_item" json:"budget_item"`
	ProposedBudget decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"proposed_budget"`
	Category       budget.Category `gorm:"not null;index" json:"category"`
}

// Header converts the stored figures into the calculator's input.
func (f PlanFigures) Header(year int) budget.Header {
	return budget.Header{
		Year:                  year,
		Balance:               f.Balance,
		RealtyTaxShare:        f.RealtyTaxShare,
		TaxAllotment:          f.TaxAllotment,
		ClearanceAndCertFees:  f.ClearanceAndCertFees,
		OtherSpecificIncome:   f.OtherSpecificIncome,
		ActualIncome:          f.ActualIncome,
		ActualRPT:             f.ActualRPT,
		PersonalServicesLimit: f.PersonalServicesLimit,
		MiscExpenseLimit:      f.MiscExpenseLimit,
		LocalDevLimit:         f.LocalDevLimit,
		SKFundLimit:           f.SKFundLimit,
		CalamityFundLimit:     f.CalamityFundLimit,
	}
}

// FiguresFromHeader copies a calculator header into storable figures.
// Derived columns are left for Recompute.
func FiguresFromHeader(h budget.Header) PlanFigures {
	return PlanFigures{
		Balance:               h.Balance,
		RealtyTaxShare:        h.RealtyTaxShare,
		TaxAllotment:          h.TaxAllotment,
		ClearanceAndCertFees:  h.ClearanceAndCertFees,
		OtherSpecificIncome:   h.OtherSpecificIncome,
		ActualIncome:          h.ActualIncome,
		ActualRPT:             h.ActualRPT,
		PersonalServicesLimit: h.PersonalServicesLimit,
		MiscExpenseLimit:      h.MiscExpenseLimit,
		LocalDevLimit:         h.LocalDevLimit,
		SKFundLimit:           h.SKFundLimit,
		CalamityFundLimit:     h.CalamityFundLimit,
	}
}

// Header returns the plan's calculator input.
func (p *BudgetPlan) Header() budget.Header {
	return p.PlanFigures.Header(p.Year)
}

// NetAvailableResources is always derived from the five income figures.
func (p *BudgetPlan) NetAvailableResources() decimal.Decimal {
	return budget.NetAvailableResources(p.Header())
}

// Recompute refreshes the derived obligation columns from the given details.
func (p *BudgetPlan) Recompute(details []BudgetPlanDetail) {
	total := decimal.Zero
	for i := range details {
		total = total.Add(details[i].ProposedBudget)
	}
	p.BudgetaryObligations = total
	p.BalUnappropriated = p.NetAvailableResources().Sub(total)
}

// Line converts the detail into a validator line.
func (d *BudgetPlanDetail) Line() budget.Line {
	return budget.Line{
		ID:       d.ID,
		Name:     d.BudgetItem,
		Amount:   d.ProposedBudget,
		Category: d.Category,
	}
}

// Lines converts a slice of details into validator lines.
func Lines(details []BudgetPlanDetail) []budget.Line {
	lines := make([]budget.Line, len(details))
	for i := range details {
		lines[i] = details[i].Line()
	}
	return lines
}
