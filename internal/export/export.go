// Package export renders a budget plan report as a spreadsheet or a PDF.
// Amounts are shown rounded to two decimal places; stored values are not
// touched.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetplan/internal/budget"
	"budgetplan/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Filename returns the download name for a plan year.
func Filename(year int, f Format) string {
	return fmt.Sprintf("budget-plan-%d.%s", year, f)
}

// Report is everything an exported plan shows.
type Report struct {
	Plan       *models.BudgetPlan
	Validation budget.Validation
}

// CategoryRow is one line of the ceilings table.
type CategoryRow struct {
	Category  budget.Category
	Ceiling   decimal.Decimal
	Total     decimal.Decimal
	Remaining decimal.Decimal
	Over      bool
}

// CategoryRows lists the limited categories in display order.
func (r Report) CategoryRows() []CategoryRow {
	rows := make([]CategoryRow, 0, len(budget.LimitedCategories))
	for _, c := range budget.LimitedCategories {
		ceiling, _ := r.Validation.Ceilings.For(c)
		remaining, _ := r.Validation.Remaining(c)
		rows = append(rows, CategoryRow{
			Category:  c,
			Ceiling:   ceiling,
			Total:     r.Validation.CategoryTotals[c],
			Remaining: remaining,
			Over:      r.Validation.OverLimit[c],
		})
	}
	return rows
}

// incomeRows are the header figures in display order.
func (r Report) incomeRows() [][2]interface{} {
	p := r.Plan
	return [][2]interface{}{
		{"Beginning Balance", p.Balance},
		{"Share in Real Property Tax", p.RealtyTaxShare},
		{"Tax Allotment", p.TaxAllotment},
		{"Clearance and Certification Fees", p.ClearanceAndCertFees},
		{"Other Specific Income", p.OtherSpecificIncome},
		{"Net Available Resources", r.Validation.NetAvailableResources},
		{"Actual Income", p.ActualIncome},
		{"Actual RPT", p.ActualRPT},
	}
}

// money formats an amount with two decimal places.
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func overMark(b bool) string {
	if b {
		return "OVER"
	}
	return ""
}
