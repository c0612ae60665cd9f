package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// WritePlanXLSX writes the report as a single-sheet workbook.
func WritePlanXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Plan %d", r.Plan.Year)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f, sheet: sheet, bold: bold, amount: amount, row: 1}

	sw.title(fmt.Sprintf("Annual Budget Plan %d", r.Plan.Year))
	sw.row++
	for _, income := range r.incomeRows() {
		sw.money(income[0].(string), income[1].(decimal.Decimal))
	}

	sw.row++
	sw.header("Category", "Ceiling", "Total", "Remaining", "Status")
	for _, c := range r.CategoryRows() {
		sw.cells(string(c.Category), c.Ceiling, c.Total, c.Remaining, overMark(c.Over))
	}

	sw.row++
	sw.header("Budget Item", "Category", "Proposed Budget")
	for _, d := range r.Plan.Details {
		sw.cells(d.BudgetItem, string(d.Category), d.ProposedBudget)
	}

	sw.row++
	sw.money("Total Budgetary Obligations", r.Validation.GrandTotal)
	sw.money("Balance Unappropriated", r.Validation.NetAvailableResources.Sub(r.Validation.GrandTotal))

	if err := f.SetColWidth(sheet, "A", "A", 36); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "E", 18); err != nil {
		return err
	}
	if sw.err != nil {
		return fmt.Errorf("failed to fill sheet: %w", sw.err)
	}

	return f.Write(w)
}

// sheetWriter appends rows to one sheet and keeps the first error.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	bold   int
	amount int
	row    int
	err    error
}

func (s *sheetWriter) set(col int, value interface{}, style int) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, s.row)
	if err != nil {
		s.err = err
		return
	}
	if d, ok := value.(decimal.Decimal); ok {
		value = d.Round(2).InexactFloat64()
	}
	if err := s.f.SetCellValue(s.sheet, cell, value); err != nil {
		s.err = err
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(s.sheet, cell, cell, style)
	}
}

func (s *sheetWriter) title(text string) {
	s.set(1, text, s.bold)
	s.row++
}

func (s *sheetWriter) header(titles ...string) {
	for i, t := range titles {
		s.set(i+1, t, s.bold)
	}
	s.row++
}

func (s *sheetWriter) money(label string, d decimal.Decimal) {
	s.set(1, label, 0)
	s.set(2, d, s.amount)
	s.row++
}

func (s *sheetWriter) cells(values ...interface{}) {
	for i, v := range values {
		style := 0
		if _, ok := v.(decimal.Decimal); ok {
			style = s.amount
		}
		s.set(i+1, v, style)
	}
	s.row++
}
