package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

var (
	headerColor     = [3]int{31, 78, 121}
	headerTextColor = [3]int{255, 255, 255}
	overTextColor   = [3]int{192, 0, 0}
	bodyTextColor   = [3]int{33, 33, 33}
)

// WritePlanPDF writes the report as an A4 document.
func WritePlanPDF(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Annual Budget Plan %d", r.Plan.Year), true)
	pdf.AddPage()

	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Annual Budget Plan %d", r.Plan.Year)), "", 1, "L", true, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	section(pdf, "Resources")
	pdf.SetFont("Arial", "", 10)
	for _, income := range r.incomeRows() {
		pdf.CellFormat(110, 6, tr(income[0].(string)), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 6, money(income[1].(decimal.Decimal)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "Ceilings")
	tableHeader(pdf, []string{"Category", "Ceiling", "Total", "Remaining"}, []float64{70, 40, 40, 40})
	pdf.SetFont("Arial", "", 10)
	for _, c := range r.CategoryRows() {
		if c.Over {
			pdf.SetTextColor(overTextColor[0], overTextColor[1], overTextColor[2])
		}
		pdf.CellFormat(70, 6, tr(string(c.Category)), "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, money(c.Ceiling), "B", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(c.Total), "B", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(c.Remaining), "B", 1, "R", false, 0, "")
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}
	pdf.Ln(4)

	section(pdf, "Line Items")
	tableHeader(pdf, []string{"Budget Item", "Category", "Proposed Budget"}, []float64{90, 55, 45})
	pdf.SetFont("Arial", "", 10)
	for _, d := range r.Plan.Details {
		pdf.CellFormat(90, 6, tr(d.BudgetItem), "B", 0, "L", false, 0, "")
		pdf.CellFormat(55, 6, tr(string(d.Category)), "B", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, money(d.ProposedBudget), "B", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(145, 7, "Total Budgetary Obligations", "", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, money(r.Validation.GrandTotal), "", 1, "R", false, 0, "")
	pdf.CellFormat(145, 7, "Balance Unappropriated", "", 0, "L", false, 0, "")
	pdf.CellFormat(45, 7, money(r.Validation.NetAvailableResources.Sub(r.Validation.GrandTotal)), "", 1, "R", false, 0, "")

	if r.Validation.AnyOverLimit {
		pdf.Ln(4)
		pdf.SetTextColor(overTextColor[0], overTextColor[1], overTextColor[2])
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(190, 5, "This plan exceeds at least one ceiling or its net available resources.", "", "L", false)
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(7)
	pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
	pdf.Ln(2)
}

func tableHeader(pdf *gofpdf.Fpdf, titles []string, widths []float64) {
	pdf.SetFont("Arial", "B", 10)
	for i, t := range titles {
		align := "R"
		if i == 0 || (len(titles) == 3 && i == 1) {
			align = "L"
		}
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, t, "B", ln, align, false, 0, "")
	}
}
