package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/export"
	"budgetplan/internal/logger"
	"budgetplan/internal/services"
)

// ExportHandler renders plan reports for download.
type ExportHandler struct {
	planService services.BudgetPlanServicer
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(planService services.BudgetPlanServicer) *ExportHandler {
	return &ExportHandler{planService: planService}
}

// ExportQuery selects the report format.
type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,export_format"`
}

// ExportPlan handles plan report downloads
// @Summary     Export a plan report
// @Description Download the plan header, ceilings, line items and totals as a spreadsheet or PDF
// @Tags        plans
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce     application/pdf
// @Security    BearerAuth
// @Param       id     path  string true  "Plan ID"
// @Param       format query string false "xlsx (default) or pdf"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{id}/export [get]
func (h *ExportHandler) ExportPlan(c *gin.Context) {
	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "format must be xlsx or pdf"))
		return
	}

	format := export.FormatXLSX
	write := export.WritePlanXLSX
	if query.Format == string(export.FormatPDF) {
		format = export.FormatPDF
		write = export.WritePlanPDF
	}

	summary, err := h.planService.GetPlanSummary(c.Request.Context(), planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, export.Report{Plan: summary.Plan, Validation: summary.Validation}); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	logger.ForPlan(planID).Infow("plan exported", "format", format, "bytes", buf.Len())

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(summary.Plan.Year, format)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
