package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/services"
)

// IntegrationHandler serves read-only plan data to external dashboards.
type IntegrationHandler struct {
	planService services.BudgetPlanServicer
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(planService services.BudgetPlanServicer) *IntegrationHandler {
	return &IntegrationHandler{planService: planService}
}

// GetYearSummary handles dashboard summary lookups by fiscal year
// @Summary     Plan summary by year
// @Description Get the plan for a fiscal year with its ceilings and over-limit flags
// @Tags        integrations
// @Produce     json
// @Security    ApiKeyAuth
// @Param       year path int true "Fiscal year"
// @Success     200 {object} services.PlanSummary
// @Failure     400 {object} ErrorResponse "Invalid year"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /integrations/plans/{year}/summary [get]
func (h *IntegrationHandler) GetYearSummary(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1900 || year > 9999 {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
		return
	}

	summary, err := h.planService.GetPlanSummaryByYear(c.Request.Context(), year)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
