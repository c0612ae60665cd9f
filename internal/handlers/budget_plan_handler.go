package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/models"
	"budgetplan/internal/pagination"
	"budgetplan/internal/services"
)

// BudgetPlanHandler handles budget plan requests.
type BudgetPlanHandler struct {
	planService  services.BudgetPlanServicer
	auditService services.AuditServicer
}

// NewBudgetPlanHandler creates a new BudgetPlanHandler.
func NewBudgetPlanHandler(planService services.BudgetPlanServicer, auditService services.AuditServicer) *BudgetPlanHandler {
	return &BudgetPlanHandler{planService: planService, auditService: auditService}
}

// HeaderFigures are the income figures and tier percentages of a plan.
// Missing values are zero.
type HeaderFigures struct {
	Balance              decimal.Decimal `json:"balance" swaggertype:"string" example:"10000"`
	RealtyTaxShare       decimal.Decimal `json:"realty_tax_share" swaggertype:"string" example:"5000"`
	TaxAllotment         decimal.Decimal `json:"tax_allotment" swaggertype:"string" example:"20000"`
	ClearanceAndCertFees decimal.Decimal `json:"clearance_and_cert_fees" swaggertype:"string"`
	OtherSpecificIncome  decimal.Decimal `json:"other_specific_income" swaggertype:"string"`

	ActualIncome decimal.Decimal `json:"actual_income" swaggertype:"string" example:"100000"`
	ActualRPT    decimal.Decimal `json:"actual_rpt" swaggertype:"string"`

	PersonalServicesLimit decimal.Decimal `json:"personal_services_limit" binding:"percentage" swaggertype:"string" example:"45"`
	MiscExpenseLimit      decimal.Decimal `json:"misc_expense_limit" binding:"percentage" swaggertype:"string"`
	LocalDevLimit         decimal.Decimal `json:"local_dev_limit" binding:"percentage" swaggertype:"string"`
	SKFundLimit           decimal.Decimal `json:"sk_fund_limit" binding:"percentage" swaggertype:"string"`
	CalamityFundLimit     decimal.Decimal `json:"calamity_fund_limit" binding:"percentage" swaggertype:"string"`
}

func (f HeaderFigures) header(year int) budget.Header {
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

// PlanItemRequest is one line item of a plan.
type PlanItemRequest struct {
	BudgetItem     string          `json:"budget_item" binding:"required,max=255"`
	ProposedBudget decimal.Decimal `json:"proposed_budget" binding:"gte=0" swaggertype:"string" example:"10000"`
	Category       budget.Category `json:"category" binding:"required,budget_category" swaggertype:"string" example:"Other Expense"`
}

func toLines(items []PlanItemRequest) []budget.Line {
	lines := make([]budget.Line, len(items))
	for i, item := range items {
		lines[i] = budget.Line{
			Name:     item.BudgetItem,
			Amount:   item.ProposedBudget,
			Category: item.Category,
		}
	}
	return lines
}

// CreatePlanRequest represents the request payload for creating a budget plan
type CreatePlanRequest struct {
	Year int `json:"year" binding:"required,min=1900,max=9999" example:"2024"`
	HeaderFigures
	Details []PlanItemRequest `json:"details" binding:"required,min=1,dive"`
}

// UpdatePlanRequest represents the request payload for editing a plan header.
// Omitted fields keep their current value.
type UpdatePlanRequest struct {
	Balance              *decimal.Decimal `json:"balance" swaggertype:"string"`
	RealtyTaxShare       *decimal.Decimal `json:"realty_tax_share" swaggertype:"string"`
	TaxAllotment         *decimal.Decimal `json:"tax_allotment" swaggertype:"string"`
	ClearanceAndCertFees *decimal.Decimal `json:"clearance_and_cert_fees" swaggertype:"string"`
	OtherSpecificIncome  *decimal.Decimal `json:"other_specific_income" swaggertype:"string"`

	ActualIncome *decimal.Decimal `json:"actual_income" swaggertype:"string"`
	ActualRPT    *decimal.Decimal `json:"actual_rpt" swaggertype:"string"`

	PersonalServicesLimit *decimal.Decimal `json:"personal_services_limit" binding:"omitempty,percentage" swaggertype:"string"`
	MiscExpenseLimit      *decimal.Decimal `json:"misc_expense_limit" binding:"omitempty,percentage" swaggertype:"string"`
	LocalDevLimit         *decimal.Decimal `json:"local_dev_limit" binding:"omitempty,percentage" swaggertype:"string"`
	SKFundLimit           *decimal.Decimal `json:"sk_fund_limit" binding:"omitempty,percentage" swaggertype:"string"`
	CalamityFundLimit     *decimal.Decimal `json:"calamity_fund_limit" binding:"omitempty,percentage" swaggertype:"string"`
}

func (r UpdatePlanRequest) toUpdate() services.HeaderUpdate {
	return services.HeaderUpdate{
		Balance:               r.Balance,
		RealtyTaxShare:        r.RealtyTaxShare,
		TaxAllotment:          r.TaxAllotment,
		ClearanceAndCertFees:  r.ClearanceAndCertFees,
		OtherSpecificIncome:   r.OtherSpecificIncome,
		ActualIncome:          r.ActualIncome,
		ActualRPT:             r.ActualRPT,
		PersonalServicesLimit: r.PersonalServicesLimit,
		MiscExpenseLimit:      r.MiscExpenseLimit,
		LocalDevLimit:         r.LocalDevLimit,
		SKFundLimit:           r.SKFundLimit,
		CalamityFundLimit:     r.CalamityFundLimit,
	}
}

// CreatePlan handles the creation of a budget plan
// @Summary     Create a budget plan
// @Description Create the budget plan for a fiscal year with all of its line items
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePlanRequest true "Plan header and line items"
// @Success     201 {object} services.PlanSummary "Plan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "A plan for this year exists"
// @Failure     422 {object} ErrorResponse "Over limit (block policy)"
// @Router      /plans [post]
func (h *BudgetPlanHandler) CreatePlan(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	draft := budget.Draft{
		Step:   budget.StepSubmit,
		Header: req.header(req.Year),
		Lines:  toLines(req.Details),
	}
	summary, err := h.planService.CreatePlan(c.Request.Context(), staffID, draft)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		StaffID:   staffID,
		Action:    models.AuditCreatePlan,
		PlanID:    summary.Plan.ID,
		IPAddress: c.ClientIP(),
		Details:   map[string]interface{}{"year": req.Year, "items": len(req.Details)},
	})

	c.JSON(http.StatusCreated, summary)
}

// ListPlans handles listing budget plans
// @Summary     List budget plans
// @Description List budget plans, newest year first
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int  false "Page number"
// @Param       page_size query int  false "Page size"
// @Param       archived  query bool false "Only archived (true) or only active (false) plans"
// @Success     200 {object} pagination.PageResponse[models.BudgetPlan]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /plans [get]
func (h *BudgetPlanHandler) ListPlans(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var archived *bool
	if raw := c.Query("archived"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "archived must be true or false"))
			return
		}
		archived = &v
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), page, archived)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlan handles fetching a single plan
// @Summary     Get a budget plan
// @Description Get a budget plan with its line items
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} models.BudgetPlan
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{id} [get]
func (h *BudgetPlanHandler) GetPlan(c *gin.Context) {
	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan, err := h.planService.GetPlan(c.Request.Context(), planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// GetPlanSummary handles fetching a plan together with its validation
// @Summary     Get a plan summary
// @Description Get a plan, its ceilings, totals and over-limit flags from one consistent read
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} services.PlanSummary
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{id}/summary [get]
func (h *BudgetPlanHandler) GetPlanSummary(c *gin.Context) {
	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.planService.GetPlanSummary(c.Request.Context(), planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UpdatePlan handles editing a plan header
// @Summary     Update a plan header
// @Description Change income figures or tier percentages; ceilings and derived totals are recomputed
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Plan ID"
// @Param       request body UpdatePlanRequest true "Header fields to change"
// @Success     200 {object} services.PlanSummary
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Plan archived or modified concurrently"
// @Router      /plans/{id} [put]
func (h *BudgetPlanHandler) UpdatePlan(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	summary, err := h.planService.UpdatePlanHeader(c.Request.Context(), staffID, planID, req.toUpdate())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		StaffID:   staffID,
		Action:    models.AuditUpdatePlan,
		PlanID:    planID,
		IPAddress: c.ClientIP(),
		Details:   map[string]interface{}{"version": summary.Plan.Version},
	})

	c.JSON(http.StatusOK, summary)
}

// ArchivePlan handles archiving a plan
// @Summary     Archive a plan
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} models.BudgetPlan
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{id}/archive [post]
func (h *BudgetPlanHandler) ArchivePlan(c *gin.Context) {
	h.setArchived(c, true)
}

// RestorePlan handles restoring an archived plan
// @Summary     Restore an archived plan
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} models.BudgetPlan
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{id}/restore [post]
func (h *BudgetPlanHandler) RestorePlan(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *BudgetPlanHandler) setArchived(c *gin.Context, archived bool) {
	staffID, err := getStaffID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	action := models.AuditRestorePlan
	call := h.planService.RestorePlan
	if archived {
		action = models.AuditArchivePlan
		call = h.planService.ArchivePlan
	}

	plan, err := call(c.Request.Context(), planID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{StaffID: staffID, Action: action, PlanID: planID, IPAddress: c.ClientIP()})

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// DeletePlan handles deleting an archived plan
// @Summary     Delete an archived plan
// @Description Permanently delete an archived plan that has no recorded history
// @Tags        plans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Plan ID"
// @Success     200 {object} map[string]string
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Failure     409 {object} ErrorResponse "Plan not archived or has history"
// @Router      /plans/{id} [delete]
func (h *BudgetPlanHandler) DeletePlan(c *gin.Context) {
	staffID, err := getStaffID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), planID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{StaffID: staffID, Action: models.AuditDeletePlan, PlanID: planID, IPAddress: c.ClientIP()})

	c.JSON(http.StatusOK, gin.H{"message": "Budget plan deleted successfully"})
}
