package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/services"
)

// CalculationHandler exposes the stateless calculator, validator and
// draft steps so entry screens can check a plan before it is saved.
type CalculationHandler struct{}

// NewCalculationHandler creates a new CalculationHandler.
func NewCalculationHandler() *CalculationHandler {
	return &CalculationHandler{}
}

// CeilingsResponse is the calculator output for a header.
type CeilingsResponse struct {
	NetAvailableResources decimal.Decimal `json:"net_available_resources" swaggertype:"string"`
	Ceilings              budget.Ceilings `json:"ceilings"`
}

// LineRequest is a line item under evaluation. Unlike PlanItemRequest it
// is not required to be complete.
type LineRequest struct {
	BudgetItem     string          `json:"budget_item"`
	ProposedBudget decimal.Decimal `json:"proposed_budget" swaggertype:"string"`
	Category       budget.Category `json:"category" swaggertype:"string"`
}

func lineRequests(items []LineRequest) []budget.Line {
	lines := make([]budget.Line, len(items))
	for i, item := range items {
		lines[i] = budget.Line{Name: item.BudgetItem, Amount: item.ProposedBudget, Category: item.Category}
	}
	return lines
}

// ValidateRequest carries a header, the current line items and whether
// the caller is already showing the over-limit warning.
type ValidateRequest struct {
	HeaderFigures
	Details      []LineRequest `json:"details"`
	WarningShown bool          `json:"warning_shown"`
}

// ValidateResponse is the validation plus what to do with the warning.
type ValidateResponse struct {
	Validation   budget.Validation    `json:"validation"`
	Warning      budget.WarningAction `json:"warning" swaggertype:"string" enums:"none,raise,withdraw"`
	WarningShown bool                 `json:"warning_shown"`
}

// AdvanceDraftRequest is a plan draft and the step it is on.
type AdvanceDraftRequest struct {
	Step budget.Step `json:"step" binding:"omitempty,draft_step" swaggertype:"string" enums:"header,limited_items,unlimited_items,submit"`
	Year int         `json:"year"`
	HeaderFigures
	Details []LineRequest `json:"details"`
}

// AdvanceDraftResponse is the step the draft moves to and its current validation.
type AdvanceDraftResponse struct {
	Step       budget.Step       `json:"step" swaggertype:"string"`
	Validation budget.Validation `json:"validation"`
}

// ComputeCeilings handles the limit calculator
// @Summary     Compute ceilings
// @Description Compute net available resources and every category ceiling from header figures
// @Tags        calculations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body HeaderFigures true "Header figures"
// @Success     200 {object} CeilingsResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /calculations/ceilings [post]
func (h *CalculationHandler) ComputeCeilings(c *gin.Context) {
	var req HeaderFigures
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	header := req.header(0)
	c.JSON(http.StatusOK, CeilingsResponse{
		NetAvailableResources: budget.NetAvailableResources(header),
		Ceilings:              budget.ComputeCeilings(header),
	})
}

// Validate handles the allocation validator
// @Summary     Validate allocations
// @Description Total line items per category, flag over-limit categories and tell the caller whether to raise or withdraw its warning
// @Tags        calculations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ValidateRequest true "Header, line items and warning state"
// @Success     200 {object} ValidateResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /calculations/validate [post]
func (h *CalculationHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	validation := budget.Evaluate(req.header(0), lineRequests(req.Details))
	tracker := budget.NewWarningTracker(req.WarningShown)
	action := tracker.Observe(validation)

	c.JSON(http.StatusOK, ValidateResponse{
		Validation:   validation,
		Warning:      action,
		WarningShown: tracker.Shown(),
	})
}

// AdvanceDraft handles one step of plan entry
// @Summary     Advance a plan draft
// @Description Check the draft's current step and return the next one
// @Tags        plans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AdvanceDraftRequest true "Draft"
// @Success     200 {object} AdvanceDraftResponse
// @Failure     400 {object} ErrorResponse "The current step is incomplete"
// @Router      /plans/drafts/advance [post]
func (h *CalculationHandler) AdvanceDraft(c *gin.Context) {
	var req AdvanceDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	draft := budget.Draft{
		Step:   req.Step,
		Header: req.header(req.Year),
		Lines:  lineRequests(req.Details),
	}
	next, err := draft.Advance()
	if err != nil {
		if errors.Is(err, budget.ErrUnknownStep) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		respondWithError(c, services.DraftError(err))
		return
	}

	c.JSON(http.StatusOK, AdvanceDraftResponse{Step: next, Validation: draft.Evaluate()})
}
