package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/pagination"
	"budgetplan/internal/services"
)

// HistoryHandler serves the plan change ledger.
type HistoryHandler struct {
	historyService services.HistoryServicer
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService services.HistoryServicer) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ListHistory handles listing a plan's history
// @Summary     List plan history
// @Description List history entries for a plan, newest first, each with a snapshot of every line item
// @Tags        history
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Plan ID"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.BudgetPlanHistory]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Plan not found"
// @Router      /plans/{id}/history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	entries, err := h.historyService.ListHistory(c.Request.Context(), planID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetPlanAsOf handles point-in-time lookups
// @Summary     Plan as of a point in time
// @Description Return the newest history snapshot recorded at or before the given time
// @Tags        history
// @Produce     json
// @Security    BearerAuth
// @Param       id path  string true  "Plan ID"
// @Param       at query string false "RFC 3339 timestamp or YYYY-MM-DD (defaults to now)"
// @Success     200 {object} models.BudgetPlanHistory
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Plan or history not found"
// @Router      /plans/{id}/history/as-of [get]
func (h *HistoryHandler) GetPlanAsOf(c *gin.Context) {
	planID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		at, err = parseFlexibleTime(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	entry, err := h.historyService.GetPlanAsOf(c.Request.Context(), planID, at)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": entry})
}
