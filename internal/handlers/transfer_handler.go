package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/models"
	"budgetplan/internal/services"
)

// TransferHandler handles fund transfers between line items.
type TransferHandler struct {
	transferService services.TransferServicer
	auditService    services.AuditServicer
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferService services.TransferServicer, auditService services.AuditServicer) *TransferHandler {
	return &TransferHandler{transferService: transferService, auditService: auditService}
}

// CreateTransferRequest represents the request payload for a transfer.
// Amount accepts a JSON number or a numeric string.
type CreateTransferRequest struct {
	SourceItemID string          `json:"source_item_id" binding:"required,uuid"`
	DestItemID   string          `json:"dest_item_id" binding:"required,uuid"`
	Amount       json.RawMessage `json:"amount" swaggertype:"string" example:"5000"`
}

// CreateTransfer handles moving funds between two items of a plan
// @Summary     Transfer between line items
// @Description Debit the source item and credit the destination item atomically. A destination pushed over its ceiling is reported as an advisory unless the server blocks over-limit transfers.
// @Tags        transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Plan ID"
// @Param       request body CreateTransferRequest true "Transfer details"
// @Success     201 {object} services.TransferResult "Transfer committed"
// @Failure     400 {object} ErrorResponse "Invalid amount, insufficient balance or cross-plan transfer"
// @Failure     404 {object} ErrorResponse "Unknown item"
// @Failure     409 {object} ErrorResponse "Plan archived or locked"
// @Failure     422 {object} ErrorResponse "Over limit (block policy)"
// @Failure     503 {object} ErrorResponse "Transfer failed and was rolled back"
// @Router      /plans/{id}/transfers [post]
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
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

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), staffID, services.TransferRequest{
		PlanID:       planID,
		SourceItemID: req.SourceItemID,
		DestItemID:   req.DestItemID,
		Amount:       amount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(services.AuditEntry{
		StaffID:   staffID,
		Action:    models.AuditTransfer,
		PlanID:    planID,
		IPAddress: c.ClientIP(),
		Details: map[string]interface{}{
			"source_item_id": req.SourceItemID,
			"dest_item_id":   req.DestItemID,
			"amount":         amount.String(),
			"over_limit":     result.DestinationOverLimit,
		},
	})

	c.JSON(http.StatusCreated, result)
}
