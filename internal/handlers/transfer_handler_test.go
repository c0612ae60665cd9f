package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"budgetplan/internal/budget"
	apperrors "budgetplan/internal/errors"
	"budgetplan/internal/services"
)

const (
	testSourceID = "0190d4c8-0000-7000-8000-0000000000c1"
	testDestID   = "0190d4c8-0000-7000-8000-0000000000c2"
)

type mockTransferService struct {
	transferFn func(ctx context.Context, staffID string, req services.TransferRequest) (*services.TransferResult, error)
}

func (m *mockTransferService) Transfer(ctx context.Context, staffID string, req services.TransferRequest) (*services.TransferResult, error) {
	if m.transferFn != nil {
		return m.transferFn(ctx, staffID, req)
	}
	return &services.TransferResult{PlanID: req.PlanID, Amount: req.Amount}, nil
}

func setupTransferRouter(handler *TransferHandler) *gin.Engine {
	r := gin.New()
	r.Use(injectStaffID(testStaffID))
	r.POST("/plans/:id/transfers", handler.CreateTransfer)
	return r
}

func transferBody(amount string) string {
	return `{"source_item_id":"` + testSourceID + `","dest_item_id":"` + testDestID + `","amount":` + amount + `}`
}

func TestTransferHandler_CreateTransfer(t *testing.T) {
	t.Run("returns 201 with the result", func(t *testing.T) {
		var got services.TransferRequest
		svc := &mockTransferService{
			transferFn: func(_ context.Context, _ string, req services.TransferRequest) (*services.TransferResult, error) {
				got = req
				return &services.TransferResult{
					PlanID: req.PlanID,
					Amount: req.Amount,
					Source: services.TransferLeg{
						DetailID:        req.SourceItemID,
						BudgetItem:      "Traveling Expense",
						Category:        budget.CategoryOtherExpense,
						PreviousBalance: decimal.NewFromInt(10000),
						NewBalance:      decimal.NewFromInt(5000),
					},
					Destination: services.TransferLeg{
						DetailID:        req.DestItemID,
						BudgetItem:      "Training Expenses",
						Category:        budget.CategoryOtherExpense,
						PreviousBalance: decimal.NewFromInt(2000),
						NewBalance:      decimal.NewFromInt(7000),
					},
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransferRouter(NewTransferHandler(svc, audit))

		rec := doRequest(r, "POST", "/plans/"+testPlanID+"/transfers", transferBody("5000"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.PlanID != testPlanID || got.SourceItemID != testSourceID || got.DestItemID != testDestID {
			t.Errorf("unexpected request: %+v", got)
		}
		if !got.Amount.Equal(decimal.NewFromInt(5000)) {
			t.Errorf("expected amount 5000, got %s", got.Amount)
		}

		result := parseJSON(t, rec)
		source := result["source"].(map[string]interface{})
		dest := result["destination"].(map[string]interface{})
		if source["new_balance"] != "5000" || dest["new_balance"] != "7000" {
			t.Errorf("unexpected balances: %v / %v", source["new_balance"], dest["new_balance"])
		}
		if len(audit.actions) != 1 || audit.actions[0] != "TRANSFER" {
			t.Errorf("expected TRANSFER audit, got %v", audit.actions)
		}
	})

	t.Run("accepts a numeric string amount", func(t *testing.T) {
		var got decimal.Decimal
		svc := &mockTransferService{
			transferFn: func(_ context.Context, _ string, req services.TransferRequest) (*services.TransferResult, error) {
				got = req.Amount
				return &services.TransferResult{}, nil
			},
		}
		r := setupTransferRouter(NewTransferHandler(svc, &mockAuditService{}))
		rec := doRequest(r, "POST", "/plans/"+testPlanID+"/transfers", transferBody(`"250.75"`))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Equal(decimal.RequireFromString("250.75")) {
			t.Errorf("expected 250.75, got %s", got)
		}
	})

	invalidAmounts := []struct {
		name   string
		amount string
	}{
		{"zero", "0"},
		{"negative", "-100"},
		{"non-numeric string", `"abc"`},
		{"boolean", "true"},
		{"null", "null"},
	}
	for _, tt := range invalidAmounts {
		t.Run("returns INVALID_AMOUNT on "+tt.name, func(t *testing.T) {
			called := false
			svc := &mockTransferService{
				transferFn: func(context.Context, string, services.TransferRequest) (*services.TransferResult, error) {
					called = true
					return &services.TransferResult{}, nil
				},
			}
			r := setupTransferRouter(NewTransferHandler(svc, &mockAuditService{}))
			rec := doRequest(r, "POST", "/plans/"+testPlanID+"/transfers", transferBody(tt.amount))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
			if called {
				t.Error("service must not be called with an invalid amount")
			}
		})
	}

	t.Run("returns INVALID_AMOUNT when amount is missing", func(t *testing.T) {
		r := setupTransferRouter(NewTransferHandler(&mockTransferService{}, &mockAuditService{}))
		body := `{"source_item_id":"` + testSourceID + `","dest_item_id":"` + testDestID + `"}`
		rec := doRequest(r, "POST", "/plans/"+testPlanID+"/transfers", body)
		assertErrorCode(t, parseJSON(t, rec), "INVALID_AMOUNT")
	})

	t.Run("returns 400 on malformed item id", func(t *testing.T) {
		r := setupTransferRouter(NewTransferHandler(&mockTransferService{}, &mockAuditService{}))
		rec := doRequest(r, "POST", "/plans/"+testPlanID+"/transfers", `{"source_item_id":"x","dest_item_id":"`+testDestID+`","amount":1}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	serviceErrors := []struct {
		err    *apperrors.AppError
		status int
	}{
		{apperrors.ErrInsufficientBalance, http.StatusBadRequest},
		{apperrors.ErrCrossPlanTransfer, http.StatusBadRequest},
		{apperrors.ErrUnknownItem, http.StatusNotFound},
		{apperrors.ErrPlanArchived, http.StatusConflict},
		{apperrors.ErrOverLimit, http.StatusUnprocessableEntity},
		{apperrors.ErrTransferFailed, http.StatusServiceUnavailable},
	}
	for _, tt := range serviceErrors {
		t.Run("maps "+tt.err.Code, func(t *testing.T) {
			svc := &mockTransferService{
				transferFn: func(context.Context, string, services.TransferRequest) (*services.TransferResult, error) {
					return nil, tt.err
				},
			}
			audit := &mockAuditService{}
			r := setupTransferRouter(NewTransferHandler(svc, audit))
			rec := doRequest(r, "POST", "/plans/"+testPlanID+"/transfers", transferBody("100"))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.err.Code)
			if len(audit.actions) != 0 {
				t.Errorf("expected no audit for a failed transfer, got %v", audit.actions)
			}
		})
	}
}
