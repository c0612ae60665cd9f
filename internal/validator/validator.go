// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"budgetplan/internal/budget"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("budget_category", validateBudgetCategory)
		_ = v.RegisterValidation("percentage", validatePercentage)
		_ = v.RegisterValidation("draft_step", validateDraftStep)
		_ = v.RegisterValidation("export_format", validateExportFormat)
	}
}

// decimalValue lets numeric tags (gte, lte, percentage) run against
// decimal fields, which the validator would otherwise treat as structs.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateBudgetCategory(fl validator.FieldLevel) bool {
	return budget.Category(fl.Field().String()).IsValid()
}

func validatePercentage(fl validator.FieldLevel) bool {
	var pct float64
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		pct = fl.Field().Float()
	case reflect.Int, reflect.Int32, reflect.Int64:
		pct = float64(fl.Field().Int())
	default:
		return false
	}
	return pct >= 0 && pct <= 100
}

func validateDraftStep(fl validator.FieldLevel) bool {
	switch budget.Step(fl.Field().String()) {
	case budget.StepHeader, budget.StepLimitedItems, budget.StepUnlimitedItems, budget.StepSubmit:
		return true
	}
	return false
}

func validateExportFormat(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "xlsx", "pdf":
		return true
	}
	return false
}
