package budget

import "github.com/shopspring/decimal"

// Header carries the income figures and tier percentages of a plan.
// Percentages are whole-number values in the 0–100 range.
// A zero-value field counts as 0.
type Header struct {
	Year int `json:"year"`

	Balance              decimal.Decimal `json:"balance"`
	RealtyTaxShare       decimal.Decimal `json:"realty_tax_share"`
	TaxAllotment         decimal.Decimal `json:"tax_allotment"`
	ClearanceAndCertFees decimal.Decimal `json:"clearance_and_cert_fees"`
	OtherSpecificIncome  decimal.Decimal `json:"other_specific_income"`

	ActualIncome decimal.Decimal `json:"actual_income"`
	ActualRPT    decimal.Decimal `json:"actual_rpt"`

	PersonalServicesLimit decimal.Decimal `json:"personal_services_limit"`
	MiscExpenseLimit      decimal.Decimal `json:"misc_expense_limit"`
	LocalDevLimit         decimal.Decimal `json:"local_dev_limit"`
	SKFundLimit           decimal.Decimal `json:"sk_fund_limit"`
	CalamityFundLimit     decimal.Decimal `json:"calamity_fund_limit"`
}

// NetAvailableResources sums the five declared income sources. Negative
// figures are not clamped.
func NetAvailableResources(h Header) decimal.Decimal {
	return h.Balance.
		Add(h.RealtyTaxShare).
		Add(h.TaxAllotment).
		Add(h.ClearanceAndCertFees).
		Add(h.OtherSpecificIncome)
}

// Percentages returns the five tier percentages in LimitedCategories order.
func (h Header) Percentages() []decimal.Decimal {
	return []decimal.Decimal{
		h.PersonalServicesLimit,
		h.MiscExpenseLimit,
		h.LocalDevLimit,
		h.SKFundLimit,
		h.CalamityFundLimit,
	}
}
