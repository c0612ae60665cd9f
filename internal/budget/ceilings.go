package budget

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Ceilings holds the spending cap for each limited category.
type Ceilings struct {
	PersonalServices decimal.Decimal `json:"personal_services"`
	MiscExpense      decimal.Decimal `json:"misc_expense"`
	LocalDev         decimal.Decimal `json:"local_dev"`
	SKFund           decimal.Decimal `json:"sk_fund"`
	CalamityFund     decimal.Decimal `json:"calamity_fund"`
}

// ComputeCeilings derives the category ceilings from the plan header. Each
// ceiling is measured against its own income base:
//
//	personal services  actual income
//	misc expense       actual RPT
//	local development  tax allotment
//	SK fund            net available resources
//	calamity fund      net available resources
//
// A zero percentage yields a zero ceiling.
func ComputeCeilings(h Header) Ceilings {
	nar := NetAvailableResources(h)
	return Ceilings{
		PersonalServices: percentOf(h.ActualIncome, h.PersonalServicesLimit),
		MiscExpense:      percentOf(h.ActualRPT, h.MiscExpenseLimit),
		LocalDev:         percentOf(h.TaxAllotment, h.LocalDevLimit),
		SKFund:           percentOf(nar, h.SKFundLimit),
		CalamityFund:     percentOf(nar, h.CalamityFundLimit),
	}
}

// For returns the ceiling that applies to c. ok is false for categories
// without a limit.
func (c Ceilings) For(category Category) (limit decimal.Decimal, ok bool) {
	switch category {
	case CategoryPersonalService:
		return c.PersonalServices, true
	case CategoryOtherExpense:
		return c.MiscExpense, true
	case CategoryNonOffice:
		return c.LocalDev, true
	case CategorySangguniangKabataan:
		return c.SKFund, true
	case CategoryLDRRMFund:
		return c.CalamityFund, true
	}
	return decimal.Zero, false
}

func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}
