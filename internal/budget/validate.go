package budget

import "github.com/shopspring/decimal"

// Epsilon is the smallest excess over a limit that counts as over-limit.
// Smaller differences are treated as exactly at the limit.
var Epsilon = decimal.New(1, -2)

// Line is a single budget line item as seen by the validator.
type Line struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"budget_item"`
	Amount   decimal.Decimal `json:"proposed_budget"`
	Category Category        `json:"category"`
}

// Validation is the result of checking line items against the ceilings.
type Validation struct {
	NetAvailableResources decimal.Decimal              `json:"net_available_resources"`
	Ceilings              Ceilings                     `json:"ceilings"`
	CategoryTotals        map[Category]decimal.Decimal `json:"category_totals"`
	UnlimitedTotal        decimal.Decimal              `json:"unlimited_total"`
	GrandTotal            decimal.Decimal              `json:"grand_total"`
	OverLimit             map[Category]bool            `json:"over_limit"`
	OverResources         bool                         `json:"over_resources"`
	AnyOverLimit          bool                         `json:"any_over_limit"`
}

// Validate totals the lines per limited category and compares each total
// with its ceiling. Every line counts toward the grand total, which is
// compared with the net available resources.
func Validate(lines []Line, ceilings Ceilings, netAvailable decimal.Decimal) Validation {
	v := Validation{
		NetAvailableResources: netAvailable,
		Ceilings:              ceilings,
		CategoryTotals:        make(map[Category]decimal.Decimal, len(LimitedCategories)),
		OverLimit:             make(map[Category]bool, len(LimitedCategories)),
		UnlimitedTotal:        decimal.Zero,
		GrandTotal:            decimal.Zero,
	}
	for _, c := range LimitedCategories {
		v.CategoryTotals[c] = decimal.Zero
	}

	for _, l := range lines {
		v.GrandTotal = v.GrandTotal.Add(l.Amount)
		if !l.Category.IsLimited() {
			v.UnlimitedTotal = v.UnlimitedTotal.Add(l.Amount)
			continue
		}
		v.CategoryTotals[l.Category] = v.CategoryTotals[l.Category].Add(l.Amount)
	}

	for _, c := range LimitedCategories {
		limit, _ := ceilings.For(c)
		over := Exceeds(v.CategoryTotals[c], limit)
		v.OverLimit[c] = over
		if over {
			v.AnyOverLimit = true
		}
	}

	v.OverResources = Exceeds(v.GrandTotal, netAvailable)
	if v.OverResources {
		v.AnyOverLimit = true
	}
	return v
}

// Evaluate computes ceilings from the header and validates the lines
// against them.
func Evaluate(h Header, lines []Line) Validation {
	return Validate(lines, ComputeCeilings(h), NetAvailableResources(h))
}

// Exceeds reports whether total is above limit by at least Epsilon.
func Exceeds(total, limit decimal.Decimal) bool {
	return total.Sub(limit).GreaterThanOrEqual(Epsilon)
}

// Remaining returns how much of the category's ceiling is still unallocated.
// Unlimited categories report ok=false.
func (v Validation) Remaining(c Category) (decimal.Decimal, bool) {
	limit, ok := v.Ceilings.For(c)
	if !ok {
		return decimal.Zero, false
	}
	return limit.Sub(v.CategoryTotals[c]), true
}

// OverCategories returns the limited categories currently over their
// ceiling, in LimitedCategories order.
func (v Validation) OverCategories() []Category {
	var over []Category
	for _, c := range LimitedCategories {
		if v.OverLimit[c] {
			over = append(over, c)
		}
	}
	return over
}
