// Package budget implements the arithmetic behind a barangay budget plan:
// net available resources, percentage-of-income ceilings and the
// allocation check that runs every time a line item changes.
//
// Nothing here touches storage. Services load a consistent snapshot and
// hand plain values to these functions.
package budget

// Category classifies a line item. The category decides which ceiling, if
// any, constrains the item.
type Category string

const (
	CategoryPersonalService     Category = "Personal Service"
	CategoryOtherExpense        Category = "Other Expense"
	CategoryCapitalOutlays      Category = "Capital Outlays"
	CategoryNonOffice           Category = "Non-Office"
	CategorySangguniangKabataan Category = "Sangguniang Kabataan"
	CategoryLDRRMFund           Category = "LDRRM Fund"
)

// Categories lists every category a line item may carry.
var Categories = []Category{
	CategoryPersonalService,
	CategoryOtherExpense,
	CategoryCapitalOutlays,
	CategoryNonOffice,
	CategorySangguniangKabataan,
	CategoryLDRRMFund,
}

// LimitedCategories lists the categories that have a ceiling, in report order.
var LimitedCategories = []Category{
	CategoryPersonalService,
	CategoryOtherExpense,
	CategoryNonOffice,
	CategorySangguniangKabataan,
	CategoryLDRRMFund,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsLimited reports whether c is constrained by a ceiling.
func (c Category) IsLimited() bool {
	for _, limited := range LimitedCategories {
		if c == limited {
			return true
		}
	}
	return false
}
