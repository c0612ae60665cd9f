package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"budgetplan/internal/budget"
	"budgetplan/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestStaff creates a staff member with a hashed password and unique email.
func CreateTestStaff(t *testing.T, db *gorm.DB) *models.Staff {
	t.Helper()
	email := fmt.Sprintf("staff%d@test.com", nextID())
	return CreateTestStaffWithEmail(t, db, email)
}

// CreateTestStaffWithEmail creates a staff member with the given email.
func CreateTestStaffWithEmail(t *testing.T, db *gorm.DB, email string) *models.Staff {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	staff := &models.Staff{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "Staff",
		Position:  "Treasurer",
		IsActive:  true,
	}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("failed to create test staff: %v", err)
	}
	return staff
}

// TestPlanHeader returns a header whose ceilings leave room for the
// default fixture items:
//
//	NAR 35000, personal services 45000, misc 25000, local dev 4000,
//	SK 3500, calamity 1750.
func TestPlanHeader(year int) budget.Header {
	return budget.Header{
		Year:                  year,
		Balance:               decimal.NewFromInt(10000),
		RealtyTaxShare:        decimal.NewFromInt(5000),
		TaxAllotment:          decimal.NewFromInt(20000),
		ClearanceAndCertFees:  decimal.Zero,
		OtherSpecificIncome:   decimal.Zero,
		ActualIncome:          decimal.NewFromInt(100000),
		ActualRPT:             decimal.NewFromInt(50000),
		PersonalServicesLimit: decimal.NewFromInt(45),
		MiscExpenseLimit:      decimal.NewFromInt(50),
		LocalDevLimit:         decimal.NewFromInt(20),
		SKFundLimit:           decimal.NewFromInt(10),
		CalamityFundLimit:     decimal.NewFromInt(5),
	}
}

// Item describes a fixture line item. Amount is a decimal string.
type Item struct {
	Name     string
	Amount   string
	Category budget.Category
}

// DefaultItems are the line items CreateTestPlan uses when none are given.
var DefaultItems = []Item{
	{Name: "Traveling Expense", Amount: "10000", Category: budget.CategoryOtherExpense},
	{Name: "Training Expenses", Amount: "2000", Category: budget.CategoryOtherExpense},
	{Name: "Honoraria", Amount: "8000", Category: budget.CategoryPersonalService},
	{Name: "Youth Programs", Amount: "1000", Category: budget.CategorySangguniangKabataan},
	{Name: "Disaster Kits", Amount: "1500", Category: budget.CategoryLDRRMFund},
	{Name: "Barangay Hall Repair", Amount: "3000", Category: budget.CategoryCapitalOutlays},
}

// CreateTestPlan creates a plan for the given year with TestPlanHeader's
// figures and the given items (DefaultItems when none are passed).
func CreateTestPlan(t *testing.T, db *gorm.DB, staffID string, year int, items ...Item) *models.BudgetPlan {
	t.Helper()

	if len(items) == 0 {
		items = DefaultItems
	}

	plan := &models.BudgetPlan{
		Year:        year,
		PlanFigures: models.FiguresFromHeader(TestPlanHeader(year)),
		Version:     1,
		StaffID:     staffID,
		DateIssued:  time.Now(),
	}
	details := make([]models.BudgetPlanDetail, len(items))
	for i, item := range items {
		details[i] = models.BudgetPlanDetail{
			BudgetItem:     item.Name,
			ProposedBudget: decimal.RequireFromString(item.Amount),
			Category:       item.Category,
		}
	}
	plan.Recompute(details)

	if err := db.Omit("Details").Create(plan).Error; err != nil {
		t.Fatalf("failed to create test plan: %v", err)
	}
	for i := range details {
		details[i].PlanID = plan.ID
		if err := db.Create(&details[i]).Error; err != nil {
			t.Fatalf("failed to create test plan detail: %v", err)
		}
	}
	plan.Details = details
	return plan
}

// ArchiveTestPlan flags a fixture plan as archived.
func ArchiveTestPlan(t *testing.T, db *gorm.DB, plan *models.BudgetPlan) {
	t.Helper()

	if err := db.Model(plan).Update("is_archive", true).Error; err != nil {
		t.Fatalf("failed to archive test plan: %v", err)
	}
	plan.IsArchive = true
}

// DetailByName returns the fixture plan's detail with the given name.
func DetailByName(t *testing.T, plan *models.BudgetPlan, name string) models.BudgetPlanDetail {
	t.Helper()

	for _, d := range plan.Details {
		if d.BudgetItem == name {
			return d
		}
	}
	t.Fatalf("plan %s has no item %q", plan.ID, name)
	return models.BudgetPlanDetail{}
}
