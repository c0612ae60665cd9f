package testutil_test

import (
	"testing"

	"budgetplan/internal/errors"
	"budgetplan/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"staff", "budget_plans", "budget_plan_details", "budget_plan_histories", "budget_plan_detail_histories", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	staff := testutil.CreateTestStaff(t, first)
	testutil.CreateTestPlan(t, first, staff.ID, 2024)

	var count int64
	if err := second.Table("budget_plans").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected a fresh database, found %d plans", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	staff := testutil.CreateTestStaff(t, db)
	if staff.ID == "" {
		t.Fatal("staff should have an ID")
	}

	plan := testutil.CreateTestPlan(t, db, staff.ID, 2024)
	if plan.ID == "" {
		t.Fatal("plan should have an ID")
	}
	if len(plan.Details) != len(testutil.DefaultItems) {
		t.Fatalf("expected %d details, got %d", len(testutil.DefaultItems), len(plan.Details))
	}
	testutil.AssertDecimal(t, plan.NetAvailableResources(), "35000", "net available resources")
	testutil.AssertDecimal(t, plan.BudgetaryObligations, "25500", "budgetary obligations")
	testutil.AssertDecimal(t, plan.BalUnappropriated, "9500", "unappropriated balance")

	travel := testutil.DetailByName(t, plan, "Traveling Expense")
	if travel.PlanID != plan.ID {
		t.Errorf("expected detail to belong to plan %s, got %s", plan.ID, travel.PlanID)
	}

	testutil.ArchiveTestPlan(t, db, plan)
	var archived bool
	if err := db.Table("budget_plans").Select("is_archive").Where("id = ?", plan.ID).Scan(&archived).Error; err != nil {
		t.Fatalf("failed to read plan: %v", err)
	}
	if !archived {
		t.Error("expected plan to be archived")
	}
}

func TestAssertAppError(t *testing.T) {
	t.Run("matches code on wrapped error", func(t *testing.T) {
		testutil.AssertAppError(t, errors.Wrap(errors.ErrTransferFailed, errors.ErrPlanVersionConflict), "TRANSFER_FAILED")
	})

	t.Run("no error passes", func(t *testing.T) {
		testutil.AssertNoError(t, nil)
	})
}

func TestAssertDecimal(t *testing.T) {
	testutil.AssertDecimal(t, decimal.RequireFromString("5000.0000"), "5000", "scale-insensitive")
}
