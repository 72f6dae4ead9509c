package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"funbudget/internal/clock"
	"funbudget/internal/models"
	"funbudget/internal/services"
	"funbudget/internal/testutil"
)

func TestShouldFire(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		frequency    models.PeriodType
		executionDay int
		endDate      *time.Time
		date         time.Time
		want         bool
	}{
		{"daily fires every day", models.PeriodTypeDaily, 0, nil, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), true},
		{"daily does not fire before start", models.PeriodTypeDaily, 0, nil, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), false},
		{"daily does not fire after end", models.PeriodTypeDaily, 0, &end, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), false},
		{"monthly fires on its day", models.PeriodTypeMonthly, 15, nil, time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC), true},
		{"monthly skips other days", models.PeriodTypeMonthly, 15, nil, time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC), false},
		{"yearly fires on the packed month and day", models.PeriodTypeYearly, 315, nil, time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC), true},
		{"yearly skips matching day in wrong month", models.PeriodTypeYearly, 315, nil, time.Date(2025, 4, 15, 8, 0, 0, 0, time.UTC), false},
		{"yearly skips wrong day in matching month", models.PeriodTypeYearly, 315, nil, time.Date(2025, 3, 16, 8, 0, 0, 0, time.UTC), false},
		{"unknown frequency never fires", models.PeriodType("WEEKLY"), 1, nil, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &models.Rule{
				Frequency:    tt.frequency,
				ExecutionDay: tt.executionDay,
				StartDate:    start,
				EndDate:      tt.endDate,
			}
			if got := services.ShouldFire(rule, tt.date); got != tt.want {
				t.Errorf("ShouldFire(%s, %v) = %v, want %v", tt.frequency, tt.date, got, tt.want)
			}
		})
	}
}

func TestRuleService_CreateRule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	clk := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	periods := services.NewPeriodService(db)
	svc := services.NewRuleService(db, periods, clk)

	t.Run("creates a rule", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		rule, err := svc.CreateRule(services.CreateRuleInput{
			BudgetID:     budget.ID,
			Amount:       decimal.NewFromInt(50),
			Frequency:    models.PeriodTypeMonthly,
			ExecutionDay: 1,
			StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Description:  "Monthly allowance",
		})
		testutil.AssertNoError(t, err)
		if rule.ID == "" {
			t.Error("expected rule to be persisted with an ID")
		}
	})

	t.Run("rejects an unknown frequency", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		_, err := svc.CreateRule(services.CreateRuleInput{
			BudgetID:  budget.ID,
			Amount:    decimal.NewFromInt(50),
			Frequency: models.PeriodType("WEEKLY"),
			StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertAppError(t, err, "INVALID_FREQUENCY")
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		_, err := svc.CreateRule(services.CreateRuleInput{
			BudgetID:  "0198b2c4-0000-7000-8000-000000000000",
			Amount:    decimal.NewFromInt(50),
			Frequency: models.PeriodTypeDaily,
		})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestRuleService_Execute(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	periods := services.NewPeriodService(db)
	svc := services.NewRuleService(db, periods, clk)

	t.Run("fires a due rule exactly once per period", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		rule := testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeMonthly, 10, decimal.NewFromInt(50))

		result, err := svc.Execute(rule)
		testutil.AssertNoError(t, err)
		if result == nil {
			t.Fatal("expected the rule to fire")
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(50), result.Amount)

		// Second execution in the same period has no effect.
		again, err := svc.Execute(rule)
		testutil.AssertNoError(t, err)
		if again != nil {
			t.Errorf("expected no second firing, got %+v", again)
		}

		var count int64
		db.Model(&models.Transaction{}).
			Where("budget_id = ? AND source_rule_id = ? AND type = ?", budget.ID, rule.ID, models.TransactionTypeRecurringRule).
			Count(&count)
		if count != 1 {
			t.Errorf("expected exactly 1 recurring transaction, got %d", count)
		}

		var reloaded models.Rule
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", rule.ID).Error)
		if reloaded.LastExecutedAt == nil {
			t.Error("expected last_executed_at to be recorded")
		}
	})

	t.Run("does nothing when the rule is not due", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		rule := testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeMonthly, 25, decimal.NewFromInt(50))

		result, err := svc.Execute(rule)
		testutil.AssertNoError(t, err)
		if result != nil {
			t.Errorf("expected no firing, got %+v", result)
		}
	})

	t.Run("skips rules of disabled budgets", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		testutil.AssertNoError(t, db.Model(budget).Update("enabled", false).Error)
		rule := testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeDaily, 0, decimal.NewFromInt(50))

		result, err := svc.Execute(rule)
		testutil.AssertNoError(t, err)
		if result != nil {
			t.Errorf("expected no firing for a disabled budget, got %+v", result)
		}
	})
}

func TestRuleService_ExecuteAllForBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	periods := services.NewPeriodService(db)
	svc := services.NewRuleService(db, periods, clk)

	t.Run("collects firings and skips rules that are not due", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeDaily, 0, decimal.NewFromInt(5))
		testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeMonthly, 10, decimal.NewFromInt(50))
		testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeMonthly, 25, decimal.NewFromInt(75))

		results, err := svc.ExecuteAllForBudget(budget.ID)
		testutil.AssertNoError(t, err)
		if len(results) != 2 {
			t.Fatalf("expected 2 firings, got %d", len(results))
		}
	})

	t.Run("returns empty for a disabled budget", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		testutil.AssertNoError(t, db.Model(budget).Update("enabled", false).Error)
		testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeDaily, 0, decimal.NewFromInt(5))

		results, err := svc.ExecuteAllForBudget(budget.ID)
		testutil.AssertNoError(t, err)
		if len(results) != 0 {
			t.Errorf("expected no firings, got %d", len(results))
		}
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		_, err := svc.ExecuteAllForBudget("0198b2c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestRuleService_ExecuteForPeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	periods := services.NewPeriodService(db)
	svc := services.NewRuleService(db, periods, clk)

	t.Run("fires rules due on the period's first day", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		p, err := periods.GetCurrentOrCreate(budget.ID, now)
		testutil.AssertNoError(t, err)

		// Due on day 1, which the scheduled pass at "now" (day 10) would miss.
		rule := testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeMonthly, 1, decimal.NewFromInt(50))

		results, err := svc.ExecuteForPeriod(budget.ID, p.ID)
		testutil.AssertNoError(t, err)
		if len(results) != 1 {
			t.Fatalf("expected 1 firing, got %d", len(results))
		}

		var tx models.Transaction
		testutil.AssertNoError(t, db.First(&tx, "id = ?", results[0].TransactionID).Error)
		if !tx.Date.Equal(p.StartDate) {
			t.Errorf("expected transaction dated at period start %v, got %v", p.StartDate, tx.Date)
		}
		if tx.SourceRuleID == nil || *tx.SourceRuleID != rule.ID {
			t.Error("expected transaction to reference its source rule")
		}
	})

	t.Run("is idempotent per period", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)
		p, err := periods.GetCurrentOrCreate(budget.ID, now)
		testutil.AssertNoError(t, err)
		testutil.CreateTestRule(t, db, budget.ID, models.PeriodTypeDaily, 0, decimal.NewFromInt(5))

		first, err := svc.ExecuteForPeriod(budget.ID, p.ID)
		testutil.AssertNoError(t, err)
		if len(first) != 1 {
			t.Fatalf("expected 1 firing, got %d", len(first))
		}

		second, err := svc.ExecuteForPeriod(budget.ID, p.ID)
		testutil.AssertNoError(t, err)
		if len(second) != 0 {
			t.Errorf("expected no firings on retry, got %d", len(second))
		}
	})

	t.Run("returns not found for an unknown period", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		_, err := svc.ExecuteForPeriod(budget.ID, "0198b2c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "PERIOD_NOT_FOUND")
	})
}
