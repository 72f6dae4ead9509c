package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"funbudget/internal/clock"
	"funbudget/internal/models"
	"funbudget/internal/pagination"
	"funbudget/internal/services"
	"funbudget/internal/testutil"
)

func newBudgetService(db *gorm.DB, clk clock.Clock) services.BudgetServicer {
	periods := services.NewPeriodService(db)
	ledger := services.NewLedgerService(db, periods, clk)
	rules := services.NewRuleService(db, periods, clk)
	return services.NewBudgetService(db, periods, ledger, rules, clk)
}

func decPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func TestBudgetService_CreateBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	svc := newBudgetService(db, clk)

	t.Run("creates the budget with its first open period", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		budget, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Groceries",
			OwnerID:        person.ID,
			Currency:       "USD",
			PeriodType:     models.PeriodTypeMonthly,
			OverflowPolicy: models.OverflowPolicyNone,
			StartDate:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		})
		testutil.AssertNoError(t, err)

		if !budget.Enabled {
			t.Error("expected the budget to default to enabled")
		}

		var p models.BudgetPeriod
		testutil.AssertNoError(t, db.Where("budget_id = ?", budget.ID).First(&p).Error)
		if p.Status != models.PeriodStatusOpen {
			t.Errorf("expected an open first period, got %s", p.Status)
		}
		wantStart := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		if !p.StartDate.Equal(wantStart) {
			t.Errorf("expected period start %v, got %v", wantStart, p.StartDate)
		}
	})

	t.Run("records the initial value as income at the period start", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		budget, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Holidays",
			OwnerID:        person.ID,
			Currency:       "EUR",
			PeriodType:     models.PeriodTypeMonthly,
			OverflowPolicy: models.OverflowPolicyNone,
			StartDate:      now,
			InitialValue:   decPtr(decimal.NewFromInt(500)),
		})
		testutil.AssertNoError(t, err)

		var tx models.Transaction
		testutil.AssertNoError(t, db.Where("budget_id = ?", budget.ID).First(&tx).Error)
		if tx.Type != models.TransactionTypeIncome {
			t.Errorf("expected INCOME, got %s", tx.Type)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(500), tx.Amount)
		if tx.Description != "Initial budget value" {
			t.Errorf("unexpected description %q", tx.Description)
		}
		wantDate := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		if !tx.Date.Equal(wantDate) {
			t.Errorf("expected transaction dated %v, got %v", wantDate, tx.Date)
		}
		if tx.PeriodID == nil {
			t.Error("expected the initial value to be tied to the first period")
		}
	})

	t.Run("creates an auto-add rule on the budget's own cadence", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		budget, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Allowance",
			OwnerID:        person.ID,
			Currency:       "USD",
			PeriodType:     models.PeriodTypeMonthly,
			OverflowPolicy: models.OverflowPolicyNone,
			StartDate:      now,
			AutoAddAmount:  decPtr(decimal.NewFromInt(200)),
		})
		testutil.AssertNoError(t, err)

		var rule models.Rule
		testutil.AssertNoError(t, db.Where("budget_id = ?", budget.ID).First(&rule).Error)
		if rule.Frequency != models.PeriodTypeMonthly {
			t.Errorf("expected MONTHLY frequency, got %s", rule.Frequency)
		}
		if rule.ExecutionDay != 1 {
			t.Errorf("expected execution day 1, got %d", rule.ExecutionDay)
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(200), rule.Amount)
		if rule.Description != "Auto add in period" {
			t.Errorf("unexpected description %q", rule.Description)
		}
	})

	t.Run("yearly auto-add rules pack month and day into the execution day", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		budget, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Insurance",
			OwnerID:        person.ID,
			Currency:       "USD",
			PeriodType:     models.PeriodTypeYearly,
			OverflowPolicy: models.OverflowPolicyNone,
			StartDate:      now,
			AutoAddAmount:  decPtr(decimal.NewFromInt(1200)),
		})
		testutil.AssertNoError(t, err)

		// The yearly window containing March 10 starts on January 1.
		var rule models.Rule
		testutil.AssertNoError(t, db.Where("budget_id = ?", budget.ID).First(&rule).Error)
		if rule.ExecutionDay != 101 {
			t.Errorf("expected execution day 101, got %d", rule.ExecutionDay)
		}
	})

	t.Run("requires a limit under the LIMITED policy", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		_, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Capped",
			OwnerID:        person.ID,
			Currency:       "USD",
			PeriodType:     models.PeriodTypeMonthly,
			OverflowPolicy: models.OverflowPolicyLimited,
			StartDate:      now,
		})
		testutil.AssertAppError(t, err, "OVERFLOW_LIMIT_MISSING")
	})

	t.Run("discards the limit under other policies", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		budget, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Uncapped",
			OwnerID:        person.ID,
			Currency:       "USD",
			PeriodType:     models.PeriodTypeMonthly,
			OverflowPolicy: models.OverflowPolicyUnlimited,
			OverflowLimit:  decPtr(decimal.NewFromInt(100)),
			StartDate:      now,
		})
		testutil.AssertNoError(t, err)
		if budget.OverflowLimit != nil {
			t.Errorf("expected no stored limit, got %v", budget.OverflowLimit)
		}
	})

	t.Run("rejects an unrecognized period type", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)

		_, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Weekly",
			OwnerID:        person.ID,
			Currency:       "USD",
			PeriodType:     models.PeriodType("WEEKLY"),
			OverflowPolicy: models.OverflowPolicyNone,
			StartDate:      now,
		})
		testutil.AssertAppError(t, err, "INVALID_PERIOD_TYPE")
	})

	t.Run("returns not found for an unknown owner", func(t *testing.T) {
		_, err := svc.CreateBudget(services.CreateBudgetInput{
			Name:           "Orphan",
			OwnerID:        "0198b2c4-0000-7000-8000-000000000000",
			Currency:       "USD",
			PeriodType:     models.PeriodTypeMonthly,
			OverflowPolicy: models.OverflowPolicyNone,
			StartDate:      now,
		})
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})
}

func TestBudgetService_UpdateBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	clk := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newBudgetService(db, clk)

	t.Run("updates the provided fields only", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		_, err := svc.UpdateBudget(budget.ID, services.UpdateBudgetInput{Name: "Renamed"})
		testutil.AssertNoError(t, err)

		var reloaded models.Budget
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", budget.ID).Error)
		if reloaded.Name != "Renamed" {
			t.Errorf("expected Renamed, got %s", reloaded.Name)
		}
		if reloaded.Currency != budget.Currency {
			t.Error("expected untouched fields to survive")
		}
	})

	t.Run("switching to LIMITED requires a limit", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		limited := models.OverflowPolicyLimited
		_, err := svc.UpdateBudget(budget.ID, services.UpdateBudgetInput{OverflowPolicy: &limited})
		testutil.AssertAppError(t, err, "OVERFLOW_LIMIT_MISSING")
	})

	t.Run("switching away from LIMITED clears the limit", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		limit := decimal.NewFromInt(100)
		budget := testutil.CreateTestBudgetWithPolicy(t, db, person.ID, models.OverflowPolicyLimited, &limit)

		unlimited := models.OverflowPolicyUnlimited
		_, err := svc.UpdateBudget(budget.ID, services.UpdateBudgetInput{OverflowPolicy: &unlimited})
		testutil.AssertNoError(t, err)

		var reloaded models.Budget
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", budget.ID).Error)
		if reloaded.OverflowLimit != nil {
			t.Errorf("expected the limit cleared, got %v", reloaded.OverflowLimit)
		}
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		_, err := svc.UpdateBudget("0198b2c4-0000-7000-8000-000000000000", services.UpdateBudgetInput{Name: "X"})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestBudgetService_GetBudgetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	svc := newBudgetService(db, clk)

	t.Run("includes the open period and the current balance", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		p := testutil.CreateTestPeriod(t, db, budget.ID, start, end, models.PeriodStatusOpen)
		testutil.CreateTestTransaction(t, db, budget.ID, p.ID, models.TransactionTypeIncome, decimal.NewFromInt(80))

		details, err := svc.GetBudgetByID(budget.ID)
		testutil.AssertNoError(t, err)

		if details.Owner.ID != person.ID {
			t.Error("expected the owner to be loaded")
		}
		if details.CurrentPeriod == nil || details.CurrentPeriod.ID != p.ID {
			t.Error("expected the open period in the details")
		}
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(80), details.CurrentBalance)
	})

	t.Run("a budget without periods has a nil current period", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		details, err := svc.GetBudgetByID(budget.ID)
		testutil.AssertNoError(t, err)
		if details.CurrentPeriod != nil {
			t.Errorf("expected nil current period, got %+v", details.CurrentPeriod)
		}
		testutil.AssertDecimalEqual(t, decimal.Zero, details.CurrentBalance)
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		_, err := svc.GetBudgetByID("0198b2c4-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestBudgetService_GetBudgetsByOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	clk := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newBudgetService(db, clk)

	person := testutil.CreateTestPerson(t, db)
	other := testutil.CreateTestPerson(t, db)
	testutil.CreateTestBudget(t, db, person.ID)
	disabled := testutil.CreateTestBudget(t, db, person.ID)
	testutil.CreateTestBudget(t, db, other.ID)

	testutil.AssertNoError(t, db.Model(disabled).Update("enabled", false).Error)

	t.Run("lists only the owner's enabled budgets by default", func(t *testing.T) {
		page, err := svc.GetBudgetsByOwner(person.ID, false, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 1 {
			t.Errorf("expected 1 budget, got %d", page.TotalItems)
		}
		for _, d := range page.Data {
			if d.OwnerID != person.ID {
				t.Errorf("expected only budgets owned by %s", person.ID)
			}
		}
	})

	t.Run("includes disabled budgets on request", func(t *testing.T) {
		page, err := svc.GetBudgetsByOwner(person.ID, true, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 2 {
			t.Errorf("expected 2 budgets, got %d", page.TotalItems)
		}
	})

	t.Run("returns not found for an unknown owner", func(t *testing.T) {
		_, err := svc.GetBudgetsByOwner("0198b2c4-0000-7000-8000-000000000000", false, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "PERSON_NOT_FOUND")
	})
}

func TestBudgetService_SetEnabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	clk := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	svc := newBudgetService(db, clk)

	t.Run("disables and re-enables a budget", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		_, err := svc.SetEnabled(budget.ID, false)
		testutil.AssertNoError(t, err)

		var reloaded models.Budget
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", budget.ID).Error)
		if reloaded.Enabled {
			t.Error("expected the budget to be disabled")
		}

		_, err = svc.SetEnabled(budget.ID, true)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, db.First(&reloaded, "id = ?", budget.ID).Error)
		if !reloaded.Enabled {
			t.Error("expected the budget to be enabled again")
		}
	})

	t.Run("returns not found for an unknown budget", func(t *testing.T) {
		_, err := svc.SetEnabled("0198b2c4-0000-7000-8000-000000000000", true)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestBudgetService_Transfer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	clk := clock.NewFake(now)
	svc := newBudgetService(db, clk)

	t.Run("creates a matched debit and credit pair", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		from := testutil.CreateTestBudget(t, db, person.ID)
		to := testutil.CreateTestBudget(t, db, person.ID)

		err := svc.Transfer(services.TransferInput{
			FromBudgetID: from.ID,
			ToBudgetID:   to.ID,
			Amount:       decimal.NewFromInt(25),
		})
		testutil.AssertNoError(t, err)

		var debit models.Transaction
		testutil.AssertNoError(t, db.Where("budget_id = ?", from.ID).First(&debit).Error)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(-25), debit.Amount)
		if debit.Type != models.TransactionTypeExpense {
			t.Errorf("expected EXPENSE debit, got %s", debit.Type)
		}
		if debit.Description != "Transfer to "+to.Name {
			t.Errorf("unexpected debit description %q", debit.Description)
		}
		if debit.PeriodID == nil {
			t.Error("expected the debit tied to the source budget's period")
		}

		var credit models.Transaction
		testutil.AssertNoError(t, db.Where("budget_id = ?", to.ID).First(&credit).Error)
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(25), credit.Amount)
		if credit.Type != models.TransactionTypeIncome {
			t.Errorf("expected INCOME credit, got %s", credit.Type)
		}
		if credit.Description != "Transfer from "+from.Name {
			t.Errorf("unexpected credit description %q", credit.Description)
		}
		if !credit.Date.Equal(now) {
			t.Errorf("expected the transfer dated %v, got %v", now, credit.Date)
		}
	})

	t.Run("a custom description is used on both legs", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		from := testutil.CreateTestBudget(t, db, person.ID)
		to := testutil.CreateTestBudget(t, db, person.ID)

		err := svc.Transfer(services.TransferInput{
			FromBudgetID: from.ID,
			ToBudgetID:   to.ID,
			Amount:       decimal.NewFromInt(10),
			Description:  "Topping up",
		})
		testutil.AssertNoError(t, err)

		var legs []models.Transaction
		testutil.AssertNoError(t, db.Where("budget_id IN ?", []string{from.ID, to.ID}).Find(&legs).Error)
		if len(legs) != 2 {
			t.Fatalf("expected 2 legs, got %d", len(legs))
		}
		for _, leg := range legs {
			if leg.Description != "Topping up" {
				t.Errorf("unexpected description %q", leg.Description)
			}
		}
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		from := testutil.CreateTestBudget(t, db, person.ID)
		to := testutil.CreateTestBudget(t, db, person.ID)

		err := svc.Transfer(services.TransferInput{
			FromBudgetID: from.ID,
			ToBudgetID:   to.ID,
			Amount:       decimal.Zero,
		})
		testutil.AssertAppError(t, err, "NON_POSITIVE_AMOUNT")
	})

	t.Run("rejects a transfer to the same budget", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		err := svc.Transfer(services.TransferInput{
			FromBudgetID: budget.ID,
			ToBudgetID:   budget.ID,
			Amount:       decimal.NewFromInt(5),
		})
		testutil.AssertAppError(t, err, "SAME_BUDGET_TRANSFER")
	})

	t.Run("returns not found when either budget is missing", func(t *testing.T) {
		person := testutil.CreateTestPerson(t, db)
		budget := testutil.CreateTestBudget(t, db, person.ID)

		err := svc.Transfer(services.TransferInput{
			FromBudgetID: "0198b2c4-0000-7000-8000-000000000000",
			ToBudgetID:   budget.ID,
			Amount:       decimal.NewFromInt(5),
		})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

		err = svc.Transfer(services.TransferInput{
			FromBudgetID: budget.ID,
			ToBudgetID:   "0198b2c4-0000-7000-8000-000000000000",
			Amount:       decimal.NewFromInt(5),
		})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}
