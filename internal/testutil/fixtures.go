package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"funbudget/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestPerson creates a person with a unique name and email.
func CreateTestPerson(t *testing.T, db *gorm.DB) *models.Person {
	t.Helper()

	n := nextID()
	person := &models.Person{
		Name:  fmt.Sprintf("Test Person %d", n),
		Email: fmt.Sprintf("person%d@test.com", n),
	}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}

// CreateTestPayee creates a payee with a unique name.
func CreateTestPayee(t *testing.T, db *gorm.DB) *models.Payee {
	t.Helper()

	payee := &models.Payee{Name: fmt.Sprintf("Test Payee %d", nextID())}
	if err := db.Create(payee).Error; err != nil {
		t.Fatalf("failed to create test payee: %v", err)
	}
	return payee
}

// CreateTestBudget creates an enabled monthly budget with no overflow.
func CreateTestBudget(t *testing.T, db *gorm.DB, ownerID string) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithPolicy(t, db, ownerID, models.OverflowPolicyNone, nil)
}

// CreateTestBudgetWithPolicy creates an enabled monthly budget with the
// given overflow policy and limit.
func CreateTestBudgetWithPolicy(t *testing.T, db *gorm.DB, ownerID string, policy models.OverflowPolicy, limit *decimal.Decimal) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Name:           fmt.Sprintf("Test Budget %d", nextID()),
		OwnerID:        ownerID,
		Currency:       "USD",
		PeriodType:     models.PeriodTypeMonthly,
		OverflowPolicy: policy,
		OverflowLimit:  limit,
		StartDate:      time.Now().Truncate(24 * time.Hour),
		Enabled:        true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestBudgetWithPeriodType creates an enabled budget of the given
// period type with no overflow.
func CreateTestBudgetWithPeriodType(t *testing.T, db *gorm.DB, ownerID string, periodType models.PeriodType) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		Name:           fmt.Sprintf("Test Budget %d", nextID()),
		OwnerID:        ownerID,
		Currency:       "USD",
		PeriodType:     periodType,
		OverflowPolicy: models.OverflowPolicyNone,
		StartDate:      time.Now().Truncate(24 * time.Hour),
		Enabled:        true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestPeriod creates a period with the given window and status.
func CreateTestPeriod(t *testing.T, db *gorm.DB, budgetID string, start, end time.Time, status models.PeriodStatus) *models.BudgetPeriod {
	t.Helper()

	period := &models.BudgetPeriod{
		BudgetID:  budgetID,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	if err := db.Create(period).Error; err != nil {
		t.Fatalf("failed to create test period: %v", err)
	}
	return period
}

// CreateTestTransaction creates a transaction of the given type and amount,
// tied to the given period (which may be empty). The date is pinned inside
// the March 2025 window the fake clocks in the service tests sit in.
func CreateTestTransaction(t *testing.T, db *gorm.DB, budgetID, periodID string, txType models.TransactionType, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		BudgetID:    budgetID,
		Amount:      amount,
		Date:        time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Type:        txType,
	}
	if periodID != "" {
		tx.PeriodID = &periodID
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestRule creates a rule with the given frequency and execution day,
// starting far enough in the past to be in range for any test date and
// never ending.
func CreateTestRule(t *testing.T, db *gorm.DB, budgetID string, frequency models.PeriodType, executionDay int, amount decimal.Decimal) *models.Rule {
	t.Helper()

	rule := &models.Rule{
		BudgetID:     budgetID,
		Amount:       amount,
		Frequency:    frequency,
		ExecutionDay: executionDay,
		StartDate:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		Description:  fmt.Sprintf("Test Rule %d", nextID()),
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("failed to create test rule: %v", err)
	}
	return rule
}
