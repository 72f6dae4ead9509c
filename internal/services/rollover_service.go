package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"funbudget/internal/clock"
	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
	"funbudget/internal/period"
)

// rolloverService drives the period state machine: close the current
// period, carry the closing balance forward under the budget's overflow
// policy, open the next period, and fire rules due on its first day.
//
// The steps run sequentially without a surrounding store transaction; a
// failure mid-sequence leaves earlier steps applied. Every step is safe
// to retry: closing is a no-op on a closed period, period creation
// reuses the existing window, and carryover and rule firing are guarded
// by existence checks.
type rolloverService struct {
	db      *gorm.DB
	periods PeriodServicer
	ledger  LedgerServicer
	rules   RuleServicer
	clock   clock.Clock
}

// NewRolloverService creates a new RolloverServicer.
func NewRolloverService(db *gorm.DB, periods PeriodServicer, ledger LedgerServicer, rules RuleServicer, clk clock.Clock) RolloverServicer {
	return &rolloverService{db: db, periods: periods, ledger: ledger, rules: rules, clock: clk}
}

// Rollover closes the budget's current period and opens the next one.
func (s *rolloverService) Rollover(budgetID string) (*RolloverResult, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	currentPeriod, err := s.periods.GetCurrentOrCreate(budgetID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	breakdown, err := s.ledger.PeriodBalance(budgetID, currentPeriod.ID)
	if err != nil {
		return nil, err
	}
	closingBalance := breakdown.CurrentBalance

	if err := s.periods.Close(currentPeriod.ID); err != nil {
		return nil, err
	}

	// Derive the next window from the closed period's start date. The
	// stored end date may be truncated to the store's timestamp
	// precision, so anchoring just past it could land back inside the
	// window that was just closed.
	next, err := period.Next(budget.PeriodType, period.Window{Start: currentPeriod.StartDate, End: currentPeriod.EndDate})
	if err != nil {
		return nil, err
	}
	newPeriod, err := s.periods.GetCurrentOrCreate(budgetID, next.Start)
	if err != nil {
		return nil, err
	}

	carryoverAmount := carryover(&budget, closingBalance)

	if carryoverAmount.IsPositive() {
		if err := s.createCarryover(&budget, newPeriod, carryoverAmount); err != nil {
			return nil, err
		}
	}

	ruleResults, err := s.rules.ExecuteForPeriod(budgetID, newPeriod.ID)
	if err != nil {
		return nil, err
	}

	return &RolloverResult{
		BudgetID:        budgetID,
		ClosedPeriodID:  currentPeriod.ID,
		NewPeriodID:     newPeriod.ID,
		ClosingBalance:  closingBalance,
		CarryoverAmount: carryoverAmount,
		RuleExecutions:  ruleResults,
	}, nil
}

// carryover applies the budget's overflow policy to a closing balance.
// LIMITED caps at the limit but does not floor at zero: a negative
// closing balance smaller than the limit carries over as-is (and is then
// dropped by the positive-amount guard before a transaction is written).
func carryover(budget *models.Budget, closingBalance decimal.Decimal) decimal.Decimal {
	switch budget.OverflowPolicy {
	case models.OverflowPolicyLimited:
		limit := decimal.Zero
		if budget.OverflowLimit != nil {
			limit = *budget.OverflowLimit
		}
		return decimal.Min(closingBalance, limit)
	case models.OverflowPolicyUnlimited:
		return closingBalance
	default:
		return decimal.Zero
	}
}

// createCarryover writes the CARRYOVER transaction into the new period,
// unless a retry already wrote one. The guard mirrors the rule execution
// idempotency check.
func (s *rolloverService) createCarryover(budget *models.Budget, newPeriod *models.BudgetPeriod, amount decimal.Decimal) error {
	var existing models.Transaction
	err := s.db.Where("budget_id = ? AND period_id = ? AND type = ?",
		budget.ID, newPeriod.ID, models.TransactionTypeCarryover).
		First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	periodID := newPeriod.ID
	tx := &models.Transaction{
		BudgetID:    budget.ID,
		PeriodID:    &periodID,
		Amount:      amount,
		Date:        newPeriod.StartDate,
		Description: "Carryover from previous period",
		Type:        models.TransactionTypeCarryover,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
