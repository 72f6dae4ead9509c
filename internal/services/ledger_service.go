package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"funbudget/internal/clock"
	apperrors "funbudget/internal/errors"
	"funbudget/internal/models"
)

// defaultTransactionLimit caps unbounded transaction listings.
const defaultTransactionLimit = 100

// ledgerService handles append-only transaction creation and the balance
// queries computed from the ledger.
type ledgerService struct {
	db      *gorm.DB
	periods PeriodServicer
	clock   clock.Clock
}

// NewLedgerService creates a new LedgerServicer.
func NewLedgerService(db *gorm.DB, periods PeriodServicer, clk clock.Clock) LedgerServicer {
	return &ledgerService{db: db, periods: periods, clock: clk}
}

// CreateTransaction appends one transaction, or an installment batch when
// Installments > 1. An installment batch is created atomically: either
// every installment row exists afterwards or none does.
func (s *ledgerService) CreateTransaction(input CreateTransactionInput) (*models.Transaction, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", input.BudgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if input.Amount.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be non-zero")
	}

	date := input.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	currentPeriod, err := s.periods.GetCurrentOrCreate(input.BudgetID, s.clock.Now())
	if err != nil {
		// A closed period covering the current window means there is no
		// open period to attach to; the transaction is stored without a
		// period association.
		if !errors.Is(err, apperrors.ErrPeriodWindowClosed) {
			return nil, err
		}
		currentPeriod = nil
	}

	if input.Installments > 1 {
		return s.createInstallments(input, currentPeriod, date)
	}

	tx := &models.Transaction{
		BudgetID:    input.BudgetID,
		PeriodID:    resolvePeriodID(input.PeriodID, currentPeriod, date),
		Amount:      input.Amount,
		Date:        date,
		Description: input.Description,
		PayeeID:     input.PayeeID,
		Type:        input.Type,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// createInstallments splits the total evenly across N installments, each
// dated one month after the previous and suffixed "(i/N)". Each
// installment is independently checked against the current open window.
// Returns the first installment as the representative result.
func (s *ledgerService) createInstallments(input CreateTransactionInput, currentPeriod *models.BudgetPeriod, baseDate time.Time) (*models.Transaction, error) {
	perInstallment := input.Amount.Div(decimal.NewFromInt(int64(input.Installments)))

	transactions := make([]*models.Transaction, 0, input.Installments)
	for i := 0; i < input.Installments; i++ {
		date := baseDate.AddDate(0, i, 0)
		transactions = append(transactions, &models.Transaction{
			BudgetID:    input.BudgetID,
			PeriodID:    resolvePeriodID(input.PeriodID, currentPeriod, date),
			Amount:      perInstallment,
			Date:        date,
			Description: fmt.Sprintf("%s (%d/%d)", input.Description, i+1, input.Installments),
			PayeeID:     input.PayeeID,
			Type:        input.Type,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, t := range transactions {
			if err := tx.Create(t).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions[0], nil
}

// resolvePeriodID returns the explicit override when set; otherwise the
// current open period's id, but only if date falls inside its window.
// Dates outside any tracked window get no period association.
func resolvePeriodID(override *string, currentPeriod *models.BudgetPeriod, date time.Time) *string {
	if override != nil {
		return override
	}
	if currentPeriod != nil && currentPeriod.Contains(date) {
		id := currentPeriod.ID
		return &id
	}
	return nil
}

// DeleteTransaction permanently removes a transaction. No balances are
// stored, so subsequent balance queries simply no longer see the row.
func (s *ledgerService) DeleteTransaction(budgetID, transactionID string) error {
	var tx models.Transaction
	err := s.db.Where("id = ? AND budget_id = ?", transactionID, budgetID).First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Unscoped().Delete(&tx).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetTransactions lists a budget's transactions, newest first.
func (s *ledgerService) GetTransactions(budgetID string, filter TransactionFilter) ([]models.Transaction, error) {
	var budget models.Budget
	if err := s.db.First(&budget, "id = ?", budgetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	q := s.db.Model(&models.Transaction{}).Where("budget_id = ?", budgetID)

	if filter.StartDate != nil {
		q = q.Where("date >= ?", *filter.StartDate)
	}

	end := filter.EndDate
	if filter.PastOnly {
		now := s.clock.Now()
		if end == nil || end.After(now) {
			end = &now
		}
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}

	if filter.Search != "" {
		q = q.Where("description LIKE ?", "%"+filter.Search+"%")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTransactionLimit
	}

	var transactions []models.Transaction
	if err := q.Order("date DESC").Limit(limit).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// CurrentBalance sums every transaction dated at or before now. Future
// dated rows (pre-scheduled installments) are excluded; there is no
// period filter.
func (s *ledgerService) CurrentBalance(budgetID string) (decimal.Decimal, error) {
	var balance decimal.NullDecimal
	err := s.db.Model(&models.Transaction{}).
		Select("SUM(amount)").
		Where("budget_id = ? AND date <= ?", budgetID, s.clock.Now()).
		Scan(&balance).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !balance.Valid {
		return decimal.Zero, nil
	}
	return balance.Decimal, nil
}

// PeriodBalance partitions the period's transactions by type into the
// four balance buckets. The opening balance is fixed at zero: carried
// value enters a period only through its single CARRYOVER transaction.
func (s *ledgerService) PeriodBalance(budgetID, periodID string) (*BalanceBreakdown, error) {
	var p models.BudgetPeriod
	err := s.db.Where("id = ? AND budget_id = ?", periodID, budgetID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPeriodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	err = s.db.Where("budget_id = ? AND period_id = ?", budgetID, periodID).Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	breakdown := &BalanceBreakdown{
		OpeningBalance:     decimal.Zero,
		Carryover:          decimal.Zero,
		RecurringAdditions: decimal.Zero,
		ManualAdditions:    decimal.Zero,
		Expenses:           decimal.Zero,
	}

	for _, tx := range transactions {
		switch tx.Type {
		case models.TransactionTypeCarryover:
			breakdown.Carryover = breakdown.Carryover.Add(tx.Amount)
		case models.TransactionTypeRecurringRule:
			breakdown.RecurringAdditions = breakdown.RecurringAdditions.Add(tx.Amount)
		case models.TransactionTypeIncome:
			breakdown.ManualAdditions = breakdown.ManualAdditions.Add(tx.Amount)
		case models.TransactionTypeExpense:
			// Expenses are stored negative; the bucket accumulates
			// absolute values and stays non-negative.
			breakdown.Expenses = breakdown.Expenses.Add(tx.Amount.Abs())
		}
	}

	breakdown.CurrentBalance = breakdown.OpeningBalance.
		Add(breakdown.Carryover).
		Add(breakdown.RecurringAdditions).
		Add(breakdown.ManualAdditions).
		Sub(breakdown.Expenses)

	return breakdown, nil
}
