package services

import (
	"time"

	"github.com/shopspring/decimal"

	"funbudget/internal/models"
	"funbudget/internal/pagination"
)

// PersonServicer defines the contract for budget-owner reference data.
type PersonServicer interface {
	CreatePerson(name, email string) (*models.Person, error)
	GetPeople(page pagination.PageRequest) (*pagination.PageResponse[models.Person], error)
	GetPersonByID(id string) (*models.Person, error)
	UpdatePerson(id, name, email string) (*models.Person, error)
	DeletePerson(id string) error
}

// PayeeServicer defines the contract for payee reference data.
type PayeeServicer interface {
	CreatePayee(name string) (*models.Payee, error)
	GetPayees(search string, page pagination.PageRequest) (*pagination.PageResponse[models.Payee], error)
	GetPayeeByID(id string) (*models.Payee, error)
	UpdatePayee(id, name string) (*models.Payee, error)
	DeletePayee(id string) error
	FindOrCreatePayee(name string) (*models.Payee, error)
}

// AccountServicer defines the contract for account reference data.
type AccountServicer interface {
	CreateAccount(name string, accountType models.AccountType, financialInstitution string, active bool) (*models.Account, error)
	GetAccounts(page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	GetAccountByID(id string) (*models.Account, error)
}

// PeriodServicer manages budget period records. GetCurrentOrCreate takes
// an explicit anchor instant so callers (and tests) control where the
// window is computed, rather than an implicit "now" buried in a helper.
type PeriodServicer interface {
	// GetCurrentOrCreate returns the budget's OPEN period, creating one
	// anchored at the given instant if none exists. If a CLOSED period
	// already covers the computed window it returns ErrPeriodWindowClosed;
	// the caller decides how to proceed.
	GetCurrentOrCreate(budgetID string, anchor time.Time) (*models.BudgetPeriod, error)

	// GetOpenPeriod returns the budget's OPEN period, or nil without error
	// when the budget has none. It never creates.
	GetOpenPeriod(budgetID string) (*models.BudgetPeriod, error)

	// Close marks the period CLOSED.
	Close(periodID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
	PastOnly  bool
	Limit     int
}

// CreateTransactionInput describes a transaction to append to the ledger.
// PeriodID overrides the automatic association with the current open
// period; when nil, the transaction is tied to the open period only if
// its date falls inside the period window.
type CreateTransactionInput struct {
	BudgetID     string
	Amount       decimal.Decimal
	Date         time.Time
	Description  string
	PayeeID      *string
	Type         models.TransactionType
	Installments int
	PeriodID     *string
}

// BalanceBreakdown partitions a period's transactions into named buckets.
// Expenses is a sum of absolute values and therefore always non-negative;
// the other buckets preserve sign.
type BalanceBreakdown struct {
	OpeningBalance     decimal.Decimal `json:"opening_balance"`
	Carryover          decimal.Decimal `json:"carryover"`
	RecurringAdditions decimal.Decimal `json:"recurring_additions"`
	ManualAdditions    decimal.Decimal `json:"manual_additions"`
	Expenses           decimal.Decimal `json:"expenses"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
}

// LedgerServicer defines the contract for the append-only transaction ledger
// and the balance queries computed from it.
type LedgerServicer interface {
	CreateTransaction(input CreateTransactionInput) (*models.Transaction, error)
	DeleteTransaction(budgetID, transactionID string) error
	GetTransactions(budgetID string, filter TransactionFilter) ([]models.Transaction, error)

	// CurrentBalance is the lifetime running balance: the sum of every
	// transaction dated at or before now, with no period filter.
	CurrentBalance(budgetID string) (decimal.Decimal, error)

	// PeriodBalance computes the bucketed breakdown for one period.
	PeriodBalance(budgetID, periodID string) (*BalanceBreakdown, error)
}

// CreateRuleInput describes a recurring rule to create.
type CreateRuleInput struct {
	BudgetID     string
	Amount       decimal.Decimal
	Frequency    models.PeriodType
	ExecutionDay int
	StartDate    time.Time
	EndDate      *time.Time
	Description  string
}

// RuleExecutionResult reports one rule firing.
type RuleExecutionResult struct {
	RuleID        string          `json:"rule_id"`
	PeriodID      string          `json:"period_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	ExecutedAt    time.Time       `json:"executed_at"`
}

// RuleServicer defines the contract for recurring rules and their execution.
type RuleServicer interface {
	CreateRule(input CreateRuleInput) (*models.Rule, error)
	GetRulesByBudget(budgetID string) ([]models.Rule, error)
	GetAllRules(includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[models.Rule], error)
	DeleteRule(id string) error

	// Execute fires the rule for the current period if due, at most once
	// per period. A nil result with nil error means "no effect".
	Execute(rule *models.Rule) (*RuleExecutionResult, error)

	// ExecuteAllForBudget runs Execute for every rule of the budget and
	// collects the non-nil results. Returns empty if the budget is disabled.
	ExecuteAllForBudget(budgetID string) ([]RuleExecutionResult, error)

	// ExecuteForPeriod evaluates every rule of the budget against the
	// given period's start date, so rules due on the period's first day
	// fire immediately after a rollover.
	ExecuteForPeriod(budgetID, periodID string) ([]RuleExecutionResult, error)
}

// CreateBudgetInput describes a budget to create. InitialValue, when
// positive, records an INCOME transaction at the first period's start.
// AutoAddAmount, when positive, creates a recurring rule matching the
// budget's period type.
type CreateBudgetInput struct {
	Name           string
	OwnerID        string
	Currency       string
	PeriodType     models.PeriodType
	OverflowPolicy models.OverflowPolicy
	OverflowLimit  *decimal.Decimal
	StartDate      time.Time
	Enabled        *bool
	InitialValue   *decimal.Decimal
	AutoAddAmount  *decimal.Decimal
}

// UpdateBudgetInput holds the updatable budget fields; nil/empty fields
// are left unchanged.
type UpdateBudgetInput struct {
	Name           string
	OwnerID        string
	Currency       string
	PeriodType     *models.PeriodType
	OverflowPolicy *models.OverflowPolicy
	OverflowLimit  *decimal.Decimal
	Enabled        *bool
}

// TransferInput describes a fund transfer between two budgets.
type TransferInput struct {
	FromBudgetID string
	ToBudgetID   string
	Amount       decimal.Decimal
	Date         time.Time
	Description  string
}

// BudgetDetails is a budget together with its owner, its current OPEN
// period (if any), and its lifetime balance.
type BudgetDetails struct {
	models.Budget
	CurrentPeriod  *models.BudgetPeriod `json:"current_period,omitempty"`
	CurrentBalance decimal.Decimal      `json:"current_balance"`
}

// BudgetServicer defines the contract for budget management.
type BudgetServicer interface {
	CreateBudget(input CreateBudgetInput) (*models.Budget, error)
	UpdateBudget(id string, input UpdateBudgetInput) (*models.Budget, error)
	GetBudgetByID(id string) (*BudgetDetails, error)
	GetBudgets(includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[BudgetDetails], error)
	GetBudgetsByOwner(ownerID string, includeDisabled bool, page pagination.PageRequest) (*pagination.PageResponse[BudgetDetails], error)
	SetEnabled(id string, enabled bool) (*models.Budget, error)

	// Transfer creates a matched debit/credit pair between two budgets.
	// Both transactions are created atomically or not at all.
	Transfer(input TransferInput) error
}

// RolloverResult reports one completed rollover.
type RolloverResult struct {
	BudgetID        string                `json:"budget_id"`
	ClosedPeriodID  string                `json:"closed_period_id"`
	NewPeriodID     string                `json:"new_period_id"`
	ClosingBalance  decimal.Decimal       `json:"closing_balance"`
	CarryoverAmount decimal.Decimal       `json:"carryover_amount"`
	RuleExecutions  []RuleExecutionResult `json:"rule_executions"`
}

// RolloverServicer defines the contract for the period rollover state machine.
type RolloverServicer interface {
	Rollover(budgetID string) (*RolloverResult, error)
}
