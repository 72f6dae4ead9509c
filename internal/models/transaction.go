package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome        TransactionType = "INCOME"
	TransactionTypeExpense       TransactionType = "EXPENSE"
	TransactionTypeRecurringRule TransactionType = "RECURRING_RULE"
	TransactionTypeCarryover     TransactionType = "CARRYOVER"
)

// Transaction is an immutable ledger entry against a budget.
//
// Sign convention (shared with the balance aggregation in the ledger
// service): Amount is signed, positive = credit, negative = debit.
// EXPENSE transactions are stored negative and aggregated by absolute
// value; CARRYOVER and RECURRING_RULE amounts keep the sign the rule or
// carryover computation produced.
type Transaction struct {
	Base
	BudgetID    string          `gorm:"type:uuid;not null" json:"budget_id"`
	PeriodID    *string         `gorm:"type:uuid" json:"period_id,omitempty"`
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `json:"description"`
	PayeeID     *string         `gorm:"type:uuid" json:"payee_id,omitempty"`
	Type        TransactionType `gorm:"not null" json:"type"`

	// Set only for RECURRING_RULE transactions; keys the per-period
	// idempotency check for rule execution.
	SourceRuleID *string `gorm:"type:uuid" json:"source_rule_id,omitempty"`

	// Relationships
	Budget Budget        `gorm:"foreignKey:BudgetID" json:"-"`
	Period *BudgetPeriod `gorm:"foreignKey:PeriodID" json:"-"`
	Payee  *Payee        `gorm:"foreignKey:PayeeID" json:"payee,omitempty"`
}
