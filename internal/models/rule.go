package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rule is a recurring scheduled addition to a budget's balance. It fires
// at most once per period; idempotency is enforced by looking up the
// RECURRING_RULE transaction it produced, not by LastExecutedAt, which is
// informational only.
//
// ExecutionDay encoding depends on Frequency:
//   - DAILY: ignored
//   - MONTHLY: day of month, 1-31
//   - YEARLY: packed MMDD integer, e.g. 315 = March 15
type Rule struct {
	Base
	BudgetID       string          `gorm:"type:uuid;not null" json:"budget_id"`
	Amount         decimal.Decimal `gorm:"type:DECIMAL(20,8);not null" json:"amount"`
	Frequency      PeriodType      `gorm:"not null" json:"frequency"`
	ExecutionDay   int             `gorm:"not null" json:"execution_day"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Description    string          `json:"description"`
	LastExecutedAt *time.Time      `json:"last_executed_at,omitempty"`

	// Relationships
	Budget Budget `gorm:"foreignKey:BudgetID" json:"-"`
}
