package models

import "time"

// PeriodStatus represents the lifecycle state of a budget period.
type PeriodStatus string

const (
	PeriodStatusOpen   PeriodStatus = "OPEN"
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// BudgetPeriod is a bounded time window during which a budget accrues
// transactions. EndDate is inclusive (last nanosecond of the window).
// A budget has at most one OPEN period at a time; that invariant is
// enforced by the rollover protocol, while the unique index below
// guards against two periods sharing a start date. Windows are keyed by
// start date alone because stored end dates lose sub-microsecond
// precision and are not reliable for equality.
type BudgetPeriod struct {
	Base
	BudgetID  string       `gorm:"type:uuid;not null;uniqueIndex:idx_period_window" json:"budget_id"`
	StartDate time.Time    `gorm:"not null;uniqueIndex:idx_period_window" json:"start_date"`
	EndDate   time.Time    `gorm:"not null" json:"end_date"`
	Status    PeriodStatus `gorm:"not null;default:'OPEN'" json:"status"`

	// Relationships
	Budget Budget `gorm:"foreignKey:BudgetID" json:"-"`
}

// Contains reports whether t falls within the period's inclusive window.
func (p *BudgetPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}
