package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodType represents the cadence at which a budget's periods roll over.
type PeriodType string

const (
	PeriodTypeDaily   PeriodType = "DAILY"
	PeriodTypeMonthly PeriodType = "MONTHLY"
	PeriodTypeYearly  PeriodType = "YEARLY"
)

// OverflowPolicy governs how much of a closing balance carries into the
// next period when a budget rolls over.
type OverflowPolicy string

const (
	OverflowPolicyNone      OverflowPolicy = "NONE"
	OverflowPolicyLimited   OverflowPolicy = "LIMITED"
	OverflowPolicyUnlimited OverflowPolicy = "UNLIMITED"
)

// Budget represents a household budget owned by a person. OverflowLimit is
// only meaningful when OverflowPolicy is LIMITED; it is kept nil otherwise.
type Budget struct {
	Base
	Name           string           `gorm:"not null" json:"name"`
	OwnerID        string           `gorm:"type:uuid;not null" json:"owner_id"`
	Currency       string           `gorm:"not null" json:"currency"`
	PeriodType     PeriodType       `gorm:"not null" json:"period_type"`
	OverflowPolicy OverflowPolicy   `gorm:"not null" json:"overflow_policy"`
	OverflowLimit  *decimal.Decimal `gorm:"type:DECIMAL(20,8)" json:"overflow_limit,omitempty"`
	StartDate      time.Time        `gorm:"not null" json:"start_date"`
	Enabled        bool             `gorm:"default:true" json:"enabled"`

	// Relationships
	Owner   Person         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Periods []BudgetPeriod `gorm:"foreignKey:BudgetID" json:"periods,omitempty"`
	Rules   []Rule         `gorm:"foreignKey:BudgetID" json:"rules,omitempty"`
}
