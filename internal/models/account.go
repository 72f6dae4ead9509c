package models

// AccountType represents the type of account
type AccountType string

const (
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
)

// Account represents a real-world financial account transactions may
// originate from. Reference data only; balances live on budgets.
type Account struct {
	Base
	Name                 string      `gorm:"not null" json:"name"`
	Type                 AccountType `gorm:"not null" json:"type"`
	FinancialInstitution string      `json:"financial_institution,omitempty"`
	Active               bool        `gorm:"default:true" json:"active"`
}
