package models

// Payee represents a merchant or counterparty a transaction can reference.
type Payee struct {
	Base
	Name string `gorm:"not null;uniqueIndex" json:"name"`
}
