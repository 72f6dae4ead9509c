package models

// Person represents a budget owner.
type Person struct {
	Base
	Name  string `gorm:"not null" json:"name"`
	Email string `json:"email,omitempty"`

	// Relationships
	Budgets []Budget `gorm:"foreignKey:OwnerID" json:"budgets,omitempty"`
}
