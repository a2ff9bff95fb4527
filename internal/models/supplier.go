package models

import "time"

// Supplier is the agency that employs operators.
type Supplier struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CompanyName string    `gorm:"size:200;not null;index" json:"company_name" validate:"required,max=200"`
}

// Label is the display text of the supplier.
func (s *Supplier) Label() string {
	return s.CompanyName
}
