package models

import (
	"fmt"
	"time"
)

// Operator is a worker performing interventions. It always belongs to one
// supplier; deleting the supplier deletes the operator.
type Operator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SupplierID uint      `gorm:"not null;index" json:"supplier_id" validate:"required"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"supplier,omitempty" validate:"-"`

	LastName  string `gorm:"size:200;not null;index" json:"last_name" validate:"required,max=200"`
	FirstName string `gorm:"size:200" json:"first_name" validate:"max=200"`
}

// Label renders "last first [supplier]". A missing first name or supplier
// leaves its slot empty.
func (o *Operator) Label() string {
	supplier := ""
	if o.Supplier != nil {
		supplier = o.Supplier.Label()
	}
	return fmt.Sprintf("%s %s [%s]", o.LastName, o.FirstName, supplier)
}
