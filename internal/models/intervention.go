package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/billing"
)

// InvoiceStatus tracks whether an intervention has been billed.
type InvoiceStatus string

const (
	InvoiceStatusNotInvoiceable InvoiceStatus = "NF"
	InvoiceStatusToInvoice      InvoiceStatus = "DF"
	InvoiceStatusInvoiced       InvoiceStatus = "FT"
)

// InvoiceStatuses lists the accepted codes in display order.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusNotInvoiceable, InvoiceStatusToInvoice, InvoiceStatusInvoiced}

// Valid reports whether s is one of the enumerated codes.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusNotInvoiceable, InvoiceStatusToInvoice, InvoiceStatusInvoiced:
		return true
	}
	return false
}

var (
	// ErrMissingRequiredField is the condition behind every label that cannot
	// be composed from the stored data.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrMissingDate is returned by Intervention.Label when no date is set.
	ErrMissingDate = fmt.Errorf("%w: date", ErrMissingRequiredField)
)

// Defaults applied to new interventions.
const (
	DefaultOperatorCount    = 1
	DefaultOperatorUnitRate = 25
	DefaultVATRate          = 22
	DefaultCallOutFee       = 25
)

// Intervention is a billable service visit. The monetary totals are not
// stored; see Totals.
type Intervention struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Date *time.Time `gorm:"index" json:"date"`

	OperatorID *uint     `gorm:"index" json:"operator_id"`
	Operator   *Operator `gorm:"foreignKey:OperatorID;constraint:OnDelete:CASCADE" json:"operator,omitempty" validate:"-"`
	ClientID   *uint     `gorm:"index" json:"client_id"`
	Client     *Client   `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty" validate:"-"`

	Description string `gorm:"size:200;not null" json:"description" validate:"required,max=200"`

	DurationMinutes  int `gorm:"not null" json:"duration_minutes"`
	OperatorCount    int `gorm:"not null" json:"operator_count"`
	OperatorUnitRate int `gorm:"not null" json:"operator_unit_rate"`
	OperatorVATRate  int `gorm:"not null" json:"operator_vat_rate"`

	MaterialQuantity  int `gorm:"not null" json:"material_quantity"`
	MaterialUnitPrice int `gorm:"not null" json:"material_unit_price"`
	MaterialVATRate   int `gorm:"not null" json:"material_vat_rate"`

	// Call-out fields are recorded but no total reads them.
	CallOutFee     int `gorm:"not null" json:"call_out_fee"`
	CallOutVATRate int `gorm:"not null" json:"call_out_vat_rate"`

	InvoiceStatus InvoiceStatus `gorm:"size:2;not null;index" json:"invoice_status" validate:"oneof=NF DF FT"`
}

// NewIntervention returns an intervention carrying the default rates and
// status. Zero values are legitimate inputs, so defaults are never filled in
// by the database.
func NewIntervention() *Intervention {
	return &Intervention{
		OperatorCount:    DefaultOperatorCount,
		OperatorUnitRate: DefaultOperatorUnitRate,
		OperatorVATRate:  DefaultVATRate,
		MaterialVATRate:  DefaultVATRate,
		CallOutFee:       DefaultCallOutFee,
		CallOutVATRate:   DefaultVATRate,
		InvoiceStatus:    InvoiceStatusToInvoice,
	}
}

// BillingInputs snapshots the integer fields read by the calculator.
func (i *Intervention) BillingInputs() billing.Inputs {
	return billing.Inputs{
		DurationMinutes:   i.DurationMinutes,
		OperatorCount:     i.OperatorCount,
		OperatorUnitRate:  i.OperatorUnitRate,
		OperatorVATRate:   i.OperatorVATRate,
		MaterialQuantity:  i.MaterialQuantity,
		MaterialUnitPrice: i.MaterialUnitPrice,
		MaterialVATRate:   i.MaterialVATRate,
		CallOutFee:        i.CallOutFee,
		CallOutVATRate:    i.CallOutVATRate,
	}
}

// Totals recomputes the nine billing figures from the stored fields.
func (i *Intervention) Totals() billing.Totals {
	return billing.Compute(i.BillingInputs())
}

// DateOnly formats the date as YYYY-MM-DD, or "" when unset.
func (i *Intervention) DateOnly() string {
	if i.Date == nil {
		return ""
	}
	return i.Date.Format(time.DateOnly)
}

// ClientLabel is the label of the related client, or "" when none is loaded.
func (i *Intervention) ClientLabel() string {
	if i.Client == nil {
		return ""
	}
	return i.Client.Label()
}

// OperatorLabel is the label of the related operator, or "" when none is loaded.
func (i *Intervention) OperatorLabel() string {
	if i.Operator == nil {
		return ""
	}
	return i.Operator.Label()
}

// Label renders "YYYY-MM-DD client: description".
func (i *Intervention) Label() (string, error) {
	if i.Date == nil {
		return "", ErrMissingDate
	}
	return fmt.Sprintf("%s %s: %s", i.DateOnly(), i.ClientLabel(), i.Description), nil
}
