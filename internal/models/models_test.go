package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Label(t *testing.T) {
	tests := []struct {
		name   string
		client Client
		want   string
	}{
		{"condominium", Client{ClientType: ClientTypeCondominium, BuildingCode: 12, DisplayName: "Condominio Rossi"}, "12 - Condominio Rossi"},
		{"condominium with names", Client{ClientType: ClientTypeCondominium, BuildingCode: 3, DisplayName: "Via Roma", LastName: "Verdi", FirstName: "Anna"}, "3 - Via Roma Verdi  Anna"},
		{"person last name only", Client{ClientType: ClientTypePerson, LastName: "Bianchi"}, "Sig./Sig.ra  Bianchi "},
		{"person full name", Client{ClientType: ClientTypePerson, LastName: "Bianchi", FirstName: "Luca"}, "Sig./Sig.ra  Bianchi  Luca"},
		{"person no names", Client{ClientType: ClientTypePerson}, "Sig./Sig.ra "},
		{"company ignores display name", Client{ClientType: ClientTypeCompany, DisplayName: "ACME", LastName: "Neri"}, " Neri "},
		{"undefined first name only", Client{ClientType: ClientTypeUndefined, FirstName: "Marco"}, " Marco"},
		{"undefined empty", Client{ClientType: ClientTypeUndefined}, ""},
		{"condominium zero code", Client{ClientType: ClientTypeCondominium}, "0 - "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.client.Label())
		})
	}
}

func TestParseClientType(t *testing.T) {
	for _, ct := range ClientTypes {
		got, err := ParseClientType(string(ct))
		require.NoError(t, err)
		assert.Equal(t, ct, got)
	}

	got, err := ParseClientType("")
	require.NoError(t, err)
	assert.Equal(t, ClientTypeUndefined, got)

	_, err = ParseClientType("XX")
	assert.ErrorIs(t, err, ErrInvalidClientType)
	assert.False(t, ClientType("cd").Valid())
}

func TestOperator_Label(t *testing.T) {
	o := Operator{LastName: "Rossi", FirstName: "Mario", Supplier: &Supplier{CompanyName: "Edil Srl"}}
	assert.Equal(t, "Rossi Mario [Edil Srl]", o.Label())

	o = Operator{LastName: "Rossi"}
	assert.Equal(t, "Rossi  []", o.Label())
}

func TestNewIntervention_Defaults(t *testing.T) {
	i := NewIntervention()
	assert.Equal(t, 0, i.DurationMinutes)
	assert.Equal(t, 1, i.OperatorCount)
	assert.Equal(t, 25, i.OperatorUnitRate)
	assert.Equal(t, 22, i.OperatorVATRate)
	assert.Equal(t, 0, i.MaterialQuantity)
	assert.Equal(t, 0, i.MaterialUnitPrice)
	assert.Equal(t, 22, i.MaterialVATRate)
	assert.Equal(t, 25, i.CallOutFee)
	assert.Equal(t, 22, i.CallOutVATRate)
	assert.Equal(t, InvoiceStatusToInvoice, i.InvoiceStatus)
	assert.True(t, i.InvoiceStatus.Valid())
	assert.False(t, InvoiceStatus("XX").Valid())
}

func TestIntervention_Totals(t *testing.T) {
	i := NewIntervention()
	i.MaterialQuantity = 2
	i.MaterialUnitPrice = 50
	i.DurationMinutes = 60

	got := i.Totals()
	assert.Equal(t, 100.0, got.MaterialSubtotal)
	assert.Equal(t, 22.0, got.MaterialVAT)
	assert.Equal(t, 122.0, got.MaterialTotal)
	assert.Equal(t, 25.0, got.LaborSubtotal)
	assert.Equal(t, 5.5, got.LaborVAT)
	assert.Equal(t, 30.5, got.LaborTotal)
	assert.Equal(t, 125.0, got.GrandSubtotal)
	assert.Equal(t, 27.5, got.GrandVAT)
	assert.Equal(t, 152.5, got.GrandTotal)
	assert.Equal(t, got, i.Totals())
}

func TestIntervention_Label(t *testing.T) {
	d := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	i := Intervention{
		Date:        &d,
		Client:      &Client{ClientType: ClientTypeCondominium, BuildingCode: 12, DisplayName: "Condominio Rossi"},
		Description: "Sostituzione rubinetto",
	}
	label, err := i.Label()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09 12 - Condominio Rossi: Sostituzione rubinetto", label)

	i.Client = nil
	label, err = i.Label()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09 : Sostituzione rubinetto", label)
}

func TestIntervention_LabelMissingDate(t *testing.T) {
	i := Intervention{Description: "x"}
	_, err := i.Label()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingDate))
	assert.True(t, errors.Is(err, ErrMissingRequiredField))
	assert.Equal(t, "", i.DateOnly())
}

func TestPermission_Code(t *testing.T) {
	p := Permission{ResourceType: "intervention", Action: "update"}
	assert.Equal(t, "intervention:update", p.Code())
}
