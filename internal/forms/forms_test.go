package forms

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyIntervention(t *testing.T) {
	i := models.NewIntervention()
	v := ApplyIntervention(i, Values{
		"date":                "2024-05-02",
		"client_id":           "7",
		"description":         "  Riparazione caldaia ",
		"duration_minutes":    "90",
		"material_quantity":   "2.0",
		"material_unit_price": "",
		"invoice_status":      "ft",
	})
	require.True(t, v.Empty(), "%v", v)
	require.NotNil(t, i.Date)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), *i.Date)
	require.NotNil(t, i.ClientID)
	assert.Equal(t, uint(7), *i.ClientID)
	assert.Nil(t, i.OperatorID)
	assert.Equal(t, "Riparazione caldaia", i.Description)
	assert.Equal(t, 90, i.DurationMinutes)
	assert.Equal(t, 2, i.MaterialQuantity)
	assert.Equal(t, 0, i.MaterialUnitPrice)
	assert.Equal(t, 25, i.OperatorUnitRate, "absent keys keep defaults")
	assert.Equal(t, models.InvoiceStatusInvoiced, i.InvoiceStatus)
}

func TestApplyIntervention_Errors(t *testing.T) {
	i := models.NewIntervention()
	v := ApplyIntervention(i, Values{
		"date":             "02/05/2024",
		"operator_id":      "abc",
		"duration_minutes": "1.5",
		"invoice_status":   "XX",
	})
	assert.Equal(t, validation.Violations{
		"date":             validation.CodeInvalidDate,
		"operator_id":      validation.CodeInvalidInteger,
		"duration_minutes": validation.CodeInvalidInteger,
		"invoice_status":   validation.CodeInvalidChoice,
	}, v)
	assert.Equal(t, models.InvoiceStatusToInvoice, i.InvoiceStatus)
}

func TestApplyIntervention_IntegerRange(t *testing.T) {
	i := models.NewIntervention()
	v := ApplyIntervention(i, Values{
		"material_quantity":   "4294967296",
		"material_unit_price": "2147483648",
		"duration_minutes":    "-2147483649",
		"operator_count":      "3e10",
		"operator_unit_rate":  "2147483647",
		"call_out_fee":        "-2147483648",
	})
	assert.Equal(t, validation.Violations{
		"material_quantity":   validation.CodeOutOfRange,
		"material_unit_price": validation.CodeOutOfRange,
		"duration_minutes":    validation.CodeOutOfRange,
		"operator_count":      validation.CodeOutOfRange,
	}, v)
	assert.Equal(t, 0, i.MaterialQuantity, "rejected values are not applied")
	assert.Equal(t, 1, i.OperatorCount)
	assert.Equal(t, 2147483647, i.OperatorUnitRate)
	assert.Equal(t, -2147483648, i.CallOutFee)

	c := &models.Client{}
	v = ApplyClient(c, Values{"building_code": "2147483648"})
	assert.Equal(t, validation.CodeOutOfRange, v["building_code"])
}

func TestApplyIntervention_ClearsReferences(t *testing.T) {
	id := uint(3)
	d := time.Now()
	i := &models.Intervention{OperatorID: &id, ClientID: &id, Date: &d}
	v := ApplyIntervention(i, Values{"operator_id": "", "client_id": "0", "date": ""})
	require.True(t, v.Empty())
	assert.Nil(t, i.OperatorID)
	assert.Nil(t, i.ClientID)
	assert.Nil(t, i.Date)
}

func TestApplyClient(t *testing.T) {
	c := &models.Client{ClientType: models.ClientTypeUndefined}
	v := ApplyClient(c, Values{"client_type": "cd", "building_code": "12", "display_name": "Condominio Rossi"})
	require.True(t, v.Empty())
	assert.Equal(t, "12 - Condominio Rossi", c.Label())

	v = ApplyClient(c, Values{"client_type": "ZZ"})
	assert.Equal(t, validation.CodeInvalidChoice, v["client_type"])
	assert.Equal(t, models.ClientTypeCondominium, c.ClientType)
}

func TestApplyOperator(t *testing.T) {
	o := &models.Operator{}
	v := ApplyOperator(o, Values{"supplier_id": "4", "last_name": "Rossi"})
	require.True(t, v.Empty())
	assert.Equal(t, uint(4), o.SupplierID)

	v = ApplyOperator(o, Values{"supplier_id": "-1"})
	assert.Equal(t, validation.CodeInvalidInteger, v["supplier_id"])
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"2024-01-31T10:00:00Z", "2024-01-31 10:00:00", "2024-01-31T10:00", "2024-01-31"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.January, d.Month())
		assert.Equal(t, 31, d.Day())
	}
	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"description":"a","duration_minutes":30,"client_id":null}`))
	r.Header.Set("Content-Type", "application/json")
	vals, err := FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, Values{"description": "a", "duration_minutes": "30", "client_id": ""}, vals)

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("company_name=Edil+Srl"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	vals, err = FromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "Edil Srl", vals["company_name"])

	r = httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{bad`))
	r.Header.Set("Content-Type", "application/json")
	_, err = FromRequest(r)
	assert.Error(t, err)
}
