// Package forms decodes flat string values (HTML form posts, JSON bodies,
// spreadsheet rows) onto the models. Only keys present in the input are
// applied, so the same decoders serve create, partial update and import.
package forms

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
)

// Values is one record worth of raw input keyed by json field name.
type Values map[string]string

// DateLayouts are tried in order when parsing a date value.
var DateLayouts = []string{time.RFC3339, time.DateTime, "2006-01-02T15:04", time.DateOnly}

// FromRequest collects values from a JSON object body or a form post.
func FromRequest(r *http.Request) (Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		raw := map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		return FromMap(raw), nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}
	vals := make(Values, len(r.PostForm))
	for k := range r.PostForm {
		vals[k] = r.PostForm.Get(k)
	}
	return vals, nil
}

// FromMap stringifies a decoded JSON object. null becomes "".
func FromMap(raw map[string]any) Values {
	vals := make(Values, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			vals[k] = ""
		case string:
			vals[k] = t
		case float64:
			vals[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			vals[k] = strconv.FormatBool(t)
		default:
			vals[k] = fmt.Sprint(t)
		}
	}
	return vals
}

func (vals Values) str(key string, dst *string) {
	if s, ok := vals[key]; ok {
		*dst = strings.TrimSpace(s)
	}
}

// integer applies an integer when the key holds a non-empty value. Values
// outside 32 bits are rejected and leave dst untouched.
func (vals Values) integer(key string, dst *int, v validation.Violations) {
	s := strings.TrimSpace(vals[key])
	if s == "" {
		return
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// spreadsheets hand integers back as "3.0"
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			v.Add(key, validation.CodeInvalidInteger)
			return
		}
		if f < math.MinInt32 || f > math.MaxInt32 {
			v.Add(key, validation.CodeOutOfRange)
			return
		}
		n = int64(f)
	}
	validation.Int32(key, n, v)
	if _, bad := v[key]; bad {
		return
	}
	*dst = int(n)
}

// ref applies an optional foreign key; a present empty value clears it.
func (vals Values) ref(key string, dst **uint, v validation.Violations) {
	s, ok := vals[key]
	if !ok {
		return
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		*dst = nil
		return
	}
	id, err := ParseID(s)
	if err != nil {
		v.Add(key, validation.CodeInvalidInteger)
		return
	}
	*dst = &id
}

// ParseID parses a positive record id.
func ParseID(s string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

// ParseDate accepts any of DateLayouts; date-only values are UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ApplySupplier decodes supplier fields.
func ApplySupplier(s *models.Supplier, vals Values) validation.Violations {
	v := make(validation.Violations)
	vals.str("company_name", &s.CompanyName)
	return v
}

// ApplyOperator decodes operator fields.
func ApplyOperator(o *models.Operator, vals Values) validation.Violations {
	v := make(validation.Violations)
	if s, ok := vals["supplier_id"]; ok {
		if strings.TrimSpace(s) == "" {
			o.SupplierID = 0
		} else if id, err := ParseID(s); err != nil {
			v.Add("supplier_id", validation.CodeInvalidInteger)
		} else {
			o.SupplierID = id
		}
	}
	vals.str("last_name", &o.LastName)
	vals.str("first_name", &o.FirstName)
	return v
}

// ApplyClient decodes client fields.
func ApplyClient(c *models.Client, vals Values) validation.Violations {
	v := make(validation.Violations)
	if s, ok := vals["client_type"]; ok {
		ct, err := models.ParseClientType(strings.ToUpper(strings.TrimSpace(s)))
		if err != nil {
			v.Add("client_type", validation.CodeInvalidChoice)
		} else {
			c.ClientType = ct
		}
	}
	vals.integer("building_code", &c.BuildingCode, v)
	vals.str("display_name", &c.DisplayName)
	vals.str("last_name", &c.LastName)
	vals.str("first_name", &c.FirstName)
	return v
}

// ApplyIntervention decodes intervention fields.
func ApplyIntervention(i *models.Intervention, vals Values) validation.Violations {
	v := make(validation.Violations)
	if s, ok := vals["date"]; ok {
		if strings.TrimSpace(s) == "" {
			i.Date = nil
		} else if d, err := ParseDate(s); err != nil {
			v.Add("date", validation.CodeInvalidDate)
		} else {
			i.Date = &d
		}
	}
	vals.ref("operator_id", &i.OperatorID, v)
	vals.ref("client_id", &i.ClientID, v)
	vals.str("description", &i.Description)
	vals.integer("duration_minutes", &i.DurationMinutes, v)
	vals.integer("operator_count", &i.OperatorCount, v)
	vals.integer("operator_unit_rate", &i.OperatorUnitRate, v)
	vals.integer("operator_vat_rate", &i.OperatorVATRate, v)
	vals.integer("material_quantity", &i.MaterialQuantity, v)
	vals.integer("material_unit_price", &i.MaterialUnitPrice, v)
	vals.integer("material_vat_rate", &i.MaterialVATRate, v)
	vals.integer("call_out_fee", &i.CallOutFee, v)
	vals.integer("call_out_vat_rate", &i.CallOutVATRate, v)
	if s, ok := vals["invoice_status"]; ok && strings.TrimSpace(s) != "" {
		st := models.InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
		if !st.Valid() {
			v.Add("invoice_status", validation.CodeInvalidChoice)
		} else {
			i.InvoiceStatus = st
		}
	}
	return v
}
