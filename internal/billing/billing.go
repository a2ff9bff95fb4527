// Package billing derives the monetary figures of an intervention from its
// stored integer inputs. Every figure is rounded to two decimals on its own
// and later figures are built from the already rounded ones.
package billing

import (
	"strconv"
	"strings"
)

// FixedVATRate is the rate applied to materials and labour. The per
// intervention rate fields are stored but not read here.
const FixedVATRate = 22

// Inputs is an immutable snapshot of the billing fields of an intervention.
type Inputs struct {
	DurationMinutes   int
	OperatorCount     int
	OperatorUnitRate  int
	OperatorVATRate   int
	MaterialQuantity  int
	MaterialUnitPrice int
	MaterialVATRate   int
	CallOutFee        int
	CallOutVATRate    int
}

// Totals holds the nine derived figures.
type Totals struct {
	MaterialSubtotal float64 `json:"material_subtotal"`
	MaterialVAT      float64 `json:"material_vat"`
	MaterialTotal    float64 `json:"material_total"`
	LaborSubtotal    float64 `json:"labor_subtotal"`
	LaborVAT         float64 `json:"labor_vat"`
	LaborTotal       float64 `json:"labor_total"`
	GrandSubtotal    float64 `json:"grand_subtotal"`
	GrandVAT         float64 `json:"grand_vat"`
	GrandTotal       float64 `json:"grand_total"`
}

// Compute evaluates every figure for in.
func Compute(in Inputs) Totals {
	return Totals{
		MaterialSubtotal: MaterialSubtotal(in),
		MaterialVAT:      MaterialVAT(in),
		MaterialTotal:    MaterialTotal(in),
		LaborSubtotal:    LaborSubtotal(in),
		LaborVAT:         LaborVAT(in),
		LaborTotal:       LaborTotal(in),
		GrandSubtotal:    GrandSubtotal(in),
		GrandVAT:         GrandVAT(in),
		GrandTotal:       GrandTotal(in),
	}
}

func MaterialSubtotal(in Inputs) float64 {
	return Round2(float64(int64(in.MaterialQuantity) * int64(in.MaterialUnitPrice)))
}

func MaterialVAT(in Inputs) float64 {
	amount := float64(int64(in.MaterialQuantity) * int64(in.MaterialUnitPrice))
	return Round2(amount / 100 * FixedVATRate)
}

func MaterialTotal(in Inputs) float64 {
	return Round2(MaterialSubtotal(in) + MaterialVAT(in))
}

// LaborSubtotal prices the duration at the per-hour operator rate, times the
// number of operators.
func LaborSubtotal(in Inputs) float64 {
	perOperator := float64(in.OperatorUnitRate) / 60 * float64(in.DurationMinutes)
	return Round2(float64(in.OperatorCount) * perOperator)
}

func LaborVAT(in Inputs) float64 {
	return Round2(LaborSubtotal(in) / 100 * FixedVATRate)
}

func LaborTotal(in Inputs) float64 {
	return Round2(LaborSubtotal(in) + LaborVAT(in))
}

func GrandSubtotal(in Inputs) float64 {
	return Round2(MaterialSubtotal(in) + LaborSubtotal(in))
}

func GrandVAT(in Inputs) float64 {
	return Round2(MaterialVAT(in) + LaborVAT(in))
}

func GrandTotal(in Inputs) float64 {
	return Round2(GrandVAT(in) + GrandSubtotal(in))
}

// Round2 formats v with two fractional digits and parses it back. The 'f'
// formatter rounds the exact binary value, ties to even.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Euro renders an amount the way the admin screens show it: shortest
// representation with at least one fractional digit ("122.0 €", "5.5 €").
func Euro(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + " €"
}
