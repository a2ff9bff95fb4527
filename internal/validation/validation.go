// Package validation reports field level problems as a map of field name to
// a short code that the UI translates.
package validation

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation codes.
const (
	CodeRequired       = "required"
	CodeTooLong        = "too_long"
	CodeInvalidChoice  = "invalid_choice"
	CodeInvalidInteger = "invalid_integer"
	CodeInvalidDate    = "invalid_date"
	CodeNotFound       = "not_found"
	CodeOutOfRange     = "out_of_range"
	CodeInvalid        = "invalid"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v.Add(field, CodeTooLong)
	}
}

func RangeInt(field string, val, minVal, maxVal int64, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, CodeOutOfRange)
	}
}

// Int32 bounds integer columns to 32 bits, so a product of two stored values
// always fits in an int64.
func Int32(field string, val int64, v Violations) {
	RangeInt(field, val, math.MinInt32, math.MaxInt32, v)
}

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct runs the `validate` tags of s and converts failures to violations
// keyed by json field name.
func Struct(s any) Violations {
	v := make(Violations)
	err := validate.Struct(s)
	if err == nil {
		return v
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		v.Add("_", CodeInvalid)
		return v
	}
	for _, fe := range ve {
		v.Add(fe.Field(), codeFor(fe.Tag()))
	}
	return v
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return CodeRequired
	case "max":
		return CodeTooLong
	case "oneof":
		return CodeInvalidChoice
	default:
		return CodeInvalid
	}
}
