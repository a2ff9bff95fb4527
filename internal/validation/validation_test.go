package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name   string `json:"name" validate:"required,max=5"`
	Kind   string `json:"kind" validate:"oneof=A B"`
	Hidden string `json:"-"`
}

func TestStruct(t *testing.T) {
	v := Struct(sample{Name: "", Kind: "C"})
	assert.Equal(t, Violations{"name": CodeRequired, "kind": CodeInvalidChoice}, v)

	v = Struct(sample{Name: "toolong", Kind: "A"})
	assert.Equal(t, Violations{"name": CodeTooLong}, v)

	assert.True(t, Struct(sample{Name: "ok", Kind: "B"}).Empty())
}

func TestHelpers(t *testing.T) {
	v := make(Violations)
	Required("a", "  ", v)
	MaxLen("b", "àèìòù", 4, v)
	MaxLen("c", "àèìò", 4, v)
	RangeInt("e", 5, 1, 3, v)
	Int32("f", 1<<31, v)
	Int32("g", -(1 << 31), v)
	Int32("h", -(1<<31)-1, v)

	assert.Equal(t, CodeRequired, v["a"])
	assert.Equal(t, CodeTooLong, v["b"])
	assert.NotContains(t, v, "c")
	assert.Equal(t, CodeOutOfRange, v["e"])
	assert.Equal(t, CodeOutOfRange, v["f"])
	assert.NotContains(t, v, "g")
	assert.Equal(t, CodeOutOfRange, v["h"])
}

func TestAddKeepsFirst(t *testing.T) {
	v := make(Violations)
	v.Add("x", CodeRequired)
	v.Add("x", CodeTooLong)
	v.Add("y", CodeNotFound)
	assert.Equal(t, Violations{"x": CodeRequired, "y": CodeNotFound}, v)
}
