package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, "validation_failed", map[string]string{"description": "required"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation_failed","details":{"description":"required"}}`, rec.Body.String())
}

func TestJSONNil(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, nil)
	assert.Equal(t, "null", rec.Body.String())
}

func TestWantsHTML(t *testing.T) {
	cases := map[string]bool{
		"":                                 false,
		"application/json":                 false,
		"text/html,application/xhtml+xml":  true,
		"application/json, text/html;q=.5": false,
		"text/html, application/json":      true,
	}
	for accept, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept", accept)
		assert.Equal(t, want, WantsHTML(r), accept)
	}
}
