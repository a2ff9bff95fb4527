package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(lang string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := i18n.WithLang(r.Context(), lang)
	ctx = auth.WithUserID(ctx, 1)
	return r.WithContext(ctx)
}

func TestRenderList(t *testing.T) {
	SetCanProfileResolver(func(_ *http.Request, resource, action string) bool {
		return resource == "client" && action != "delete"
	})
	t.Cleanup(func() { SetCanProfileResolver(nil) })

	rec := httptest.NewRecorder()
	err := Render(rec, request(i18n.English), http.StatusOK, "list.html", "Clients", ListPage{
		Resource: "client",
		BasePath: "/clients",
		Columns:  []Column{{Key: "label", Label: "Client"}},
		Rows:     []Row{{ID: 3, Cells: []string{"Sig./Sig.ra  Rossi  Mario"}}},
		Total:    1,
		Page:     1,
	})
	require.NoError(t, err)
	body := rec.Body.String()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, `href="/clients/3"`)
	assert.Contains(t, body, "Sig./Sig.ra  Rossi  Mario")
	assert.Contains(t, body, `href="/clients/export?format=xlsx"`)
	assert.Contains(t, body, ">Clients</a>")
	assert.NotContains(t, body, `href="/suppliers"`)
}

func TestRenderFormFieldsets(t *testing.T) {
	rec := httptest.NewRecorder()
	err := Render(rec, request(i18n.Italian), http.StatusBadRequest, "form.html", "Intervento", FormPage{
		Resource: "intervention",
		BasePath: "/interventions",
		Action:   "/interventions",
		Fieldsets: []Fieldset{
			{Title: "Intervento", Fields: []Field{{Name: "description", Label: "Descrizione", Type: FieldText, Error: "required"}}},
			{Title: "Calcolati", Fields: []Field{{Name: "grand_total", Label: "Totale", Type: FieldReadOnly, Value: "122.0 €"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<legend>Calcolati</legend>")
	assert.Contains(t, body, "122.0 €")
	assert.Contains(t, body, "Obbligatorio")
}

func TestRenderUnknownTemplate(t *testing.T) {
	err := Render(httptest.NewRecorder(), request(i18n.Italian), http.StatusOK, "missing.html", "", nil)
	assert.Error(t, err)
}
