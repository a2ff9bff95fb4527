package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
)

// crud implements detail, create, update and delete for one model type.
// The entity handlers fill in the functions and add their own List.
type crud[T any] struct {
	path     string // "/clients"
	resource string // "client"
	title    string // i18n code of the page title

	fresh  func() *T
	get    func(ctx context.Context, id uint) (*T, error)
	id     func(*T) uint
	apply  func(*T, forms.Values) validation.Violations
	create func(ctx context.Context, m *T) error
	update func(ctx context.Context, m *T) error
	delete func(ctx context.Context, id uint) error

	// fieldsets builds the HTML form of m.
	fieldsets func(r *http.Request, m *T, v validation.Violations) []view.Fieldset
	// present shapes the JSON detail; nil sends the model itself.
	present func(m *T) any
}

func (c *crud[T]) json(m *T) any {
	if c.present != nil {
		return c.present(m)
	}
	return m
}

func (c *crud[T]) form(w http.ResponseWriter, r *http.Request, status int, m *T, v validation.Violations) {
	id := c.id(m)
	action := c.path
	if id != 0 {
		action = c.path + "/" + strconv.FormatUint(uint64(id), 10)
	}
	render(w, r, status, "form.html", tr(r, c.title), view.FormPage{
		Resource:  c.resource,
		BasePath:  c.path,
		Action:    action,
		ID:        id,
		Fieldsets: c.fieldsets(r, m, v),
	})
}

// New shows an empty form.
func (c *crud[T]) New(w http.ResponseWriter, r *http.Request) {
	c.form(w, r, http.StatusOK, c.fresh(), nil)
}

func (c *crud[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := c.get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if httpx.WantsHTML(r) {
		c.form(w, r, http.StatusOK, m, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, c.json(m))
}

func (c *crud[T]) Create(w http.ResponseWriter, r *http.Request) {
	c.save(w, r, c.fresh(), c.create, http.StatusCreated)
}

func (c *crud[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := c.get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c.save(w, r, m, c.update, http.StatusOK)
}

// save decodes the request onto m, stores it and answers with the reloaded
// record, or with the violations.
func (c *crud[T]) save(w http.ResponseWriter, r *http.Request, m *T, store func(context.Context, *T) error, status int) {
	vals, err := forms.FromRequest(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", nil)
		return
	}
	if v := c.apply(m, vals); !v.Empty() {
		err = &services.ValidationError{Violations: v}
	} else {
		err = store(r.Context(), m)
	}
	if err != nil {
		if v, ok := services.AsValidation(err); ok && httpx.WantsHTML(r) {
			c.form(w, r, http.StatusBadRequest, m, v)
			return
		}
		writeError(w, r, err)
		return
	}
	id := c.id(m)
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, c.path+"/"+strconv.FormatUint(uint64(id), 10), http.StatusSeeOther)
		return
	}
	saved, err := c.get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, status, c.json(saved))
}

func (c *crud[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if httpx.WantsHTML(r) {
		http.Redirect(w, r, c.path, http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
