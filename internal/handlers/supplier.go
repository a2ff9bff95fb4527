package handlers

import (
	"context"
	"net/http"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
)

type SupplierHandler struct {
	crud[models.Supplier]
	svc *services.SupplierService
}

func NewSupplierHandler(svc *services.SupplierService) *SupplierHandler {
	h := &SupplierHandler{svc: svc}
	h.crud = crud[models.Supplier]{
		path:     "/suppliers",
		resource: "supplier",
		title:    "nav.suppliers",
		fresh:    func() *models.Supplier { return &models.Supplier{} },
		get:      svc.Get,
		id:       func(s *models.Supplier) uint { return s.ID },
		apply:    forms.ApplySupplier,
		create:   svc.Create,
		update:   svc.Update,
		delete:   svc.Delete,
		fieldsets: func(r *http.Request, s *models.Supplier, v validation.Violations) []view.Fieldset {
			return []view.Fieldset{{
				Title: tr(r, "field.supplier"),
				Fields: []view.Field{{
					Name: "company_name", Label: tr(r, "field.company_name"), Type: view.FieldText,
					Value: s.CompanyName, Error: fieldError(v, "company_name"), Required: true,
				}},
			}}
		},
	}
	return h
}

func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !httpx.WantsHTML(r) {
		httpx.JSON(w, http.StatusOK, page)
		return
	}
	rows := make([]view.Row, len(page.Items))
	for i, s := range page.Items {
		rows[i] = view.Row{ID: s.ID, Cells: []string{s.CompanyName}}
	}
	prev, next := pageLinks(r, page.Page, page.Limit, page.Total)
	render(w, r, http.StatusOK, "list.html", tr(r, "nav.suppliers"), view.ListPage{
		Resource: "supplier",
		BasePath: "/suppliers",
		Columns:  []view.Column{{Key: "company_name", Label: tr(r, "field.company_name")}},
		Rows:     rows,
		Q:        r.URL.Query().Get("q"),
		Total:    page.Total,
		Page:     page.Page,
		Limit:    page.Limit,
		PrevURL:  prev,
		NextURL:  next,
	})
}

// supplierOptions lists every supplier for select inputs.
func supplierOptions(ctx context.Context, svc *services.SupplierService, selected uint) []view.Option {
	page, err := svc.List(ctx, services.ListParams{Limit: services.MaxLimit})
	if err != nil {
		return nil
	}
	opts := []view.Option{{Value: "", Label: "-"}}
	for _, s := range page.Items {
		opts = append(opts, view.Option{Value: idString(&s.ID), Label: s.Label(), Selected: s.ID == selected})
	}
	return opts
}
