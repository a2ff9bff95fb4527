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

type OperatorHandler struct {
	crud[models.Operator]
	svc       *services.OperatorService
	suppliers *services.SupplierService
}

// operatorJSON adds the display label to the stored fields.
type operatorJSON struct {
	*models.Operator
	Label string `json:"label"`
}

func NewOperatorHandler(svc *services.OperatorService, suppliers *services.SupplierService) *OperatorHandler {
	h := &OperatorHandler{svc: svc, suppliers: suppliers}
	h.crud = crud[models.Operator]{
		path:     "/operators",
		resource: "operator",
		title:    "nav.operators",
		fresh:    func() *models.Operator { return &models.Operator{} },
		get:      svc.Get,
		id:       func(o *models.Operator) uint { return o.ID },
		apply:    forms.ApplyOperator,
		create:   svc.Create,
		update:   svc.Update,
		delete:   svc.Delete,
		present:  func(o *models.Operator) any { return operatorJSON{Operator: o, Label: o.Label()} },
		fieldsets: func(r *http.Request, o *models.Operator, v validation.Violations) []view.Fieldset {
			return []view.Fieldset{{
				Title: tr(r, "field.operator"),
				Fields: []view.Field{
					{
						Name: "supplier_id", Label: tr(r, "field.supplier"), Type: view.FieldSelect,
						Options: supplierOptions(r.Context(), suppliers, o.SupplierID),
						Error:   fieldError(v, "supplier_id"), Required: true,
					},
					{Name: "last_name", Label: tr(r, "field.last_name"), Type: view.FieldText, Value: o.LastName, Error: fieldError(v, "last_name"), Required: true},
					{Name: "first_name", Label: tr(r, "field.first_name"), Type: view.FieldText, Value: o.FirstName, Error: fieldError(v, "first_name")},
				},
			}}
		},
	}
	return h
}

func (h *OperatorHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.OperatorFilter{ListParams: listParams(r), SupplierID: queryID(r, "supplier_id")}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !httpx.WantsHTML(r) {
		items := make([]operatorJSON, len(page.Items))
		for i := range page.Items {
			items[i] = operatorJSON{Operator: &page.Items[i], Label: page.Items[i].Label()}
		}
		httpx.JSON(w, http.StatusOK, services.Page[operatorJSON]{Items: items, Total: page.Total, Page: page.Page, Limit: page.Limit})
		return
	}
	rows := make([]view.Row, len(page.Items))
	for i, o := range page.Items {
		supplier := ""
		if o.Supplier != nil {
			supplier = o.Supplier.Label()
		}
		rows[i] = view.Row{ID: o.ID, Cells: []string{o.LastName, o.FirstName, supplier}}
	}
	prev, next := pageLinks(r, page.Page, page.Limit, page.Total)
	render(w, r, http.StatusOK, "list.html", tr(r, "nav.operators"), view.ListPage{
		Resource: "operator",
		BasePath: "/operators",
		Columns: []view.Column{
			{Key: "last_name", Label: tr(r, "field.last_name")},
			{Key: "first_name", Label: tr(r, "field.first_name")},
			{Key: "supplier", Label: tr(r, "field.supplier")},
		},
		Filters: []view.Field{{
			Name: "supplier_id", Label: tr(r, "field.supplier"), Type: view.FieldSelect,
			Options: supplierOptions(r.Context(), h.suppliers, f.SupplierID),
		}},
		Rows:    rows,
		Q:       f.Q,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		PrevURL: prev,
		NextURL: next,
	})
}

func operatorOptions(ctx context.Context, svc *services.OperatorService, selected *uint) []view.Option {
	page, err := svc.List(ctx, services.OperatorFilter{ListParams: services.ListParams{Limit: services.MaxLimit}})
	if err != nil {
		return nil
	}
	opts := []view.Option{{Value: "", Label: "-"}}
	for _, o := range page.Items {
		opts = append(opts, view.Option{Value: idString(&o.ID), Label: o.Label(), Selected: selected != nil && *selected == o.ID})
	}
	return opts
}
