package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
)

type ClientHandler struct {
	crud[models.Client]
	svc *services.ClientService
}

type clientJSON struct {
	*models.Client
	Label string `json:"label"`
}

func NewClientHandler(svc *services.ClientService) *ClientHandler {
	h := &ClientHandler{svc: svc}
	h.crud = crud[models.Client]{
		path:     "/clients",
		resource: "client",
		title:    "nav.clients",
		fresh:    func() *models.Client { return &models.Client{ClientType: models.ClientTypeUndefined} },
		get:      svc.Get,
		id:       func(c *models.Client) uint { return c.ID },
		apply:    forms.ApplyClient,
		create:   svc.Create,
		update:   svc.Update,
		delete:   svc.Delete,
		present:  func(c *models.Client) any { return clientJSON{Client: c, Label: c.Label()} },
		fieldsets: func(r *http.Request, c *models.Client, v validation.Violations) []view.Fieldset {
			return []view.Fieldset{{
				Title: tr(r, "field.client"),
				Fields: []view.Field{
					{Name: "client_type", Label: tr(r, "field.client_type"), Type: view.FieldSelect, Options: clientTypeOptions(r, c.ClientType, false), Error: fieldError(v, "client_type")},
					{Name: "building_code", Label: tr(r, "field.building_code"), Type: view.FieldNumber, Value: itoa(c.BuildingCode), Error: fieldError(v, "building_code")},
					{Name: "display_name", Label: tr(r, "field.display_name"), Type: view.FieldText, Value: c.DisplayName, Error: fieldError(v, "display_name")},
					{Name: "last_name", Label: tr(r, "field.last_name"), Type: view.FieldText, Value: c.LastName, Error: fieldError(v, "last_name")},
					{Name: "first_name", Label: tr(r, "field.first_name"), Type: view.FieldText, Value: c.FirstName, Error: fieldError(v, "first_name")},
				},
			}}
		},
	}
	return h
}

func clientTypeOptions(r *http.Request, selected models.ClientType, blank bool) []view.Option {
	var opts []view.Option
	if blank {
		opts = append(opts, view.Option{Value: "", Label: "-"})
	}
	for _, ct := range models.ClientTypes {
		opts = append(opts, view.Option{Value: string(ct), Label: tr(r, "client_type."+string(ct)), Selected: ct == selected})
	}
	return opts
}

func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	f := services.ClientFilter{ListParams: listParams(r)}
	if ct := strings.ToUpper(r.URL.Query().Get("client_type")); models.ClientType(ct).Valid() {
		f.ClientType = models.ClientType(ct)
	}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !httpx.WantsHTML(r) {
		items := make([]clientJSON, len(page.Items))
		for i := range page.Items {
			items[i] = clientJSON{Client: &page.Items[i], Label: page.Items[i].Label()}
		}
		httpx.JSON(w, http.StatusOK, services.Page[clientJSON]{Items: items, Total: page.Total, Page: page.Page, Limit: page.Limit})
		return
	}
	rows := make([]view.Row, len(page.Items))
	for i, c := range page.Items {
		rows[i] = view.Row{ID: c.ID, Cells: []string{c.Label(), tr(r, "client_type."+string(c.ClientType))}}
	}
	prev, next := pageLinks(r, page.Page, page.Limit, page.Total)
	render(w, r, http.StatusOK, "list.html", tr(r, "nav.clients"), view.ListPage{
		Resource: "client",
		BasePath: "/clients",
		Columns: []view.Column{
			{Key: "label", Label: tr(r, "field.client")},
			{Key: "client_type", Label: tr(r, "field.client_type")},
		},
		Filters: []view.Field{{Name: "client_type", Label: tr(r, "field.client_type"), Type: view.FieldSelect, Options: clientTypeOptions(r, f.ClientType, true)}},
		Rows:    rows,
		Q:       f.Q,
		Total:   page.Total,
		Page:    page.Page,
		Limit:   page.Limit,
		PrevURL: prev,
		NextURL: next,
	})
}

func clientOptions(ctx context.Context, svc *services.ClientService, selected *uint) []view.Option {
	page, err := svc.List(ctx, services.ClientFilter{ListParams: services.ListParams{Limit: services.MaxLimit}})
	if err != nil {
		return nil
	}
	opts := []view.Option{{Value: "", Label: "-"}}
	for _, c := range page.Items {
		opts = append(opts, view.Option{Value: idString(&c.ID), Label: c.Label(), Selected: selected != nil && *selected == c.ID})
	}
	return opts
}
