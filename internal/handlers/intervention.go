package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/billing"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/httpx"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/view"
)

// interventionColumns are the list columns, in display order.
var interventionColumns = []string{"date", "client", "description", "grand_subtotal", "grand_vat", "grand_total"}

type InterventionHandler struct {
	crud[models.Intervention]
	svc       *services.InterventionService
	operators *services.OperatorService
	clients   *services.ClientService
}

// interventionJSON is the detail payload: stored fields, label and totals.
type interventionJSON struct {
	*models.Intervention
	Label  string         `json:"label"`
	Totals billing.Totals `json:"totals"`
}

func presentIntervention(i *models.Intervention) any {
	label, _ := i.Label()
	return interventionJSON{Intervention: i, Label: label, Totals: i.Totals()}
}

// interventionRow is one line of the list.
type interventionRow struct {
	ID            uint    `json:"id"`
	Date          string  `json:"date"`
	Client        string  `json:"client"`
	Description   string  `json:"description"`
	InvoiceStatus string  `json:"invoice_status"`
	GrandSubtotal float64 `json:"grand_subtotal"`
	GrandVAT      float64 `json:"grand_vat"`
	GrandTotal    float64 `json:"grand_total"`
}

type interventionList struct {
	Columns map[string]string `json:"columns"`
	Items   []interventionRow `json:"items"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
}

func NewInterventionHandler(svc *services.InterventionService, operators *services.OperatorService, clients *services.ClientService) *InterventionHandler {
	h := &InterventionHandler{svc: svc, operators: operators, clients: clients}
	h.crud = crud[models.Intervention]{
		path:      "/interventions",
		resource:  "intervention",
		title:     "nav.interventions",
		fresh:     models.NewIntervention,
		get:       svc.Get,
		id:        func(i *models.Intervention) uint { return i.ID },
		apply:     forms.ApplyIntervention,
		create:    svc.Create,
		update:    svc.Update,
		delete:    svc.Delete,
		present:   presentIntervention,
		fieldsets: h.formFieldsets,
	}
	return h
}

func (h *InterventionHandler) formFieldsets(r *http.Request, i *models.Intervention, v validation.Violations) []view.Fieldset {
	num := func(name string, value int) view.Field {
		return view.Field{Name: name, Label: tr(r, "field."+name), Type: view.FieldNumber, Value: itoa(value), Error: fieldError(v, name)}
	}
	money := func(name string, value float64) view.Field {
		return view.Field{Name: name, Label: tr(r, "field."+name), Type: view.FieldReadOnly, Value: billing.Euro(value)}
	}
	stamp := func(name string, t time.Time) view.Field {
		value := ""
		if !t.IsZero() {
			value = t.UTC().Format(time.DateTime)
		}
		return view.Field{Name: name, Label: tr(r, "field."+name), Type: view.FieldReadOnly, Value: value}
	}
	date := ""
	if i.Date != nil {
		date = i.Date.UTC().Format("2006-01-02T15:04")
	}
	statuses := make([]view.Option, len(models.InvoiceStatuses))
	for n, st := range models.InvoiceStatuses {
		statuses[n] = view.Option{Value: string(st), Label: tr(r, "invoice_status."+string(st)), Selected: st == i.InvoiceStatus}
	}
	t := i.Totals()

	sets := []view.Fieldset{
		{Title: tr(r, "fieldset.main"), Fields: []view.Field{
			{Name: "date", Label: tr(r, "field.date"), Type: view.FieldDateTime, Value: date, Error: fieldError(v, "date")},
			{Name: "client_id", Label: tr(r, "field.client"), Type: view.FieldSelect, Options: clientOptions(r.Context(), h.clients, i.ClientID), Error: fieldError(v, "client_id")},
			{Name: "operator_id", Label: tr(r, "field.operator"), Type: view.FieldSelect, Options: operatorOptions(r.Context(), h.operators, i.OperatorID), Error: fieldError(v, "operator_id")},
			{Name: "description", Label: tr(r, "field.description"), Type: view.FieldText, Value: i.Description, Error: fieldError(v, "description"), Required: true},
			num("duration_minutes", i.DurationMinutes),
			{Name: "invoice_status", Label: tr(r, "field.invoice_status"), Type: view.FieldSelect, Options: statuses, Error: fieldError(v, "invoice_status")},
		}},
		{Title: tr(r, "fieldset.operators"), Fields: []view.Field{
			num("operator_count", i.OperatorCount),
			num("operator_unit_rate", i.OperatorUnitRate),
		}},
		{Title: tr(r, "fieldset.material"), Fields: []view.Field{
			num("material_quantity", i.MaterialQuantity),
			num("material_unit_price", i.MaterialUnitPrice),
		}},
		{Title: tr(r, "fieldset.vat"), Fields: []view.Field{
			num("operator_vat_rate", i.OperatorVATRate),
			num("material_vat_rate", i.MaterialVATRate),
			num("call_out_vat_rate", i.CallOutVATRate),
		}},
		{Title: tr(r, "fieldset.calculated"), Fields: []view.Field{
			money("material_subtotal", t.MaterialSubtotal),
			money("material_vat", t.MaterialVAT),
			money("material_total", t.MaterialTotal),
			money("labor_subtotal", t.LaborSubtotal),
			money("labor_vat", t.LaborVAT),
			money("labor_total", t.LaborTotal),
			money("grand_subtotal", t.GrandSubtotal),
			money("grand_vat", t.GrandVAT),
			money("grand_total", t.GrandTotal),
		}},
	}
	if i.ID != 0 {
		sets = append(sets, view.Fieldset{Title: tr(r, "fieldset.database"), Fields: []view.Field{
			stamp("created_at", i.CreatedAt),
			stamp("updated_at", i.UpdatedAt),
		}})
	}
	return sets
}

// filter reads the list query. Invalid values are ignored, except an
// unknown order which is reported.
func (h *InterventionHandler) filter(r *http.Request) (services.InterventionFilter, validation.Violations) {
	q := r.URL.Query()
	v := make(validation.Violations)
	f := services.InterventionFilter{
		ListParams: listParams(r),
		OperatorID: queryID(r, "operator_id"),
		ClientID:   queryID(r, "client_id"),
		Year:       queryInt(r, "year"),
		Month:      queryInt(r, "month"),
		Day:        queryInt(r, "day"),
		Order:      q.Get("order"),
	}
	if st := models.InvoiceStatus(strings.ToUpper(q.Get("invoice_status"))); st.Valid() {
		f.InvoiceStatus = st
	}
	if s := q.Get("date_from"); s != "" {
		if d, err := forms.ParseDate(s); err != nil {
			v.Add("date_from", validation.CodeInvalidDate)
		} else {
			f.DateFrom = &d
		}
	}
	if s := q.Get("date_to"); s != "" {
		d, err := forms.ParseDate(s)
		if err != nil {
			v.Add("date_to", validation.CodeInvalidDate)
		} else {
			if _, dateOnly := time.Parse(time.DateOnly, strings.TrimSpace(s)); dateOnly == nil {
				// a bare day includes the whole day
				d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			f.DateTo = &d
		}
	}
	if !services.ValidOrder(f.Order) {
		v.Add("order", validation.CodeInvalidChoice)
	}
	return f, v
}

func (h *InterventionHandler) List(w http.ResponseWriter, r *http.Request) {
	f, v := h.filter(r)
	if !v.Empty() {
		writeError(w, r, &services.ValidationError{Violations: v})
		return
	}
	page, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := make([]interventionRow, len(page.Items))
	for n := range page.Items {
		i := &page.Items[n]
		t := i.Totals()
		rows[n] = interventionRow{
			ID:            i.ID,
			Date:          i.DateOnly(),
			Client:        i.ClientLabel(),
			Description:   i.Description,
			InvoiceStatus: string(i.InvoiceStatus),
			GrandSubtotal: t.GrandSubtotal,
			GrandVAT:      t.GrandVAT,
			GrandTotal:    t.GrandTotal,
		}
	}
	columns := make(map[string]string, len(interventionColumns))
	for _, c := range interventionColumns {
		columns[c] = tr(r, "field."+c)
	}
	if !httpx.WantsHTML(r) {
		httpx.JSON(w, http.StatusOK, interventionList{Columns: columns, Items: rows, Total: page.Total, Page: page.Page, Limit: page.Limit})
		return
	}

	viewRows := make([]view.Row, len(rows))
	for n, row := range rows {
		viewRows[n] = view.Row{ID: row.ID, Cells: []string{
			row.Date, row.Client, row.Description,
			billing.Euro(row.GrandSubtotal), billing.Euro(row.GrandVAT), billing.Euro(row.GrandTotal),
		}}
	}
	cols := make([]view.Column, len(interventionColumns))
	for n, c := range interventionColumns {
		cols[n] = view.Column{Key: c, Label: columns[c]}
	}
	statuses := []view.Option{{Value: "", Label: "-"}}
	for _, st := range models.InvoiceStatuses {
		statuses = append(statuses, view.Option{Value: string(st), Label: tr(r, "invoice_status."+string(st)), Selected: st == f.InvoiceStatus})
	}
	prev, next := pageLinks(r, page.Page, page.Limit, page.Total)
	render(w, r, http.StatusOK, "list.html", tr(r, "nav.interventions"), view.ListPage{
		Resource: "intervention",
		BasePath: "/interventions",
		Columns:  cols,
		Rows:     viewRows,
		Filters: []view.Field{
			{Name: "operator_id", Label: tr(r, "field.operator"), Type: view.FieldSelect, Options: operatorOptions(r.Context(), h.operators, ptr(f.OperatorID))},
			{Name: "client_id", Label: tr(r, "field.client"), Type: view.FieldSelect, Options: clientOptions(r.Context(), h.clients, ptr(f.ClientID))},
			{Name: "invoice_status", Label: tr(r, "field.invoice_status"), Type: view.FieldSelect, Options: statuses},
		},
		DrillLinks: h.drillLinks(r, f.Year, f.Month),
		Q:          f.Q,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		PrevURL:    prev,
		NextURL:    next,
	})
}

func ptr(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

// drillLinks offers the next date level below the current selection.
func (h *InterventionHandler) drillLinks(r *http.Request, year, month int) []view.Link {
	buckets, err := h.svc.Dates(r.Context(), year, month)
	if err != nil {
		return nil
	}
	links := make([]view.Link, 0, len(buckets.Values)+1)
	if year > 0 {
		q := url.Values{}
		if month > 0 {
			q.Set("year", strconv.Itoa(year))
		}
		links = append(links, view.Link{Label: "↑", URL: withQuery("/interventions", q)})
	}
	for _, n := range buckets.Values {
		q := url.Values{}
		switch buckets.Level {
		case "year":
			q.Set("year", strconv.Itoa(n))
		case "month":
			q.Set("year", strconv.Itoa(year))
			q.Set("month", strconv.Itoa(n))
		default:
			q.Set("year", strconv.Itoa(year))
			q.Set("month", strconv.Itoa(month))
			q.Set("day", strconv.Itoa(n))
		}
		links = append(links, view.Link{Label: strconv.Itoa(n), URL: withQuery("/interventions", q)})
	}
	return links
}

// Dates lists the years, months of ?year= or days of ?year=&month= that
// hold interventions.
func (h *InterventionHandler) Dates(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Dates(r.Context(), queryInt(r, "year"), queryInt(r, "month"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, buckets)
}
