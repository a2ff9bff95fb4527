// Package dataset moves whole tables in and out of CSV and XLSX files, one
// row per record, stored fields only.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/forms"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/services"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"gorm.io/gorm"
)

// ErrUnknownResource is returned by Lookup.
var ErrUnknownResource = fmt.Errorf("unknown resource")

// Resource binds one table to its columns and row codecs.
type Resource struct {
	Name    string
	Columns []string

	rows func(ctx context.Context, db *gorm.DB) ([][]any, error)
	// save applies vals to the record with id (0 or unknown creates) and
	// writes it through the matching service.
	save func(ctx context.Context, tx *gorm.DB, id uint, vals forms.Values) (created bool, v validation.Violations, err error)
}

// readOnly columns are exported but never imported.
var readOnly = map[string]bool{"id": true, "created_at": true, "updated_at": true}

var registry = map[string]*Resource{}

func register(r *Resource) { registry[r.Name] = r }

// Lookup finds a resource by table name ("suppliers", "operators", ...).
func Lookup(name string) (*Resource, error) {
	r, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return r, nil
}

// Names lists the registered resources.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func optionalID(id *uint) any {
	if id == nil {
		return ""
	}
	return *id
}

// existing loads the record with id into dst. found is false for id 0 or a
// missing row.
func existing(ctx context.Context, tx *gorm.DB, dst any, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := tx.WithContext(ctx).Limit(1).Find(dst, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// persist runs create or update and converts validation errors to violations.
func persist(found bool, create, update func() error) (bool, validation.Violations, error) {
	var err error
	if found {
		err = update()
	} else {
		err = create()
	}
	if v, ok := services.AsValidation(err); ok {
		return !found, v, nil
	}
	return !found, nil, err
}

func init() {
	register(&Resource{
		Name:    "suppliers",
		Columns: []string{"id", "company_name", "created_at", "updated_at"},
		rows: func(ctx context.Context, db *gorm.DB) ([][]any, error) {
			var items []models.Supplier
			if err := db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
				return nil, err
			}
			out := make([][]any, len(items))
			for i, s := range items {
				out[i] = []any{s.ID, s.CompanyName, stamp(s.CreatedAt), stamp(s.UpdatedAt)}
			}
			return out, nil
		},
		save: func(ctx context.Context, tx *gorm.DB, id uint, vals forms.Values) (bool, validation.Violations, error) {
			var s models.Supplier
			found, err := existing(ctx, tx, &s, id)
			if err != nil {
				return false, nil, err
			}
			if !found {
				s = models.Supplier{ID: id}
			}
			if v := forms.ApplySupplier(&s, vals); !v.Empty() {
				return !found, v, nil
			}
			svc := services.NewSupplierService(tx)
			return persist(found, func() error { return svc.Create(ctx, &s) }, func() error { return svc.Update(ctx, &s) })
		},
	})

	register(&Resource{
		Name:    "operators",
		Columns: []string{"id", "supplier_id", "last_name", "first_name", "created_at", "updated_at"},
		rows: func(ctx context.Context, db *gorm.DB) ([][]any, error) {
			var items []models.Operator
			if err := db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
				return nil, err
			}
			out := make([][]any, len(items))
			for i, o := range items {
				out[i] = []any{o.ID, o.SupplierID, o.LastName, o.FirstName, stamp(o.CreatedAt), stamp(o.UpdatedAt)}
			}
			return out, nil
		},
		save: func(ctx context.Context, tx *gorm.DB, id uint, vals forms.Values) (bool, validation.Violations, error) {
			var o models.Operator
			found, err := existing(ctx, tx, &o, id)
			if err != nil {
				return false, nil, err
			}
			if !found {
				o = models.Operator{ID: id}
			}
			if v := forms.ApplyOperator(&o, vals); !v.Empty() {
				return !found, v, nil
			}
			svc := services.NewOperatorService(tx)
			return persist(found, func() error { return svc.Create(ctx, &o) }, func() error { return svc.Update(ctx, &o) })
		},
	})

	register(&Resource{
		Name:    "clients",
		Columns: []string{"id", "client_type", "building_code", "display_name", "last_name", "first_name", "created_at", "updated_at"},
		rows: func(ctx context.Context, db *gorm.DB) ([][]any, error) {
			var items []models.Client
			if err := db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
				return nil, err
			}
			out := make([][]any, len(items))
			for i, c := range items {
				out[i] = []any{c.ID, string(c.ClientType), c.BuildingCode, c.DisplayName, c.LastName, c.FirstName, stamp(c.CreatedAt), stamp(c.UpdatedAt)}
			}
			return out, nil
		},
		save: func(ctx context.Context, tx *gorm.DB, id uint, vals forms.Values) (bool, validation.Violations, error) {
			var c models.Client
			found, err := existing(ctx, tx, &c, id)
			if err != nil {
				return false, nil, err
			}
			if !found {
				c = models.Client{ID: id, ClientType: models.ClientTypeUndefined}
			}
			if v := forms.ApplyClient(&c, vals); !v.Empty() {
				return !found, v, nil
			}
			svc := services.NewClientService(tx)
			return persist(found, func() error { return svc.Create(ctx, &c) }, func() error { return svc.Update(ctx, &c) })
		},
	})

	register(&Resource{
		Name: "interventions",
		Columns: []string{
			"id", "date", "operator_id", "client_id", "description",
			"duration_minutes", "operator_count", "operator_unit_rate", "operator_vat_rate",
			"material_quantity", "material_unit_price", "material_vat_rate",
			"call_out_fee", "call_out_vat_rate", "invoice_status",
			"created_at", "updated_at",
		},
		rows: func(ctx context.Context, db *gorm.DB) ([][]any, error) {
			var items []models.Intervention
			if err := db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
				return nil, err
			}
			out := make([][]any, len(items))
			for k, i := range items {
				date := ""
				if i.Date != nil {
					date = stamp(*i.Date)
				}
				out[k] = []any{
					i.ID, date, optionalID(i.OperatorID), optionalID(i.ClientID), i.Description,
					i.DurationMinutes, i.OperatorCount, i.OperatorUnitRate, i.OperatorVATRate,
					i.MaterialQuantity, i.MaterialUnitPrice, i.MaterialVATRate,
					i.CallOutFee, i.CallOutVATRate, string(i.InvoiceStatus),
					stamp(i.CreatedAt), stamp(i.UpdatedAt),
				}
			}
			return out, nil
		},
		save: func(ctx context.Context, tx *gorm.DB, id uint, vals forms.Values) (bool, validation.Violations, error) {
			var i models.Intervention
			found, err := existing(ctx, tx, &i, id)
			if err != nil {
				return false, nil, err
			}
			if !found {
				i = *models.NewIntervention()
				i.ID = id
			}
			if v := forms.ApplyIntervention(&i, vals); !v.Empty() {
				return !found, v, nil
			}
			svc := services.NewInterventionService(tx)
			return persist(found, func() error { return svc.Create(ctx, &i) }, func() error { return svc.Update(ctx, &i) })
		},
	})
}
