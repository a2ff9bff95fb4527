package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Orderings accepted by InterventionFilter.Order.
const (
	OrderDate            = "date"
	OrderDateDesc        = "-date"
	OrderClient          = "client"
	OrderClientDesc      = "-client"
	OrderDescription     = "description"
	OrderDescriptionDesc = "-description"
)

var interventionOrders = map[string][]string{
	OrderDate:            {"interventions.date", "interventions.id"},
	OrderDateDesc:        {"interventions.date DESC", "interventions.id DESC"},
	OrderClient:          {"interventions.client_id", "interventions.date", "interventions.id"},
	OrderClientDesc:      {"interventions.client_id DESC", "interventions.date DESC", "interventions.id DESC"},
	OrderDescription:     {"interventions.description", "interventions.id"},
	OrderDescriptionDesc: {"interventions.description DESC", "interventions.id DESC"},
}

// ValidOrder reports whether o is an accepted ordering ("" included).
func ValidOrder(o string) bool {
	_, ok := interventionOrders[o]
	return ok || o == ""
}

// InterventionFilter holds the list filters, drill-down and search.
type InterventionFilter struct {
	ListParams
	OperatorID    uint
	ClientID      uint
	InvoiceStatus models.InvoiceStatus
	DateFrom      *time.Time
	DateTo        *time.Time // inclusive of the whole day when date-only
	Year          int
	Month         int
	Day           int
	Order         string
}

// DrillRange turns year/month/day into a half open [from, to) UTC range.
// ok is false when no year is set.
func DrillRange(year, month, day int) (from, to time.Time, ok bool) {
	if year <= 0 {
		return time.Time{}, time.Time{}, false
	}
	switch {
	case month >= 1 && month <= 12 && day >= 1:
		from = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 0, 1), true
	case month >= 1 && month <= 12:
		from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), true
	default:
		from = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), true
	}
}

type InterventionService struct {
	db *gorm.DB
}

func NewInterventionService(db *gorm.DB) *InterventionService {
	return &InterventionService{db: db}
}

func (s *InterventionService) filtered(ctx context.Context, f InterventionFilter) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&models.Intervention{}).
		Joins("LEFT JOIN clients ON clients.id = interventions.client_id").
		Joins("LEFT JOIN operators ON operators.id = interventions.operator_id").
		Joins("LEFT JOIN suppliers ON suppliers.id = operators.supplier_id")
	if f.OperatorID != 0 {
		db = db.Where("interventions.operator_id = ?", f.OperatorID)
	}
	if f.ClientID != 0 {
		db = db.Where("interventions.client_id = ?", f.ClientID)
	}
	if f.InvoiceStatus != "" {
		db = db.Where("interventions.invoice_status = ?", f.InvoiceStatus)
	}
	if f.DateFrom != nil {
		db = db.Where("interventions.date >= ?", f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		db = db.Where("interventions.date <= ?", f.DateTo.UTC())
	}
	if from, to, ok := DrillRange(f.Year, f.Month, f.Day); ok {
		db = db.Where("interventions.date >= ? AND interventions.date < ?", from, to)
	}
	return likeAny(db, f.Q,
		"suppliers.company_name",
		"operators.last_name", "operators.first_name",
		"clients.display_name", "clients.last_name", "clients.first_name",
		"interventions.description")
}

// List returns one page of interventions with client and operator loaded.
func (s *InterventionService) List(ctx context.Context, f InterventionFilter) (Page[models.Intervention], error) {
	f.ListParams = f.ListParams.normalized()
	out := Page[models.Intervention]{Page: f.Page, Limit: f.Limit}
	if err := s.filtered(ctx, f).Count(&out.Total).Error; err != nil {
		return out, err
	}
	order, ok := interventionOrders[f.Order]
	if !ok {
		order = interventionOrders[OrderDate]
	}
	q := s.filtered(ctx, f).Select("interventions.*").Preload("Client").Preload("Operator.Supplier")
	for _, o := range order {
		q = q.Order(o)
	}
	err := q.Limit(f.Limit).Offset(f.ListParams.offset()).Find(&out.Items).Error
	return out, err
}

func (s *InterventionService) Get(ctx context.Context, id uint) (*models.Intervention, error) {
	var i models.Intervention
	err := s.db.WithContext(ctx).Preload("Client").Preload("Operator.Supplier").First(&i, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &i, nil
}

// Validate checks the fields, bounds the integer inputs to 32 bits and checks
// that referenced operator and client exist.
func (s *InterventionService) Validate(ctx context.Context, i *models.Intervention) error {
	v := validation.Struct(i)
	for field, n := range map[string]int{
		"duration_minutes":    i.DurationMinutes,
		"operator_count":      i.OperatorCount,
		"operator_unit_rate":  i.OperatorUnitRate,
		"operator_vat_rate":   i.OperatorVATRate,
		"material_quantity":   i.MaterialQuantity,
		"material_unit_price": i.MaterialUnitPrice,
		"material_vat_rate":   i.MaterialVATRate,
		"call_out_fee":        i.CallOutFee,
		"call_out_vat_rate":   i.CallOutVATRate,
	} {
		validation.Int32(field, int64(n), v)
	}
	refs := []struct {
		field string
		id    *uint
		model any
	}{
		{"operator_id", i.OperatorID, &models.Operator{}},
		{"client_id", i.ClientID, &models.Client{}},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if err := exists(ctx, s.db, ref.model, *ref.id); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			v.Add(ref.field, validation.CodeNotFound)
		}
	}
	return invalid(v)
}

func (s *InterventionService) normalize(i *models.Intervention) {
	if i.Date != nil {
		d := i.Date.UTC()
		i.Date = &d
	}
	if i.InvoiceStatus == "" {
		i.InvoiceStatus = models.InvoiceStatusToInvoice
	}
}

func (s *InterventionService) Create(ctx context.Context, i *models.Intervention) error {
	s.normalize(i)
	if err := s.Validate(ctx, i); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(i).Error
}

func (s *InterventionService) Update(ctx context.Context, i *models.Intervention) error {
	s.normalize(i)
	if err := s.Validate(ctx, i); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(i).Error
}

func (s *InterventionService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Intervention{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DateBuckets lists the values available at the next drill-down level:
// years when year is 0, months of year when month is 0, else days of month.
type DateBuckets struct {
	Level  string `json:"level"`
	Year   int    `json:"year,omitempty"`
	Month  int    `json:"month,omitempty"`
	Values []int  `json:"values"`
}

func (s *InterventionService) Dates(ctx context.Context, year, month int) (DateBuckets, error) {
	out := DateBuckets{Level: "year", Values: []int{}}
	db := s.db.WithContext(ctx).Model(&models.Intervention{}).Where("date IS NOT NULL")
	if from, to, ok := DrillRange(year, month, 0); ok {
		db = db.Where("date >= ? AND date < ?", from, to)
		out.Year = year
		out.Level = "month"
		if month >= 1 && month <= 12 {
			out.Month = month
			out.Level = "day"
		}
	}
	var dates []time.Time
	if err := db.Pluck("date", &dates).Error; err != nil {
		return out, err
	}
	seen := map[int]bool{}
	for _, d := range dates {
		d = d.UTC()
		var k int
		switch out.Level {
		case "year":
			k = d.Year()
		case "month":
			k = int(d.Month())
		default:
			k = d.Day()
		}
		if !seen[k] {
			seen[k] = true
			out.Values = append(out.Values, k)
		}
	}
	sort.Ints(out.Values)
	return out, nil
}
