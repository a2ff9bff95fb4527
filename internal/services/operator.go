package services

import (
	"context"
	"errors"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OperatorService struct {
	db *gorm.DB
}

func NewOperatorService(db *gorm.DB) *OperatorService {
	return &OperatorService{db: db}
}

// OperatorFilter narrows the operator list.
type OperatorFilter struct {
	ListParams
	SupplierID uint
}

func (s *OperatorService) List(ctx context.Context, f OperatorFilter) (Page[models.Operator], error) {
	p := f.ListParams.normalized()
	out := Page[models.Operator]{Page: p.Page, Limit: p.Limit}
	base := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.Operator{}).
			Joins("LEFT JOIN suppliers ON suppliers.id = operators.supplier_id")
		if f.SupplierID != 0 {
			db = db.Where("operators.supplier_id = ?", f.SupplierID)
		}
		return likeAny(db, p.Q, "operators.last_name", "operators.first_name", "suppliers.company_name")
	}
	if err := base().Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := base().Select("operators.*").Preload("Supplier").
		Order("operators.last_name").Order("operators.first_name").Order("operators.id").
		Limit(p.Limit).Offset(p.offset()).Find(&out.Items).Error
	return out, err
}

func (s *OperatorService) Get(ctx context.Context, id uint) (*models.Operator, error) {
	var op models.Operator
	if err := s.db.WithContext(ctx).Preload("Supplier").First(&op, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &op, nil
}

// Validate checks the fields and that the supplier exists.
func (s *OperatorService) Validate(ctx context.Context, op *models.Operator) error {
	v := validation.Struct(op)
	if _, bad := v["supplier_id"]; !bad {
		if err := exists(ctx, s.db, &models.Supplier{}, op.SupplierID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return err
			}
			v.Add("supplier_id", validation.CodeNotFound)
		}
	}
	return invalid(v)
}

func (s *OperatorService) Create(ctx context.Context, op *models.Operator) error {
	if err := s.Validate(ctx, op); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(op).Error
}

func (s *OperatorService) Update(ctx context.Context, op *models.Operator) error {
	if err := s.Validate(ctx, op); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(op).Error
}

// Delete removes the operator and its interventions.
func (s *OperatorService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(ctx, tx, &models.Operator{}, id); err != nil {
			return err
		}
		if err := tx.Where("operator_id = ?", id).Delete(&models.Intervention{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Operator{}, id).Error
	})
}

// exists returns ErrNotFound unless a row of model's table has the id.
func exists(ctx context.Context, db *gorm.DB, model any, id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
