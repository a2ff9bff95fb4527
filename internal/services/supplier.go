package services

import (
	"context"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupplierService struct {
	db *gorm.DB
}

func NewSupplierService(db *gorm.DB) *SupplierService {
	return &SupplierService{db: db}
}

func (s *SupplierService) List(ctx context.Context, p ListParams) (Page[models.Supplier], error) {
	p = p.normalized()
	out := Page[models.Supplier]{Page: p.Page, Limit: p.Limit}
	base := func() *gorm.DB {
		return likeAny(s.db.WithContext(ctx).Model(&models.Supplier{}), p.Q, "company_name")
	}
	if err := base().Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := base().Order("company_name").Order("id").Limit(p.Limit).Offset(p.offset()).Find(&out.Items).Error
	return out, err
}

func (s *SupplierService) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	var sup models.Supplier
	if err := s.db.WithContext(ctx).First(&sup, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &sup, nil
}

func (s *SupplierService) Validate(sup *models.Supplier) error {
	return invalid(validation.Struct(sup))
}

func (s *SupplierService) Create(ctx context.Context, sup *models.Supplier) error {
	if err := s.Validate(sup); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(sup).Error
}

func (s *SupplierService) Update(ctx context.Context, sup *models.Supplier) error {
	if err := s.Validate(sup); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(sup).Error
}

// Delete removes the supplier, its operators and their interventions.
func (s *SupplierService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(ctx, tx, &models.Supplier{}, id); err != nil {
			return err
		}
		operators := tx.Model(&models.Operator{}).Select("id").Where("supplier_id = ?", id)
		if err := tx.Where("operator_id IN (?)", operators).Delete(&models.Intervention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("supplier_id = ?", id).Delete(&models.Operator{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Supplier{}, id).Error
	})
}
