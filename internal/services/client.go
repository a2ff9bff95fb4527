package services

import (
	"context"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db}
}

// ClientFilter narrows the client list.
type ClientFilter struct {
	ListParams
	ClientType models.ClientType
}

func (s *ClientService) List(ctx context.Context, f ClientFilter) (Page[models.Client], error) {
	p := f.ListParams.normalized()
	out := Page[models.Client]{Page: p.Page, Limit: p.Limit}
	base := func() *gorm.DB {
		db := s.db.WithContext(ctx).Model(&models.Client{})
		if f.ClientType != "" {
			db = db.Where("client_type = ?", f.ClientType)
		}
		return likeAny(db, p.Q, "display_name", "last_name", "first_name")
	}
	if err := base().Count(&out.Total).Error; err != nil {
		return out, err
	}
	err := base().Order("display_name").Order("last_name").Order("first_name").Order("id").
		Limit(p.Limit).Offset(p.offset()).Find(&out.Items).Error
	return out, err
}

func (s *ClientService) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *ClientService) Validate(c *models.Client) error {
	if c.ClientType == "" {
		c.ClientType = models.ClientTypeUndefined
	}
	v := validation.Struct(c)
	validation.Int32("building_code", int64(c.BuildingCode), v)
	return invalid(v)
}

func (s *ClientService) Create(ctx context.Context, c *models.Client) error {
	if err := s.Validate(c); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *ClientService) Update(ctx context.Context, c *models.Client) error {
	if err := s.Validate(c); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

// Delete removes the client and its interventions.
func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(ctx, tx, &models.Client{}, id); err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&models.Intervention{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Client{}, id).Error
	})
}
