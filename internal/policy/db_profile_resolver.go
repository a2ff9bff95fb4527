package policy

import (
	"context"
	"errors"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/gate"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"gorm.io/gorm"
)

// DBProfileResolver loads a user's profile and permissions with gorm.
type DBProfileResolver struct {
	DB *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve returns nil without error when the user is gone or has no profile.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Profile == nil {
		return nil, nil
	}
	return newProfileAdapter(user.Profile), nil
}

// profileAdapter exposes a models.Profile as a gate.Profile.
type profileAdapter struct {
	id    uint
	name  string
	perms []gate.Permission
}

func newProfileAdapter(p *models.Profile) *profileAdapter {
	a := &profileAdapter{id: p.ID, name: p.Name, perms: make([]gate.Permission, len(p.Permissions))}
	for i, perm := range p.Permissions {
		a.perms[i] = gate.Permission(perm.Code())
	}
	return a
}

func (a *profileAdapter) ID() uint                       { return a.id }
func (a *profileAdapter) Name() string                   { return a.name }
func (a *profileAdapter) Permissions() []gate.Permission { return a.perms }

func (a *profileAdapter) HasPermission(perm gate.Permission) bool {
	return gate.HasAny(a.perms, perm)
}
