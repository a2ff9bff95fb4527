package db

import (
	"errors"
	"strings"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/logger"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Resources guarded by the permission gate.
var Resources = []string{"supplier", "operator", "client", "intervention", "user", "profile"}

// Actions granted per resource, besides the "*" wildcard.
var Actions = []string{"list", "view", "create", "update", "delete", "import", "export"}

// Default profile names.
const (
	ProfileAdmin    = "admin"
	ProfileOperator = "operatore"
	ProfileViewer   = "lettore"
)

// SeedPermissions creates the permission catalogue.
func SeedPermissions(db *gorm.DB) error {
	codes := [][2]string{{"*", "*"}}
	for _, r := range Resources {
		codes = append(codes, [2]string{r, "*"})
		for _, a := range Actions {
			codes = append(codes, [2]string{r, a})
		}
	}
	for _, c := range codes {
		perm := models.Permission{ResourceType: c[0], Action: c[1], Description: c[0] + " " + c[1]}
		if err := db.Where("resource_type = ? AND action = ?", c[0], c[1]).FirstOrCreate(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedProfiles creates the default system profiles with their permissions.
func SeedProfiles(db *gorm.DB) error {
	if err := SeedPermissions(db); err != nil {
		return err
	}
	profiles := []struct {
		Name        string
		Description string
		Permissions []string
	}{
		{ProfileAdmin, "Accesso completo", []string{"*:*"}},
		{ProfileOperator, "Gestione interventi e clienti", []string{
			"intervention:*", "client:*",
			"supplier:list", "supplier:view", "operator:list", "operator:view",
		}},
		{ProfileViewer, "Sola lettura", []string{
			"intervention:list", "intervention:view", "intervention:export",
			"client:list", "client:view", "supplier:list", "supplier:view",
			"operator:list", "operator:view",
		}},
	}
	for _, p := range profiles {
		var profile models.Profile
		err := db.Where("name = ?", p.Name).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			err = db.Create(&profile).Error
		}
		if err != nil {
			return err
		}
		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, _ := strings.Cut(code, ":")
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err == nil {
				perms = append(perms, perm)
			}
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the bootstrap administrator when email and password are
// configured and no user with that email exists.
func SeedAdmin(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	var n int64
	if err := db.Model(&models.User{}).Where("email = ?", admin.Email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var profile models.Profile
	if err := db.Where("name = ?", ProfileAdmin).First(&profile).Error; err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := models.User{Email: admin.Email, Name: "Admin", Password: string(hash), ProfileID: &profile.ID}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	logger.WithComponent("db").Info().Str("email", admin.Email).Msg("bootstrap admin created")
	return nil
}

// Seed runs every seeder; it is safe to run repeatedly.
func Seed(db *gorm.DB, admin config.AdminConfig) error {
	if err := SeedProfiles(db); err != nil {
		return err
	}
	return SeedAdmin(db, admin)
}
