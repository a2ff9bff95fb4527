package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{Driver: "sqlite", DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())}
	d, err := Connect(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, Migrate(d, cfg))
	return d
}

func TestMigrateCreatesTables(t *testing.T) {
	d := openTestDB(t)
	for _, table := range coreTables {
		assert.True(t, d.Migrator().HasTable(table), table)
	}
	assert.NoError(t, Ping(context.Background(), d))
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	admin := config.AdminConfig{Email: "admin@example.com", Password: "segreta"}
	require.NoError(t, Seed(d, admin))
	require.NoError(t, Seed(d, admin))

	var perms, profiles, users int64
	d.Model(&models.Permission{}).Count(&perms)
	d.Model(&models.Profile{}).Count(&profiles)
	d.Model(&models.User{}).Count(&users)
	assert.Equal(t, int64(1+len(Resources)*(1+len(Actions))), perms)
	assert.Equal(t, int64(3), profiles)
	assert.Equal(t, int64(1), users)

	var u models.User
	require.NoError(t, d.Preload("Profile.Permissions").Where("email = ?", admin.Email).First(&u).Error)
	require.NotNil(t, u.Profile)
	assert.Equal(t, ProfileAdmin, u.Profile.Name)
	require.Len(t, u.Profile.Permissions, 1)
	assert.Equal(t, "*:*", u.Profile.Permissions[0].Code())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("segreta")))

	var viewer models.Profile
	require.NoError(t, d.Preload("Permissions").Where("name = ?", ProfileViewer).First(&viewer).Error)
	assert.Len(t, viewer.Permissions, 9)
}

func TestSeedAdminSkipsWithoutCredentials(t *testing.T) {
	d := openTestDB(t)
	require.NoError(t, Seed(d, config.AdminConfig{}))
	var users int64
	d.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)
}

func TestNormalizeDSN(t *testing.T) {
	assert.Equal(t, "", NormalizeDSN("  "))
	assert.Equal(t, "postgres://u:p@h/db", NormalizeDSN(`"postgres://u:p@h/db"`))
	assert.Equal(t, "host=h user=u dbname=d sslmode=disable", NormalizeDSN("host=h   user=u dbname=d"))
	assert.Equal(t, "host=h sslmode=require", NormalizeDSN("host=h sslmode=require"))
}

func TestToURLDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable",
		ToURLDSN("host=h port=5432 user=u password=p dbname=d sslmode=disable"))
	assert.Equal(t, "host=h", ToURLDSN("host=h"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "host=h password=*** dbname=d", MaskDSN("host=h password=secret dbname=d"))
	assert.Equal(t, "postgres://u:xxxxx@h/d", MaskDSN("postgres://u:secret@h/d"))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:interventi.db?_foreign_keys=1", sqliteDSN(""))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=1", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "file:x?_fk=1", sqliteDSN("file:x?_fk=1"))
}

func TestDialectorRejectsEmptyPostgresDSN(t *testing.T) {
	_, err := dialector(config.DatabaseConfig{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrEmptyDSN)
	_, err = dialector(config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}
