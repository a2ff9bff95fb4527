package policy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/auth"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/config"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/db"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/gate"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(models.All()...))
	require.NoError(t, db.Seed(conn, config.AdminConfig{}))
	return conn
}

func userWithProfile(t *testing.T, conn *gorm.DB, email, profile string) uint {
	t.Helper()
	u := models.User{Email: email, Password: "x"}
	if profile != "" {
		var p models.Profile
		require.NoError(t, conn.Where("name = ?", profile).First(&p).Error)
		u.ProfileID = &p.ID
	}
	require.NoError(t, conn.Create(&u).Error)
	return u.ID
}

func TestDBProfileResolver(t *testing.T) {
	conn := setupTestDB(t)
	viewer := userWithProfile(t, conn, "v@example.com", db.ProfileViewer)
	none := userWithProfile(t, conn, "n@example.com", "")
	r := policy.NewDBProfileResolver(conn)
	ctx := context.Background()

	p, err := r.Resolve(ctx, viewer)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, db.ProfileViewer, p.Name())
	assert.True(t, p.HasPermission("intervention:export"))
	assert.False(t, p.HasPermission("intervention:delete"))

	p, err = r.Resolve(ctx, none)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = r.Resolve(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAuthGate(t *testing.T) {
	conn := setupTestDB(t)
	admin := userWithProfile(t, conn, "a@example.com", db.ProfileAdmin)
	operator := userWithProfile(t, conn, "o@example.com", db.ProfileOperator)
	ag := policy.NewAuthGate(conn, time.Minute)

	adminCtx := auth.WithUserID(context.Background(), admin)
	opCtx := auth.WithUserID(context.Background(), operator)

	assert.True(t, ag.CanProfile(adminCtx, gate.ActionDelete, "supplier"))
	assert.True(t, ag.IsAdmin(adminCtx))
	assert.True(t, ag.CanProfile(opCtx, gate.ActionImport, "intervention"))
	assert.False(t, ag.CanProfile(opCtx, gate.ActionDelete, "supplier"))
	assert.False(t, ag.IsAdmin(opCtx))
	assert.ErrorIs(t, ag.Authorize(context.Background(), gate.ActionList, "client"), gate.ErrUnauthorized)

	// Promote the operator: the cached profile is kept until invalidated.
	var adminProfile models.Profile
	require.NoError(t, conn.Where("name = ?", db.ProfileAdmin).First(&adminProfile).Error)
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", operator).Update("profile_id", adminProfile.ID).Error)
	assert.False(t, ag.CanProfile(opCtx, gate.ActionDelete, "supplier"))
	ag.InvalidateUser(operator)
	assert.True(t, ag.CanProfile(opCtx, gate.ActionDelete, "supplier"))
}

func TestRequirePermission(t *testing.T) {
	conn := setupTestDB(t)
	viewer := userWithProfile(t, conn, "v@example.com", db.ProfileViewer)
	ag := policy.NewAuthGate(conn, time.Minute)
	h := ag.RequirePermission("client", gate.ActionCreate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/clients", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), viewer))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, rec.Body.String())

	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Accesso negato")
}
