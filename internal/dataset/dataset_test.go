package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/baruffaldi/finalmentecasa-interventi/internal/models"
	"github.com/baruffaldi/finalmentecasa-interventi/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func mustLookup(t *testing.T, name string) *Resource {
	t.Helper()
	res, err := Lookup(name)
	require.NoError(t, err)
	return res
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"clients", "interventions", "operators", "suppliers"}, Names())
	_, err := Lookup("invoices")
	assert.ErrorIs(t, err, ErrUnknownResource)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)
	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportInterventionsCSV(t *testing.T) {
	db := setupTestDB(t, t.Name())
	d := time.Date(2024, 4, 2, 10, 30, 0, 0, time.UTC)
	i := models.NewIntervention()
	i.Date = &d
	i.Description = "Caldaia"
	i.MaterialQuantity = 2
	require.NoError(t, db.Create(i).Error)

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), db, mustLookup(t, "interventions"), FormatCSV, &buf))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "id", recs[0][0])
	assert.NotContains(t, recs[0], "grand_total", "derived totals are never exported")
	row := map[string]string{}
	for k, col := range recs[0] {
		row[col] = recs[1][k]
	}
	assert.Equal(t, "2024-04-02T10:30:00Z", row["date"])
	assert.Equal(t, "", row["operator_id"])
	assert.Equal(t, "2", row["material_quantity"])
	assert.Equal(t, "DF", row["invoice_status"])
}

func TestImportCreatesAndUpdates(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()
	require.NoError(t, db.Create(&models.Supplier{ID: 1, CompanyName: "Vecchio nome"}).Error)

	in := "id,company_name,created_at\n1,Edil Srl,2020-01-01T00:00:00Z\n,Acqua Spa,\n\n,,\n"
	res, err := Import(ctx, db, mustLookup(t, "suppliers"), FormatCSV, strings.NewReader(in), false)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.False(t, res.HasErrors())

	var sup models.Supplier
	require.NoError(t, db.First(&sup, 1).Error)
	assert.Equal(t, "Edil Srl", sup.CompanyName)
	assert.Equal(t, int64(2), count(t, db, &models.Supplier{}))
}

func TestImportKeepsExplicitIDs(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()

	_, err := Import(ctx, db, mustLookup(t, "suppliers"), FormatCSV, strings.NewReader("id,company_name\n7,Edil Srl\n"), false)
	require.NoError(t, err)
	res, err := Import(ctx, db, mustLookup(t, "operators"), FormatCSV, strings.NewReader("id,supplier_id,last_name\n3,7,Verdi\n"), false)
	require.NoError(t, err)
	require.True(t, res.Committed, "%+v", res.Rows)

	var op models.Operator
	require.NoError(t, db.Preload("Supplier").First(&op, 3).Error)
	assert.Equal(t, "Verdi  [Edil Srl]", op.Label())
}

func TestImportMixesExplicitAndBlankIDs(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()

	in := "id,company_name\n,Alfa\n5,Beta\n,Gamma\n"
	res, err := Import(ctx, db, mustLookup(t, "suppliers"), FormatCSV, strings.NewReader(in), false)
	require.NoError(t, err)
	require.True(t, res.Committed, "%+v", res.Rows)
	assert.Equal(t, 3, res.Created)

	var sups []models.Supplier
	require.NoError(t, db.Order("id").Find(&sups).Error)
	require.Len(t, sups, 3)
	assert.Equal(t, "Beta", sups[1].CompanyName)
	assert.Equal(t, uint(5), sups[1].ID)
	assert.Equal(t, "Gamma", sups[2].CompanyName)
	assert.Greater(t, sups[2].ID, uint(5), "rows after an explicit id continue past it")
}

func TestImportIsAllOrNothing(t *testing.T) {
	db := setupTestDB(t, t.Name())
	ctx := context.Background()

	in := "id,company_name\n,Edil Srl\n5,\n"
	res, err := Import(ctx, db, mustLookup(t, "suppliers"), FormatCSV, strings.NewReader(in), false)
	require.NoError(t, err)
	assert.False(t, res.Committed)
	assert.True(t, res.HasErrors())
	require.Len(t, res.Rows, 2)
	assert.Equal(t, ActionCreate, res.Rows[0].Action)
	assert.Equal(t, ActionError, res.Rows[1].Action)
	assert.Equal(t, 2, res.Rows[1].Row)
	assert.Equal(t, int64(0), count(t, db, &models.Supplier{}))
}

func TestImportRowErrors(t *testing.T) {
	db := setupTestDB(t, t.Name())
	in := "id,client_type,building_code\nabc,CD,1\n,XX,1\n,CD,uno\n"
	res, err := Import(context.Background(), db, mustLookup(t, "clients"), FormatCSV, strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, validation.Violations{"id": validation.CodeInvalidInteger}, res.Rows[0].Errors)
	assert.Equal(t, validation.Violations{"client_type": validation.CodeInvalidChoice}, res.Rows[1].Errors)
	assert.Equal(t, validation.Violations{"building_code": validation.CodeInvalidInteger}, res.Rows[2].Errors)
}

func TestImportDryRunNeverCommits(t *testing.T) {
	db := setupTestDB(t, t.Name())
	res, err := Import(context.Background(), db, mustLookup(t, "clients"), FormatCSV,
		strings.NewReader("client_type,last_name\nPS,Bianchi\n"), true)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.False(t, res.Committed)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, int64(0), count(t, db, &models.Client{}))
}

func TestImportMissingHeader(t *testing.T) {
	db := setupTestDB(t, t.Name())
	_, err := Import(context.Background(), db, mustLookup(t, "clients"), FormatCSV, strings.NewReader(""), false)
	assert.ErrorIs(t, err, ErrMissingHeader)
}

func TestXLSXExportThenImport(t *testing.T) {
	src := setupTestDB(t, t.Name()+"_src")
	dst := setupTestDB(t, t.Name()+"_dst")
	ctx := context.Background()

	require.NoError(t, src.Create(&models.Client{ClientType: models.ClientTypeCondominium, BuildingCode: 12, DisplayName: "Condominio Rossi"}).Error)
	require.NoError(t, src.Create(&models.Client{ClientType: models.ClientTypePerson, LastName: "Bianchi"}).Error)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, src, mustLookup(t, "clients"), FormatXLSX, &buf))

	res, err := Import(ctx, dst, mustLookup(t, "clients"), FormatXLSX, &buf, false)
	require.NoError(t, err)
	require.True(t, res.Committed, "%+v", res.Rows)
	assert.Equal(t, 2, res.Created)

	var got []models.Client
	require.NoError(t, dst.Order("id").Find(&got).Error)
	require.Len(t, got, 2)
	assert.Equal(t, "12 - Condominio Rossi", got[0].Label())
	assert.Equal(t, "Sig./Sig.ra  Bianchi ", got[1].Label())
}
