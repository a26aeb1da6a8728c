package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productgen/internal/errs"
	"productgen/internal/models"
	"productgen/internal/testutil"
)

func newDraft(name string, gt models.GenerationType) *models.Draft {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return &models.Draft{
		ProductName:    name,
		GenerationType: gt,
		SKU:            "SKU-" + name,
		KeyFeatures:    models.StringList{"first", "second", "third"},
		Pricing:        models.Pricing{"USD": {Min: 10, Max: 12}},
		UpdatedAt:      &now,
	}
}

func TestDraftRepository_SaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(testutil.NewDB(t))

	saved, err := repo.Save(ctx, newDraft("Serum", models.GenerationTypeSingle))
	require.NoError(t, err)
	require.NotZero(t, saved.ID)

	loaded, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"first", "second", "third"}, loaded.KeyFeatures)
	assert.Equal(t, 10.0, loaded.Pricing["USD"].Min)
	require.NotNil(t, loaded.UpdatedAt)
	assert.True(t, saved.UpdatedAt.Equal(*loaded.UpdatedAt))
}

func TestDraftRepository_SaveValidates(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(testutil.NewDB(t))

	_, err := repo.Save(ctx, newDraft("", models.GenerationTypeCSV))
	assert.ErrorIs(t, err, errs.ErrInvalid)

	_, err = repo.Save(ctx, newDraft("Serum", "bulk"))
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestDraftRepository_GetByIDMissing(t *testing.T) {
	repo := NewDraftRepository(testutil.NewDB(t))

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDraftRepository_FindByNameAndType(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(testutil.NewDB(t))

	_, err := repo.Save(ctx, newDraft("Serum", models.GenerationTypeSingle))
	require.NoError(t, err)

	found, err := repo.FindByNameAndType(ctx, "Serum", models.GenerationTypeSingle)
	require.NoError(t, err)
	require.NotNil(t, found)

	missing, err := repo.FindByNameAndType(ctx, "Serum", models.GenerationTypeCSV)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDraftRepository_GetListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := NewDraftRepository(db)

	batchID := uint(7)
	for _, name := range []string{"A", "B", "C"} {
		d := newDraft(name, models.GenerationTypeCSV)
		d.BatchID = &batchID
		_, err := repo.Save(ctx, d)
		require.NoError(t, err)
	}
	_, err := repo.Save(ctx, newDraft("D", models.GenerationTypeSingle))
	require.NoError(t, err)

	list, err := repo.GetList(ctx, DraftCriteria{BatchID: &batchID, WithTotal: true, Page: Page{Page: 1, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "C", list.Items[0].ProductName)

	list, err = repo.GetList(ctx, DraftCriteria{GenerationType: models.GenerationTypeSingle})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "D", list.Items[0].ProductName)

	list, err = repo.GetList(ctx, DraftCriteria{Search: "SKU-B"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
}

func TestDraftRepository_MarkCreatedInCatalogKeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(testutil.NewDB(t))

	saved, err := repo.Save(ctx, newDraft("Serum", models.GenerationTypeSingle))
	require.NoError(t, err)
	before := *saved.UpdatedAt

	require.NoError(t, repo.MarkCreatedInCatalog(ctx, saved.ID, 501))

	loaded, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsCreatedInCatalog)
	require.NotNil(t, loaded.CatalogProductID)
	assert.Equal(t, int64(501), *loaded.CatalogProductID)
	require.NotNil(t, loaded.UpdatedAt)
	assert.True(t, before.Equal(*loaded.UpdatedAt))

	assert.ErrorIs(t, repo.MarkCreatedInCatalog(ctx, 999, 1), errs.ErrNotFound)
}

func TestDraftRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewDraftRepository(testutil.NewDB(t))

	saved, err := repo.Save(ctx, newDraft("Serum", models.GenerationTypeSingle))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), errs.ErrNotFound)
}

func TestBatchRepository_CreateAssignsJobAndStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewBatchRepository(testutil.NewDB(t))

	batch, err := repo.Save(ctx, &models.Batch{GenerationType: models.GenerationTypeCSV})
	require.NoError(t, err)
	assert.NotEmpty(t, batch.JobID)
	assert.Equal(t, models.ImportStatusPending, batch.ImportStatus)

	batch.ImportStatus = models.ImportStatusCompleted
	_, err = repo.Save(ctx, batch)
	require.NoError(t, err)

	list, err := repo.GetList(ctx, BatchCriteria{ImportStatus: models.ImportStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, repo.Delete(ctx, batch.ID))
	_, err = repo.GetByID(ctx, batch.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestMappingProfileRepository_SingleDefaultPerScope(t *testing.T) {
	ctx := context.Background()
	repo := NewMappingProfileRepository(testutil.NewDB(t))

	first, err := repo.Save(ctx, &models.MappingProfile{Name: "first", IsDefault: true})
	require.NoError(t, err)
	scoped, err := repo.Save(ctx, &models.MappingProfile{Name: "scoped", IsDefault: true, ProductType: strPtr("simple"), AttributeSetID: intPtr(4)})
	require.NoError(t, err)
	second, err := repo.Save(ctx, &models.MappingProfile{Name: "second", IsDefault: true})
	require.NoError(t, err)

	reloaded, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)

	def, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, second.ID, def.ID)

	reloaded, err = repo.GetByID(ctx, scoped.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDefault, "other scopes keep their default")
}

func TestMappingProfileRepository_ScopedLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMappingProfileRepository(testutil.NewDB(t))

	_, err := repo.Save(ctx, &models.MappingProfile{Name: "type only", ProductType: strPtr("simple")})
	require.NoError(t, err)
	exact, err := repo.Save(ctx, &models.MappingProfile{Name: "exact", ProductType: strPtr("simple"), AttributeSetID: intPtr(4)})
	require.NoError(t, err)

	found, err := repo.GetByProductTypeAndAttributeSet(ctx, "simple", intPtr(4))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, exact.ID, found.ID)

	found, err = repo.GetByProductTypeAndAttributeSet(ctx, "simple", nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "type only", found.Name)

	found, err = repo.GetByProductTypeAndAttributeSet(ctx, "bundle", nil)
	require.NoError(t, err)
	assert.Nil(t, found)

	def, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestMappingProfileRepository_SaveRequiresName(t *testing.T) {
	repo := NewMappingProfileRepository(testutil.NewDB(t))

	_, err := repo.Save(context.Background(), &models.MappingProfile{Name: "  "})
	assert.ErrorIs(t, err, errs.ErrInvalid)
}

func TestSettingRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingRepository(testutil.NewDB(t))

	_, ok, err := repo.Get(ctx, models.SettingAIAPIKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, models.SettingAIAPIKey, "key-1"))
	require.NoError(t, repo.Set(ctx, models.SettingAIAPIKey, "key-2"))

	value, ok, err := repo.Get(ctx, models.SettingAIAPIKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "key-2", value)
}
