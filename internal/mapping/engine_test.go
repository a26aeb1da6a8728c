package mapping

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productgen/internal/errs"
	"productgen/internal/models"
	"productgen/internal/repository"
	"productgen/internal/testutil"
)

type staticSettings map[string]string

func (s staticSettings) Value(_ context.Context, path string) string {
	return s[path]
}

type fakeAttributes struct {
	inputs map[string]string
	calls  map[string]int
}

func (f *fakeAttributes) AttributeInputType(_ context.Context, code string) (string, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[code]++
	input, ok := f.inputs[code]
	if !ok {
		return "", errors.New("no such attribute")
	}
	return input, nil
}

type fixture struct {
	drafts   *repository.GormDraftRepository
	profiles *repository.GormMappingProfileRepository
	attrs    *fakeAttributes
	settings staticSettings
	engine   *Engine
	config   *Config
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	f := &fixture{
		drafts:   repository.NewDraftRepository(db),
		profiles: repository.NewMappingProfileRepository(db),
		attrs:    &fakeAttributes{inputs: map[string]string{"features": "multiselect", "description": "textarea"}},
		settings: staticSettings{},
	}
	f.config = NewConfig(f.profiles, f.settings, testutil.Logger())
	f.engine = NewEngine(f.drafts, f.config, f.attrs, "USD", testutil.Logger())
	return f
}

func (f *fixture) draft(t *testing.T) *models.Draft {
	now := time.Now().UTC()
	d, err := f.drafts.Save(context.Background(), &models.Draft{
		ProductName:      "Vitamin C Serum",
		GenerationType:   models.GenerationTypeSingle,
		SKU:              "VITAMIN-C-SERUM-20240101000000",
		MetaTitle:        "Vitamin C Serum | Glow",
		Description:      "Brightening serum.",
		ShortDescription: "Serum.",
		KeyFeatures:      models.StringList{"Brightens", "Evens tone"},
		Keywords:         models.StringList{"vitamin c", "serum"},
		Pricing:          models.Pricing{"USD": {Min: 19.99, Max: 24.99}},
		AdditionalInformation: models.JSONB{
			"skin_type": "all",
			"specs":     map[string]interface{}{"volume": "30ml"},
		},
		UpdatedAt: &now,
	})
	require.NoError(t, err)
	return d
}

func TestMapDraftToCatalog_BuiltinRulesWhenNothingConfigured(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	mapped, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Vitamin C Serum", mapped["name"])
	assert.Equal(t, d.SKU, mapped["sku"])
	assert.Equal(t, "Brightening serum.", mapped["description"])
	assert.Equal(t, 19.99, mapped["price"])
	assert.Equal(t, "vitamin c, serum", mapped["meta_keyword"])
	assert.Equal(t, "vitamin-c-serum", mapped["url_key"])
	assert.NotContains(t, mapped, "meta_description")
}

func TestMapDraftToCatalog_FlatPriceAndURLKeyFromAI(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()
	d, err := f.drafts.Save(context.Background(), &models.Draft{
		ProductName:    "Flat Price Tee",
		GenerationType: models.GenerationTypeSingle,
		SKU:            "FLAT-PRICE-TEE-20240101000000",
		AdditionalInformation: models.JSONB{
			"price":   25.0,
			"url_key": "tees/flat-price",
		},
		UpdatedAt: &now,
	})
	require.NoError(t, err)

	mapped, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 25.0, mapped["price"])
	assert.Equal(t, "tees/flat-price", mapped["url_key"])
}

func TestMapDraftToCatalog_MultiselectKeepsListAndTextJoins(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	_, err := f.profiles.Save(context.Background(), &models.MappingProfile{
		Name:      "default",
		IsDefault: true,
		Rules:     `{"key_features": "features", "keywords": "search_terms", "specs": "specs_json", "skin_type": "skin_type"}`,
	})
	require.NoError(t, err)

	mapped, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "simple", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Brightens", "Evens tone"}, mapped["features"])
	assert.Equal(t, "vitamin c, serum", mapped["search_terms"])
	assert.Equal(t, `{"volume":"30ml"}`, mapped["specs_json"])
	assert.Equal(t, "all", mapped["skin_type"])
	assert.Equal(t, 19.99, mapped["price"], "price is filled when no rule targets it")
	assert.Equal(t, 1, f.attrs.calls["features"])
}

func TestMapDraftToCatalog_ExplicitPriceRuleDisablesFallback(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	profile, err := f.profiles.Save(context.Background(), &models.MappingProfile{
		Name:  "custom",
		Rules: `{"meta_title": "price"}`,
	})
	require.NoError(t, err)

	mapped, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "simple", nil, &profile.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"price": "Vitamin C Serum | Glow"}, mapped)
}

func TestMapDraftToCatalog_FirstSourceWinsPerTarget(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	mapped := f.engine.Apply(context.Background(), d, map[string]string{
		"short_description": "description",
		"description":       "description",
		"missing_field":     "other",
	})
	assert.Equal(t, "Brightening serum.", mapped["description"])
	assert.NotContains(t, mapped, "other")
}

func TestMapDraftToCatalog_ScopedProfileBeatsDefault(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)
	ctx := context.Background()

	_, err := f.profiles.Save(ctx, &models.MappingProfile{Name: "global", IsDefault: true, Rules: `{"meta_title": "meta_title"}`})
	require.NoError(t, err)
	pt, set := "virtual", 9
	_, err = f.profiles.Save(ctx, &models.MappingProfile{Name: "virtual", ProductType: &pt, AttributeSetID: &set, Rules: `{"short_description": "summary"}`})
	require.NoError(t, err)

	mapped, err := f.engine.MapDraftToCatalog(ctx, d.ID, "VIRTUAL", &set, nil)
	require.NoError(t, err)
	assert.Equal(t, "Serum.", mapped["summary"])
	assert.NotContains(t, mapped, "meta_title")

	other := 10
	mapped, err = f.engine.MapDraftToCatalog(ctx, d.ID, "virtual", &other, nil)
	require.NoError(t, err)
	assert.Equal(t, "Vitamin C Serum | Glow", mapped["meta_title"])
}

func TestMapDraftToCatalog_DefaultRulesSetting(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)
	f.settings[models.SettingDefaultMappingRules] = `{"meta_title": "page_title"}`

	mapped, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "simple", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Vitamin C Serum | Glow", mapped["page_title"])
}

func TestMapDraftToCatalog_CorruptProfileFallsBackToBuiltins(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	_, err := f.profiles.Save(context.Background(), &models.MappingProfile{Name: "broken", IsDefault: true, Rules: "a:1:{broken"})
	require.NoError(t, err)

	mapped, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "simple", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Vitamin C Serum", mapped["name"])
}

func TestMapDraftToCatalog_Errors(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)
	ctx := context.Background()

	_, err := f.engine.MapDraftToCatalog(ctx, 404, "simple", nil, nil)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.engine.MapDraftToCatalog(ctx, d.ID, "kit", nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalid)

	missing := uint(77)
	_, err = f.engine.MapDraftToCatalog(ctx, d.ID, "simple", nil, &missing)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMapDraftToCatalog_NoWrites(t *testing.T) {
	f := newFixture(t)
	d := f.draft(t)

	_, err := f.engine.MapDraftToCatalog(context.Background(), d.ID, "simple", nil, nil)
	require.NoError(t, err)

	reloaded, err := f.drafts.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsCreatedInCatalog)
	assert.Equal(t, d.RegenerationCount, reloaded.RegenerationCount)
}

func TestGetMappingRules_NeverFails(t *testing.T) {
	f := newFixture(t)
	f.settings[models.SettingDefaultMappingRules] = "corrupt"

	rules := f.config.GetMappingRules(context.Background(), "simple", nil)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)
}
