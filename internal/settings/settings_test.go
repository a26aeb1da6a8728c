package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productgen/internal/config"
	"productgen/internal/models"
	"productgen/internal/repository"
	"productgen/internal/testutil"
)

func TestStore_FallsBackToEnvironment(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{AIAPIBaseURL: "http://env-ai", AIAPIKey: "env-key"}
	store := New(repository.NewSettingRepository(testutil.NewDB(t)), cfg, testutil.Logger())

	assert.Equal(t, "http://env-ai", store.Value(ctx, models.SettingAIBaseURL))
	assert.Equal(t, "", store.Value(ctx, models.SettingDefaultMappingRules))

	require.NoError(t, store.Set(ctx, models.SettingAIBaseURL, "http://stored-ai"))
	assert.Equal(t, "http://stored-ai", store.Value(ctx, models.SettingAIBaseURL))

	require.NoError(t, store.Set(ctx, models.SettingAIBaseURL, ""))
	assert.Equal(t, "http://env-ai", store.Value(ctx, models.SettingAIBaseURL), "an emptied setting falls back")
}
