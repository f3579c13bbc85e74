package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Сборка сервисов в cmd/server и cmd/worker опирается на эти дефолты:
// обогащение аудита, кеши и авто-скан должны быть включены из коробки.
func TestFeatureFlags_WiringDefaults(t *testing.T) {
	ff := LoadFeatureFlags()

	for _, name := range []string{
		FeatureAuditGeoLookup,
		FeatureAuditUAParsing,
		FeatureCacheGradingScheme,
		FeatureCacheStanding,
		FeatureCarryoverAutoScan,
	} {
		assert.True(t, ff.IsEnabled(name, nil), name)
	}

	assert.False(t, ff.IsEnabled(FeatureExperimentalTranscriptPDF, nil))
	assert.False(t, ff.IsEnabled("no.such.feature", nil))
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_AUDIT_GEO_LOOKUP", "false")

	ff := LoadFeatureFlags()
	assert.False(t, ff.IsEnabled(FeatureAuditGeoLookup, nil))
	assert.True(t, ff.IsEnabled(FeatureAuditUAParsing, nil))
}

func TestFeatureFlags_ActorOverrideAndAdmin(t *testing.T) {
	ff := LoadFeatureFlags()

	ff.SetActorOverride("staff-1", FeatureCacheStanding, false)
	assert.False(t, ff.IsEnabled(FeatureCacheStanding, &FeatureContext{ActorID: "staff-1"}))
	assert.True(t, ff.IsEnabled(FeatureCacheStanding, &FeatureContext{ActorID: "staff-2"}))

	// админам доступно всё, что не переопределено персонально
	require.NoError(t, ff.DisableFeature(FeatureExperimentalAnalytics))
	assert.True(t, ff.IsEnabled(FeatureExperimentalAnalytics, &FeatureContext{ActorID: "root", IsAdmin: true}))
}
