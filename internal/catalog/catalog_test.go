package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"getconnected/internal/common/errors"
	"getconnected/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Built-in catalog
// ==========================

func TestDefault_Contents(t *testing.T) {
	c := Default()

	assert.Equal(t,
		[]string{"whatsapp", "telegram", "signal", "discord", "slack", "messenger", "imessage", "teams"},
		c.Keys())
	assert.Equal(t, 8, c.Len())

	tests := []struct {
		key        string
		name       string
		privacy    int
		popularity int
		free       bool
		maxGroup   int
	}{
		{"whatsapp", "WhatsApp", 7, 10, true, 1024},
		{"telegram", "Telegram", 8, 8, true, 200000},
		{"signal", "Signal", 10, 6, true, 1000},
		{"discord", "Discord", 5, 9, true, 500000},
		{"slack", "Slack", 6, 7, false, 500000},
		{"messenger", "Facebook Messenger", 4, 9, true, 250},
		{"imessage", "iMessage", 8, 7, true, 32},
		{"teams", "Microsoft Teams", 6, 8, false, 250},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p, ok := c.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.name, p.Name)
			assert.Equal(t, tt.privacy, p.PrivacyScore)
			assert.Equal(t, tt.popularity, p.PopularityScore)
			assert.Equal(t, tt.free, p.FreeToUse)
			assert.Equal(t, tt.maxGroup, p.MaxGroupSize)
			for _, f := range models.AllFeatures {
				_, present := p.Features[f]
				assert.True(t, present, "feature %s listed", f)
			}
		})
	}
}

func TestDefault_FeatureFlags(t *testing.T) {
	c := Default()

	discord, _ := c.Get("discord")
	assert.False(t, discord.HasFeature(models.FeatureEndToEndEncryption))
	assert.True(t, discord.HasFeature(models.FeatureScreenSharing))

	imessage, _ := c.Get("imessage")
	assert.False(t, imessage.HasFeature(models.FeatureVoiceCalls))
	assert.Equal(t, []string{"iOS", "macOS"}, imessage.SupportedOS)

	assert.Equal(t, []string{"discord", "slack", "teams"}, c.PlatformsWithFeature(models.FeatureScreenSharing))
	assert.Empty(t, c.PlatformsWithFeature("teleport"))
}

func TestCatalog_Availability(t *testing.T) {
	groups := Default().Availability()
	require.Len(t, groups, len(models.FeatureCategories))
	assert.Equal(t, "communication", groups[0].Category)

	seen := map[string]bool{}
	for _, g := range groups {
		for _, f := range g.Features {
			assert.False(t, seen[f.Feature], "feature %s listed twice", f.Feature)
			seen[f.Feature] = true
		}
	}
	assert.Len(t, seen, len(models.AllFeatures))

	sharing := groups[1]
	assert.Equal(t, "sharing", sharing.Category)
	assert.Equal(t, FeatureAvailability{
		Feature:   models.FeatureScreenSharing,
		Platforms: []string{"discord", "slack", "teams"},
	}, sharing.Features[1])

	security := groups[2].Features[0]
	assert.Equal(t, []string{"whatsapp", "telegram", "signal", "messenger", "imessage"}, security.Platforms)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := Default()

	p, _ := c.Get("signal")
	p.Features[models.FeatureBots] = true
	p.Name = "changed"

	again, _ := c.Get("signal")
	assert.Equal(t, "Signal", again.Name)
	assert.False(t, again.HasFeature(models.FeatureBots))

	all := c.All()
	all[0].SupportedOS[0] = "BeOS"
	first, _ := c.Get("whatsapp")
	assert.Equal(t, "iOS", first.SupportedOS[0])
}

func TestCatalog_GetUnknown(t *testing.T) {
	c := Default()
	_, ok := c.Get("myspace")
	assert.False(t, ok)
	assert.False(t, c.Has("myspace"))
	assert.Equal(t, "signal", c.Keys()[2])
}

// ==========================
// Construction errors
// ==========================

func TestNew_RejectsDuplicateKeys(t *testing.T) {
	_, err := New(
		models.PlatformProfile{Key: "a", Name: "A"},
		models.PlatformProfile{Key: "a", Name: "A again"},
	)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))

	_, err = New(models.PlatformProfile{Name: "nameless"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{
  "version": "2.0.0",
  "platforms": [
    {"key": "matrix", "name": "Matrix", "features": {"bots": true}, "maxGroupSize": 10000,
     "privacyScore": 9, "popularityScore": 3, "freeToUse": true}
  ]
}`), 0o600))

	c, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", c.Version())
	assert.Equal(t, []string{"matrix"}, c.Keys())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version": "1", "platforms": [{"key": "x"}]}`), 0o600))
	_, err = Load(bad)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))

	dup := filepath.Join(dir, "dup.json")
	require.NoError(t, os.WriteFile(dup, []byte(`{"version": "1", "platforms": [
    {"key": "x", "name": "X", "features": {}, "maxGroupSize": 1, "privacyScore": 1, "popularityScore": 1},
    {"key": "x", "name": "X", "features": {}, "maxGroupSize": 1, "privacyScore": 1, "popularityScore": 1}
  ]}`), 0o600))
	_, err = Load(dup)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))

	_, err = Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeCatalogInvalid))
}

// ==========================
// QuickScore
// ==========================

func TestQuickScore(t *testing.T) {
	c := Default()

	tests := []struct {
		key      string
		features []string
		want     float64
	}{
		// 10*0.3 + 7*0.2 + 3
		{"whatsapp", nil, 7.4},
		// 6*0.3 + 10*0.2 + 5 + 3
		{"signal", []string{models.FeatureEndToEndEncryption}, 11.8},
		// 7*0.3 + 6*0.2 + 5 + 5, not free
		{"slack", []string{models.FeatureBots, models.FeatureThreading}, 13.3},
		// unsupported feature adds nothing
		{"imessage", []string{models.FeatureVideoCalls}, 6.7},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p, _ := c.Get(tt.key)
			assert.InDelta(t, tt.want, QuickScore(p, tt.features), 1e-9)
		})
	}
}
