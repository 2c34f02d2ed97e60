// Package catalog holds the read-only table of messaging platforms.
package catalog

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"getconnected/internal/common/errors"
	"getconnected/internal/models"
	"getconnected/pkg/registry"
)

//go:embed platforms.json
var builtin []byte

// Catalog is an immutable, ordered set of platform profiles. Iteration
// order is the definition order of the source document.
type Catalog struct {
	version   string
	platforms []models.PlatformProfile
	index     map[string]int
}

// Default returns the built-in catalog. It panics only if the embedded
// document is broken, which the package tests rule out.
func Default() *Catalog {
	c, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("built-in platform catalog: %v", err))
	}
	return c
}

// Load builds a catalog from a registry file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("read %s: %v", path, err), err)
	}
	return Parse(data)
}

// Parse builds a catalog from a registry document.
func Parse(data []byte) (*Catalog, error) {
	reg, err := registry.Parse(data)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error(), err)
	}
	profiles := make([]models.PlatformProfile, 0, len(reg.Platforms))
	for _, e := range reg.Platforms {
		profiles = append(profiles, FromEntry(e))
	}
	c, err := New(profiles...)
	if err != nil {
		return nil, err
	}
	c.version = reg.Version
	return c, nil
}

// New builds a catalog from profiles in the given order. Keys must be
// unique and non-empty.
func New(profiles ...models.PlatformProfile) (*Catalog, error) {
	c := &Catalog{
		platforms: make([]models.PlatformProfile, 0, len(profiles)),
		index:     make(map[string]int, len(profiles)),
	}
	for _, p := range profiles {
		if p.Key == "" {
			return nil, errors.NewCatalogInvalidError("platform with empty key", nil)
		}
		if _, dup := c.index[p.Key]; dup {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("duplicate platform key %q", p.Key), nil)
		}
		c.index[p.Key] = len(c.platforms)
		c.platforms = append(c.platforms, p.Clone())
	}
	return c, nil
}

// FromEntry converts a registry entry to a profile.
func FromEntry(e registry.PlatformEntry) models.PlatformProfile {
	return models.PlatformProfile{
		Key:                 e.Key,
		Name:                e.Name,
		Features:            e.Features,
		MaxGroupSize:        e.MaxGroupSize,
		SupportedOS:         e.SupportedOS,
		PrivacyScore:        e.PrivacyScore,
		PopularityScore:     e.PopularityScore,
		FreeToUse:           e.FreeToUse,
		BusinessFriendly:    e.BusinessFriendly,
		RequiresPhoneNumber: e.RequiresPhoneNumber,
	}.Clone()
}

func (c *Catalog) Version() string { return c.version }

func (c *Catalog) Len() int { return len(c.platforms) }

// All returns copies of every profile in definition order.
func (c *Catalog) All() []models.PlatformProfile {
	out := make([]models.PlatformProfile, len(c.platforms))
	for i, p := range c.platforms {
		out[i] = p.Clone()
	}
	return out
}

// Keys returns platform keys in definition order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.platforms))
	for i, p := range c.platforms {
		out[i] = p.Key
	}
	return out
}

func (c *Catalog) Get(key string) (models.PlatformProfile, bool) {
	i, ok := c.index[key]
	if !ok {
		return models.PlatformProfile{}, false
	}
	return c.platforms[i].Clone(), true
}

func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// PlatformsWithFeature returns the keys of platforms supporting feature.
func (c *Catalog) PlatformsWithFeature(feature string) []string {
	out := []string{}
	for _, p := range c.platforms {
		if p.HasFeature(feature) {
			out = append(out, p.Key)
		}
	}
	return out
}

// FeatureAvailability names the platforms supporting one feature.
type FeatureAvailability struct {
	Feature   string   `json:"feature"`
	Platforms []string `json:"platforms"`
}

type CategoryAvailability struct {
	Category string                `json:"category"`
	Features []FeatureAvailability `json:"features"`
}

// Availability walks the feature categories and lists, for each feature,
// the platforms that support it in catalog order.
func (c *Catalog) Availability() []CategoryAvailability {
	out := make([]CategoryAvailability, 0, len(models.FeatureCategories))
	for _, cat := range models.FeatureCategories {
		entry := CategoryAvailability{Category: cat.Name, Features: make([]FeatureAvailability, 0, len(cat.Features))}
		for _, f := range cat.Features {
			entry.Features = append(entry.Features, FeatureAvailability{Feature: f, Platforms: c.PlatformsWithFeature(f)})
		}
		out = append(out, entry)
	}
	return out
}

// QuickScore rates a platform on its own, without any group preferences:
// popularity*0.3 + privacy*0.2, plus 5 per supported required feature and
// 3 if free, rounded to one decimal.
func QuickScore(p models.PlatformProfile, requiredFeatures []string) float64 {
	score := float64(p.PopularityScore)*0.3 + float64(p.PrivacyScore)*0.2
	for _, f := range requiredFeatures {
		if p.HasFeature(f) {
			score += 5
		}
	}
	if p.FreeToUse {
		score += 3
	}
	return math.Round(score*10) / 10
}
