// internal/models/platform.go
package models

import "maps"

// Feature names understood by the catalog.
const (
	FeatureTextMessages       = "textMessages"
	FeatureVoiceCalls         = "voiceCalls"
	FeatureVideoCalls         = "videoCalls"
	FeatureGroupChats         = "groupChats"
	FeatureFileSharing        = "fileSharing"
	FeatureScreenSharing      = "screenSharing"
	FeatureEndToEndEncryption = "endToEndEncryption"
	FeatureDesktopApp         = "desktopApp"
	FeatureWebApp             = "webApp"
	FeatureBusinessFeatures   = "businessFeatures"
	FeatureIntegrations       = "integrations"
	FeatureThreading          = "threading"
	FeatureCustomEmojis       = "customEmojis"
	FeatureBots               = "bots"
)

// AllFeatures lists every feature in display order.
var AllFeatures = []string{
	FeatureTextMessages,
	FeatureVoiceCalls,
	FeatureVideoCalls,
	FeatureGroupChats,
	FeatureFileSharing,
	FeatureScreenSharing,
	FeatureEndToEndEncryption,
	FeatureDesktopApp,
	FeatureWebApp,
	FeatureBusinessFeatures,
	FeatureIntegrations,
	FeatureThreading,
	FeatureCustomEmojis,
	FeatureBots,
}

type FeatureCategory struct {
	Name     string
	Features []string
}

// FeatureCategories groups every feature exactly once, in display order.
var FeatureCategories = []FeatureCategory{
	{Name: "communication", Features: []string{FeatureTextMessages, FeatureVoiceCalls, FeatureVideoCalls, FeatureGroupChats}},
	{Name: "sharing", Features: []string{FeatureFileSharing, FeatureScreenSharing}},
	{Name: "security", Features: []string{FeatureEndToEndEncryption}},
	{Name: "accessibility", Features: []string{FeatureDesktopApp, FeatureWebApp}},
	{Name: "advanced", Features: []string{FeatureThreading, FeatureCustomEmojis, FeatureBots, FeatureIntegrations, FeatureBusinessFeatures}},
}

var knownFeatures = func() map[string]struct{} {
	m := make(map[string]struct{}, len(AllFeatures))
	for _, f := range AllFeatures {
		m[f] = struct{}{}
	}
	return m
}()

func IsKnownFeature(name string) bool {
	_, ok := knownFeatures[name]
	return ok
}

// PlatformProfile is the static metadata of one messaging platform.
type PlatformProfile struct {
	Key                 string          `json:"key"`
	Name                string          `json:"name"`
	Features            map[string]bool `json:"features"`
	MaxGroupSize        int             `json:"maxGroupSize"`
	SupportedOS         []string        `json:"supportedOS,omitempty"`
	PrivacyScore        int             `json:"privacyScore"`
	PopularityScore     int             `json:"popularityScore"`
	FreeToUse           bool            `json:"freeToUse"`
	BusinessFriendly    bool            `json:"businessFriendly"`
	RequiresPhoneNumber bool            `json:"requiresPhoneNumber"`
}

// HasFeature reports whether the platform supports the named feature.
// Unknown names are unsupported.
func (p PlatformProfile) HasFeature(name string) bool {
	return p.Features[name]
}

// Clone returns a deep copy so callers cannot mutate catalog state.
func (p PlatformProfile) Clone() PlatformProfile {
	out := p
	out.Features = maps.Clone(p.Features)
	if p.SupportedOS != nil {
		out.SupportedOS = append([]string(nil), p.SupportedOS...)
	}
	return out
}
