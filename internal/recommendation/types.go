package recommendation

import "getconnected/internal/models"

// MemberDetail is one member's preference row for a common platform.
type MemberDetail struct {
	MemberID        string `json:"memberId"`
	Name            string `json:"name"`
	PreferenceLevel int    `json:"preferenceLevel"`
	HasAccount      bool   `json:"hasAccount"`
	Notes           string `json:"notes,omitempty"`
}

// CommonPlatform is a platform on which every group member has an account.
// The profile fields are inlined in its JSON form.
type CommonPlatform struct {
	models.PlatformProfile
	AveragePreference float64        `json:"averagePreference"`
	AllHaveAccounts   bool           `json:"allHaveAccounts"`
	MemberDetails     []MemberDetail `json:"memberDetails"`
}

type CommonPlatformsResult struct {
	CommonPlatforms []CommonPlatform `json:"commonPlatforms"`
	Analysis        string           `json:"analysis"`
}

// Recommendation is a scored common platform.
type Recommendation struct {
	CommonPlatform
	FeatureMatch        bool     `json:"featureMatch"`
	RecommendationScore float64  `json:"recommendationScore"`
	MissingFeatures     []string `json:"missingFeatures"`
}

type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Reason          string           `json:"reason"`
}

// FeatureSupport is one row of a feature comparison.
type FeatureSupport struct {
	Name     string          `json:"name"`
	Features map[string]bool `json:"features"`
}

// FeatureComparison maps platform key to the requested feature flags.
type FeatureComparison map[string]FeatureSupport
