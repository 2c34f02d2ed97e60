package recommendation

import (
	"sort"
	"strings"
)

const (
	ReasonNoCommonPlatforms = "No common platforms found where all members have accounts"
)

// Recommend scores and ranks common platforms against the required
// features. Duplicate feature names count once.
func (e *Engine) Recommend(common []CommonPlatform, requiredFeatures []string) RecommendationResult {
	if len(common) == 0 {
		return RecommendationResult{Recommendations: []Recommendation{}, Reason: ReasonNoCommonPlatforms}
	}

	required := dedupe(requiredFeatures)
	recs := make([]Recommendation, 0, len(common))
	for _, cp := range common {
		missing := []string{}
		matched := 0
		for _, f := range required {
			if cp.HasFeature(f) {
				matched++
			} else {
				missing = append(missing, f)
			}
		}
		recs = append(recs, Recommendation{
			CommonPlatform:      cp,
			FeatureMatch:        len(required) == 0 || len(missing) == 0,
			RecommendationScore: score(cp, matched, len(missing)),
			MissingFeatures:     missing,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RecommendationScore > recs[j].RecommendationScore
	})

	return RecommendationResult{
		Recommendations: recs,
		Reason:          reasonText(recs[0], len(required) > 0),
	}
}

func score(cp CommonPlatform, matched, missing int) float64 {
	s := cp.AveragePreference * PreferenceWeight
	s += float64(cp.PopularityScore) * PopularityWeight
	s += float64(cp.PrivacyScore) * PrivacyWeight
	s += float64(matched) * MatchedFeatureBonus
	s -= float64(missing) * MissingFeatureCost
	if cp.FreeToUse {
		s += FreeToUseBonus
	}
	return round1(s)
}

// reasonText explains the top pick. With no qualifying fragment the clause
// keeps its empty tail.
func reasonText(top Recommendation, hasRequirements bool) string {
	var fragments []string
	if top.AveragePreference > HighPreferenceThreshold {
		fragments = append(fragments, "high user preference")
	}
	if top.PrivacyScore > StrongPrivacyThreshold {
		fragments = append(fragments, "strong privacy")
	}
	if top.PopularityScore > WideAdoptionThreshold {
		fragments = append(fragments, "widespread adoption")
	}
	if hasRequirements && top.FeatureMatch {
		fragments = append(fragments, "feature requirements match")
	}

	reason := top.Name + " is recommended based on " + strings.Join(fragments, ", ")
	if len(top.MissingFeatures) > 0 {
		reason += ". Note: Missing features - " + strings.Join(top.MissingFeatures, ", ")
	}
	return reason
}

func dedupe(features []string) []string {
	seen := make(map[string]struct{}, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
