// Package recommendation finds the messaging platforms a whole group has in
// common and ranks them. Every method is a pure function of its arguments.
package recommendation

import "getconnected/internal/catalog"

// Score weights.
const (
	PreferenceWeight    = 2.0
	PopularityWeight    = 0.5
	PrivacyWeight       = 0.3
	MatchedFeatureBonus = 3.0
	MissingFeatureCost  = 5.0
	FreeToUseBonus      = 2.0
)

// Reason fragment thresholds; each is a strict lower bound.
const (
	HighPreferenceThreshold = 7
	StrongPrivacyThreshold  = 7
	WideAdoptionThreshold   = 8
)

// Engine holds no state besides the read-only catalog, so it is safe for
// concurrent use.
type Engine struct {
	catalog *catalog.Catalog
}

func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}
