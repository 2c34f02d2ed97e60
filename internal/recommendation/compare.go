package recommendation

// Compare projects each common platform onto the requested features.
// Unsupported and unknown names map to false.
func (e *Engine) Compare(common []CommonPlatform, features []string) FeatureComparison {
	out := make(FeatureComparison, len(common))
	for _, cp := range common {
		flags := make(map[string]bool, len(features))
		for _, f := range features {
			flags[f] = cp.HasFeature(f)
		}
		out[cp.Key] = FeatureSupport{Name: cp.Name, Features: flags}
	}
	return out
}
