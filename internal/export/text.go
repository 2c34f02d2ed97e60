package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"getconnected/internal/catalog"
	"getconnected/internal/models"
	"getconnected/internal/recommendation"
)

const (
	markYes = "✓"
	markNo  = "✗"
)

// WriteText writes the plain-text form used by the CLI.
func WriteText(w io.Writer, rep Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Group %s (%d members)\n\n", rep.Group.ID, len(rep.Group.Members))
	b.WriteString(rep.Analysis)
	b.WriteString("\n\nCommon Platforms:\n")
	b.WriteString(FormatCommonPlatforms(rep.CommonPlatforms))
	b.WriteString("\n\n")
	b.WriteString(rep.RecommendationReason)
	b.WriteString("\n\nRecommended Platforms:\n")
	b.WriteString(FormatRecommendations(rep.RecommendedPlatforms))
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatCommonPlatforms renders a numbered list with average preferences.
func FormatCommonPlatforms(common []recommendation.CommonPlatform) string {
	if len(common) == 0 {
		return "No platforms found"
	}
	lines := make([]string, 0, len(common))
	for i, cp := range common {
		lines = append(lines, fmt.Sprintf("%d. %s Avg Preference: %.1f/10", i+1, cp.Name, cp.AveragePreference))
	}
	return strings.Join(lines, "\n")
}

// FormatRecommendations renders the ranking with scores and any missing
// features.
func FormatRecommendations(recs []recommendation.Recommendation) string {
	if len(recs) == 0 {
		return "No platforms found"
	}
	lines := make([]string, 0, len(recs))
	for i, r := range recs {
		line := fmt.Sprintf("%d. %s (Score: %s) Avg Preference: %.1f/10",
			i+1, r.Name, formatNumber(r.RecommendationScore), r.AveragePreference)
		if len(r.MissingFeatures) > 0 {
			line += " Missing: " + strings.Join(r.MissingFeatures, ", ")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatPlatforms renders catalog entries, optionally with a quick score
// keyed by platform.
func FormatPlatforms(platforms []models.PlatformProfile, scores map[string]float64) string {
	if len(platforms) == 0 {
		return "No platforms found"
	}
	lines := make([]string, 0, len(platforms))
	for i, p := range platforms {
		line := fmt.Sprintf("%d. %s", i+1, p.Name)
		if s, ok := scores[p.Key]; ok {
			line += fmt.Sprintf(" (Score: %s)", formatNumber(s))
		}
		line += fmt.Sprintf(" Privacy: %d/10 Popularity: %d/10", p.PrivacyScore, p.PopularityScore)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatAvailability renders feature support grouped by category.
func FormatAvailability(groups []catalog.CategoryAvailability) string {
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.ToUpper(g.Category[:1]) + g.Category[1:] + "\n")
		for _, f := range g.Features {
			platforms := "none"
			if len(f.Platforms) > 0 {
				platforms = strings.Join(f.Platforms, ", ")
			}
			fmt.Fprintf(&b, "  %-20s %s\n", f.Feature, platforms)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatUserPreferences renders one line per preference.
func FormatUserPreferences(prefs []models.Preference) string {
	if len(prefs) == 0 {
		return "No preferences set"
	}
	lines := make([]string, 0, len(prefs))
	for _, p := range prefs {
		account := markNo
		if p.HasAccount {
			account = markYes
		}
		line := fmt.Sprintf("%s - Preference: %d/10 - Has Account: %s", p.Platform, p.PreferenceLevel, account)
		if p.Notes != "" {
			line += fmt.Sprintf(" (%s)", p.Notes)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatFeatureComparison renders a boxed table with one row per feature and
// one column per platform. Columns follow order; keys missing from order are
// appended sorted.
func FormatFeatureComparison(cmp recommendation.FeatureComparison, order, features []string) string {
	if len(cmp) == 0 {
		return "No platforms to compare"
	}
	keys := columnKeys(cmp, order)

	headers := []string{"Feature"}
	for _, k := range keys {
		headers = append(headers, cmp[k].Name)
	}
	rows := make([][]string, 0, len(features))
	for _, f := range features {
		row := []string{f}
		for _, k := range keys {
			mark := markNo
			if cmp[k].Features[f] {
				mark = markYes
			}
			row = append(row, mark)
		}
		rows = append(rows, row)
	}
	return formatTable(headers, rows)
}

func columnKeys(cmp recommendation.FeatureComparison, order []string) []string {
	seen := make(map[string]bool, len(cmp))
	keys := make([]string, 0, len(cmp))
	for _, k := range order {
		if _, ok := cmp[k]; ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range cmp {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	border := func(left, mid, right string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return left + strings.Join(parts, mid) + right + "\n"
	}
	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			cell := cells[i]
			parts[i] = " " + cell + strings.Repeat(" ", w-len([]rune(cell))) + " "
		}
		return "│" + strings.Join(parts, "│") + "│\n"
	}

	var b strings.Builder
	b.WriteString(border("┌", "┬", "┐"))
	b.WriteString(line(headers))
	b.WriteString(border("├", "┼", "┤"))
	for _, row := range rows {
		b.WriteString(line(row))
	}
	b.WriteString(border("└", "┴", "┘"))
	return b.String()
}
