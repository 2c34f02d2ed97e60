package recommendation

import (
	"fmt"
	"math"
	"sort"

	"getconnected/internal/models"
)

const (
	AnalysisNoMembers = "No members in group"
)

type platformTally struct {
	accounts int
	sum      int
	members  []MemberDetail
}

// FindCommonPlatforms returns the platforms on which exactly
// totalMemberCount preference rows report an account, ordered by average
// preference (highest first, ties in catalog order). A member without a row
// for a platform counts as having no account there. Rows naming platforms
// outside the catalog are ignored.
func (e *Engine) FindCommonPlatforms(prefs []models.GroupPreference, totalMemberCount int) CommonPlatformsResult {
	if totalMemberCount <= 0 {
		return CommonPlatformsResult{CommonPlatforms: []CommonPlatform{}, Analysis: AnalysisNoMembers}
	}

	tallies := make(map[string]*platformTally)
	for _, p := range prefs {
		t, ok := tallies[p.Platform]
		if !ok {
			t = &platformTally{}
			tallies[p.Platform] = t
		}
		t.members = append(t.members, MemberDetail{
			MemberID:        p.MemberID,
			Name:            p.MemberName,
			PreferenceLevel: p.PreferenceLevel,
			HasAccount:      p.HasAccount,
			Notes:           p.Notes,
		})
		if p.HasAccount {
			t.accounts++
			t.sum += p.PreferenceLevel
		}
	}

	common := []CommonPlatform{}
	for _, profile := range e.catalog.All() {
		t, ok := tallies[profile.Key]
		if !ok || t.accounts != totalMemberCount {
			continue
		}
		common = append(common, CommonPlatform{
			PlatformProfile:   profile,
			AveragePreference: float64(t.sum) / float64(totalMemberCount),
			AllHaveAccounts:   true,
			MemberDetails:     t.members,
		})
	}

	sort.SliceStable(common, func(i, j int) bool {
		return common[i].AveragePreference > common[j].AveragePreference
	})

	return CommonPlatformsResult{
		CommonPlatforms: common,
		Analysis:        analysisText(common, totalMemberCount),
	}
}

func analysisText(common []CommonPlatform, memberCount int) string {
	if len(common) == 0 {
		return fmt.Sprintf("No platforms found where all %d members have accounts. Consider platforms where most members are present.", memberCount)
	}
	top := common[0]
	return fmt.Sprintf("Found %d platform(s) where all %d members have accounts. Top choice: %s (avg preference: %s/10)",
		len(common), memberCount, top.Name, oneDecimal(top.AveragePreference))
}

// round1 rounds to one decimal place, halves away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func oneDecimal(x float64) string {
	return fmt.Sprintf("%.1f", round1(x))
}
