// Package quality scores normalized records for completeness and flags
// probable duplicates.
package quality

import (
	"math"
	"net/url"
	"strings"

	"almanac/internal/domain"
)

// Weights is the additive point table used by ScoreProject.
type Weights struct {
	HasName           float64
	HasDescription    float64
	HasWebsite        float64
	HasLocation       float64
	HasImage          float64
	HasCategories     float64
	HasSDGs           float64
	DescriptionLength float64
}

var DefaultWeights = Weights{
	HasName:           15,
	HasDescription:    20,
	HasWebsite:        10,
	HasLocation:       10,
	HasImage:          10,
	HasCategories:     15,
	HasSDGs:           10,
	DescriptionLength: 10,
}

const (
	descriptionBonusCap  = 500
	minProjectQuality    = 40
	minArticleQuality    = 50
	minDescriptionLength = 20
)

type Tier string

const (
	TierLow       Tier = "low"
	TierMedium    Tier = "medium"
	TierHigh      Tier = "high"
	TierExcellent Tier = "excellent"
)

// ScoreProject returns a 0-100 completeness score.
func ScoreProject(p domain.NormalizedProject, w Weights) int {
	var score float64

	if len(p.Name) > 2 {
		score += w.HasName
	}

	if n := len([]rune(p.Description)); n > minDescriptionLength {
		score += w.HasDescription
		score += math.Min(float64(n)/descriptionBonusCap, 1) * w.DescriptionLength
	}

	if p.Website != nil {
		score += w.HasWebsite
	}
	if p.Location != nil && *p.Location != "" {
		score += w.HasLocation
	}
	if p.CoverImage != nil || p.Logo != nil {
		score += w.HasImage
	}
	if len(p.Categories) > 0 {
		score += w.HasCategories
	}
	if len(p.SDGs) > 0 {
		score += w.HasSDGs
	}

	return clamp(score)
}

// ScoreArticle applies the fixed article rubric.
func ScoreArticle(a domain.NormalizedArticle) int {
	var score float64

	if len([]rune(a.Title)) > 5 {
		score += 20
	}

	if n := len([]rune(a.Content)); n > 0 {
		score += 25
		if n > 1000 {
			score += 15
		}
		if n > 3000 {
			score += 10
		}
	}

	if len([]rune(a.Excerpt)) > 50 {
		score += 10
	}
	if a.Author != nil {
		score += 5
	}
	if a.CoverImage != nil {
		score += 10
	}
	if a.License != nil {
		score += 5
	}

	return clamp(score)
}

func clamp(score float64) int {
	rounded := int(math.Round(score))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// MeetsMinimum reports whether score clears the minimum gate for its content type.
func MeetsMinimum(score int, contentType domain.ContentType) bool {
	switch contentType {
	case domain.ContentProject:
		return score >= minProjectQuality
	case domain.ContentArticle:
		return score >= minArticleQuality
	}
	return false
}

func TierOf(score int) Tier {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierHigh
	case score >= 40:
		return TierMedium
	}
	return TierLow
}

// ImprovementSuggestions lists what a project record is missing, most important first.
func ImprovementSuggestions(p domain.NormalizedProject) []string {
	suggestions := []string{}

	if len([]rune(p.Description)) < 100 {
		suggestions = append(suggestions, "Add a more detailed description (at least 100 characters)")
	}
	if p.Website == nil {
		suggestions = append(suggestions, "Add a website URL")
	}
	if p.Location == nil {
		suggestions = append(suggestions, "Add location information")
	}
	if p.CoverImage == nil && p.Logo == nil {
		suggestions = append(suggestions, "Add a cover image or logo")
	}
	if len(p.Categories) == 0 {
		suggestions = append(suggestions, "Assign at least one category")
	}
	if len(p.SDGs) == 0 {
		suggestions = append(suggestions, "Link to relevant UN Sustainable Development Goals")
	}
	if len([]rune(p.Tagline)) < 20 {
		suggestions = append(suggestions, "Add a compelling tagline (20-100 characters)")
	}

	return suggestions
}

// Similarity estimates, on a 0-100 scale, how likely a and b describe the
// same project. It is advisory and has no side effects.
func Similarity(a, b domain.NormalizedProject) int {
	var score float64

	score += jaccard(strings.Fields(strings.ToLower(a.Name)), strings.Fields(strings.ToLower(b.Name))) * 40

	if a.Website != nil && b.Website != nil && hostname(*a.Website) == hostname(*b.Website) {
		score += 40
	}

	if a.Location != nil && b.Location != nil && strings.EqualFold(*a.Location, *b.Location) {
		score += 20
	}

	return clamp(score)
}

func jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, w := range a {
		setA[w] = struct{}{}
	}
	union := make(map[string]struct{}, len(a)+len(b))
	for w := range setA {
		union[w] = struct{}{}
	}

	intersection := 0
	seenB := map[string]struct{}{}
	for _, w := range b {
		if _, dup := seenB[w]; dup {
			continue
		}
		seenB[w] = struct{}{}
		union[w] = struct{}{}
		if _, ok := setA[w]; ok {
			intersection++
		}
	}

	if len(union) == 0 {
		return 0
	}
	return float64(intersection) / float64(len(union))
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
