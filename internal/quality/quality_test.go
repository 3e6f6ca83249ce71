package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/domain"
	"almanac/internal/normalize"
)

func ptr(s string) *string {
	return &s
}

func TestScoreProject_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ScoreProject(domain.NormalizedProject{}, DefaultWeights))
}

func TestDefaultWeights_SumToMaximum(t *testing.T) {
	t.Parallel()

	w := DefaultWeights
	sum := w.HasName + w.HasDescription + w.DescriptionLength + w.HasWebsite +
		w.HasLocation + w.HasImage + w.HasCategories + w.HasSDGs
	assert.Equal(t, float64(100), sum)
}

func TestScoreProject_ScenarioRecord(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"name":        "Test Village",
		"description": strings.Repeat("A", 600),
		"website":     "testvillage.org",
		"location":    "X",
		"coverImage":  "http://x/y.png",
		"categories":  []any{"energy"},
		"sdgs":        []any{7},
	}
	mapping := domain.FieldMapping{
		Name:        domain.P("name"),
		Description: domain.P("description"),
		Website:     domain.P("website"),
		Location:    domain.P("location"),
		CoverImage:  domain.P("coverImage"),
		Categories:  &domain.CategoryRule{Field: "categories"},
		SDGs:        &domain.SDGRule{Field: "sdgs"},
	}

	p, ok := normalize.ToProject(raw, mapping)
	require.True(t, ok)

	// Every default weight is earned: 15 name + 20 description + 10 capped
	// length bonus + 10 website + 10 location + 10 image + 15 categories
	// + 10 sdgs. The weights sum to 100, so a complete record scores 100.
	assert.Equal(t, 100, ScoreProject(*p, DefaultWeights))

	p.SDGs = nil
	assert.Equal(t, 90, ScoreProject(*p, DefaultWeights))
}

func TestScoreProject_DescriptionBonusScales(t *testing.T) {
	t.Parallel()

	p := domain.NormalizedProject{Name: "Village", Description: strings.Repeat("d", 250)}
	assert.Equal(t, 15+20+5, ScoreProject(p, DefaultWeights))

	p.Description = strings.Repeat("d", 20)
	assert.Equal(t, 15, ScoreProject(p, DefaultWeights))
}

func TestScoreProject_CustomWeightsClamped(t *testing.T) {
	t.Parallel()

	w := DefaultWeights
	w.HasName = 500
	assert.Equal(t, 100, ScoreProject(domain.NormalizedProject{Name: "Village"}, w))

	w = Weights{HasName: -50}
	assert.Equal(t, 0, ScoreProject(domain.NormalizedProject{Name: "Village"}, w))
}

func TestScoreArticle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ScoreArticle(domain.NormalizedArticle{}))

	a := domain.NormalizedArticle{
		Title:      "Solar Sailing Ships",
		Content:    strings.Repeat("c", 3001),
		Excerpt:    strings.Repeat("e", 51),
		Author:     ptr("Kris"),
		CoverImage: ptr("https://x/y.png"),
		License:    ptr("CC-BY"),
	}
	assert.Equal(t, 100, ScoreArticle(a))

	a.Content = strings.Repeat("c", 1001)
	assert.Equal(t, 90, ScoreArticle(a))

	a.Content = "short"
	a.Title = "Short"
	assert.Equal(t, 55, ScoreArticle(a))
}

func TestMeetsMinimum(t *testing.T) {
	t.Parallel()

	assert.True(t, MeetsMinimum(40, domain.ContentProject))
	assert.False(t, MeetsMinimum(39, domain.ContentProject))
	assert.True(t, MeetsMinimum(50, domain.ContentArticle))
	assert.False(t, MeetsMinimum(49, domain.ContentArticle))
}

func TestTierOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TierLow, TierOf(39))
	assert.Equal(t, TierMedium, TierOf(40))
	assert.Equal(t, TierHigh, TierOf(60))
	assert.Equal(t, TierExcellent, TierOf(80))
}

func TestImprovementSuggestions(t *testing.T) {
	t.Parallel()

	all := ImprovementSuggestions(domain.NormalizedProject{Name: "x"})
	assert.Len(t, all, 7)
	assert.Equal(t, "Add a more detailed description (at least 100 characters)", all[0])
	assert.Equal(t, "Add a compelling tagline (20-100 characters)", all[6])

	complete := domain.NormalizedProject{
		Name:        "Complete",
		Tagline:     "A tagline long enough to pass",
		Description: strings.Repeat("d", 120),
		Website:     ptr("https://a.org"),
		Location:    ptr("Here"),
		Logo:        ptr("https://a.org/logo.png"),
		Categories:  []string{"food"},
		SDGs:        []int{2},
	}
	assert.Empty(t, ImprovementSuggestions(complete))
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	a := domain.NormalizedProject{
		Name:     "Repair Cafe Amsterdam",
		Website:  ptr("https://www.repaircafe.org/en"),
		Location: ptr("Amsterdam, Netherlands"),
	}
	b := domain.NormalizedProject{
		Name:     "repair cafe",
		Website:  ptr("http://repaircafe.org"),
		Location: ptr("amsterdam, netherlands"),
	}

	// 2/3 name overlap * 40 = 26.67, +40 host, +20 location.
	assert.Equal(t, 87, Similarity(a, b))
	assert.Equal(t, Similarity(a, b), Similarity(a, b))
	assert.Equal(t, 100, Similarity(a, a))

	c := domain.NormalizedProject{Name: "Solar Foods"}
	assert.Equal(t, 0, Similarity(a, c))
	assert.Equal(t, 0, Similarity(domain.NormalizedProject{}, domain.NormalizedProject{}))
}
