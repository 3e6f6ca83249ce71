package normalize

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almanac/internal/domain"
)

func projectMapping() domain.FieldMapping {
	return domain.FieldMapping{
		Name:        domain.P("title"),
		Tagline:     domain.P("excerpt"),
		Description: domain.P("content"),
		Website:     domain.P("website"),
		Location:    domain.P("location.country", "location.region"),
		Lat:         "location.lat",
		Lng:         "location.lng",
		CoverImage:  domain.P("featured_image"),
		Categories: &domain.CategoryRule{
			Field: "categories",
			Map: map[string]string{
				"ecovillage":   "community",
				"permaculture": "food",
				"Solar":        "energy",
			},
		},
		SDGs: &domain.SDGRule{Field: "goals"},
		Tags: "keywords",
	}
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestToProject(t *testing.T) {
	t.Parallel()

	raw := decode(t, `{
		"title": "  Sieben Linden  ",
		"excerpt": "An ecovillage in Saxony-Anhalt",
		"content": "A community of about 150 people.",
		"website": "siebenlinden.org",
		"location": {"country": "Germany", "region": "Altmark", "lat": "52.63", "lng": 11.17},
		"featured_image": "not a url",
		"categories": ["Ecovillage", "permaculture", "unknown", "ecovillage", "SOLAR"],
		"goals": [7, "11", 0, 18, "x", 7, 12.5],
		"keywords": "Straw Bale; Community | Off-Grid,,"
	}`)

	p, ok := ToProject(raw, projectMapping())
	require.True(t, ok)

	assert.Equal(t, "Sieben Linden", p.Name)
	assert.Equal(t, "An ecovillage in Saxony-Anhalt", p.Tagline)
	require.NotNil(t, p.Website)
	assert.Equal(t, "https://siebenlinden.org", *p.Website)
	require.NotNil(t, p.Location)
	assert.Equal(t, "Germany, Altmark", *p.Location)
	require.NotNil(t, p.Coordinates)
	assert.InDelta(t, 52.63, p.Coordinates.Lat, 1e-9)
	assert.InDelta(t, 11.17, p.Coordinates.Lng, 1e-9)
	assert.Nil(t, p.CoverImage)
	assert.Equal(t, []string{"community", "food"}, p.Categories)
	assert.Equal(t, []int{7, 11}, p.SDGs)
	assert.Equal(t, []string{"straw bale", "community", "off-grid"}, p.Tags)
}

func TestToProject_TranslationTableFallsBackToExactCase(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"title": "X", "categories": "Solar"}
	p, ok := ToProject(raw, projectMapping())
	require.True(t, ok)
	assert.Equal(t, []string{"energy"}, p.Categories)
}

func TestToProject_MissingName(t *testing.T) {
	t.Parallel()

	cases := []any{
		map[string]any{"content": "no title"},
		map[string]any{"title": ""},
		map[string]any{"title": "   "},
		map[string]any{"title": []any{"a"}},
		"not an object",
		nil,
	}
	for _, raw := range cases {
		p, ok := ToProject(raw, projectMapping())
		assert.False(t, ok)
		assert.Nil(t, p)
	}
}

func TestToProject_NumericNameIsStringified(t *testing.T) {
	t.Parallel()

	p, ok := ToProject(map[string]any{"title": float64(42)}, projectMapping())
	require.True(t, ok)
	assert.Equal(t, "42", p.Name)
	assert.Empty(t, p.Categories)
	assert.Empty(t, p.SDGs)
	assert.Empty(t, p.Tags)
	assert.Nil(t, p.Coordinates)
}

func TestToProject_CoordinatesRequireBoth(t *testing.T) {
	t.Parallel()

	raw := map[string]any{"title": "X", "location": map[string]any{"lat": 10.0}}
	p, ok := ToProject(raw, projectMapping())
	require.True(t, ok)
	assert.Nil(t, p.Coordinates)
}

func TestToProject_SDGsAlwaysInRange(t *testing.T) {
	t.Parallel()

	inputs := []any{
		[]any{-1, 0, 1, 17, 18, 100, "3", "abc", 2.0, 2.5, nil, true},
		[]int{0, 5, 99},
		"17",
		float64(40),
		map[string]any{"nested": 1},
	}

	for _, input := range inputs {
		for _, rule := range []*domain.SDGRule{
			{Field: "sdgs"},
			{Field: "sdgs", Map: map[string]int{"3": 3, "abc": 4, "100": 5}},
		} {
			m := domain.FieldMapping{Name: domain.P("name"), SDGs: rule}
			p, ok := ToProject(map[string]any{"name": "n", "sdgs": input}, m)
			require.True(t, ok)
			for _, n := range p.SDGs {
				assert.GreaterOrEqual(t, n, 1)
				assert.LessOrEqual(t, n, 17)
			}
		}
	}
}

func TestToProject_SDGTranslationTable(t *testing.T) {
	t.Parallel()

	m := domain.FieldMapping{
		Name: domain.P("name"),
		SDGs: &domain.SDGRule{Field: "type", Map: map[string]int{"energy": 7, "water": 6}},
	}
	p, ok := ToProject(map[string]any{"name": "n", "type": []any{"Energy", "water", "energy", "other"}}, m)
	require.True(t, ok)
	assert.Equal(t, []int{7, 6}, p.SDGs)
}

func TestToProject_URLCoercion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want *string
	}{
		{"https://example.org/a", ptr("https://example.org/a")},
		{"http://example.org", ptr("http://example.org")},
		{"example.org", ptr("https://example.org")},
		{"example org.com", nil},
		{"localhost", nil},
		{"", nil},
	}
	for _, tt := range tests {
		m := domain.FieldMapping{Name: domain.P("name"), Website: domain.P("url")}
		p, ok := ToProject(map[string]any{"name": "n", "url": tt.in}, m)
		require.True(t, ok)
		assert.Equal(t, tt.want, p.Website, "input %q", tt.in)
	}
}

func TestToArticle(t *testing.T) {
	t.Parallel()

	m := domain.FieldMapping{
		Title:      domain.P("title"),
		Content:    domain.P("body"),
		Excerpt:    domain.P("summary"),
		Author:     domain.P("author.name", "creator"),
		CoverImage: domain.P("image"),
		Website:    domain.P("link"),
		Tagline:    domain.P("subtitle"),
		Section:    domain.P("section"),
		License:    domain.P("license"),
		Tags:       "tags",
	}

	raw := map[string]any{
		"title":    "Solar Sailing",
		"body":     "<p>Wind and sun.</p><script>alert(1)</script><!-- tracking --><style>p{}</style>",
		"creator":  "Kris De Decker",
		"image":    "https://example.com/a.jpg",
		"link":     "https://example.com/post",
		"subtitle": "Low-tech shipping",
		"section":  "FEATURES",
		"license":  "CC-BY-NC",
		"tags":     []any{"Shipping", "Wind"},
	}

	a, ok := ToArticle(raw, m)
	require.True(t, ok)

	assert.Equal(t, "Solar Sailing", a.Title)
	assert.Equal(t, "<p>Wind and sun.</p>", a.Content)
	assert.Equal(t, "Wind and sun.", a.Excerpt)
	assert.Equal(t, ptr("Kris De Decker"), a.Author)
	assert.Equal(t, ptr("https://example.com/a.jpg"), a.CoverImage)
	assert.Equal(t, ptr("https://example.com/post"), a.SourceURL)
	assert.Equal(t, ptr("Low-tech shipping"), a.Subtitle)
	assert.Equal(t, ptr("FEATURES"), a.Section)
	assert.Equal(t, ptr("CC-BY-NC"), a.License)
	assert.Equal(t, []string{"shipping", "wind"}, a.Tags)
}

func TestToArticle_RequiresTitleAndContent(t *testing.T) {
	t.Parallel()

	m := domain.FieldMapping{Title: domain.P("title"), Content: domain.P("content")}

	_, ok := ToArticle(map[string]any{"content": "body"}, m)
	assert.False(t, ok)

	_, ok = ToArticle(map[string]any{"title": "t"}, m)
	assert.False(t, ok)

	_, ok = ToArticle(map[string]any{"title": "t", "content": "<script>x</script>"}, m)
	assert.False(t, ok)

	a, ok := ToArticle(map[string]any{"title": "t", "content": "body"}, m)
	require.True(t, ok)
	assert.Equal(t, "body", a.Excerpt)
}

func TestToArticle_MappedExcerptWins(t *testing.T) {
	t.Parallel()

	m := domain.FieldMapping{Title: domain.P("title"), Content: domain.P("content"), Excerpt: domain.P("summary")}
	a, ok := ToArticle(map[string]any{
		"title":   "t",
		"content": strings.Repeat("word ", 100),
		"summary": "Hand written",
	}, m)
	require.True(t, ok)
	assert.Equal(t, "Hand written", a.Excerpt)
}

func ptr(s string) *string {
	return &s
}
