// Package normalize maps raw source records onto the canonical project and
// article shapes using a source's field mapping.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"almanac/internal/domain"
)

var tagSeparators = regexp.MustCompile(`[,;|]`)

// ToProject normalizes raw into a project. It reports false when raw is not
// an object or the name cannot be resolved; callers skip such records.
func ToProject(raw any, m domain.FieldMapping) (*domain.NormalizedProject, bool) {
	data, ok := asMap(raw)
	if !ok {
		return nil, false
	}

	name, ok := extractString(data, m.Name)
	if !ok {
		return nil, false
	}

	tagline, _ := extractString(data, m.Tagline)
	description, _ := extractString(data, m.Description)

	p := &domain.NormalizedProject{
		Name:        name,
		Tagline:     tagline,
		Description: description,
		Website:     extractURL(data, m.Website),
		Location:    extractLocation(data, m.Location),
		CoverImage:  extractURL(data, m.CoverImage),
		Logo:        extractURL(data, m.Logo),
		Categories:  extractCategories(data, m.Categories),
		SDGs:        extractSDGs(data, m.SDGs),
		Tags:        extractTags(data, m.Tags),
	}

	if m.Lat != "" && m.Lng != "" {
		lat, latOK := extractFloat(data, m.Lat)
		lng, lngOK := extractFloat(data, m.Lng)
		if latOK && lngOK {
			p.Coordinates = &domain.Coordinates{Lat: lat, Lng: lng}
		}
	}

	return p, true
}

// ToArticle normalizes raw into an article. Title and content are required.
func ToArticle(raw any, m domain.FieldMapping) (*domain.NormalizedArticle, bool) {
	data, ok := asMap(raw)
	if !ok {
		return nil, false
	}

	title, ok := extractString(data, m.Title)
	if !ok {
		return nil, false
	}
	content, ok := extractString(data, m.Content)
	if !ok {
		return nil, false
	}
	content = CleanHTML(content)
	if content == "" {
		return nil, false
	}

	excerpt, ok := extractString(data, m.Excerpt)
	if !ok {
		excerpt = GenerateExcerpt(content, DefaultExcerptLength)
	}

	return &domain.NormalizedArticle{
		Title:      title,
		Subtitle:   optionalString(data, m.Tagline),
		Excerpt:    excerpt,
		Content:    content,
		Author:     optionalString(data, m.Author),
		CoverImage: extractURL(data, m.CoverImage),
		Section:    optionalString(data, m.Section),
		Tags:       extractTags(data, m.Tags),
		SourceURL:  extractURL(data, m.Website),
		License:    optionalString(data, m.License),
	}, true
}

func extractString(data map[string]any, path domain.Path) (string, bool) {
	if path.IsZero() {
		return "", false
	}
	v, ok := Resolve(data, path)
	if !ok {
		return "", false
	}
	s, ok := stringify(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func optionalString(data map[string]any, path domain.Path) *string {
	s, ok := extractString(data, path)
	if !ok {
		return nil
	}
	return &s
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// extractURL accepts http(s) URLs as-is, upgrades bare hostnames to https and
// drops anything else.
func extractURL(data map[string]any, path domain.Path) *string {
	s, ok := extractString(data, path)
	if !ok {
		return nil
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return &s
	}
	if strings.Contains(s, ".") && strings.IndexFunc(s, unicode.IsSpace) < 0 {
		u := "https://" + s
		return &u
	}
	return nil
}

func extractLocation(data map[string]any, path domain.Path) *string {
	if path.IsZero() {
		return nil
	}
	if len(path) == 1 {
		return optionalString(data, path)
	}
	var parts []string
	for _, p := range path {
		if s, ok := extractString(data, domain.Path{p}); ok {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, ", ")
	return &joined
}

func extractFloat(data map[string]any, path string) (float64, bool) {
	v, ok := Resolve(data, domain.Path{path})
	if !ok {
		return 0, false
	}
	s, ok := stringify(v)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func values(data map[string]any, field string) []any {
	v, ok := Resolve(data, domain.Path{field})
	if !ok {
		return nil
	}
	if list, ok := asList(v); ok {
		return list
	}
	return []any{v}
}

func extractCategories(data map[string]any, rule *domain.CategoryRule) []string {
	categories := []string{}
	if rule == nil {
		return categories
	}

	seen := map[string]struct{}{}
	add := func(slug string) {
		if _, dup := seen[slug]; dup || slug == "" {
			return
		}
		seen[slug] = struct{}{}
		categories = append(categories, slug)
	}

	for _, v := range values(data, rule.Field) {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if !rule.IsTable() {
			add(s)
			continue
		}
		if mapped, ok := rule.Map[strings.ToLower(s)]; ok {
			add(mapped)
		} else if mapped, ok := rule.Map[s]; ok {
			add(mapped)
		}
	}
	return categories
}

func extractSDGs(data map[string]any, rule *domain.SDGRule) []int {
	sdgs := []int{}
	if rule == nil {
		return sdgs
	}

	seen := map[int]struct{}{}
	add := func(n int) {
		if n < 1 || n > 17 {
			return
		}
		if _, dup := seen[n]; dup {
			return
		}
		seen[n] = struct{}{}
		sdgs = append(sdgs, n)
	}

	for _, v := range values(data, rule.Field) {
		if !rule.IsTable() {
			if n, ok := parseSDG(v); ok {
				add(n)
			}
			continue
		}
		s, ok := stringify(v)
		if !ok {
			continue
		}
		if mapped, ok := rule.Map[strings.ToLower(s)]; ok {
			add(mapped)
		} else if mapped, ok := rule.Map[s]; ok {
			add(mapped)
		}
	}
	return sdgs
}

func parseSDG(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}

func extractTags(data map[string]any, path string) []string {
	tags := []string{}
	if path == "" {
		return tags
	}
	v, ok := Resolve(data, domain.Path{path})
	if !ok {
		return tags
	}

	if list, ok := asList(v); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				if t := strings.ToLower(strings.TrimSpace(s)); t != "" {
					tags = append(tags, t)
				}
			}
		}
		return tags
	}

	if s, ok := v.(string); ok {
		for _, part := range tagSeparators.Split(s, -1) {
			if t := strings.ToLower(strings.TrimSpace(part)); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}
