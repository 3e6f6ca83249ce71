package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Path is an ordered list of dot-separated paths. Resolution tries each in
// turn and the first non-empty value wins. A single path encodes as a JSON
// string, a fallback list as an array.
type Path []string

func P(paths ...string) Path {
	return Path(paths)
}

func (p Path) IsZero() bool {
	return len(p) == 0
}

func (p Path) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(p[0])
	}
	return json.Marshal([]string(p))
}

func (p *Path) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = Path{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: path must be a string or list of strings", ErrInvalidMapping)
	}
	*p = Path(list)
	return nil
}

// CategoryRule is either a bare field reference holding canonical slugs
// (Map == nil) or a translation table from raw values to category slugs.
type CategoryRule struct {
	Field string            `json:"field"`
	Map   map[string]string `json:"map,omitempty"`
}

func (r CategoryRule) IsTable() bool {
	return r.Map != nil
}

func (r CategoryRule) MarshalJSON() ([]byte, error) {
	if !r.IsTable() {
		return json.Marshal(r.Field)
	}
	type table CategoryRule
	return json.Marshal(table(r))
}

func (r *CategoryRule) UnmarshalJSON(data []byte) error {
	var field string
	if err := json.Unmarshal(data, &field); err == nil {
		*r = CategoryRule{Field: field}
		return nil
	}
	type table CategoryRule
	var t table
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("%w: categories: %v", ErrInvalidMapping, err)
	}
	if t.Map == nil {
		t.Map = map[string]string{}
	}
	*r = CategoryRule(t)
	return nil
}

// SDGRule mirrors CategoryRule with SDG numbers as translation targets.
type SDGRule struct {
	Field string         `json:"field"`
	Map   map[string]int `json:"map,omitempty"`
}

func (r SDGRule) IsTable() bool {
	return r.Map != nil
}

func (r SDGRule) MarshalJSON() ([]byte, error) {
	if !r.IsTable() {
		return json.Marshal(r.Field)
	}
	type table SDGRule
	return json.Marshal(table(r))
}

func (r *SDGRule) UnmarshalJSON(data []byte) error {
	var field string
	if err := json.Unmarshal(data, &field); err == nil {
		*r = SDGRule{Field: field}
		return nil
	}
	type table SDGRule
	var t table
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("%w: sdgs: %v", ErrInvalidMapping, err)
	}
	if t.Map == nil {
		t.Map = map[string]int{}
	}
	*r = SDGRule(t)
	return nil
}

// FieldMapping maps source fields onto the canonical project and article shapes.
type FieldMapping struct {
	Name        Path          `json:"name,omitempty"`
	Tagline     Path          `json:"tagline,omitempty"`
	Description Path          `json:"description,omitempty"`
	Website     Path          `json:"website,omitempty"`
	Location    Path          `json:"location,omitempty"`
	Lat         string        `json:"lat,omitempty"`
	Lng         string        `json:"lng,omitempty"`
	CoverImage  Path          `json:"coverImage,omitempty"`
	Logo        Path          `json:"logo,omitempty"`
	Categories  *CategoryRule `json:"categories,omitempty"`
	SDGs        *SDGRule      `json:"sdgs,omitempty"`
	Tags        string        `json:"tags,omitempty"`

	Title   Path `json:"title,omitempty"`
	Content Path `json:"content,omitempty"`
	Author  Path `json:"author,omitempty"`
	Excerpt Path `json:"excerpt,omitempty"`
	Section Path `json:"section,omitempty"`
	License Path `json:"license,omitempty"`
}

// Validate checks the mapping once, at source-load time.
func (m FieldMapping) Validate() error {
	paths := map[string]Path{
		"name": m.Name, "tagline": m.Tagline, "description": m.Description, "website": m.Website,
		"location": m.Location, "coverImage": m.CoverImage, "logo": m.Logo, "title": m.Title,
		"content": m.Content, "author": m.Author, "excerpt": m.Excerpt, "section": m.Section,
		"license": m.License,
	}
	for field, p := range paths {
		for _, candidate := range p {
			if err := validatePath(candidate); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidMapping, field, err)
			}
		}
	}

	if (m.Lat == "") != (m.Lng == "") {
		return fmt.Errorf("%w: lat and lng must be mapped together", ErrInvalidMapping)
	}
	for field, single := range map[string]string{"lat": m.Lat, "lng": m.Lng, "tags": m.Tags} {
		if single == "" {
			continue
		}
		if err := validatePath(single); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidMapping, field, err)
		}
	}

	if m.Categories != nil {
		if err := validatePath(m.Categories.Field); err != nil {
			return fmt.Errorf("%w: categories: %v", ErrInvalidMapping, err)
		}
	}
	if m.SDGs != nil {
		if err := validatePath(m.SDGs.Field); err != nil {
			return fmt.Errorf("%w: sdgs: %v", ErrInvalidMapping, err)
		}
		for raw, n := range m.SDGs.Map {
			if n < 1 || n > 17 {
				return fmt.Errorf("%w: sdgs: %q maps to %d, outside 1-17", ErrInvalidMapping, raw, n)
			}
		}
	}
	return nil
}

func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	for _, part := range strings.Split(p, ".") {
		if part == "" {
			return fmt.Errorf("path %q has an empty segment", p)
		}
	}
	return nil
}

// Merge returns m with every field set in override replacing m's value.
func (m FieldMapping) Merge(override FieldMapping) FieldMapping {
	out := m
	pick := func(dst *Path, src Path) {
		if !src.IsZero() {
			*dst = src
		}
	}
	pick(&out.Name, override.Name)
	pick(&out.Tagline, override.Tagline)
	pick(&out.Description, override.Description)
	pick(&out.Website, override.Website)
	pick(&out.Location, override.Location)
	pick(&out.CoverImage, override.CoverImage)
	pick(&out.Logo, override.Logo)
	pick(&out.Title, override.Title)
	pick(&out.Content, override.Content)
	pick(&out.Author, override.Author)
	pick(&out.Excerpt, override.Excerpt)
	pick(&out.Section, override.Section)
	pick(&out.License, override.License)
	if override.Lat != "" {
		out.Lat = override.Lat
	}
	if override.Lng != "" {
		out.Lng = override.Lng
	}
	if override.Tags != "" {
		out.Tags = override.Tags
	}
	if override.Categories != nil {
		out.Categories = override.Categories
	}
	if override.SDGs != nil {
		out.SDGs = override.SDGs
	}
	return out
}
