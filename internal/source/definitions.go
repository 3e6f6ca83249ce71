package source

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"almanac/internal/domain"
)

const FlagshipSlug = "curated-flagship"

// Definitions returns the built-in harvest sources. Each call returns fresh
// values that callers may modify.
func Definitions() []domain.Source {
	return []domain.Source{
		{
			Slug:        "gen-ecovillages",
			Name:        "Global Ecovillage Network",
			Type:        domain.SourceAPI,
			URL:         str("https://ecovillage.org/projects/"),
			Description: "Global network of sustainable communities and ecovillages",
			Config:      domain.SourceConfig{RequestsPerMinute: 10, PageSize: 50, MaxPages: 100},
			Mapping: domain.FieldMapping{
				Name:        domain.P("title"),
				Tagline:     domain.P("excerpt"),
				Description: domain.P("content"),
				Website:     domain.P("website"),
				Location:    domain.P("location.country", "location.region"),
				Lat:         "location.lat",
				Lng:         "location.lng",
				CoverImage:  domain.P("featured_image"),
				Categories: &domain.CategoryRule{Field: "categories", Map: map[string]string{
					"ecovillage":       "community",
					"permaculture":     "food",
					"renewable-energy": "energy",
					"education":        "education",
				}},
			},
			Priority: 100,
			Schedule: str("0 3 * * 0"),
		},
		{
			Slug:        "transition-network",
			Name:        "Transition Network",
			Type:        domain.SourceAPI,
			URL:         str("https://transitionnetwork.org/transition-near-me/"),
			Description: "Community-led responses to climate change and economic challenges",
			Config:      domain.SourceConfig{RequestsPerMinute: 10, PageSize: 100},
			Mapping: domain.FieldMapping{
				Name:        domain.P("name"),
				Tagline:     domain.P("short_description"),
				Description: domain.P("description"),
				Website:     domain.P("website"),
				Location:    domain.P("location"),
				Lat:         "latitude",
				Lng:         "longitude",
				Categories: &domain.CategoryRule{Field: "type", Map: map[string]string{
					"hub":        "community",
					"initiative": "community",
					"group":      "community",
				}},
			},
			Priority: 90,
		},
		{
			Slug:        "fic-communities",
			Name:        "Foundation for Intentional Community",
			Type:        domain.SourceAPI,
			URL:         str("https://www.ic.org/directory/"),
			Description: "Directory of intentional communities worldwide",
			Config:      domain.SourceConfig{RequestsPerMinute: 5, PageSize: 50},
			Mapping: domain.FieldMapping{
				Name:        domain.P("name"),
				Tagline:     domain.P("mission"),
				Description: domain.P("description"),
				Website:     domain.P("website"),
				Location:    domain.P("city", "state", "country"),
				Lat:         "lat",
				Lng:         "lng",
				CoverImage:  domain.P("image"),
			},
			Priority: 85,
		},
		{
			Slug:        "repair-cafe",
			Name:        "Repair Café International",
			Type:        domain.SourceAPI,
			URL:         str("https://www.repaircafe.org/en/visit/"),
			Description: "Global network of community repair events",
			Config:      domain.SourceConfig{RequestsPerMinute: 10},
			Mapping: domain.FieldMapping{
				Name:        domain.P("name"),
				Tagline:     domain.P("subtitle"),
				Description: domain.P("description"),
				Website:     domain.P("url"),
				Location:    domain.P("city", "country"),
				Lat:         "lat",
				Lng:         "lng",
				Categories: &domain.CategoryRule{Field: "_type", Map: map[string]string{
					"repaircafe": "community",
				}},
			},
			Priority: 80,
		},
		{
			Slug:        "hackerspaces-org",
			Name:        "Hackerspaces.org",
			Type:        domain.SourceAPI,
			URL:         str("https://wiki.hackerspaces.org/w/api.php"),
			Description: "Directory of hackerspaces, makerspaces, and fablabs",
			Config:      domain.SourceConfig{RequestsPerMinute: 10, PageSize: 100},
			Mapping: domain.FieldMapping{
				Name:        domain.P("name"),
				Description: domain.P("description"),
				Website:     domain.P("website"),
				Location:    domain.P("city", "country"),
				Lat:         "lat",
				Lng:         "lon",
				Categories: &domain.CategoryRule{Field: "type", Map: map[string]string{
					"hackerspace": "tech",
					"makerspace":  "tech",
					"fablab":      "tech",
				}},
			},
			Priority: 75,
		},
		{
			Slug:        "open-food-network",
			Name:        "Open Food Network",
			Type:        domain.SourceAPI,
			URL:         str("https://openfoodnetwork.org/"),
			Description: "Platform connecting food producers and consumers",
			Config:      domain.SourceConfig{RequestsPerMinute: 10},
			Mapping: domain.FieldMapping{
				Name:        domain.P("name"),
				Tagline:     domain.P("tagline"),
				Description: domain.P("description"),
				Website:     domain.P("website"),
				Location:    domain.P("address"),
				Lat:         "latitude",
				Lng:         "longitude",
				Categories: &domain.CategoryRule{Field: "type", Map: map[string]string{
					"producer":     "food",
					"hub":          "food",
					"buying-group": "community",
				}},
			},
			Priority: 70,
		},
		{
			Slug:        "wwoof-farms",
			Name:        "WWOOF (World Wide Opportunities on Organic Farms)",
			Type:        domain.SourceManual,
			Description: "Network of organic farms offering learning experiences",
			Mapping: domain.FieldMapping{
				Name:        domain.P("farm_name"),
				Description: domain.P("description"),
				Location:    domain.P("region", "country"),
				Categories:  &domain.CategoryRule{Field: "_type", Map: map[string]string{"farm": "food"}},
			},
			Priority: 60,
		},
		{
			Slug:        "community-energy",
			Name:        "Community Energy Projects",
			Type:        domain.SourceManual,
			Description: "Community-owned renewable energy projects",
			Mapping: domain.FieldMapping{
				Name:        domain.P("name"),
				Description: domain.P("description"),
				Website:     domain.P("website"),
				Location:    domain.P("location"),
				Categories: &domain.CategoryRule{Field: "type", Map: map[string]string{
					"solar": "energy",
					"wind":  "energy",
					"hydro": "energy",
				}},
				SDGs: &domain.SDGRule{Field: "_auto", Map: map[string]int{"energy": 7}},
			},
			Priority: 65,
		},
		{
			Slug:        "low-tech-magazine",
			Name:        "Low-Tech Magazine",
			Type:        domain.SourceRSS,
			URL:         str("https://solar.lowtechmagazine.com/feeds/all-en.atom.xml"),
			Description: "Sustainable solutions from the past",
			Config:      domain.SourceConfig{MaxPages: 1},
			Mapping: domain.FieldMapping{
				Title:      domain.P("title"),
				Content:    domain.P("content"),
				Excerpt:    domain.P("summary"),
				Author:     domain.P("author.name"),
				CoverImage: domain.P("media_content.url"),
			},
			Priority: 50,
			Schedule: str("0 6 * * *"),
		},
		{
			Slug:        "resilience-org",
			Name:        "Resilience.org",
			Type:        domain.SourceRSS,
			URL:         str("https://www.resilience.org/feed/"),
			Description: "Building a world of resilient communities",
			Config:      domain.SourceConfig{MaxPages: 1},
			Mapping: domain.FieldMapping{
				Title:   domain.P("title"),
				Content: domain.P("content:encoded"),
				Excerpt: domain.P("description"),
				Author:  domain.P("dc:creator"),
			},
			Priority: 50,
			Schedule: str("0 6 * * *"),
		},
		{
			Slug:        "permaculture-news",
			Name:        "Permaculture News",
			Type:        domain.SourceRSS,
			URL:         str("https://www.permaculturenews.org/feed/"),
			Description: "Latest in permaculture design and practice",
			Mapping: domain.FieldMapping{
				Title:      domain.P("title"),
				Content:    domain.P("content:encoded"),
				Excerpt:    domain.P("description"),
				Author:     domain.P("dc:creator"),
				CoverImage: domain.P("media:content.url"),
			},
			Priority: 45,
			Schedule: str("0 6 * * *"),
		},
		{
			Slug:        "mastodon-solarpunk",
			Name:        "Mastodon #solarpunk",
			Type:        domain.SourceSocial,
			URL:         str("https://mastodon.social/api/v1/timelines/tag/solarpunk"),
			Description: "Solarpunk content from the fediverse",
			Config:      domain.SourceConfig{RequestsPerMinute: 5, PageSize: 40},
			Mapping: domain.FieldMapping{
				Name:        domain.P("account.display_name"),
				Description: domain.P("content"),
				Website:     domain.P("url"),
			},
			Priority: 30,
			Schedule: str("0 */4 * * *"),
		},
		{
			Slug:        FlagshipSlug,
			Name:        "Curated Flagship Projects",
			Type:        domain.SourceManual,
			Description: "Hand-picked exemplary solarpunk projects",
			Priority:    100,
		},
	}
}

// Groups lists definition slugs by theme.
func Groups() map[string][]string {
	return map[string][]string{
		"directories": {"gen-ecovillages", "transition-network", "fic-communities", "repair-cafe", "hackerspaces-org"},
		"food":        {"open-food-network", "wwoof-farms"},
		"energy":      {"community-energy"},
		"blogs":       {"low-tech-magazine", "resilience-org", "permaculture-news"},
		"social":      {"mastodon-solarpunk"},
		"curated":     {FlagshipSlug},
	}
}

// Validate checks a source definition before it is persisted.
func Validate(src domain.Source) error {
	var errs []error

	if src.Slug == "" {
		errs = append(errs, errors.New("slug is required"))
	}
	if src.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !src.Type.Valid() {
		errs = append(errs, fmt.Errorf("unknown source type %q", src.Type))
	}
	if err := src.Mapping.Validate(); err != nil {
		errs = append(errs, err)
	}
	if src.Schedule != nil {
		if _, err := cron.ParseStandard(*src.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("schedule %q: %w", *src.Schedule, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("source %s: %w", src.Slug, err)
	}
	return nil
}

func str(s string) *string {
	return &s
}
