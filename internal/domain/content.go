package domain

// Coordinates is a lat/lng pair; both values are always set together.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Contact struct {
	Email  string            `json:"email,omitempty"`
	Phone  string            `json:"phone,omitempty"`
	Social map[string]string `json:"social,omitempty"`
}

// NormalizedProject is the canonical project shape every adapter produces.
type NormalizedProject struct {
	Name        string       `json:"name"`
	Tagline     string       `json:"tagline"`
	Description string       `json:"description"`
	Website     *string      `json:"website,omitempty"`
	Location    *string      `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	CoverImage  *string      `json:"coverImage,omitempty"`
	Logo        *string      `json:"logo,omitempty"`
	Categories  []string     `json:"categories"`
	SDGs        []int        `json:"sdgs"`
	Tags        []string     `json:"tags"`
	Contact     *Contact     `json:"contact,omitempty"`
}

// NormalizedArticle is the canonical article shape.
type NormalizedArticle struct {
	Title      string   `json:"title"`
	Subtitle   *string  `json:"subtitle,omitempty"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	Author     *string  `json:"author,omitempty"`
	CoverImage *string  `json:"coverImage,omitempty"`
	Section    *string  `json:"section,omitempty"`
	Tags       []string `json:"tags"`
	SourceURL  *string  `json:"sourceUrl,omitempty"`
	License    *string  `json:"license,omitempty"`
}

// Project is a permanent directory record materialized from an approved harvest item.
type Project struct {
	ID            string       `json:"id"`
	Slug          string       `json:"slug"`
	Name          string       `json:"name"`
	Tagline       string       `json:"tagline"`
	Description   string       `json:"description"`
	Website       *string      `json:"website,omitempty"`
	Location      *string      `json:"location,omitempty"`
	Coordinates   *Coordinates `json:"coordinates,omitempty"`
	CoverImage    *string      `json:"coverImage,omitempty"`
	Logo          *string      `json:"logo,omitempty"`
	Status        string       `json:"status"`
	SubmittedByID string       `json:"submittedById"`
	Categories    []string     `json:"categories"`
	SDGs          []int        `json:"sdgs"`
}
