package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type SourceType string

const (
	SourceRSS    SourceType = "RSS"
	SourceManual SourceType = "MANUAL"
	SourceImport SourceType = "IMPORT"
	SourceAPI    SourceType = "API"
	SourceScrape SourceType = "SCRAPE"
	SourceSocial SourceType = "SOCIAL"
	SourceForm   SourceType = "FORM"
)

func (t SourceType) Valid() bool {
	switch t {
	case SourceRSS, SourceManual, SourceImport, SourceAPI, SourceScrape, SourceSocial, SourceForm:
		return true
	}
	return false
}

type ContentType string

const (
	ContentProject ContentType = "PROJECT"
	ContentArticle ContentType = "ARTICLE"
)

func (c ContentType) Valid() bool {
	return c == ContentProject || c == ContentArticle
}

// HarvestStatus is the moderation state of a queued item.
type HarvestStatus string

const (
	StatusPending   HarvestStatus = "PENDING"
	StatusApproved  HarvestStatus = "APPROVED"
	StatusRejected  HarvestStatus = "REJECTED"
	StatusPublished HarvestStatus = "PUBLISHED"
	StatusDuplicate HarvestStatus = "DUPLICATE"
	StatusNeedsInfo HarvestStatus = "NEEDS_INFO"
)

var AllStatuses = []HarvestStatus{
	StatusPending, StatusApproved, StatusRejected, StatusPublished, StatusDuplicate, StatusNeedsInfo,
}

func ParseStatus(s string) (HarvestStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
}

// CanModerate reports whether a reviewer may move an item from s to next.
// PUBLISHED is reachable only through promotion and is terminal.
func (s HarvestStatus) CanModerate(next HarvestStatus) bool {
	if s == StatusPublished || next == StatusPublished {
		return false
	}
	return true
}

// HarvestResult is one item yielded by a source adapter.
type HarvestResult struct {
	ExternalID  string
	ExternalURL *string
	RawData     any
	ContentType ContentType
	Project     *NormalizedProject
	Article     *NormalizedArticle
	Quality     int
}

// Normalized returns whichever canonical record the result carries, or nil.
func (r HarvestResult) Normalized() any {
	switch {
	case r.Project != nil:
		return r.Project
	case r.Article != nil:
		return r.Article
	}
	return nil
}

// Source is a persisted harvest source configuration.
type Source struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Name        string       `json:"name"`
	Type        SourceType   `json:"type"`
	URL         *string      `json:"url,omitempty"`
	Description string       `json:"description"`
	Config      SourceConfig `json:"config"`
	Mapping     FieldMapping `json:"mapping"`
	Priority    int          `json:"priority"`
	Schedule    *string      `json:"schedule,omitempty"`
	IsActive    bool         `json:"isActive"`
	LastHarvest *time.Time   `json:"lastHarvest"`
	LastError   *string      `json:"lastError"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// SourceConfig holds adapter-specific settings. Keys without a dedicated
// field are preserved in Extra.
type SourceConfig struct {
	RequestsPerMinute    int         `json:"requestsPerMinute,omitempty"`
	DelayBetweenRequests int         `json:"delayBetweenRequests,omitempty"`
	APIKey               string      `json:"apiKey,omitempty"`
	AuthHeader           string      `json:"authHeader,omitempty"`
	PageSize             int         `json:"pageSize,omitempty"`
	MaxPages             int         `json:"maxPages,omitempty"`
	Categories           []string    `json:"categories,omitempty"`
	Regions              []string    `json:"regions,omitempty"`
	DateRange            *DateRange  `json:"dateRange,omitempty"`
	ContentType          ContentType `json:"contentType,omitempty"`

	Extra map[string]any `json:"-"`
}

type sourceConfigAlias SourceConfig

var sourceConfigKeys = map[string]struct{}{
	"requestsPerMinute": {}, "delayBetweenRequests": {}, "apiKey": {}, "authHeader": {},
	"pageSize": {}, "maxPages": {}, "categories": {}, "regions": {}, "dateRange": {}, "contentType": {},
}

func (c *SourceConfig) UnmarshalJSON(data []byte) error {
	var alias sourceConfigAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if _, known := sourceConfigKeys[k]; known {
			continue
		}
		if alias.Extra == nil {
			alias.Extra = map[string]any{}
		}
		alias.Extra[k] = v
	}
	*c = SourceConfig(alias)
	return nil
}

func (c SourceConfig) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(sourceConfigAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return known, nil
	}
	merged := map[string]any{}
	for k, v := range c.Extra {
		merged[k] = v
	}
	var fields map[string]any
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Item is a queued harvest record awaiting moderation or promotion.
type Item struct {
	ID          string             `json:"id"`
	SourceID    string             `json:"sourceId"`
	ExternalID  string             `json:"externalId"`
	ExternalURL *string            `json:"externalUrl"`
	RawData     json.RawMessage    `json:"rawData"`
	ContentType ContentType        `json:"contentType"`
	Project     *NormalizedProject `json:"project,omitempty"`
	Article     *NormalizedArticle `json:"article,omitempty"`
	Quality     int                `json:"quality"`
	Status      HarvestStatus      `json:"status"`
	ReviewNotes *string            `json:"reviewNotes"`
	ReviewedAt  *time.Time         `json:"reviewedAt"`
	ProjectID   *string            `json:"projectId"`
	ArticleID   *string            `json:"articleId"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// NormalizedJSON encodes the item's canonical record, or returns nil when absent.
func (i *Item) NormalizedJSON() ([]byte, error) {
	switch {
	case i.Project != nil:
		return json.Marshal(i.Project)
	case i.Article != nil:
		return json.Marshal(i.Article)
	}
	return nil, nil
}

// SetNormalizedJSON decodes data according to the item's content type.
func (i *Item) SetNormalizedJSON(data []byte) error {
	i.Project, i.Article = nil, nil
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch i.ContentType {
	case ContentProject:
		var p NormalizedProject
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		i.Project = &p
	case ContentArticle:
		var a NormalizedArticle
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		i.Article = &a
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedContentType, i.ContentType)
	}
	return nil
}
