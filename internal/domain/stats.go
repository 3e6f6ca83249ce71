package domain

import "time"

type RunStatus string

const (
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// HarvestStats holds statistics about a single source run.
type HarvestStats struct {
	SourceID       string    `json:"sourceId"`
	SourceName     string    `json:"sourceName"`
	Status         RunStatus `json:"status"`
	StartedAt      time.Time `json:"startedAt"`
	CompletedAt    time.Time `json:"completedAt"`
	ItemsProcessed int       `json:"itemsProcessed"`
	ItemsCreated   int       `json:"itemsCreated"`
	ItemsSkipped   int       `json:"itemsSkipped"`
	ItemsDuplicate int       `json:"itemsDuplicate"`
	Errors         []string  `json:"errors"`
}

// PublishReport summarizes a promotion pass.
type PublishReport struct {
	Published   int      `json:"published"`
	Errors      []string `json:"errors"`
	Unsupported []string `json:"unsupported"`
}

type StatusTotals struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Published int `json:"published"`
	Duplicate int `json:"duplicate"`
	NeedsInfo int `json:"needsInfo"`
	Total     int `json:"total"`
}

type SourceStatusCount struct {
	SourceID string        `db:"source_id"`
	Status   HarvestStatus `db:"status"`
	Count    int           `db:"count"`
}

type SourceQueueStats struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	LastHarvest *time.Time     `json:"lastHarvest"`
	Counts      map[string]int `json:"counts"`
}

type QueueStats struct {
	Totals   StatusTotals       `json:"totals"`
	BySource []SourceQueueStats `json:"bySource"`
}

// ItemFilter selects queue items for moderation listings.
type ItemFilter struct {
	Status      *HarvestStatus
	SourceID    *string
	ContentType *ContentType
	MinQuality  int
	Page        int
	Limit       int
}

// ItemUpdate is a partial moderation update; nil fields are left unchanged.
type ItemUpdate struct {
	Status      *HarvestStatus
	ReviewNotes *string
	Project     *NormalizedProject
	Article     *NormalizedArticle
	ReviewedAt  time.Time
}
