package types

import (
	"strings"
	"time"
)

// SearchMethod identifies the strategy that actually produced a result.
type SearchMethod string

const (
	MethodFullText SearchMethod = "full_text_search"
	MethodTrigram  SearchMethod = "trigram_search"
	MethodILike    SearchMethod = "ilike_fallback"
)

// Sort fields accepted by the search API.
const (
	SortRelevance = "relevance"
	SortName      = "name"
	SortValue     = "value"
	SortDate      = "date"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Query text bounds after trimming.
const (
	MinQueryLength = 2
	MaxQueryLength = 500
	MaxLimit       = 100
	DefaultLimit   = 20

	// DefaultFuzzyThreshold is the trigram similarity cutoff.
	DefaultFuzzyThreshold = 0.3
)

// SearchFilters narrow the matching set. Filters apply identically under
// every strategy; falling back to a weaker strategy never drops one.
type SearchFilters struct {
	MinValue    *float64   `json:"min_value,omitempty"`
	MaxValue    *float64   `json:"max_value,omitempty"`
	Statuses    []string   `json:"statuses,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	LocationIDs []string   `json:"location_ids,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// SearchQuery is one immutable search request.
type SearchQuery struct {
	Text           string         `json:"text"`
	Filters        *SearchFilters `json:"filters,omitempty"`
	Sort           string         `json:"sort"`
	SortDir        string         `json:"sort_dir"`
	Limit          int            `json:"limit"`
	Offset         int            `json:"offset"`
	// Fuzzy opts in or out of approximate matching. Nil means no
	// preference: the trigram strategy stays in the cascade.
	Fuzzy          *bool          `json:"fuzzy,omitempty"`
	FuzzyThreshold float64        `json:"fuzzy_threshold"`
}

// Normalize trims the text and fills defaulted fields.
func (q *SearchQuery) Normalize() {
	q.Text = strings.TrimSpace(q.Text)
	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	if q.SortDir == "" {
		q.SortDir = SortDesc
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.FuzzyThreshold == 0 {
		q.FuzzyThreshold = DefaultFuzzyThreshold
	}
}

// Validate reports the first violated constraint, or "".
func (q *SearchQuery) Validate() string {
	if len(q.Text) < MinQueryLength {
		return "search text must be at least 2 characters"
	}
	if len(q.Text) > MaxQueryLength {
		return "search text must be at most 500 characters"
	}
	switch q.Sort {
	case SortRelevance, SortName, SortValue, SortDate:
	default:
		return "invalid sort field"
	}
	switch q.SortDir {
	case SortAsc, SortDesc:
	default:
		return "invalid sort direction"
	}
	if q.Limit < 1 || q.Limit > MaxLimit {
		return "limit must be between 1 and 100"
	}
	if q.Offset < 0 {
		return "offset must be >= 0"
	}
	if q.FuzzyThreshold < 0 || q.FuzzyThreshold > 1 {
		return "fuzzy threshold must be between 0 and 1"
	}
	if q.Filters != nil {
		if q.Filters.MinValue != nil && q.Filters.MaxValue != nil &&
			*q.Filters.MinValue > *q.Filters.MaxValue {
			return "min value cannot exceed max value"
		}
		if q.Filters.DateFrom != nil && q.Filters.DateTo != nil &&
			q.Filters.DateFrom.After(*q.Filters.DateTo) {
			return "date range start cannot be after its end"
		}
	}
	return ""
}

// SearchItem is one matched record in the unified result shape.
type SearchItem struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Quantity       int        `json:"quantity"`
	Value          float64    `json:"value"`
	Status         string     `json:"status"`
	Tags           []string   `json:"tags,omitempty"`
	LocationID     string     `json:"location_id,omitempty"`
	LocationName   string     `json:"location_name,omitempty"`
	PhotoKey       string     `json:"photo_key,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	RelevanceScore float64    `json:"relevance_score"`
}

// SearchStats carries match-kind counts for richer result cards.
type SearchStats struct {
	ExactMatches    int `json:"exact_matches"`
	PartialMatches  int `json:"partial_matches"`
	LocationMatches int `json:"location_matches"`
}

// SearchResult is the unified response regardless of executed strategy.
type SearchResult struct {
	Items        []SearchItem `json:"items"`
	TotalCount   int64        `json:"total_count"`
	ResponseTime int64        `json:"response_time_ms"`
	SearchMethod SearchMethod `json:"search_method"`
	HasMore      bool         `json:"has_more"`
	SearchStats  *SearchStats `json:"search_stats,omitempty"`
}
