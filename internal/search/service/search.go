package service

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nestkeep/nestkeep-backend/internal/highlight"
	apperrors "github.com/nestkeep/nestkeep-backend/internal/pkg/errors"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/nestkeep/nestkeep-backend/internal/pkg/response"
	"github.com/nestkeep/nestkeep-backend/internal/search/biz"
	"github.com/nestkeep/nestkeep-backend/internal/search/types"
	"go.uber.org/zap"
)

// SearchService exposes the item search over HTTP.
type SearchService struct {
	uc     *biz.SearchUseCase
	logger *logger.Logger
}

// NewSearchService creates the search service
func NewSearchService(uc *biz.SearchUseCase, log *logger.Logger) *SearchService {
	return &SearchService{uc: uc, logger: log}
}

// SearchItemsRequest binds the query string of GET /items/search.
// Repeated params (status, location_id, tag) bind as slices.
type SearchItemsRequest struct {
	Query          string   `form:"q"`
	Sort           string   `form:"sort"`
	SortDir        string   `form:"sort_dir"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
	Fuzzy          *bool    `form:"fuzzy"`
	FuzzyThreshold float64  `form:"fuzzy_threshold"`
	Highlight      bool     `form:"highlight"`
	MinValue       *float64 `form:"min_value"`
	MaxValue       *float64 `form:"max_value"`
	Statuses       []string `form:"status"`
	DateFrom       string   `form:"date_from"`
	DateTo         string   `form:"date_to"`
	LocationIDs    []string `form:"location_id"`
	Tags           []string `form:"tag"`
}

// HighlightedField is one rendered field of a result card.
type HighlightedField struct {
	HTML       string `json:"html"`
	HasMatches bool   `json:"has_matches"`
}

// SearchItemResponse is one result row, optionally with highlights.
type SearchItemResponse struct {
	types.SearchItem
	Highlight *ItemHighlightResponse `json:"highlight,omitempty"`
}

// ItemHighlightResponse is the highlighted view of one result card.
type ItemHighlightResponse struct {
	Name              HighlightedField  `json:"name"`
	Description       *HighlightedField `json:"description,omitempty"`
	LocationPath      *HighlightedField `json:"location_path,omitempty"`
	SecurityValidated bool              `json:"security_validated"`
}

// SearchItemsResponse is the full search payload.
type SearchItemsResponse struct {
	Items        []SearchItemResponse `json:"items"`
	TotalCount   int64                `json:"total_count"`
	ResponseTime int64                `json:"response_time_ms"`
	SearchMethod types.SearchMethod   `json:"search_method"`
	HasMore      bool                 `json:"has_more"`
	SearchStats  *types.SearchStats   `json:"search_stats,omitempty"`
}

// SearchItems handles GET /items/search.
func (s *SearchService) SearchItems(c *gin.Context) {
	var req SearchItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid search parameters")
		return
	}

	q, err := req.toQuery()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := c.GetString("user_id")
	result, err := s.uc.SearchItems(c.Request.Context(), userID, q)
	if err != nil {
		s.logger.WithContext(c.Request.Context()).Error("search failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		response.HandleError(c, err)
		return
	}

	response.Success(c, s.toResponse(result, req))
}

// Capability handles GET /search/capability (admin diagnostics).
func (s *SearchService) Capability(c *gin.Context) {
	response.Success(c, s.uc.Capability(c.Request.Context()))
}

func (r *SearchItemsRequest) toQuery() (*types.SearchQuery, error) {
	q := &types.SearchQuery{
		Text:           r.Query,
		Sort:           r.Sort,
		SortDir:        r.SortDir,
		Limit:          r.Limit,
		Offset:         r.Offset,
		Fuzzy:          r.Fuzzy,
		FuzzyThreshold: r.FuzzyThreshold,
	}

	if r.MinValue != nil || r.MaxValue != nil || len(r.Statuses) > 0 ||
		r.DateFrom != "" || r.DateTo != "" || len(r.LocationIDs) > 0 || len(r.Tags) > 0 {
		f := &types.SearchFilters{
			MinValue:    r.MinValue,
			MaxValue:    r.MaxValue,
			Statuses:    r.Statuses,
			LocationIDs: r.LocationIDs,
			Tags:        r.Tags,
		}
		if r.DateFrom != "" {
			t, err := parseDate(r.DateFrom)
			if err != nil {
				return nil, apperrors.New(apperrors.ErrSearchInvalidQuery, "invalid date_from")
			}
			f.DateFrom = &t
		}
		if r.DateTo != "" {
			t, err := parseDate(r.DateTo)
			if err != nil {
				return nil, apperrors.New(apperrors.ErrSearchInvalidQuery, "invalid date_to")
			}
			f.DateTo = &t
		}
		q.Filters = f
	}
	return q, nil
}

func (s *SearchService) toResponse(result *types.SearchResult, req SearchItemsRequest) *SearchItemsResponse {
	out := &SearchItemsResponse{
		Items:        make([]SearchItemResponse, 0, len(result.Items)),
		TotalCount:   result.TotalCount,
		ResponseTime: result.ResponseTime,
		SearchMethod: result.SearchMethod,
		HasMore:      result.HasMore,
		SearchStats:  result.SearchStats,
	}

	terms := strings.Fields(req.Query)
	for _, item := range result.Items {
		row := SearchItemResponse{SearchItem: item}
		if req.Highlight {
			h := highlight.ComposeItemHighlight(
				item.Name, item.Description, item.LocationName,
				terms, highlight.Options{},
			)
			row.Highlight = toHighlightResponse(h)
		}
		out.Items = append(out.Items, row)
	}
	return out
}

func toHighlightResponse(h highlight.ItemHighlight) *ItemHighlightResponse {
	out := &ItemHighlightResponse{
		Name: HighlightedField{
			HTML:       h.Name.HighlightedText,
			HasMatches: h.Name.HasMatches,
		},
		SecurityValidated: h.SecurityValidated,
	}
	if h.Description != nil {
		out.Description = &HighlightedField{
			HTML:       h.Description.HighlightedText,
			HasMatches: h.Description.HasMatches,
		}
	}
	if h.LocationPath != nil {
		out.LocationPath = &HighlightedField{
			HTML:       h.LocationPath.HighlightedText,
			HasMatches: h.LocationPath.HasMatches,
		}
	}
	return out
}

// parseDate accepts a plain date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
