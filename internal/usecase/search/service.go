// Package search orchestrates the search pipeline: extract terms,
// resolve fields and boosts, assemble the query body, execute it, and
// shape the hits for rendering.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/recdex/recdex/internal/domain/page"
	"github.com/recdex/recdex/internal/domain/search/fields"
	"github.com/recdex/recdex/internal/domain/search/query"
	"github.com/recdex/recdex/internal/domain/search/results"
	"github.com/recdex/recdex/internal/domain/search/terms"
	"github.com/recdex/recdex/internal/metrics"
	"github.com/recdex/recdex/internal/repository/opensearch"
)

// DefaultPerPage is the page size when the request does not set one.
const DefaultPerPage = 10

// Params are the common search request parameters.
type Params struct {
	Query   string
	Area    string
	Sort    string
	Page    int
	PerPage int
}

// SummaryResult is the cross-body result summary.
type SummaryResult struct {
	Total  int                        `json:"total_records"`
	Bodies []opensearch.SummaryBucket `json:"transferring_bodies"`
}

// BodyResult is one page of hits within a single transferring body.
type BodyResult struct {
	Total      int           `json:"total_records"`
	TotalPages int           `json:"total_pages"`
	Hits       []results.Hit `json:"records"`
	Pagination *page.Window  `json:"pagination,omitempty"`
}

// Service runs searches against the records index.
type Service struct {
	repo    Repository
	cache   Cache
	tags    query.HighlightTags
	perPage int
	logger  *zap.Logger
}

// New creates a search service. cache can be nil.
func New(repo Repository, cache Cache, tags query.HighlightTags, logger *zap.Logger) *Service {
	if tags == (query.HighlightTags{}) {
		tags = query.DefaultHighlightTags
	}
	return &Service{repo: repo, cache: cache, tags: tags, perPage: DefaultPerPage, logger: logger}
}

// WithPerPage overrides the default page size.
func (s *Service) WithPerPage(perPage int) *Service {
	if perPage > 0 {
		s.perPage = perPage
	}
	return s
}

// Summary aggregates matching records per transferring body. An empty
// query short-circuits to an empty summary without touching the index.
// Responses are cached per query/area when a cache is configured.
func (s *Service) Summary(ctx context.Context, p Params) (SummaryResult, error) {
	phrases, single := terms.Extract(p.Query)
	if len(phrases) == 0 && len(single) == 0 {
		return SummaryResult{Bodies: []opensearch.SummaryBucket{}}, nil
	}

	key := "summary:" + p.Area + ":" + p.Query
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached SummaryResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				metrics.SummaryCacheTotal.WithLabelValues("hit").Inc()
				return cached, nil
			}
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
		metrics.SummaryCacheTotal.WithLabelValues("miss").Inc()
	}

	fieldSpecs, _ := fields.ForSearch(p.Area, p.Sort)
	body := query.Summary(fieldSpecs, phrases, single)

	start := time.Now()
	total, buckets, err := s.repo.Summary(ctx, body)
	observe("summary", p.Area, start, err)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("summary search: %w", err)
	}

	out := SummaryResult{Total: total, Bodies: buckets}
	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			s.cache.Set(ctx, key, raw)
		}
	}
	return out, nil
}

// Body returns one page of hits pinned to a transferring body, with
// highlights pruned, reordered for the sort mode, and a pagination
// window for the result count.
func (s *Service) Body(ctx context.Context, bodyID string, p Params) (BodyResult, error) {
	phrases, single := terms.Extract(p.Query)
	if len(phrases) == 0 && len(single) == 0 {
		return BodyResult{Hits: []results.Hit{}}, nil
	}

	current, perPage := normalizePaging(p, s.perPage)
	fieldSpecs, sorting := fields.ForSearch(p.Area, p.Sort)
	body := query.TransferringBody(
		bodyID, fieldSpecs, nil, phrases, single, sorting,
		(current-1)*perPage, perPage, s.tags,
	)

	start := time.Now()
	resp, err := s.repo.Search(ctx, body)
	observe("body", p.Area, start, err)
	if err != nil {
		return BodyResult{}, fmt.Errorf("body search: %w", err)
	}

	ids := make([]string, len(resp.Hits))
	scores := make([]float64, len(resp.Hits))
	sources := make([]map[string]any, len(resp.Hits))
	highlights := make([]map[string][]string, len(resp.Hits))
	for i, h := range resp.Hits {
		ids[i] = h.ID
		scores[i] = h.Score
		sources[i] = h.Source
		highlights[i] = h.Highlight
	}

	totalPages := page.TotalPages(resp.Total, perPage)
	return BodyResult{
		Total:      resp.Total,
		TotalPages: totalPages,
		Hits:       results.PostProcess(ids, scores, sources, highlights, p.Sort),
		Pagination: page.Pagination(current, totalPages),
	}, nil
}

// Record fetches one record's metadata by index id, with dates
// normalized for display.
func (s *Service) Record(ctx context.Context, id string) (map[string]any, error) {
	source, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	results.FormatDates(source)
	return source, nil
}

func observe(kind, area string, start time.Time, err error) {
	if area == "" {
		area = fields.AreaEverywhere
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(kind, area, status).Inc()
	metrics.SearchRequestDuration.WithLabelValues(kind, area).Observe(time.Since(start).Seconds())
}

func normalizePaging(p Params, fallback int) (current, perPage int) {
	current = p.Page
	if current < 1 {
		current = 1
	}
	perPage = p.PerPage
	if perPage < 1 {
		perPage = fallback
	}
	return current, perPage
}
