// Package browse serves the body/series/consignment listing pages from
// the records store: request parameters become filters and sort orders,
// the store answers one page of rows, and a pagination window is
// attached for rendering.
package browse

import (
	"context"
	"fmt"
	"net/url"

	dombrowse "github.com/recdex/recdex/internal/domain/browse"
	"github.com/recdex/recdex/internal/domain/dates"
	"github.com/recdex/recdex/internal/domain/page"
	domrec "github.com/recdex/recdex/internal/domain/records"
)

// DefaultPerPage is the page size when the request does not set one.
const DefaultPerPage = 25

// Params carry the raw listing request.
type Params struct {
	Values  url.Values
	Page    int
	PerPage int
}

// ValidationError reports rejected date-range input, keyed for form
// redisplay.
type ValidationError struct {
	Errors map[string][]string `json:"errors"`
	Fields []string            `json:"fields"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid date range: %v", e.Errors)
}

// Result is one page of the series listing.
type Result struct {
	Rows       []domrec.BrowseRow `json:"rows"`
	Total      int                `json:"total_records"`
	TotalPages int                `json:"total_pages"`
	Pagination *page.Window       `json:"pagination,omitempty"`
}

// BodyResult scopes a listing to one transferring body.
type BodyResult struct {
	Body domrec.Body `json:"body"`
	Result
}

// SeriesResult scopes a listing to one series.
type SeriesResult struct {
	Series domrec.Series `json:"series"`
	Result
}

// FilesResult is one page of a consignment's file listing.
type FilesResult struct {
	Consignment domrec.Consignment `json:"consignment"`
	Files       []domrec.FileRow   `json:"files"`
	Total       int                `json:"total_records"`
	TotalPages  int                `json:"total_pages"`
	Pagination  *page.Window       `json:"pagination,omitempty"`
}

// Service answers the browse listings.
type Service struct {
	store   Store
	perPage int
}

// New creates a browse service.
func New(store Store) *Service {
	return &Service{store: store, perPage: DefaultPerPage}
}

// WithPerPage overrides the default page size.
func (s *Service) WithPerPage(perPage int) *Service {
	if perPage > 0 {
		s.perPage = perPage
	}
	return s
}

// All lists every series across all transferring bodies.
func (s *Service) All(ctx context.Context, p Params) (Result, error) {
	if err := validateDates(p.Values, true); err != nil {
		return Result{}, err
	}

	filters := dombrowse.BuildFilters(p.Values)
	sort := dombrowse.BuildSortingOrders(p.Values)
	current, perPage := normalizePaging(p, s.perPage)

	rows, total := s.store.Browse(ctx, filters, sort, perPage, (current-1)*perPage)
	return listing(rows, total, current, perPage), nil
}

// ForBody lists the series of one transferring body. Unknown ids
// surface the store's not-found error.
func (s *Service) ForBody(ctx context.Context, bodyID string, p Params) (BodyResult, error) {
	body, err := s.store.Body(ctx, bodyID)
	if err != nil {
		return BodyResult{}, err
	}
	if err := validateDates(p.Values, true); err != nil {
		return BodyResult{}, err
	}

	filters := dombrowse.BuildFilters(p.Values)
	sort := dombrowse.BuildSortingOrders(p.Values)
	current, perPage := normalizePaging(p, s.perPage)

	rows, total := s.store.BrowseBody(ctx, bodyID, filters, sort, perPage, (current-1)*perPage)
	return BodyResult{Body: body, Result: listing(rows, total, current, perPage)}, nil
}

// ForSeries lists the single-series view.
func (s *Service) ForSeries(ctx context.Context, seriesID string, p Params) (SeriesResult, error) {
	series, err := s.store.Series(ctx, seriesID)
	if err != nil {
		return SeriesResult{}, err
	}
	if err := validateDates(p.Values, true); err != nil {
		return SeriesResult{}, err
	}

	filters := dombrowse.BuildFilters(p.Values)
	sort := dombrowse.BuildSortingOrders(p.Values)
	current, perPage := normalizePaging(p, s.perPage)

	rows, total := s.store.BrowseSeries(ctx, seriesID, filters, sort, perPage, (current-1)*perPage)
	return SeriesResult{Series: series, Result: listing(rows, total, current, perPage)}, nil
}

// Files lists one consignment's files. The future-date check is skipped
// when filtering on the record opening date, which legitimately sits in
// the future.
func (s *Service) Files(ctx context.Context, consignmentID string, p Params) (FilesResult, error) {
	consignment, err := s.store.Consignment(ctx, consignmentID)
	if err != nil {
		return FilesResult{}, err
	}

	checkFuture := p.Values.Get(dombrowse.ParamDateField) != dombrowse.OpeningDateField
	if err := validateDates(p.Values, checkFuture); err != nil {
		return FilesResult{}, err
	}

	filters := dombrowse.BuildConsignmentFilters(p.Values)
	sort := dombrowse.BuildSortingOrders(p.Values)
	current, perPage := normalizePaging(p, s.perPage)

	files, total := s.store.ConsignmentFiles(ctx, consignmentID, filters, sort, perPage, (current-1)*perPage)
	totalPages := page.TotalPages(total, perPage)
	return FilesResult{
		Consignment: consignment,
		Files:       files,
		Total:       total,
		TotalPages:  totalPages,
		Pagination:  page.Pagination(current, totalPages),
	}, nil
}

func validateDates(values url.Values, checkFuture bool) error {
	res := dates.ValidateRange(dombrowse.RangeParams(values), checkFuture)
	if res.OK() {
		return nil
	}
	return &ValidationError{Errors: res.Errors, Fields: res.Fields}
}

func listing(rows []domrec.BrowseRow, total, current, perPage int) Result {
	totalPages := page.TotalPages(total, perPage)
	return Result{
		Rows:       rows,
		Total:      total,
		TotalPages: totalPages,
		Pagination: page.Pagination(current, totalPages),
	}
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
