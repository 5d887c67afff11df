// Package browse normalizes raw browse-page request parameters into the
// filter and sort structures the records store queries on. Date range
// parsing is delegated to the dates package; an invalid range is kept in
// placeholder form so the form can be redisplayed instead of silently
// dropping the user's input.
package browse

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/recdex/recdex/internal/domain/dates"
)

// Filter keys recognized by the records store.
const (
	FilterTransferringBody = "transferring_body"
	FilterSeries           = "series"
	FilterRecordStatus     = "record_status"
	FilterDateField        = "date_filter_field"
	FilterDateRange        = "date_range"
)

// Request parameter names.
const (
	ParamTransferringBody = "transferring_body_filter"
	ParamSeries           = "series_filter"
	ParamRecordStatus     = "record_status"
	ParamDateField        = "date_filter_field"
	ParamSort             = "sort"
)

// OpeningDateField is the one date filter field allowed to sit in the
// future (records open on a scheduled date).
const OpeningDateField = "opening_date"

// Filters maps filter names to normalized values. The date range value
// is a map with "date_from"/"date_to" display strings.
type Filters map[string]any

// SortOrders maps a sort field to "asc" or "desc".
type SortOrders map[string]string

// BuildFilters normalizes the standard browse filters: transferring
// body (lower-cased, dropped when "all" or empty), series (lower-cased)
// and the date range.
func BuildFilters(params url.Values) Filters {
	filters := Filters{}

	if body := strings.ToLower(strings.TrimSpace(params.Get(ParamTransferringBody))); body != "" && body != "all" {
		filters[FilterTransferringBody] = body
	}
	if series := strings.TrimSpace(params.Get(ParamSeries)); series != "" {
		filters[FilterSeries] = strings.ToLower(series)
	}

	addDateRange(filters, params, true)
	return filters
}

// BuildConsignmentFilters normalizes the consignment file-view filters:
// record status and the date field selector pass through verbatim, plus
// the date range. Future dates are allowed only when filtering on the
// record opening date.
func BuildConsignmentFilters(params url.Values) Filters {
	filters := Filters{}

	if status := params.Get(ParamRecordStatus); status != "" {
		filters[FilterRecordStatus] = status
	}
	dateField := params.Get(ParamDateField)
	if dateField != "" {
		filters[FilterDateField] = dateField
	}

	addDateRange(filters, params, dateField != OpeningDateField)
	return filters
}

// BuildSortingOrders parses the single sort=<field>-<direction>
// parameter, splitting on the last hyphen so field names containing
// hyphens survive. Absent or malformed values yield an empty map;
// callers apply their own default.
func BuildSortingOrders(params url.Values) SortOrders {
	raw := strings.TrimSpace(params.Get(ParamSort))
	if raw == "" {
		return SortOrders{}
	}

	idx := strings.LastIndex(raw, "-")
	if idx <= 0 || idx == len(raw)-1 {
		return SortOrders{}
	}
	field, direction := raw[:idx], raw[idx+1:]
	if direction != "asc" && direction != "desc" {
		return SortOrders{}
	}
	return SortOrders{field: direction}
}

// RangeParams pulls the raw date range values out of the request.
func RangeParams(params url.Values) dates.RangeParams {
	return dates.RangeParams{
		FromDay:   params.Get("date_from_day"),
		FromMonth: params.Get("date_from_month"),
		FromYear:  params.Get("date_from_year"),
		ToDay:     params.Get("date_to_day"),
		ToMonth:   params.Get("date_to_month"),
		ToYear:    params.Get("date_to_year"),
	}
}

// addDateRange validates and completes the date range, then folds it
// into the filter set. When validation fails the raw partial values are
// kept in d/m/y form with "#" marking blanks, so the UI can redisplay
// the invalid range. A range entry is only added when at least one side
// carries real input.
func addDateRange(filters Filters, params url.Values, checkFuture bool) {
	p := RangeParams(params)
	res := dates.ValidateRange(p, checkFuture)

	var from, to string
	if res.OK() {
		if res.From.Year != 0 {
			d, m, y := dates.Complete(res.From.Day, res.From.Month, res.From.Year, dates.From, checkFuture)
			from = fmt.Sprintf("%02d/%02d/%d", d, m, y)
		}
		if res.To.Year != 0 {
			d, m, y := dates.Complete(res.To.Day, res.To.Month, res.To.Year, dates.To, checkFuture)
			to = fmt.Sprintf("%02d/%02d/%d", d, m, y)
		}
	} else {
		from = placeholderDate(p.FromDay, p.FromMonth, p.FromYear)
		to = placeholderDate(p.ToDay, p.ToMonth, p.ToYear)
	}

	if stripPlaceholders(from) == "" && stripPlaceholders(to) == "" {
		return
	}
	filters[FilterDateRange] = map[string]string{
		"date_from": from,
		"date_to":   to,
	}
}

func placeholderDate(day, month, year string) string {
	part := func(s string) string {
		if s = strings.TrimSpace(s); s == "" {
			return "#"
		}
		return s
	}
	return part(day) + "/" + part(month) + "/" + part(year)
}

func stripPlaceholders(s string) string {
	s = strings.ReplaceAll(s, "#", "")
	s = strings.ReplaceAll(s, "/", "")
	return strings.TrimSpace(s)
}
