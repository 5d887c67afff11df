// Package results shapes raw OpenSearch hits for rendering: embedded
// dates are rewritten to display format, highlight fields are pruned to
// the displayable set, and highlight ordering is biased towards the
// fields the user sorted by.
package results

import (
	"strings"
	"time"
)

// Timestamp layouts: how OpenSearch returns dates and how they are shown.
const (
	indexDateLayout   = "2006-01-02T15:04:05"
	displayDateLayout = "02/01/2006"
)

// displayNames is the allow-list of highlightable fields and their
// user-facing labels. Highlights on any other field are dropped so
// internal metadata cannot leak into the UI.
var displayNames = map[string]string{
	"file_name":             "File name",
	"description":           "Description",
	"transferring_body":     "Transferring body",
	"foi_exemption_code":    "FOI exemption code",
	"content":               "Content",
	"closure_type":          "Closure status",
	"series_name":           "Series name",
	"consignment_reference": "Consignment reference",
	"date_last_modified":    "Date last modified",
	"opening_date":          "Record opening date",
}

// canonicalOrder fixes the baseline highlight ordering so output is
// deterministic regardless of map iteration.
var canonicalOrder = []string{
	"file_name",
	"description",
	"transferring_body",
	"foi_exemption_code",
	"content",
	"closure_type",
	"series_name",
	"consignment_reference",
	"date_last_modified",
	"opening_date",
}

// DisplayName returns the UI label for an index field, if it has one.
func DisplayName(field string) (string, bool) {
	name, ok := displayNames[field]
	return name, ok
}

// Highlight is one highlighted field of a hit, in display order.
type Highlight struct {
	Field     string   `json:"field"`
	Display   string   `json:"display"`
	Fragments []string `json:"fragments"`
}

// Hit is a post-processed search hit.
type Hit struct {
	ID         string         `json:"id"`
	Score      float64        `json:"score"`
	Source     map[string]any `json:"source"`
	Highlights []Highlight    `json:"highlights,omitempty"`
}

// PostProcess applies the full shaping pass to raw hits: date
// normalization in _source, highlight pruning to the display set, and
// sort-mode reordering.
func PostProcess(ids []string, scores []float64, sources []map[string]any, highlights []map[string][]string, sortMode string) []Hit {
	hits := make([]Hit, len(sources))
	for i, src := range sources {
		FormatDates(src)
		hit := Hit{Source: src}
		if i < len(ids) {
			hit.ID = ids[i]
		}
		if i < len(scores) {
			hit.Score = scores[i]
		}
		if i < len(highlights) {
			hit.Highlights = Rearrange(PruneHighlights(highlights[i]), sortMode)
		}
		hits[i] = hit
	}
	return hits
}

// FormatDates rewrites every value under a key containing "date" from
// the index timestamp format to display format, in place. Values that
// do not parse are left untouched.
func FormatDates(source map[string]any) {
	for key, val := range source {
		if !strings.Contains(key, "date") {
			continue
		}
		s, ok := val.(string)
		if !ok {
			continue
		}
		parsed, err := time.Parse(indexDateLayout, s)
		if err != nil {
			continue
		}
		source[key] = parsed.Format(displayDateLayout)
	}
}

// PruneHighlights drops highlight fields outside the display allow-list
// and returns the survivors in canonical order.
func PruneHighlights(raw map[string][]string) []Highlight {
	var out []Highlight
	for _, field := range canonicalOrder {
		fragments, ok := raw[field]
		if !ok || len(fragments) == 0 {
			continue
		}
		out = append(out, Highlight{
			Field:     field,
			Display:   displayNames[field],
			Fragments: fragments,
		})
	}
	return out
}

// Rearrange reorders highlights by sort-mode relevance: the fields the
// user sorted on move to the front (or, for metadata, the record fields
// move to the back). Ordering only affects rendering priority.
func Rearrange(highlights []Highlight, sortMode string) []Highlight {
	switch sortMode {
	case "file_name":
		return promote(highlights, "file_name")
	case "description":
		return promote(highlights, "description", "file_name")
	case "content":
		return promote(highlights, "content", "file_name")
	case "metadata":
		return demote(highlights, "file_name", "content")
	default:
		return highlights
	}
}

// promote moves the named fields to the front, in the given order.
func promote(highlights []Highlight, fieldNames ...string) []Highlight {
	out := make([]Highlight, 0, len(highlights))
	for _, name := range fieldNames {
		for _, h := range highlights {
			if h.Field == name {
				out = append(out, h)
			}
		}
	}
	for _, h := range highlights {
		if !contains(fieldNames, h.Field) {
			out = append(out, h)
		}
	}
	return out
}

// demote moves the named fields to the back, preserving their order.
func demote(highlights []Highlight, fieldNames ...string) []Highlight {
	out := make([]Highlight, 0, len(highlights))
	for _, h := range highlights {
		if !contains(fieldNames, h.Field) {
			out = append(out, h)
		}
	}
	for _, name := range fieldNames {
		for _, h := range highlights {
			if h.Field == name {
				out = append(out, h)
			}
		}
	}
	return out
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
