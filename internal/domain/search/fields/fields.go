// Package fields decides which index fields a search runs against and
// how heavily each one is weighted. It also classifies fields as fuzzy
// or non-fuzzy: identifiers, series and dates only ever take exact or
// phrase matches, so that a query like "msg" cannot fuzzy-match "Ms".
package fields

import (
	"fmt"
	"strings"
)

// Search areas selectable in the UI.
const (
	AreaEverywhere = "everywhere"
	AreaMetadata   = "metadata"
	AreaRecord     = "record"
)

// Sort modes with dedicated boost profiles.
const (
	SortFileName    = "file_name"
	SortDescription = "description"
	SortMetadata    = "metadata"
	SortRecord      = "record"
	SortLeastMatch  = "least_matches"
	SortMostMatch   = "most_matches"
)

// all is the complete set of searchable index fields, in display order.
var all = []string{
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

// recordFields are the fields that hold the record itself rather than
// metadata about it.
var recordFields = []string{"file_name", "content"}

// boostProfiles maps a sort mode to per-field boosts and the score
// order applied to results.
var boostProfiles = map[string]struct {
	boosts map[string]int
	order  string
}{
	SortFileName:    {map[string]int{"file_name": 4}, "desc"},
	SortDescription: {map[string]int{"description": 4, "file_name": 2}, "desc"},
	SortMetadata: {map[string]int{
		"series_name":           3,
		"consignment_reference": 3,
		"transferring_body":     3,
		"foi_exemption_code":    2,
		"closure_type":          2,
	}, "desc"},
	SortRecord:     {map[string]int{"content": 4, "file_name": 2}, "desc"},
	SortLeastMatch: {nil, "asc"},
	SortMostMatch:  {nil, "desc"},
}

// ForArea returns the index fields participating in a search area.
// "metadata" excludes the record fields, "record" is exactly the record
// fields, and anything else (including "everywhere") searches the full
// set.
func ForArea(area string) []string {
	switch area {
	case AreaMetadata:
		out := make([]string, 0, len(all)-len(recordFields))
		for _, f := range all {
			if f != "file_name" && f != "content" {
				out = append(out, f)
			}
		}
		return out
	case AreaRecord:
		return append([]string(nil), recordFields...)
	default:
		return append([]string(nil), all...)
	}
}

// ForSearch resolves the field list for a search area and applies the
// boost profile for the sort mode. Fields come back as "name^weight"
// specs (bare name for the default weight of 1) alongside the sort
// clause for the query body. An unrecognized sort means no boosts and
// score-descending order.
func ForSearch(area, sort string) ([]string, []map[string]any) {
	profile, ok := boostProfiles[sort]
	if !ok {
		profile.order = "desc"
	}

	resolved := ForArea(area)
	specs := make([]string, len(resolved))
	for i, f := range resolved {
		if boost, ok := profile.boosts[f]; ok && boost > 1 {
			specs[i] = fmt.Sprintf("%s^%d", f, boost)
		} else {
			specs[i] = f
		}
	}

	sorting := []map[string]any{
		{"_score": map[string]any{"order": profile.order}},
	}
	return specs, sorting
}

// IsNonFuzzy reports whether a field must never take fuzzy matches.
// Consignment references, series and dates are identifiers: an
// edit-distance match on them produces false positives.
func IsNonFuzzy(field string) bool {
	name := BaseName(field)
	return strings.HasPrefix(name, "consignment_ref") ||
		strings.HasPrefix(name, "series") ||
		strings.Contains(name, "date")
}

// Split partitions field specs into non-fuzzy and fuzzy groups,
// preserving order within each group.
func Split(fieldSpecs []string) (nonFuzzy, fuzzy []string) {
	for _, f := range fieldSpecs {
		if IsNonFuzzy(f) {
			nonFuzzy = append(nonFuzzy, f)
		} else {
			fuzzy = append(fuzzy, f)
		}
	}
	return nonFuzzy, fuzzy
}

// BaseName strips a "^boost" suffix from a field spec.
func BaseName(fieldSpec string) string {
	name, _, _ := strings.Cut(fieldSpec, "^")
	return name
}
