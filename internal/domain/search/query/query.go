// Package query assembles OpenSearch Query DSL bodies for the search
// endpoints. Bodies are plain maps so they marshal directly into the
// JSON the _search API expects.
//
// Relevance hinges on one rule that must not be collapsed: every term
// and phrase produces separate should-clauses for the non-fuzzy and
// fuzzy field groups. Non-fuzzy fields (references, series, dates) only
// match exactly; fuzzy fields get edit-distance matching. Both clauses
// sit in the same should array, so a hit in either group qualifies.
package query

import (
	"github.com/recdex/recdex/internal/domain/search/fields"
)

// TransferringBodyKeyword is the keyword sub-field used for exact
// transferring-body matching and aggregation.
const TransferringBodyKeyword = "transferring_body_id.keyword"

// HighlightTags is the tag pair wrapped around matched fragments.
type HighlightTags struct {
	Pre  string
	Post string
}

// DefaultHighlightTags wrap matches in <mark> elements.
var DefaultHighlightTags = HighlightTags{Pre: "<mark>", Post: "</mark>"}

// ShouldClauses builds the relevance clauses for a term list. Each
// quoted phrase yields a phrase-type multi_match per non-empty field
// group, and each single term a plain multi_match per group: fuzziness
// 0 against the non-fuzzy group, AUTO against the fuzzy group.
func ShouldClauses(fieldSpecs, quotedPhrases, singleTerms []string) []map[string]any {
	nonFuzzy, fuzzy := fields.Split(fieldSpecs)

	var clauses []map[string]any
	add := func(text string, phrase bool) {
		if len(nonFuzzy) > 0 {
			clauses = append(clauses, multiMatch(text, nonFuzzy, phrase, "0"))
		}
		if len(fuzzy) > 0 {
			clauses = append(clauses, multiMatch(text, fuzzy, phrase, "AUTO"))
		}
	}

	for _, phrase := range quotedPhrases {
		add(phrase, true)
	}
	for _, term := range singleTerms {
		add(term, false)
	}
	return clauses
}

func multiMatch(text string, fieldSpecs []string, phrase bool, fuzziness string) map[string]any {
	m := map[string]any{
		"query":     text,
		"fields":    fieldSpecs,
		"fuzziness": fuzziness,
		"lenient":   true,
	}
	if phrase {
		m["type"] = "phrase"
	}
	return map[string]any{"multi_match": m}
}

// Search builds the base search body: a bool query of should-clauses
// and filter clauses, with sorting and full _source.
func Search(
	fieldSpecs []string,
	filterClauses []map[string]any,
	quotedPhrases, singleTerms []string,
	sorting []map[string]any,
) map[string]any {
	boolQuery := map[string]any{
		"should":               ShouldClauses(fieldSpecs, quotedPhrases, singleTerms),
		"minimum_should_match": 1,
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	body := map[string]any{
		"query":   map[string]any{"bool": boolQuery},
		"_source": true,
	}
	// OpenSearch rejects sort:null, so only attach when present.
	if len(sorting) > 0 {
		body["sort"] = sorting
	}
	return body
}

// Summary builds the results-summary body: the base query plus a terms
// aggregation bucketing hits per transferring body, with a single
// top_hits document per bucket to surface the body's name. Hits
// themselves are not returned.
func Summary(
	fieldSpecs []string,
	quotedPhrases, singleTerms []string,
) map[string]any {
	body := Search(fieldSpecs, nil, quotedPhrases, singleTerms, nil)
	delete(body, "sort")
	body["size"] = 0
	body["aggs"] = map[string]any{
		"aggregate_by_transferring_body": map[string]any{
			"terms": map[string]any{"field": TransferringBodyKeyword},
			"aggs": map[string]any{
				"top_transferring_body_hits": map[string]any{
					"top_hits": map[string]any{
						"size":    1,
						"_source": []string{"transferring_body"},
					},
				},
			},
		},
	}
	return body
}

// TransferringBody builds the body-scoped search: the base query with a
// term filter pinning the transferring body, paging, and a highlight
// block using the unified highlighter with sentence boundaries.
func TransferringBody(
	bodyID string,
	fieldSpecs []string,
	filterClauses []map[string]any,
	quotedPhrases, singleTerms []string,
	sorting []map[string]any,
	from, size int,
	tags HighlightTags,
) map[string]any {
	pinned := append([]map[string]any{
		{"term": map[string]any{TransferringBodyKeyword: bodyID}},
	}, filterClauses...)

	body := Search(fieldSpecs, pinned, quotedPhrases, singleTerms, sorting)
	body["from"] = from
	body["size"] = size
	body["highlight"] = map[string]any{
		"pre_tags":                []string{tags.Pre},
		"post_tags":               []string{tags.Post},
		"type":                    "unified",
		"fragment_size":           200,
		"number_of_fragments":     5,
		"require_field_match":     true,
		"boundary_scanner":        "sentence",
		"boundary_scanner_locale": "en-US",
		"order":                   "score",
		"fields":                  map[string]any{"*": map[string]any{}},
	}
	return body
}
