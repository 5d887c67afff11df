// Package page computes the page-number window rendered under result
// listings: first and last page, a neighbourhood around the current
// page, and "ellipses" markers for the gaps.
package page

// Ellipses is the token emitted between non-adjacent page numbers.
const Ellipses = "ellipses"

// Window is the pagination control for one result listing. Pages holds
// ints and Ellipses tokens in display order; Previous and Next are nil
// at the respective boundary.
type Window struct {
	Pages    []any `json:"pages"`
	Previous *int  `json:"previous"`
	Next     *int  `json:"next"`
}

// Pagination builds the page window for the current page. Returns nil
// when there is a single page or none, since no control is rendered.
func Pagination(currentPage, totalPages int) *Window {
	if totalPages <= 1 {
		return nil
	}

	var pages []any
	if currentPage > 1 {
		pages = append(pages, 1)
	}
	if currentPage > 3 {
		pages = append(pages, Ellipses)
	}
	if currentPage-1 > 1 {
		pages = append(pages, currentPage-1)
	}
	pages = append(pages, currentPage)
	if currentPage+1 <= totalPages {
		pages = append(pages, currentPage+1)
	}
	if currentPage < totalPages-2 {
		pages = append(pages, Ellipses)
	}
	if currentPage < totalPages-1 {
		pages = append(pages, totalPages)
	}

	w := &Window{Pages: pages}
	if currentPage > 1 {
		prev := currentPage - 1
		w.Previous = &prev
	}
	if currentPage < totalPages {
		next := currentPage + 1
		w.Next = &next
	}
	return w
}

// TotalPages returns the page count for a record total, rounding up.
// Zero records means zero pages.
func TotalPages(totalRecords, recordsPerPage int) int {
	if recordsPerPage <= 0 {
		return 0
	}
	return (totalRecords + recordsPerPage - 1) / recordsPerPage
}
