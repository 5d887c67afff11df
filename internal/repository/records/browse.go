package records

import (
	"context"
	"database/sql"
	"strings"

	"github.com/recdex/recdex/internal/domain/browse"
	domrec "github.com/recdex/recdex/internal/domain/records"
)

// browseSortColumns whitelists sortable browse columns. Anything else
// falls back to the default ordering.
var browseSortColumns = map[string]string{
	"transferring_body":       "body_name",
	"series":                  "series_name",
	"last_record_transferred": "last_transferred",
	"records_held":            "records_held",
	"consignments":            "consignments",
}

const defaultBrowseOrder = "body_name ASC, series_name ASC"

// fileSortColumns whitelists sortable consignment-file columns.
var fileSortColumns = map[string]string{
	"file_name":          "name",
	"record_status":      "record_status",
	"date_last_modified": "date_last_modified",
	"opening_date":       "opening_date",
}

// dateFilterColumns whitelists the columns the consignment date filter
// may apply to.
var dateFilterColumns = map[string]string{
	"date_last_modified": "date_last_modified",
	"opening_date":       "opening_date",
}

type browseScope struct {
	bodyID   string
	seriesID string
}

// Browse lists series rows across every transferring body.
func (s *Store) Browse(
	ctx context.Context, filters browse.Filters, sort browse.SortOrders, limit, offset int,
) ([]domrec.BrowseRow, int) {
	return s.browse(ctx, browseScope{}, filters, sort, limit, offset)
}

// BrowseBody lists series rows for one transferring body.
func (s *Store) BrowseBody(
	ctx context.Context, bodyID string, filters browse.Filters, sort browse.SortOrders, limit, offset int,
) ([]domrec.BrowseRow, int) {
	return s.browse(ctx, browseScope{bodyID: bodyID}, filters, sort, limit, offset)
}

// BrowseSeries lists the row for one series.
func (s *Store) BrowseSeries(
	ctx context.Context, seriesID string, filters browse.Filters, sort browse.SortOrders, limit, offset int,
) ([]domrec.BrowseRow, int) {
	return s.browse(ctx, browseScope{seriesID: seriesID}, filters, sort, limit, offset)
}

func (s *Store) browse(
	ctx context.Context, scope browseScope,
	filters browse.Filters, sort browse.SortOrders, limit, offset int,
) ([]domrec.BrowseRow, int) {
	var (
		where  []string
		having []string
		args   []any
	)

	if scope.bodyID != "" {
		where = append(where, "b.id = ?")
		args = append(args, scope.bodyID)
	}
	if scope.seriesID != "" {
		where = append(where, "s.id = ?")
		args = append(args, scope.seriesID)
	}
	if body, ok := filters[browse.FilterTransferringBody].(string); ok {
		where = append(where, "LOWER(b.name) LIKE '%' || ? || '%'")
		args = append(args, body)
	}
	if series, ok := filters[browse.FilterSeries].(string); ok {
		where = append(where, "LOWER(s.name) LIKE '%' || ? || '%'")
		args = append(args, series)
	}
	if from, to, ok := dateRangeISO(filters); ok {
		if from != "" {
			having = append(having, "date(last_transferred) >= date(?)")
			args = append(args, from)
		}
		if to != "" {
			having = append(having, "date(last_transferred) <= date(?)")
			args = append(args, to)
		}
	}

	q := `
SELECT b.id AS body_id, b.name AS body_name, s.id AS series_id, s.name AS series_name,
       MAX(c.transfer_complete_date) AS last_transferred,
       COUNT(DISTINCT c.id) AS consignments,
       COUNT(f.id) AS records_held
FROM body b
JOIN series s ON s.body_id = b.id
LEFT JOIN consignment c ON c.series_id = s.id
LEFT JOIN file f ON f.consignment_id = c.id AND f.file_type = 'File'`
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nGROUP BY b.id, b.name, s.id, s.name"
	if len(having) > 0 {
		q += "\nHAVING " + strings.Join(having, " AND ")
	}

	total := s.countRows(ctx, q, args)

	q += "\nORDER BY " + orderClause(sort, browseSortColumns, defaultBrowseOrder)
	q += "\nLIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.failSoft(err)
		return []domrec.BrowseRow{}, 0
	}
	defer rows.Close()

	out := []domrec.BrowseRow{}
	for rows.Next() {
		var r domrec.BrowseRow
		var lastTransferred sql.NullString
		if err := rows.Scan(
			&r.BodyID, &r.BodyName, &r.SeriesID, &r.SeriesName,
			&lastTransferred, &r.Consignments, &r.RecordsHeld,
		); err != nil {
			s.failSoft(err)
			return []domrec.BrowseRow{}, 0
		}
		r.LastTransferred = parseNullableDate(lastTransferred)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.failSoft(err)
		return []domrec.BrowseRow{}, 0
	}
	return out, total
}

// ConsignmentFiles lists the files of one consignment, honoring the
// record-status and date filters.
func (s *Store) ConsignmentFiles(
	ctx context.Context, consignmentID string,
	filters browse.Filters, sort browse.SortOrders, limit, offset int,
) ([]domrec.FileRow, int) {
	where := []string{"f.consignment_id = ?", "f.file_type = 'File'"}
	args := []any{consignmentID}

	if status, ok := filters[browse.FilterRecordStatus].(string); ok && status != "all" {
		where = append(where, "f.record_status = ?")
		args = append(args, status)
	}

	dateColumn := "date_last_modified"
	if field, ok := filters[browse.FilterDateField].(string); ok {
		if col, known := dateFilterColumns[field]; known {
			dateColumn = col
		}
	}
	if from, to, ok := dateRangeISO(filters); ok {
		if from != "" {
			where = append(where, "date(f."+dateColumn+") >= date(?)")
			args = append(args, from)
		}
		if to != "" {
			where = append(where, "date(f."+dateColumn+") <= date(?)")
			args = append(args, to)
		}
	}

	q := `
SELECT f.id, f.name, COALESCE(f.record_status, ''), COALESCE(f.closure_type, ''),
       f.date_last_modified, f.opening_date
FROM file f
WHERE ` + strings.Join(where, " AND ")

	total := s.countRows(ctx, q, args)

	q += "\nORDER BY " + orderClause(sort, fileSortColumns, "name ASC")
	q += "\nLIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.failSoft(err)
		return []domrec.FileRow{}, 0
	}
	defer rows.Close()

	out := []domrec.FileRow{}
	for rows.Next() {
		var f domrec.FileRow
		var modified, opening sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &f.RecordStatus, &f.ClosureType, &modified, &opening); err != nil {
			s.failSoft(err)
			return []domrec.FileRow{}, 0
		}
		f.DateLastModified = parseNullableDate(modified)
		f.OpeningDate = parseNullableDate(opening)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		s.failSoft(err)
		return []domrec.FileRow{}, 0
	}
	return out, total
}

// countRows counts the rows a listing query would return before paging.
func (s *Store) countRows(ctx context.Context, listQuery string, args []any) int {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ("+listQuery+")", args...,
	).Scan(&total)
	if err != nil {
		s.failSoft(err)
		return 0
	}
	return total
}

// orderClause resolves a sort request against a column whitelist.
func orderClause(sort browse.SortOrders, columns map[string]string, fallback string) string {
	for field, direction := range sort {
		col, ok := columns[field]
		if !ok {
			continue
		}
		dir := "ASC"
		if direction == "desc" {
			dir = "DESC"
		}
		return col + " " + dir
	}
	return fallback
}

// dateRangeISO pulls the date range filter back out in ISO form.
// Placeholder values from an invalid range parse to "" and are skipped.
func dateRangeISO(filters browse.Filters) (from, to string, ok bool) {
	r, present := filters[browse.FilterDateRange].(map[string]string)
	if !present {
		return "", "", false
	}
	return displayToISO(r["date_from"]), displayToISO(r["date_to"]), true
}
