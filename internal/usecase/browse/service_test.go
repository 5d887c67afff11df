package browse

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/recdex/recdex/internal/domain"
	dombrowse "github.com/recdex/recdex/internal/domain/browse"
	domrec "github.com/recdex/recdex/internal/domain/records"
)

type fakeStore struct {
	rows  []domrec.BrowseRow
	files []domrec.FileRow
	total int

	lastFilters dombrowse.Filters
	lastSort    dombrowse.SortOrders
	lastLimit   int
	lastOffset  int

	body        domrec.Body
	bodyErr     error
	series      domrec.Series
	seriesErr   error
	consignment domrec.Consignment
	consErr     error
}

func (f *fakeStore) record(filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) {
	f.lastFilters, f.lastSort, f.lastLimit, f.lastOffset = filters, sort, limit, offset
}

func (f *fakeStore) Browse(_ context.Context, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.BrowseRow, int) {
	f.record(filters, sort, limit, offset)
	return f.rows, f.total
}

func (f *fakeStore) BrowseBody(_ context.Context, _ string, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.BrowseRow, int) {
	f.record(filters, sort, limit, offset)
	return f.rows, f.total
}

func (f *fakeStore) BrowseSeries(_ context.Context, _ string, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.BrowseRow, int) {
	f.record(filters, sort, limit, offset)
	return f.rows, f.total
}

func (f *fakeStore) ConsignmentFiles(_ context.Context, _ string, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.FileRow, int) {
	f.record(filters, sort, limit, offset)
	return f.files, f.total
}

func (f *fakeStore) Body(_ context.Context, _ string) (domrec.Body, error) {
	return f.body, f.bodyErr
}

func (f *fakeStore) Series(_ context.Context, _ string) (domrec.Series, error) {
	return f.series, f.seriesErr
}

func (f *fakeStore) Consignment(_ context.Context, _ string) (domrec.Consignment, error) {
	return f.consignment, f.consErr
}

func TestAll_PagingAndFilters(t *testing.T) {
	store := &fakeStore{
		rows:  []domrec.BrowseRow{{SeriesName: "MOW 1"}},
		total: 60,
	}
	svc := New(store)

	out, err := svc.All(context.Background(), Params{
		Values: url.Values{
			dombrowse.ParamTransferringBody: {"Ministry"},
			dombrowse.ParamSort:             {"series-desc"},
		},
		Page:    2,
		PerPage: 25,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.lastLimit != 25 || store.lastOffset != 25 {
		t.Errorf("limit/offset = %d/%d", store.lastLimit, store.lastOffset)
	}
	if store.lastFilters[dombrowse.FilterTransferringBody] != "ministry" {
		t.Errorf("filters = %+v", store.lastFilters)
	}
	if store.lastSort["series"] != "desc" {
		t.Errorf("sort = %+v", store.lastSort)
	}
	if out.Total != 60 || out.TotalPages != 3 {
		t.Errorf("total = %d, pages = %d", out.Total, out.TotalPages)
	}
	if out.Pagination == nil || out.Pagination.Next == nil || *out.Pagination.Next != 3 {
		t.Errorf("pagination = %+v", out.Pagination)
	}
}

func TestAll_InvalidDateRange(t *testing.T) {
	svc := New(&fakeStore{})

	_, err := svc.All(context.Background(), Params{Values: url.Values{
		"date_from_year": {"next year"},
	}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Errors["date_from"]) == 0 {
		t.Errorf("errors = %+v", verr.Errors)
	}
	if len(verr.Fields) == 0 {
		t.Errorf("fields = %+v", verr.Fields)
	}
}

func TestForBody_UnknownBody(t *testing.T) {
	svc := New(&fakeStore{bodyErr: domain.ErrNotFound})

	_, err := svc.ForBody(context.Background(), "nope", Params{Values: url.Values{}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestForBody_ReturnsBody(t *testing.T) {
	store := &fakeStore{
		body:  domrec.Body{ID: "b1", Name: "Ministry of Works"},
		rows:  []domrec.BrowseRow{{BodyID: "b1"}},
		total: 1,
	}
	svc := New(store)

	out, err := svc.ForBody(context.Background(), "b1", Params{Values: url.Values{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Body.Name != "Ministry of Works" || len(out.Rows) != 1 {
		t.Errorf("out = %+v", out)
	}
	if out.Pagination != nil {
		t.Errorf("pagination = %+v, want nil for one page", out.Pagination)
	}
}

func TestFiles_OpeningDateSkipsFutureCheck(t *testing.T) {
	store := &fakeStore{
		consignment: domrec.Consignment{ID: "c1", Reference: "TDR-2023-GXFH"},
		files:       []domrec.FileRow{{Name: "minutes.docx"}},
		total:       1,
	}
	svc := New(store)

	out, err := svc.Files(context.Background(), "c1", Params{Values: url.Values{
		dombrowse.ParamDateField: {"opening_date"},
		"date_from_year":         {"2049"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Consignment.Reference != "TDR-2023-GXFH" || len(out.Files) != 1 {
		t.Errorf("out = %+v", out)
	}

	r, ok := store.lastFilters[dombrowse.FilterDateRange].(map[string]string)
	if !ok || r["date_from"] != "01/01/2049" {
		t.Errorf("date range = %+v", store.lastFilters[dombrowse.FilterDateRange])
	}
}

func TestFiles_FutureDateRejectedOnModifiedDate(t *testing.T) {
	store := &fakeStore{consignment: domrec.Consignment{ID: "c1"}}
	svc := New(store)

	_, err := svc.Files(context.Background(), "c1", Params{Values: url.Values{
		"date_from_day":   {"1"},
		"date_from_month": {"1"},
		"date_from_year":  {"2049"},
	}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
