package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/recdex/recdex/internal/domain/search/query"
	"github.com/recdex/recdex/internal/repository/opensearch"
)

type fakeRepo struct {
	lastBody map[string]any

	searchResp *opensearch.Response
	searchErr  error

	summaryTotal   int
	summaryBuckets []opensearch.SummaryBucket
	summaryErr     error
	summaryCalls   int

	getSource map[string]any
	getErr    error
}

func (f *fakeRepo) Search(_ context.Context, body map[string]any) (*opensearch.Response, error) {
	f.lastBody = body
	return f.searchResp, f.searchErr
}

func (f *fakeRepo) Summary(_ context.Context, body map[string]any) (int, []opensearch.SummaryBucket, error) {
	f.lastBody = body
	f.summaryCalls++
	return f.summaryTotal, f.summaryBuckets, f.summaryErr
}

func (f *fakeRepo) Get(_ context.Context, _ string) (map[string]any, error) {
	return f.getSource, f.getErr
}

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte) {
	f.entries[key] = value
}

func TestSummary_EmptyQuerySkipsIndex(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, query.HighlightTags{}, zap.NewNop())

	out, err := svc.Summary(context.Background(), Params{Query: "  , + "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 0 || len(out.Bodies) != 0 {
		t.Errorf("out = %+v, want empty", out)
	}
	if repo.summaryCalls != 0 {
		t.Errorf("summary calls = %d, want 0", repo.summaryCalls)
	}
}

func TestSummary_ReturnsBucketsAndCaches(t *testing.T) {
	repo := &fakeRepo{
		summaryTotal: 7,
		summaryBuckets: []opensearch.SummaryBucket{
			{BodyID: "b1", Name: "Ministry of Works", Records: 5},
			{BodyID: "b2", Name: "Forestry Commission", Records: 2},
		},
	}
	cache := newFakeCache()
	svc := New(repo, cache, query.HighlightTags{}, zap.NewNop())

	out, err := svc.Summary(context.Background(), Params{Query: "census"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 7 || len(out.Bodies) != 2 {
		t.Fatalf("out = %+v", out)
	}

	// Second identical call must be served from the cache.
	again, err := svc.Summary(context.Background(), Params{Query: "census"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.summaryCalls != 1 {
		t.Errorf("summary calls = %d, want 1", repo.summaryCalls)
	}
	if again.Total != out.Total || len(again.Bodies) != len(out.Bodies) {
		t.Errorf("cached = %+v, want %+v", again, out)
	}
}

func TestSummary_RepoErrorPropagates(t *testing.T) {
	repo := &fakeRepo{summaryErr: errors.New("cluster down")}
	svc := New(repo, nil, query.HighlightTags{}, zap.NewNop())

	if _, err := svc.Summary(context.Background(), Params{Query: "census"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBody_BuildsPagedQuery(t *testing.T) {
	repo := &fakeRepo{searchResp: &opensearch.Response{Total: 25}}
	svc := New(repo, nil, query.HighlightTags{}, zap.NewNop())

	out, err := svc.Body(context.Background(), "b1", Params{
		Query: "census", Page: 3, PerPage: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.lastBody["from"] != 10 || repo.lastBody["size"] != 5 {
		t.Errorf("from/size = %v/%v", repo.lastBody["from"], repo.lastBody["size"])
	}
	if out.Total != 25 || out.TotalPages != 5 {
		t.Errorf("total = %d, pages = %d", out.Total, out.TotalPages)
	}
	if out.Pagination == nil {
		t.Fatal("expected pagination window")
	}
	if out.Pagination.Previous == nil || *out.Pagination.Previous != 2 {
		t.Errorf("previous = %v", out.Pagination.Previous)
	}
}

func TestBody_PostProcessesHits(t *testing.T) {
	repo := &fakeRepo{searchResp: &opensearch.Response{
		Total: 1,
		Hits: []opensearch.Hit{{
			ID:    "r1",
			Score: 2.5,
			Source: map[string]any{
				"file_name":          "report.pdf",
				"date_last_modified": "2023-02-10T00:00:00",
			},
			Highlight: map[string][]string{
				"content":   {"the <mark>census</mark> of 1901"},
				"file_name": {"<mark>census</mark>.pdf"},
				"_internal": {"never shown"},
			},
		}},
	}}
	svc := New(repo, nil, query.HighlightTags{}, zap.NewNop())

	out, err := svc.Body(context.Background(), "b1", Params{Query: "census", Sort: "metadata"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Hits) != 1 {
		t.Fatalf("hits = %d", len(out.Hits))
	}

	hit := out.Hits[0]
	if hit.ID != "r1" || hit.Score != 2.5 {
		t.Errorf("hit = %+v", hit)
	}
	if got := hit.Source["date_last_modified"]; got != "10/02/2023" {
		t.Errorf("date = %v", got)
	}
	if len(hit.Highlights) != 2 {
		t.Fatalf("highlights = %+v", hit.Highlights)
	}
	// Metadata sort pushes the record fields to the back, file_name first.
	if hit.Highlights[0].Field != "file_name" || hit.Highlights[1].Field != "content" {
		t.Errorf("highlight order = %s, %s", hit.Highlights[0].Field, hit.Highlights[1].Field)
	}
}

func TestBody_EmptyQuery(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, query.HighlightTags{}, zap.NewNop())

	out, err := svc.Body(context.Background(), "b1", Params{Query: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Total != 0 || len(out.Hits) != 0 || out.Pagination != nil {
		t.Errorf("out = %+v, want empty", out)
	}
	if repo.lastBody != nil {
		t.Error("index should not be queried for an empty query")
	}
}

func TestRecord_FormatsDates(t *testing.T) {
	repo := &fakeRepo{getSource: map[string]any{
		"file_name":    "report.pdf",
		"opening_date": "2051-01-01T00:00:00",
	}}
	svc := New(repo, nil, query.HighlightTags{}, zap.NewNop())

	source, err := svc.Record(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source["opening_date"] != "01/01/2051" {
		t.Errorf("opening_date = %v", source["opening_date"])
	}
}
