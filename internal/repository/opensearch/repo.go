// Package opensearch executes the query bodies built by domain/search
// against the records index and converts raw responses into the shapes
// the search use case consumes.
package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	osclient "github.com/opensearch-project/opensearch-go/v4"
	osapi "github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/recdex/recdex/internal/domain"
)

// Config holds connection parameters for the search cluster.
type Config struct {
	Addrs    []string
	Username string
	Password string
	Index    string
	Timeout  time.Duration
}

// Repo runs searches against one records index.
type Repo struct {
	client  *osclient.Client
	index   string
	timeout time.Duration
}

// New creates a search repository.
func New(cfg Config) (*Repo, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("index is required")
	}

	client, err := osclient.NewClient(osclient.Config{
		Addresses: cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Repo{client: client, index: cfg.Index, timeout: timeout}, nil
}

// Hit is one raw search hit.
type Hit struct {
	ID        string              `json:"_id"`
	Score     float64             `json:"_score"`
	Source    map[string]any      `json:"_source"`
	Highlight map[string][]string `json:"highlight"`
}

// Response is a parsed search response.
type Response struct {
	Total int
	Hits  []Hit
}

// SummaryBucket is one transferring body's share of the result count.
type SummaryBucket struct {
	BodyID  string
	Name    string
	Records int
}

// searchResponse mirrors the slice of the _search reply we consume.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
	Aggregations struct {
		ByBody struct {
			Buckets []struct {
				Key      string `json:"key"`
				DocCount int    `json:"doc_count"`
				TopHits  struct {
					Hits struct {
						Hits []struct {
							Source map[string]any `json:"_source"`
						} `json:"hits"`
					} `json:"hits"`
				} `json:"top_transferring_body_hits"`
			} `json:"buckets"`
		} `json:"aggregate_by_transferring_body"`
	} `json:"aggregations"`
}

// Search runs a query body against the index and returns hits.
func (r *Repo) Search(ctx context.Context, body map[string]any) (*Response, error) {
	parsed, err := r.execute(ctx, body)
	if err != nil {
		return nil, err
	}
	return &Response{
		Total: parsed.Hits.Total.Value,
		Hits:  parsed.Hits.Hits,
	}, nil
}

// Summary runs a summary aggregation body and returns the per-body
// buckets alongside the overall hit total.
func (r *Repo) Summary(ctx context.Context, body map[string]any) (int, []SummaryBucket, error) {
	parsed, err := r.execute(ctx, body)
	if err != nil {
		return 0, nil, err
	}

	buckets := make([]SummaryBucket, 0, len(parsed.Aggregations.ByBody.Buckets))
	for _, b := range parsed.Aggregations.ByBody.Buckets {
		bucket := SummaryBucket{BodyID: b.Key, Records: b.DocCount}
		if hits := b.TopHits.Hits.Hits; len(hits) > 0 {
			if name, ok := hits[0].Source["transferring_body"].(string); ok {
				bucket.Name = name
			}
		}
		buckets = append(buckets, bucket)
	}
	return parsed.Hits.Total.Value, buckets, nil
}

// Get fetches one record document by id. Returns domain.ErrNotFound for
// unknown ids.
func (r *Repo) Get(ctx context.Context, id string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out osapi.DocumentGetResp
	res, err := r.client.Do(ctx, osapi.DocumentGetReq{Index: r.index, DocumentID: id}, &out)
	if res != nil {
		defer func() { _ = res.Body.Close() }()
	}
	if err != nil {
		if res != nil && res.StatusCode == 404 {
			return nil, domain.ErrNotFound
		}
		return nil, classify(err)
	}
	if (res != nil && res.StatusCode == 404) || !out.Found {
		return nil, domain.ErrNotFound
	}

	var source map[string]any
	if err := json.Unmarshal(out.Source, &source); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return source, nil
}

// Ping checks cluster reachability.
func (r *Repo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.client.Do(ctx, osapi.PingReq{}, nil)
	if res != nil {
		defer func() { _ = res.Body.Close() }()
	}
	if err != nil {
		return classify(err)
	}
	if res.StatusCode >= 300 {
		return fmt.Errorf("%w: ping status %d", domain.ErrSearchUnavailable, res.StatusCode)
	}
	return nil
}

func (r *Repo) execute(ctx context.Context, body map[string]any) (*searchResponse, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var parsed searchResponse
	res, err := r.client.Do(ctx, osapi.SearchReq{
		Indices: []string{r.index},
		Body:    bytes.NewReader(raw),
	}, &parsed)
	if res != nil {
		defer func() { _ = res.Body.Close() }()
	}
	if err != nil {
		return nil, classify(err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: search status %d", domain.ErrSearchUnavailable, res.StatusCode)
	}
	return &parsed, nil
}

// classify maps transport failures onto domain sentinels: timeouts
// become ErrSearchTimeout (surfaced as 504), everything else
// ErrSearchUnavailable.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrSearchTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrSearchTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
}
