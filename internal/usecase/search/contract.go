package search

import (
	"context"

	"github.com/recdex/recdex/internal/repository/opensearch"
)

// Repository executes assembled query bodies against the records index.
type Repository interface {
	Search(ctx context.Context, body map[string]any) (*opensearch.Response, error)
	Summary(ctx context.Context, body map[string]any) (int, []opensearch.SummaryBucket, error)
	Get(ctx context.Context, id string) (map[string]any, error)
}

// Cache stores summary responses. Implementations are fail-open: Get
// answers (nil, false) for both a miss and a cache failure.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
}
