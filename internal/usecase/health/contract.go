package health

import "context"

// SearchPinger checks search cluster availability.
type SearchPinger interface {
	Ping(ctx context.Context) error
}

// DBPinger checks records database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
