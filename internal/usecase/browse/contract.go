package browse

import (
	"context"

	dombrowse "github.com/recdex/recdex/internal/domain/browse"
	domrec "github.com/recdex/recdex/internal/domain/records"
)

// Store is the records-store contract for the browse pages. Listing
// methods are fail-soft: on a storage error they answer an empty slice
// and zero total.
type Store interface {
	Browse(ctx context.Context, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.BrowseRow, int)
	BrowseBody(ctx context.Context, bodyID string, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.BrowseRow, int)
	BrowseSeries(ctx context.Context, seriesID string, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.BrowseRow, int)
	ConsignmentFiles(ctx context.Context, consignmentID string, filters dombrowse.Filters, sort dombrowse.SortOrders, limit, offset int) ([]domrec.FileRow, int)

	Body(ctx context.Context, id string) (domrec.Body, error)
	Series(ctx context.Context, id string) (domrec.Series, error)
	Consignment(ctx context.Context, id string) (domrec.Consignment, error)
}
