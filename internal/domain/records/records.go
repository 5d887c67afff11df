// Package records holds the relational-side value types for the
// body → series → consignment → file hierarchy browsed by users.
package records

import "time"

// Body is an organization that transferred records into the archive.
type Body struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Series is a record series within a transferring body.
type Series struct {
	ID     string `json:"id"`
	BodyID string `json:"body_id"`
	Name   string `json:"name"`
}

// Consignment is a batch of files transferred together.
type Consignment struct {
	ID           string     `json:"id"`
	SeriesID     string     `json:"series_id"`
	Reference    string     `json:"reference"`
	TransferDate *time.Time `json:"transfer_date,omitempty"`
}

// BrowseRow is one row of the browse listing: a series with its
// aggregate transfer history.
type BrowseRow struct {
	BodyID          string     `json:"body_id"`
	BodyName        string     `json:"body_name"`
	SeriesID        string     `json:"series_id"`
	SeriesName      string     `json:"series_name"`
	LastTransferred *time.Time `json:"last_record_transferred,omitempty"`
	Consignments    int        `json:"consignments"`
	RecordsHeld     int        `json:"records_held"`
}

// FileRow is one file inside a consignment view.
type FileRow struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	RecordStatus     string     `json:"record_status,omitempty"`
	ClosureType      string     `json:"closure_type,omitempty"`
	DateLastModified *time.Time `json:"date_last_modified,omitempty"`
	OpeningDate      *time.Time `json:"opening_date,omitempty"`
}
