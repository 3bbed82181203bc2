// Package storage is the blob store seam of the gateway. Implementations
// address objects only through the layout defined in layout.go, so backends
// can be swapped without changing ingestion or retrieval.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"docgateway/internal/model"
)

// SortOrder selects how Search orders its results.
type SortOrder string

// SortCreatedAtDesc orders records newest first by creation time.
const SortCreatedAtDesc SortOrder = "created_at_desc"

// WriteParams describe a single object write.
// Metadata values are plain text; implementations encode them as needed for their transport.
type WriteParams struct {
	Folder      string
	PublicID    string
	Class       model.ResourceClass
	Body        io.Reader
	Size        int64
	ContentType string
	// Inline marks the object for in-browser display rather than forced download.
	Inline   bool
	FileName string
	// CreatedAt is persisted with the object and echoed back; zero means "now".
	CreatedAt time.Time
	Metadata  map[string]string
}

// WriteResult is what the store echoes back after a successful write.
type WriteResult struct {
	Key       string
	URL       string
	CreatedAt time.Time
	Class     model.ResourceClass
}

// SearchQuery scopes a listing to one folder and a set of resource classes.
type SearchQuery struct {
	Folder     string
	Classes    []model.ResourceClass
	MaxResults int
	SortBy     SortOrder
}

// Record is a raw listing entry. Key is "<folder>/<publicID>" and Class is the
// resource type the object was stored under.
type Record struct {
	Key         string
	Class       model.ResourceClass
	URL         string
	ContentType string
	Size        int64
	CreatedAt   time.Time
	Metadata    map[string]string
}

// Store is a durable blob store with metadata tagging and listing.
// Implementations are safe for concurrent use by multiple goroutines.
type Store interface {
	// Write stores one object. It is never retried by the implementation.
	Write(ctx context.Context, p WriteParams) (WriteResult, error)
	// Search lists records in the query's folder across the requested classes,
	// ordered per SortBy and truncated to MaxResults.
	Search(ctx context.Context, q SearchQuery) ([]Record, error)
}

var (
	ErrMaxResultsRequired = errors.New("max results must be positive")
	ErrUnsupportedSort    = errors.New("unsupported sort order")
	ErrInvalidClass       = errors.New("invalid resource class")
)

func validateWrite(p WriteParams) error {
	if !p.Class.Valid() {
		return &Error{Op: "write", Err: ErrInvalidClass}
	}
	return nil
}

func validateSearch(q SearchQuery) error {
	if q.MaxResults <= 0 {
		return &Error{Op: "search", Err: ErrMaxResultsRequired}
	}
	if q.SortBy != "" && q.SortBy != SortCreatedAtDesc {
		return &Error{Op: "search", Err: ErrUnsupportedSort}
	}
	for _, c := range q.Classes {
		if !c.Valid() {
			return &Error{Op: "search", Err: ErrInvalidClass}
		}
	}
	return nil
}
