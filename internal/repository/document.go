// Package repository contains data access abstractions for the ingestion ledger.
// Implementations live in subpackages (e.g., postgres).
package repository

import (
	"context"

	"docgateway/internal/model"
)

// DocumentRepository records ingested documents using SQL queries only.
// The blob store stays the source of truth; the ledger is an append-only audit of writes.
type DocumentRepository interface {
	// Create inserts a new ledger row and returns the stored record.
	Create(ctx context.Context, doc *model.StoredDocument) (*model.StoredDocument, error)

	// FindByID returns a document by its public id. A missing row yields sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.StoredDocument, error)
}
