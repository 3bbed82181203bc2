package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docgateway/internal/model"
	"docgateway/internal/repository"
)

// Finder looks up a single ingested document in the ledger.
type Finder interface {
	Get(ctx context.Context, id string) (*model.StoredDocument, error)
}

type ledgerFinder struct {
	repo repository.DocumentRepository
}

// NewFinder constructs a Finder backed by the ingestion ledger.
func NewFinder(repo repository.DocumentRepository) Finder {
	return &ledgerFinder{repo: repo}
}

// Get returns a document by id, or ErrNotFound when the ledger has no such row.
// Any other ledger failure wraps ErrLedgerUnavailable.
func (f *ledgerFinder) Get(ctx context.Context, id string) (*model.StoredDocument, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	ctx, span := tracer.Start(ctx, "Finder.Get")
	defer span.End()

	doc, err := f.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrLedgerUnavailable, err)
	}
	return doc, nil
}
