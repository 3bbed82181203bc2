package postgres

import (
	"context"
	"database/sql"

	"docgateway/internal/model"
	"docgateway/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title, resource_class, mime_hint, url, size, width, height, created_at`

// Create inserts a new ledger row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.StoredDocument) (*model.StoredDocument, error) {
	const q = `
		INSERT INTO stored_documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		string(doc.ResourceClass),
		doc.MimeHint,
		doc.URL,
		doc.Size,
		doc.Width,
		doc.Height,
		doc.CreatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single ledger row by public id.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.StoredDocument, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM stored_documents
		WHERE id = $1
	`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

func scanDocument(row *sql.Row) (*model.StoredDocument, error) {
	var (
		d     model.StoredDocument
		class string
	)
	if err := row.Scan(
		&d.ID,
		&d.Title,
		&class,
		&d.MimeHint,
		&d.URL,
		&d.Size,
		&d.Width,
		&d.Height,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	d.ResourceClass = model.ResourceClass(class)
	d.CreatedAt = d.CreatedAt.UTC()
	return &d, nil
}
