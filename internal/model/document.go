package model

import "time"

// ResourceClass is the storage-level category a document was written under.
// It decides whether a later fetch renders as an image or is served as a generic binary.
type ResourceClass string

const (
	ResourceImage ResourceClass = "image"
	ResourceRaw   ResourceClass = "raw"
)

// Valid reports whether c is one of the known resource classes.
func (c ResourceClass) Valid() bool {
	return c == ResourceImage || c == ResourceRaw
}

// StoredDocument is the caller-facing view of a file held in the blob store.
// It is write-once: nothing in the gateway mutates a document after ingestion.
type StoredDocument struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	ResourceClass ResourceClass `json:"resource_class"`
	MimeHint      string        `json:"mime_hint"`
	URL           string        `json:"url"`
	CreatedAt     time.Time     `json:"created_at"`
	Size          int64         `json:"size,omitempty"`
	Width         int           `json:"width,omitempty"`
	Height        int           `json:"height,omitempty"`
}
