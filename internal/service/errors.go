package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoFile            = errors.New("no file provided")
	ErrStoreWriteFailed  = errors.New("blob store write failed")
	ErrUnavailable       = errors.New("blob store unavailable")
	ErrIDRequired        = errors.New("id is required")
	ErrNotFound          = errors.New("document not found")
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)

// IngestErrorKind classifies why an ingestion was rejected.
type IngestErrorKind int

const (
	IngestNoFile IngestErrorKind = iota + 1
	IngestStoreWriteFailed
)

func (k IngestErrorKind) String() string {
	switch k {
	case IngestNoFile:
		return "no_file"
	case IngestStoreWriteFailed:
		return "store_write_failed"
	default:
		return "unknown"
	}
}

// IngestError is returned by Ingestor.Ingest. Cause is the backend failure, if any,
// and is meant for logs only.
type IngestError struct {
	Kind  IngestErrorKind
	Cause error
}

func (e *IngestError) Error() string {
	if e.Cause == nil {
		return "ingest: " + e.Kind.String()
	}
	return fmt.Sprintf("ingest: %s: %v", e.Kind, e.Cause)
}

func (e *IngestError) Unwrap() error { return e.Cause }

// Is lets callers match on the sentinel for the error's kind.
func (e *IngestError) Is(target error) bool {
	switch target {
	case ErrNoFile:
		return e.Kind == IngestNoFile
	case ErrStoreWriteFailed:
		return e.Kind == IngestStoreWriteFailed
	}
	return false
}

// RetrievalErrorKind classifies why a listing failed.
type RetrievalErrorKind int

const (
	RetrievalUnavailable RetrievalErrorKind = iota + 1
)

func (k RetrievalErrorKind) String() string {
	if k == RetrievalUnavailable {
		return "unavailable"
	}
	return "unknown"
}

// RetrievalError is returned by Lister.List when the blob store rejected the
// search outright. Transient failures never surface as errors.
type RetrievalError struct {
	Kind  RetrievalErrorKind
	Cause error
}

func (e *RetrievalError) Error() string {
	if e.Cause == nil {
		return "retrieval: " + e.Kind.String()
	}
	return fmt.Sprintf("retrieval: %s: %v", e.Kind, e.Cause)
}

func (e *RetrievalError) Unwrap() error { return e.Cause }

func (e *RetrievalError) Is(target error) bool {
	return target == ErrUnavailable && e.Kind == RetrievalUnavailable
}
