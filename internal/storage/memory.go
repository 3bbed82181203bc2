package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

type memoryObject struct {
	data        []byte
	contentType string
	disposition string
	metadata    map[string]string
	modified    time.Time
}

// memoryStorage keeps objects in process memory. It is meant for local
// development and tests; nothing survives a restart.
type memoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
	now     func() time.Time
}

// NewMemory creates an in-memory Store whose URLs are rooted at baseURL.
func NewMemory(baseURL string) Store {
	if baseURL == "" {
		baseURL = "memory://docgateway"
	}
	return &memoryStorage{
		objects: make(map[string]memoryObject),
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (m *memoryStorage) Write(ctx context.Context, p WriteParams) (WriteResult, error) {
	if err := validateWrite(p); err != nil {
		return WriteResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return WriteResult{}, &Error{Op: "write", Transient: classifyTransport(err), Err: err}
	}
	data, err := io.ReadAll(p.Body)
	if err != nil {
		return WriteResult{}, &Error{Op: "write", Transient: true, Err: err}
	}

	now := m.now().UTC()
	createdAt := p.CreatedAt.UTC()
	if p.CreatedAt.IsZero() {
		createdAt = now
	}
	key := joinKey(p.Folder, p.PublicID)
	path := objectPath(p.Class, key)

	m.mu.Lock()
	m.objects[path] = memoryObject{
		data:        data,
		contentType: p.ContentType,
		disposition: contentDisposition(p),
		metadata:    encodeMetadata(p, createdAt),
		modified:    now,
	}
	m.mu.Unlock()

	return WriteResult{
		Key:       key,
		URL:       publicURL(m.baseURL, path),
		CreatedAt: createdAt,
		Class:     p.Class,
	}, nil
}

func (m *memoryStorage) Search(ctx context.Context, q SearchQuery) ([]Record, error) {
	if err := validateSearch(q); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "search", Transient: classifyTransport(err), Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for _, class := range lo.Uniq(q.Classes) {
		prefix := classPrefix(class, q.Folder)
		for path, obj := range m.objects {
			if !strings.HasPrefix(path, prefix) {
				continue
			}
			_, key, _ := parseObjectPath(path)
			meta := decodeMetadata(obj.metadata)
			out = append(out, Record{
				Key:         key,
				Class:       class,
				URL:         publicURL(m.baseURL, path),
				ContentType: obj.contentType,
				Size:        int64(len(obj.data)),
				CreatedAt:   createdAtFrom(meta, obj.modified),
				Metadata:    meta,
			})
		}
	}
	return sortAndTrim(out, q.MaxResults), nil
}

// object returns the stored bytes and delivery headers at path.
func (m *memoryStorage) object(path string) (io.Reader, string, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[path]
	if !ok {
		return nil, "", "", false
	}
	return bytes.NewReader(obj.data), obj.contentType, obj.disposition, true
}
