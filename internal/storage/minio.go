package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docgateway/internal/config"
	"docgateway/internal/model"
)

// minioStorage implements Store using an S3-compatible backend (MinIO, AWS S3, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client  *minio.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewMinIO creates a new Store backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing),
// retrying a few times so the gateway can start alongside a booting MinIO.
func NewMinIO(cfg config.MinIOConfig, publicBaseURL string) (Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	if publicBaseURL == "" {
		publicBaseURL = strings.TrimRight(cli.EndpointURL().String(), "/") + "/" + cfg.Bucket
	}
	ms := &minioStorage{client: cli, bucket: cfg.Bucket, baseURL: publicBaseURL, now: time.Now}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = retry.Do(
		func() error { return ms.ensureBucket(ctx) },
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(IsTransient),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}
	return ms, nil
}

func (m *minioStorage) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return minioError("check bucket existence", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return minioError("create bucket", err)
	}
	return nil
}

// Write uploads an object using streaming I/O only (no local disk).
func (m *minioStorage) Write(ctx context.Context, p WriteParams) (WriteResult, error) {
	if err := validateWrite(p); err != nil {
		return WriteResult{}, err
	}
	createdAt := p.CreatedAt.UTC()
	if p.CreatedAt.IsZero() {
		createdAt = m.now().UTC()
	}
	key := joinKey(p.Folder, p.PublicID)
	path := objectPath(p.Class, key)

	putOpts := minio.PutObjectOptions{
		ContentType:        p.ContentType,
		ContentDisposition: contentDisposition(p),
		UserMetadata:       encodeMetadata(p, createdAt),
	}
	if _, err := m.client.PutObject(ctx, m.bucket, path, p.Body, p.Size, putOpts); err != nil {
		return WriteResult{}, minioError("write", err)
	}
	return WriteResult{
		Key:       key,
		URL:       publicURL(m.baseURL, path),
		CreatedAt: createdAt,
		Class:     p.Class,
	}, nil
}

// Search lists each class prefix with metadata in one pass per class.
// S3 listings are ordered by key, so ordering by creation time happens here.
// The listing walks the whole prefix; each class is trimmed to MaxResults as
// soon as it is read, so at most one class listing plus the kept records are
// held at a time.
func (m *minioStorage) Search(ctx context.Context, q SearchQuery) ([]Record, error) {
	if err := validateSearch(q); err != nil {
		return nil, err
	}

	var out []Record
	for _, class := range lo.Uniq(q.Classes) {
		recs, err := m.listClass(ctx, class, q.Folder)
		if err != nil {
			return nil, err
		}
		out = append(out, sortAndTrim(recs, q.MaxResults)...)
	}
	return sortAndTrim(out, q.MaxResults), nil
}

func (m *minioStorage) listClass(ctx context.Context, class model.ResourceClass, folder string) ([]Record, error) {
	// Cancelling on return stops the lister goroutine if we bail out early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:       classPrefix(class, folder),
		Recursive:    true,
		WithMetadata: true,
	})

	var out []Record
	for obj := range objects {
		if obj.Err != nil {
			return nil, minioError("search", obj.Err)
		}
		_, key, ok := parseObjectPath(obj.Key)
		if !ok {
			continue
		}
		meta := decodeMetadata(obj.UserMetadata)
		contentType := obj.ContentType
		if contentType == "" {
			contentType = meta["content-type"]
		}
		out = append(out, Record{
			Key:         key,
			Class:       class,
			URL:         publicURL(m.baseURL, obj.Key),
			ContentType: contentType,
			Size:        obj.Size,
			CreatedAt:   createdAtFrom(meta, obj.LastModified),
			Metadata:    meta,
		})
	}
	return out, nil
}

func minioError(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode != 0 || resp.Code != "" {
		return &Error{Op: op, Transient: classifyResponse(resp.StatusCode, resp.Code), Err: err}
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Transient: classifyTransport(err), Err: err}
}
