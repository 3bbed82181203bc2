package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docgateway/internal/config"
	"docgateway/internal/model"
)

// s3API is the subset of the S3 client used by s3Storage.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// s3Storage implements Store on AWS S3 through aws-sdk-go-v2.
type s3Storage struct {
	client  s3API
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewS3 creates a Store backed by AWS S3 or an S3-compatible endpoint.
// Static credentials are used when provided, otherwise the default AWS chain.
func NewS3(ctx context.Context, cfg config.S3Config, publicBaseURL string) (Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	if publicBaseURL == "" {
		publicBaseURL = defaultS3BaseURL(cfg)
	}
	return &s3Storage{client: client, bucket: cfg.Bucket, baseURL: publicBaseURL, now: time.Now}, nil
}

func defaultS3BaseURL(cfg config.S3Config) string {
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (s *s3Storage) Write(ctx context.Context, p WriteParams) (WriteResult, error) {
	if err := validateWrite(p); err != nil {
		return WriteResult{}, err
	}
	createdAt := p.CreatedAt.UTC()
	if p.CreatedAt.IsZero() {
		createdAt = s.now().UTC()
	}
	key := joinKey(p.Folder, p.PublicID)
	path := objectPath(p.Class, key)

	in := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(path),
		Body:     p.Body,
		Metadata: encodeMetadata(p, createdAt),
	}
	if p.Size >= 0 {
		in.ContentLength = aws.Int64(p.Size)
	}
	if p.ContentType != "" {
		in.ContentType = aws.String(p.ContentType)
	}
	if cd := contentDisposition(p); cd != "" {
		in.ContentDisposition = aws.String(cd)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return WriteResult{}, s3Error("write", err)
	}
	return WriteResult{
		Key:       key,
		URL:       publicURL(s.baseURL, path),
		CreatedAt: createdAt,
		Class:     p.Class,
	}, nil
}

type s3Candidate struct {
	class    model.ResourceClass
	path     string
	size     int64
	modified time.Time
	// sortAt approximates the recorded creation time before metadata is read.
	sortAt time.Time
}

func newS3Candidate(class model.ResourceClass, path string, size int64, modified time.Time) s3Candidate {
	sortAt, ok := createdAtFromKey(path)
	if !ok {
		sortAt = modified.UTC()
	}
	return s3Candidate{class: class, path: path, size: size, modified: modified, sortAt: sortAt}
}

// Search lists keys under each class prefix, keeps the newest MaxResults, then
// reads their metadata. S3 listings carry no user metadata, so candidates are
// ordered by the creation time embedded in the id and fall back to the
// modification time for keys without one. This bounds HEAD requests to MaxResults.
func (s *s3Storage) Search(ctx context.Context, q SearchQuery) ([]Record, error) {
	if err := validateSearch(q); err != nil {
		return nil, err
	}

	var candidates []s3Candidate
	for _, class := range lo.Uniq(q.Classes) {
		p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(classPrefix(class, q.Folder)),
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, s3Error("search", err)
			}
			for _, obj := range page.Contents {
				candidates = append(candidates, newS3Candidate(
					class, aws.ToString(obj.Key), aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified),
				))
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].sortAt.After(candidates[j].sortAt)
	})
	if len(candidates) > q.MaxResults {
		candidates = candidates[:q.MaxResults]
	}

	out := make([]Record, 0, len(candidates))
	for _, c := range candidates {
		_, key, ok := parseObjectPath(c.path)
		if !ok {
			continue
		}
		head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(c.path),
		})
		if err != nil {
			return nil, s3Error("search", err)
		}
		meta := decodeMetadata(head.Metadata)
		out = append(out, Record{
			Key:         key,
			Class:       c.class,
			URL:         publicURL(s.baseURL, c.path),
			ContentType: aws.ToString(head.ContentType),
			Size:        c.size,
			CreatedAt:   createdAtFrom(meta, c.modified),
			Metadata:    meta,
		})
	}
	return sortAndTrim(out, q.MaxResults), nil
}

func s3Error(op string, err error) error {
	var status int
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		status = re.HTTPStatusCode()
	}
	var code string
	var ae smithy.APIError
	if errors.As(err, &ae) {
		code = ae.ErrorCode()
	}
	if status != 0 || code != "" {
		return &Error{Op: op, Transient: classifyResponse(status, code), Err: err}
	}
	return &Error{Op: op, Transient: classifyTransport(err), Err: err}
}
