package service

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"docgateway/internal/classifier"
	"docgateway/internal/config"
	"docgateway/internal/logging"
	"docgateway/internal/metrics"
	"docgateway/internal/model"
	"docgateway/internal/storage"
)

// listedClasses are searched together so images and PDFs share one feed.
var listedClasses = []model.ResourceClass{model.ResourceImage, model.ResourceRaw}

// Lister produces the newest-first document feed.
type Lister interface {
	// List returns at most maxResults documents. maxResults <= 0 means the configured
	// default; larger values are clamped to the configured cap. A temporarily unavailable
	// store yields an empty feed and no error.
	List(ctx context.Context, maxResults int) ([]model.StoredDocument, error)
}

type aggregator struct {
	store      storage.Store
	cfg        config.GatewayConfig
	log        *zap.Logger
	metrics    *metrics.Gateway
	titleRules []titleRule
}

// titleRule yields a display title for a record, or false to defer to the next rule.
type titleRule func(rec storage.Record) (string, bool)

// NewAggregator constructs a Lister over cfg.Folder. m may be nil.
func NewAggregator(store storage.Store, cfg config.GatewayConfig, log *zap.Logger, m *metrics.Gateway) Lister {
	a := &aggregator{
		store:   store,
		cfg:     cfg,
		log:     log.Named("aggregator"),
		metrics: m,
	}
	a.titleRules = []titleRule{
		metadataTitle,
		func(rec storage.Record) (string, bool) { return classifier.TitleFromKey(rec.Key, cfg.Folder) },
		func(rec storage.Record) (string, bool) { return rec.Key, true },
	}
	return a
}

func (a *aggregator) List(ctx context.Context, maxResults int) ([]model.StoredDocument, error) {
	ctx, span := tracer.Start(ctx, "Aggregator.List")
	defer span.End()

	n := a.effectiveMax(maxResults)
	span.SetAttributes(attribute.Int("list.max_results", n))

	recs, err := a.store.Search(ctx, storage.SearchQuery{
		Folder:     a.cfg.Folder,
		Classes:    listedClasses,
		MaxResults: n,
		SortBy:     storage.SortCreatedAtDesc,
	})
	if err != nil {
		span.RecordError(err)
		if storage.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
			a.metrics.ListDegraded()
			logging.FromContext(ctx, a.log).Warn("listing degraded to empty feed", zap.Error(err))
			return []model.StoredDocument{}, nil
		}
		a.metrics.ListFailed()
		span.SetStatus(codes.Error, ErrUnavailable.Error())
		return nil, &RetrievalError{Kind: RetrievalUnavailable, Cause: err}
	}

	return lo.Map(recs, func(rec storage.Record, _ int) model.StoredDocument {
		return a.normalize(rec)
	}), nil
}

func (a *aggregator) effectiveMax(requested int) int {
	switch {
	case requested <= 0:
		return a.cfg.DefaultMaxResults
	case requested > a.cfg.MaxResultsCap:
		return a.cfg.MaxResultsCap
	default:
		return requested
	}
}

func (a *aggregator) normalize(rec storage.Record) model.StoredDocument {
	doc := model.StoredDocument{
		ID:            strings.TrimPrefix(rec.Key, a.cfg.Folder+"/"),
		ResourceClass: rec.Class,
		MimeHint:      rec.ContentType,
		URL:           rec.URL,
		CreatedAt:     rec.CreatedAt.UTC(),
		Size:          rec.Size,
		Width:         cast.ToInt(rec.Metadata[storage.MetaWidth]),
		Height:        cast.ToInt(rec.Metadata[storage.MetaHeight]),
	}
	for _, rule := range a.titleRules {
		if title, ok := rule(rec); ok {
			doc.Title = title
			break
		}
	}
	return doc
}

func metadataTitle(rec storage.Record) (string, bool) {
	title := rec.Metadata[storage.MetaTitle]
	return title, strings.TrimSpace(title) != ""
}
