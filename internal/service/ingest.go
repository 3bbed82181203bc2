package service

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"docgateway/internal/classifier"
	"docgateway/internal/config"
	"docgateway/internal/inspect"
	"docgateway/internal/logging"
	"docgateway/internal/metrics"
	"docgateway/internal/model"
	"docgateway/internal/repository"
	"docgateway/internal/storage"
)

// IngestRequest is one uploaded file as received at the boundary.
type IngestRequest struct {
	Data         []byte
	FileName     string
	DeclaredMime string
	Title        string
}

// Ingestor turns an uploaded file into a stored, addressable document.
type Ingestor interface {
	// Ingest classifies, names and stores the file with exactly one blob store write.
	// Errors are *IngestError; match them with errors.Is against ErrNoFile or ErrStoreWriteFailed.
	Ingest(ctx context.Context, req IngestRequest) (*model.StoredDocument, error)
}

type ingestor struct {
	store   storage.Store
	ledger  repository.DocumentRepository
	cfg     config.GatewayConfig
	log     *zap.Logger
	metrics *metrics.Gateway
	now     func() time.Time
}

// NewIngestor constructs an Ingestor writing into cfg.Folder.
// ledger and m may be nil.
func NewIngestor(store storage.Store, ledger repository.DocumentRepository, cfg config.GatewayConfig, log *zap.Logger, m *metrics.Gateway) Ingestor {
	return &ingestor{
		store:   store,
		ledger:  ledger,
		cfg:     cfg,
		log:     log.Named("ingestor"),
		metrics: m,
		now:     time.Now,
	}
}

func (s *ingestor) Ingest(ctx context.Context, req IngestRequest) (*model.StoredDocument, error) {
	ctx, span := tracer.Start(ctx, "Ingestor.Ingest")
	defer span.End()

	if len(req.Data) == 0 {
		s.metrics.Ingested("", metrics.OutcomeNoFile)
		span.SetStatus(codes.Error, ErrNoFile.Error())
		return nil, &IngestError{Kind: IngestNoFile}
	}

	cls := classifier.Classify(req.FileName, req.DeclaredMime)
	createdAt := s.now().UTC().Truncate(time.Millisecond)

	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = cls.TitleSeed
	}
	id := classifier.NewID(createdAt, title)
	if title == "" {
		title = id
	}

	details := inspect.Inspect(req.Data, req.DeclaredMime, cls.Class)
	span.SetAttributes(
		attribute.String("document.id", id),
		attribute.String("document.class", string(cls.Class)),
		attribute.Int("document.size", len(req.Data)),
	)

	meta := map[string]string{storage.MetaTitle: title}
	if req.FileName != "" {
		meta[storage.MetaOriginalFilename] = req.FileName
	}
	if details.Width > 0 && details.Height > 0 {
		meta[storage.MetaWidth] = strconv.Itoa(details.Width)
		meta[storage.MetaHeight] = strconv.Itoa(details.Height)
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	res, err := s.store.Write(writeCtx, storage.WriteParams{
		Folder:      s.cfg.Folder,
		PublicID:    id,
		Class:       cls.Class,
		Body:        bytes.NewReader(req.Data),
		Size:        int64(len(req.Data)),
		ContentType: details.MimeHint,
		Inline:      cls.Class == model.ResourceRaw,
		FileName:    req.FileName,
		CreatedAt:   createdAt,
		Metadata:    meta,
	})
	if err != nil {
		s.metrics.Ingested(string(cls.Class), metrics.OutcomeWriteFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, ErrStoreWriteFailed.Error())
		return nil, &IngestError{Kind: IngestStoreWriteFailed, Cause: err}
	}

	doc := &model.StoredDocument{
		ID:            id,
		Title:         title,
		ResourceClass: cls.Class,
		MimeHint:      details.MimeHint,
		URL:           res.URL,
		CreatedAt:     createdAt,
		Size:          int64(len(req.Data)),
		Width:         details.Width,
		Height:        details.Height,
	}
	if !res.CreatedAt.IsZero() {
		doc.CreatedAt = res.CreatedAt.UTC()
	}
	if res.Class.Valid() {
		doc.ResourceClass = res.Class
	}

	s.metrics.Ingested(string(doc.ResourceClass), metrics.OutcomeStored)
	s.log.Debug("document stored",
		zap.String("id", doc.ID),
		zap.String("class", string(doc.ResourceClass)),
		zap.Int64("size", doc.Size),
	)

	if s.ledger != nil {
		if _, err := s.ledger.Create(ctx, doc); err != nil {
			logging.FromContext(ctx, s.log).Warn("ledger record failed", zap.String("id", doc.ID), zap.Error(err))
		}
	}
	return doc, nil
}
