package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docgateway/internal/classifier"
	"docgateway/internal/model"
	"docgateway/internal/service"
)

// DegradedHeader is set on listing responses that were answered with an empty
// feed because the blob store could not be searched.
const DegradedHeader = "X-Listing-Degraded"

// Services are the use cases exposed over HTTP. Finder is optional and only
// present when the ingestion ledger is configured.
type Services struct {
	Ingestor service.Ingestor
	Lister   service.Lister
	Finder   service.Finder
}

// uploadResponse is the success body of an upload.
type uploadResponse struct {
	Success   bool      `json:"success"`
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when no ledger is configured.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services, log *zap.Logger) {
	log = log.Named("handler")

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	upload := UploadDocument(svc.Ingestor, log)
	list := ListDocuments(svc.Lister, log)

	api := app.Group("/api")
	api.Post("/upload", upload)
	api.Get("/documents", list)

	app.Post("/documents", upload)
	app.Get("/documents", list)
	if svc.Finder != nil {
		app.Get("/documents/:id", GetDocument(svc.Finder))
	}
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Pings the ledger database when one is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 as long as the process is serving.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadDocument godoc
// @Summary Upload a document
// @Description Stores an image or PDF and returns its public address.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param title formData string false "Display title"
// @Param fileType formData string false "MIME type hint"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/upload [post]
func UploadDocument(ing service.Ingestor, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read uploaded file")
		}

		declared := c.FormValue("fileType")
		if declared == "" {
			declared = fh.Header.Get("Content-Type")
		}

		doc, err := ing.Ingest(c.UserContext(), service.IngestRequest{
			Data:         data,
			FileName:     fh.Filename,
			DeclaredMime: declared,
			Title:        c.FormValue("title"),
		})
		switch {
		case errors.Is(err, service.ErrNoFile):
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		case err != nil:
			log.Error("upload failed",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.String("file_name", fh.Filename),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "STORE_WRITE_FAILED", "failed to store document")
		}

		return c.Status(fiber.StatusOK).JSON(uploadResponse{
			Success:   true,
			URL:       doc.URL,
			PublicID:  doc.ID,
			Title:     doc.Title,
			Type:      string(doc.ResourceClass),
			CreatedAt: doc.CreatedAt,
		})
	}
}

// ListDocuments godoc
// @Summary List documents
// @Description Newest first. A listing the blob store cannot serve is answered with an empty array.
// @Tags documents
// @Produce json
// @Param maxResults query int false "Maximum number of documents (default 50, capped)"
// @Success 200 {array} model.StoredDocument
// @Failure 400 {object} errorPayload
// @Router /api/documents [get]
func ListDocuments(lister service.Lister, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		maxResults := 0
		if raw := c.Query("maxResults"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_MAX_RESULTS", "maxResults must be an integer")
			}
			maxResults = n
		}

		docs, err := lister.List(c.UserContext(), maxResults)
		if err != nil {
			log.Error("listing unavailable",
				zap.String("request_id", requestIDFromCtx(c)),
				zap.Error(err),
			)
			c.Set(DegradedHeader, "true")
			return c.JSON([]model.StoredDocument{})
		}
		if docs == nil {
			docs = []model.StoredDocument{}
		}
		return c.JSON(docs)
	}
}

// GetDocument godoc
// @Summary Get an ingested document
// @Tags documents
// @Produce json
// @Param id path string true "Public id"
// @Success 200 {object} model.StoredDocument
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /documents/{id} [get]
func GetDocument(finder service.Finder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !classifier.ValidID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := finder.Get(c.UserContext(), id)
		if err != nil {
			return writeLedgerError(c, err)
		}
		return c.JSON(doc)
	}
}
