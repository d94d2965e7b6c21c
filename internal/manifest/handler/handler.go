package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"manifestconv/internal/manifest/models"
	"manifestconv/internal/manifest/service"
	"manifestconv/internal/manifest/store"
	"manifestconv/internal/platform/middleware"
	"manifestconv/internal/transport/http/shared"
	dErrors "manifestconv/pkg/domain-errors"
)

const (
	maxUploadBytes = 32 << 20
	downloadName   = "manifest_converted.xlsx"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Converter defines the interface for manifest conversion.
type Converter interface {
	Convert(ctx context.Context, fileBytes []byte, opts service.Options) (*store.Result, error)
}

// Handler handles manifest conversion endpoints.
type Handler struct {
	logger      *slog.Logger
	converter   Converter
	previewRows int
}

// New creates a new conversion Handler.
func New(converter Converter, logger *slog.Logger, previewRows int) *Handler {
	return &Handler{
		logger:      logger,
		converter:   converter,
		previewRows: previewRows,
	}
}

// Register registers the conversion routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	convertRouter := chi.NewRouter()
	convertRouter.Use(middleware.Recovery(h.logger))
	convertRouter.Use(middleware.RequestID)
	convertRouter.Use(middleware.Logger(h.logger))
	convertRouter.Use(middleware.Timeout(60 * time.Second))
	convertRouter.Post("/convert", h.handleConvert)
	convertRouter.Post("/convert/preview", h.handlePreview)

	r.Mount("/", convertRouter)
}

// handleConvert converts the uploaded manifest and returns the workbook as a
// download.
func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	res, ok := h.convert(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Workbook)
}

// previewResponse is the JSON shape of a conversion preview.
type previewResponse struct {
	Columns   []string     `json:"columns"`
	Rows      []models.Row `json:"rows"`
	TotalRows int          `json:"total_rows"`
}

// handlePreview converts the uploaded manifest and returns the first rows as
// JSON.
func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	res, ok := h.convert(w, r)
	if !ok {
		return
	}
	rows := res.Rows
	if len(rows) > h.previewRows {
		rows = rows[:h.previewRows]
	}
	shared.WriteJSON(w, http.StatusOK, previewResponse{
		Columns:   res.Columns,
		Rows:      rows,
		TotalRows: len(res.Rows),
	})
}

// convert reads the multipart upload and runs the conversion, writing the
// error response itself when anything fails.
func (h *Handler) convert(w http.ResponseWriter, r *http.Request) (*store.Result, bool) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	fileBytes, err := h.readUpload(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid manifest upload",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, err.Error()))
		return nil, false
	}

	opts := service.Options{Template: templateMode(r)}
	res, err := h.converter.Convert(ctx, fileBytes, opts)
	if err != nil {
		var schemaErr *models.SchemaError
		switch {
		case errors.As(err, &schemaErr):
			h.logger.WarnContext(ctx, "manifest schema rejected",
				"request_id", requestID,
				"missing_columns", schemaErr.Missing,
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, schemaErr.Error()))
		case dErrors.Is(err, dErrors.CodeBadRequest):
			h.logger.WarnContext(ctx, "manifest rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
		default:
			h.logger.ErrorContext(ctx, "conversion failed",
				"request_id", requestID,
				"error", err.Error(),
			)
			shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "conversion failed"))
		}
		return nil, false
	}
	return res, true
}

func (h *Handler) readUpload(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, errors.New("expected a multipart upload with a 'file' field")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, errors.New("missing 'file' field in upload")
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("reading upload: " + err.Error())
	}
	if len(fileBytes) == 0 {
		return nil, errors.New("uploaded file is empty")
	}
	return fileBytes, nil
}

func templateMode(r *http.Request) bool {
	switch r.URL.Query().Get("template") {
	case "1", "true", "yes":
		return true
	}
	return false
}
