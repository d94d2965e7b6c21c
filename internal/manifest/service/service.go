package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"manifestconv/internal/manifest/expander"
	"manifestconv/internal/manifest/models"
	"manifestconv/internal/manifest/redistribute"
	"manifestconv/internal/manifest/store"
	"manifestconv/internal/manifest/template"
	"manifestconv/internal/platform/metrics"
	"manifestconv/internal/xlsx"
	dErrors "manifestconv/pkg/domain-errors"
)

// Options selects the optional final pipeline stage.
type Options struct {
	// Template enables projection onto the downstream template schema.
	Template bool
}

func (o Options) mode() string {
	if o.Template {
		return "template"
	}
	return "standard"
}

// Service runs the conversion pipeline: read workbook, expand packed line
// items, redistribute shipment aggregates, optionally project onto the
// template schema, and serialize the result. Results are memoized by content
// key; identical concurrent uploads are collapsed to one computation.
type Service struct {
	logger   *slog.Logger
	store    store.Store
	metrics  *metrics.Metrics
	cacheTTL time.Duration
	group    singleflight.Group
}

// New creates a conversion Service. The store may be nil to disable caching.
func New(st store.Store, logger *slog.Logger, m *metrics.Metrics, cacheTTL time.Duration) *Service {
	return &Service{
		logger:   logger,
		store:    st,
		metrics:  m,
		cacheTTL: cacheTTL,
	}
}

// Convert turns uploaded workbook bytes into the converted result. Cache
// failures degrade to recomputation, never to request failure.
func (s *Service) Convert(ctx context.Context, fileBytes []byte, opts Options) (*store.Result, error) {
	start := time.Now()
	key := store.Key(fileBytes, opts.mode())

	if s.store != nil {
		res, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "result cache read failed", "error", err.Error())
		}
		if res != nil {
			s.metrics.IncrementCacheHit()
			s.metrics.ObserveConversion("cached", time.Since(start))
			return res, nil
		}
		s.metrics.IncrementCacheMiss()
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.convert(ctx, fileBytes, opts, key)
	})
	if err != nil {
		s.metrics.ObserveConversion("error", time.Since(start))
		return nil, err
	}
	s.metrics.ObserveConversion("converted", time.Since(start))
	return v.(*store.Result), nil
}

func (s *Service) convert(ctx context.Context, fileBytes []byte, opts Options, key string) (*store.Result, error) {
	src, err := xlsx.Read(fileBytes)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unreadable workbook: "+err.Error())
	}

	items, dropped, err := expander.Expand(src)
	if err != nil {
		var schemaErr *models.SchemaError
		if errors.As(err, &schemaErr) {
			return nil, err
		}
		return nil, dErrors.New(dErrors.CodeInternal, "expand manifest rows: "+err.Error())
	}
	s.metrics.AddRowsExpanded(len(items.Rows))
	s.metrics.AddRowsDropped(dropped)

	out := redistribute.Apply(items, src).Reorder()
	if opts.Template {
		out = template.Project(out)
	}

	workbook, err := xlsx.Write(out)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInternal, "serialize converted workbook: "+err.Error())
	}

	res := &store.Result{Columns: out.Columns, Rows: out.Rows, Workbook: workbook}
	if s.store != nil {
		if err := s.store.Set(ctx, key, res, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "result cache write failed", "error", err.Error())
		}
	}
	return res, nil
}
