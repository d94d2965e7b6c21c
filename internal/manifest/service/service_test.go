package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"manifestconv/internal/manifest/models"
	"manifestconv/internal/manifest/service"
	"manifestconv/internal/manifest/store"
	"manifestconv/internal/manifest/store/mocks"
	"manifestconv/internal/manifest/template"
	"manifestconv/internal/platform/metrics"
	dErrors "manifestconv/pkg/domain-errors"
	"manifestconv/pkg/testutil"
)

//go:generate mockgen -source=../store/store.go -destination=../store/mocks/store-mocks.go -package=mocks Store

const cacheTTL = time.Hour

type ServiceSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ServiceSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func newTestService(t *testing.T) (*service.Service, *mocks.MockStore) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockStore := mocks.NewMockStore(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.New(mockStore, logger, nil, cacheTTL), mockStore
}

func manifestUpload(t *testing.T) []byte {
	t.Helper()
	return testutil.WorkbookBytes(t, [][]any{
		{models.ColTracking, models.ColDescription, models.ColHSCode, models.ColWeight, models.ColDeclareValue},
		{"T1", "Shoes, Hat", "6403, 6505", 2.0, 30},
	})
}

func (s *ServiceSuite) TestConvertComputesAndCaches() {
	svc, mockStore := newTestService(s.T())
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), cacheTTL).Return(nil)

	res, err := svc.Convert(s.ctx, manifestUpload(s.T()), service.Options{})
	s.Require().NoError(err)
	s.Require().Len(res.Rows, 2)

	s.Equal([]string{
		models.ColTracking,
		models.ColDescription,
		models.ColHSCode,
		models.ColQuantity,
		models.ColWeight,
		models.ColDeclareValue,
	}, res.Columns)

	first := res.Rows[0]
	s.Equal("Shoes", first[models.ColDescription])
	s.Equal("6403", first[models.ColHSCode])
	s.Equal(1, first[models.ColQuantity])
	s.Equal(1.0, first[models.ColWeight])
	s.Equal(15.0, first[models.ColDeclareValue])

	second := res.Rows[1]
	s.Equal("Hat", second[models.ColDescription])
	s.Equal("6505", second[models.ColHSCode])
	s.Equal(1.0, second[models.ColWeight])
	s.Equal(15.0, second[models.ColDeclareValue])

	s.NotEmpty(res.Workbook)
}

func (s *ServiceSuite) TestConvertCacheHitSkipsPipeline() {
	svc, mockStore := newTestService(s.T())
	cached := &store.Result{Columns: []string{models.ColTracking}}
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(cached, nil)

	res, err := svc.Convert(s.ctx, manifestUpload(s.T()), service.Options{})
	s.Require().NoError(err)
	s.Same(cached, res)
}

func (s *ServiceSuite) TestConvertTemplateMode() {
	svc, mockStore := newTestService(s.T())
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	mockStore.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), cacheTTL).Return(nil)

	res, err := svc.Convert(s.ctx, manifestUpload(s.T()), service.Options{Template: true})
	s.Require().NoError(err)
	s.Equal(template.Schema, res.Columns)
	s.Require().Len(res.Rows, 2)
	s.Equal("T1", res.Rows[0]["TRACKING NO"])
	s.Equal(1, res.Rows[0]["QTY"])
}

func (s *ServiceSuite) TestConvertModeKeysDiffer() {
	svc, mockStore := newTestService(s.T())
	upload := manifestUpload(s.T())

	var keys []string
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, key string) (*store.Result, error) {
			keys = append(keys, key)
			return nil, nil
		})
	mockStore.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), cacheTTL).Times(2).Return(nil)

	_, err := svc.Convert(s.ctx, upload, service.Options{})
	s.Require().NoError(err)
	_, err = svc.Convert(s.ctx, upload, service.Options{Template: true})
	s.Require().NoError(err)

	s.Require().Len(keys, 2)
	s.NotEqual(keys[0], keys[1])
}

func (s *ServiceSuite) TestConvertSchemaErrorIsFatal() {
	svc, mockStore := newTestService(s.T())
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)

	upload := testutil.WorkbookBytes(s.T(), [][]any{
		{models.ColTracking, models.ColDescription},
		{"T1", "Shoes"},
	})

	_, err := svc.Convert(s.ctx, upload, service.Options{})
	var schemaErr *models.SchemaError
	s.Require().ErrorAs(err, &schemaErr)
	s.Equal([]string{models.ColHSCode}, schemaErr.Missing)
}

func (s *ServiceSuite) TestConvertUnreadableWorkbook() {
	svc, mockStore := newTestService(s.T())
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := svc.Convert(s.ctx, []byte("not a workbook"), service.Options{})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestConvertCollapsesConcurrentIdenticalUploads() {
	svc, mockStore := newTestService(s.T())
	upload := manifestUpload(s.T())

	var ready sync.WaitGroup
	ready.Add(2)
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(context.Context, string) (*store.Result, error) {
			// Hold both callers at the cache miss so they reach the
			// computation together.
			ready.Done()
			ready.Wait()
			return nil, nil
		})
	mockStore.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), cacheTTL).
		DoAndReturn(func(context.Context, string, *store.Result, time.Duration) error {
			time.Sleep(50 * time.Millisecond)
			return nil
		})

	var (
		wg      sync.WaitGroup
		results [2]*store.Result
		errs    [2]error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Convert(s.ctx, upload, service.Options{})
		}(i)
	}
	wg.Wait()

	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])
	// A single computation served both callers: the Set expectation allows
	// one call, and both see the same result value.
	s.Same(results[0], results[1])
}

func (s *ServiceSuite) TestConvertRecordsRowMetrics() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	svc := service.New(nil, logger, m, cacheTTL)

	upload := testutil.WorkbookBytes(s.T(), [][]any{
		{models.ColTracking, models.ColDescription, models.ColHSCode},
		{"T1", "Shoes, Hat", "6403, 6505"},
		{"T2", "", "1,2"},
	})

	_, err := svc.Convert(s.ctx, upload, service.Options{})
	s.Require().NoError(err)

	s.Equal(2.0, promtestutil.ToFloat64(m.RowsExpanded))
	s.Equal(1.0, promtestutil.ToFloat64(m.RowsDropped))
	// Without a cache configured a conversion is not a cache miss.
	s.Equal(0.0, promtestutil.ToFloat64(m.CacheMisses))
}

func (s *ServiceSuite) TestConvertCacheFailuresDegrade() {
	svc, mockStore := newTestService(s.T())
	mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down"))
	mockStore.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), cacheTTL).Return(errors.New("redis down"))

	res, err := svc.Convert(s.ctx, manifestUpload(s.T()), service.Options{})
	s.Require().NoError(err)
	s.Len(res.Rows, 2)
}
