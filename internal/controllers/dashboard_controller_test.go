package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"yard-dashboard/internal/dto"
	"yard-dashboard/pkg/customvalidator"
	apperrors "yard-dashboard/pkg/errors"
	"yard-dashboard/pkg/types"
	"yard-dashboard/pkg/utils"
)

var testLoc = time.FixedZone("ICT", 7*3600)

// stubMetricsService records the filter it was called with and serves
// canned results.
type stubMetricsService struct {
	filter  types.Filter
	now     time.Time
	err     error
	waiting []dto.WaitingTruckDTO
	metrics []dto.TruckMetricDTO
	perf    []dto.DailyPerformanceDTO
	counts  dto.StatusCountsDTO
}

func (s *stubMetricsService) StatusCounts(ctx context.Context, filter types.Filter) (dto.StatusCountsDTO, error) {
	s.filter = filter
	return s.counts, s.err
}

func (s *stubMetricsService) CurrentWaiting(ctx context.Context, filter types.Filter, now time.Time) ([]dto.WaitingTruckDTO, error) {
	s.filter = filter
	s.now = now
	return s.waiting, s.err
}

func (s *stubMetricsService) PerTruckMetrics(ctx context.Context, filter types.Filter) ([]dto.TruckMetricDTO, error) {
	s.filter = filter
	return s.metrics, s.err
}

func (s *stubMetricsService) DailyPerformance(ctx context.Context, filter types.Filter) ([]dto.DailyPerformanceDTO, error) {
	s.filter = filter
	return s.perf, s.err
}

func (s *stubMetricsService) DefaultDate(ctx context.Context) (null.Time, error) {
	return null.TimeFrom(time.Date(2023, time.March, 15, 0, 0, 0, 0, testLoc)), s.err
}

func newTestServer(t *testing.T, svc *stubMetricsService) (*echo.Echo, *DashboardController) {
	t.Helper()
	e := echo.New()
	v := validator.New()
	require.NoError(t, customvalidator.RegisterCustomValidations(v))
	e.Validator = utils.NewValidator(v)
	return e, NewDashboardController(svc, testLoc, zap.NewNop())
}

func doRequest(e *echo.Echo, handler echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = handler(c)
	return rec
}

func TestGetPerTruckMetricsBindsFilters(t *testing.T) {
	svc := &stubMetricsService{}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetPerTruckMetrics, "/api/dashboard/metrics?date=2023-03-15&products=Pipe,Coil&direction=Uploading")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.True(t, svc.filter.Date.Valid)
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, testLoc), svc.filter.Date.Time)
	assert.Equal(t, []string{"Pipe", "Coil"}, svc.filter.Products)
	assert.Equal(t, "Uploading", svc.filter.Direction.String)
}

func TestGetPerTruckMetricsEmptyResultIsArray(t *testing.T) {
	svc := &stubMetricsService{}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetPerTruckMetrics, "/api/dashboard/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status bool              `json:"status"`
		Body   []json.RawMessage `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Status)
	assert.NotNil(t, resp.Body, "no data still yields an explicit empty array")
}

func TestInvalidDirectionRejected(t *testing.T) {
	svc := &stubMetricsService{}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetCurrentWaiting, "/api/dashboard/waiting?direction=Sideways")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidDateRejected(t *testing.T) {
	svc := &stubMetricsService{}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetPerTruckMetrics, "/api/dashboard/metrics?date=15-03-2023")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSourceFetchFailureMapsTo502(t *testing.T) {
	svc := &stubMetricsService{err: apperrors.NewSourceFetchError(assert.AnError)}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetDailyPerformance, "/api/dashboard/daily-performance")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var resp struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Status)
	assert.Equal(t, "data source is temporarily unavailable", resp.Message)
}

func TestStatusCountsIgnoresDirectionFilter(t *testing.T) {
	svc := &stubMetricsService{counts: dto.StatusCountsDTO{Waiting: 2}}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetStatusCounts, "/api/dashboard/status-counts?direction=Uploading")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.filter.Direction.Valid, "status counts take no direction filter")
}

func TestGetCurrentWaitingPassesEvaluationInstant(t *testing.T) {
	svc := &stubMetricsService{}
	e, ctrl := newTestServer(t, svc)

	before := time.Now()
	rec := doRequest(e, ctrl.GetCurrentWaiting, "/api/dashboard/waiting")
	after := time.Now()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, svc.now.Before(before.Add(-time.Second)))
	assert.False(t, svc.now.After(after.Add(time.Second)))
}

func TestGetDefaultDate(t *testing.T) {
	svc := &stubMetricsService{}
	e, ctrl := newTestServer(t, svc)

	rec := doRequest(e, ctrl.GetDefaultDate, "/api/dashboard/default-date")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Body dto.DefaultDateDTO `json:"body"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Body.Date.Valid)
	assert.Equal(t, 15, resp.Body.Date.Time.Day())
}
