package services

import (
	"context"
	"time"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"yard-dashboard/internal/dto"
	"yard-dashboard/pkg/types"
)

type MetricsServiceInterface interface {
	StatusCounts(ctx context.Context, filter types.Filter) (dto.StatusCountsDTO, error)
	CurrentWaiting(ctx context.Context, filter types.Filter, now time.Time) ([]dto.WaitingTruckDTO, error)
	PerTruckMetrics(ctx context.Context, filter types.Filter) ([]dto.TruckMetricDTO, error)
	DailyPerformance(ctx context.Context, filter types.Filter) ([]dto.DailyPerformanceDTO, error)
	DefaultDate(ctx context.Context) (null.Time, error)
}

// MetricsService loads the source tables and runs the pure metrics
// core over them. Every call is a full recomputation; nothing derived
// survives between refreshes.
type MetricsService struct {
	ingest IngestServiceInterface
	loc    *time.Location
	logger *zap.Logger
}

func NewMetricsService(ingest IngestServiceInterface, loc *time.Location, logger *zap.Logger) *MetricsService {
	return &MetricsService{ingest: ingest, loc: loc, logger: logger}
}

func (s *MetricsService) StatusCounts(ctx context.Context, filter types.Filter) (dto.StatusCountsDTO, error) {
	tables, err := s.ingest.LoadTables(ctx)
	if err != nil {
		return dto.StatusCountsDTO{}, err
	}
	return CountStatuses(tables.Status, filter, s.loc), nil
}

func (s *MetricsService) CurrentWaiting(ctx context.Context, filter types.Filter, now time.Time) ([]dto.WaitingTruckDTO, error) {
	tables, err := s.ingest.LoadTables(ctx)
	if err != nil {
		return nil, err
	}
	waiting := EvaluateWaiting(tables, filter, now, s.loc)
	s.logger.Debug("waiting set evaluated",
		zap.Time("now", now),
		zap.Int("trucks", len(waiting)),
	)
	return waiting, nil
}

func (s *MetricsService) PerTruckMetrics(ctx context.Context, filter types.Filter) ([]dto.TruckMetricDTO, error) {
	tables, err := s.ingest.LoadTables(ctx)
	if err != nil {
		return nil, err
	}
	return ReconcileTruckMetrics(tables, filter, s.loc), nil
}

func (s *MetricsService) DailyPerformance(ctx context.Context, filter types.Filter) ([]dto.DailyPerformanceDTO, error) {
	tables, err := s.ingest.LoadTables(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateDailyPerformance(tables, filter, s.loc), nil
}

func (s *MetricsService) DefaultDate(ctx context.Context) (null.Time, error) {
	return s.ingest.DefaultDate(ctx)
}
