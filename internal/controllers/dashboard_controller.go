package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"yard-dashboard/internal/dto"
	"yard-dashboard/internal/services"
	apperrors "yard-dashboard/pkg/errors"
	"yard-dashboard/pkg/types"
	"yard-dashboard/pkg/utils"
)

type DashboardController struct {
	metricsService services.MetricsServiceInterface
	loc            *time.Location
	logger         *zap.Logger
}

func NewDashboardController(metricsService services.MetricsServiceInterface, loc *time.Location, logger *zap.Logger) *DashboardController {
	return &DashboardController{
		metricsService: metricsService,
		loc:            loc,
		logger:         logger,
	}
}

// parseFilter binds and validates the query parameters into a Filter.
func (ctrl *DashboardController) parseFilter(c echo.Context) (types.Filter, error) {
	var q dto.DashboardQueryDTO
	if err := c.Bind(&q); err != nil {
		return types.Filter{}, apperrors.NewHttpError(http.StatusBadRequest, "invalid query parameters", err, nil)
	}
	if err := c.Validate(&q); err != nil {
		return types.Filter{}, apperrors.NewHttpError(http.StatusBadRequest, "invalid query parameters", err, nil)
	}

	var filter types.Filter
	if q.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", q.Date, ctrl.loc)
		if err != nil {
			return types.Filter{}, apperrors.NewHttpError(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err,
				map[string]interface{}{"date": q.Date})
		}
		filter.Date = null.TimeFrom(day)
	}
	if q.Products != "" {
		for _, p := range strings.Split(q.Products, ",") {
			if p = strings.TrimSpace(p); p != "" {
				filter.Products = append(filter.Products, p)
			}
		}
	}
	if q.Direction != "" {
		filter.Direction = null.StringFrom(q.Direction)
	}
	return filter, nil
}

func (ctrl *DashboardController) GetStatusCounts(c echo.Context) error {
	reqCtx := c.Request().Context()
	filter, err := ctrl.parseFilter(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	// The direction filter does not apply to status counts.
	filter.Direction = null.String{}

	counts, err := ctrl.metricsService.StatusCounts(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, counts, "status counts computed", http.StatusOK)
}

func (ctrl *DashboardController) GetCurrentWaiting(c echo.Context) error {
	reqCtx := c.Request().Context()
	filter, err := ctrl.parseFilter(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	// The evaluation instant is read once here; the core itself is
	// clock-free so the same query is reproducible in tests.
	now := time.Now().In(ctrl.loc)
	waiting, err := ctrl.metricsService.CurrentWaiting(reqCtx, filter, now)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if waiting == nil {
		waiting = []dto.WaitingTruckDTO{}
	}
	return utils.SuccessResponse(c, waiting, "current waiting trucks computed", http.StatusOK)
}

func (ctrl *DashboardController) GetPerTruckMetrics(c echo.Context) error {
	reqCtx := c.Request().Context()
	filter, err := ctrl.parseFilter(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	rows, err := ctrl.metricsService.PerTruckMetrics(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if rows == nil {
		rows = []dto.TruckMetricDTO{}
	}
	return utils.SuccessResponse(c, rows, "per-truck metrics computed", http.StatusOK)
}

func (ctrl *DashboardController) GetDailyPerformance(c echo.Context) error {
	reqCtx := c.Request().Context()
	filter, err := ctrl.parseFilter(c)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	rows, err := ctrl.metricsService.DailyPerformance(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if rows == nil {
		rows = []dto.DailyPerformanceDTO{}
	}
	return utils.SuccessResponse(c, rows, "daily performance computed", http.StatusOK)
}

func (ctrl *DashboardController) GetDefaultDate(c echo.Context) error {
	reqCtx := c.Request().Context()

	date, err := ctrl.metricsService.DefaultDate(reqCtx)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if !date.Valid {
		// Nothing parseable anywhere in the source: fall back to the
		// current local date so the UI still has a sane preselection.
		y, m, d := time.Now().In(ctrl.loc).Date()
		date = null.TimeFrom(time.Date(y, m, d, 0, 0, 0, 0, ctrl.loc))
	}
	return utils.SuccessResponse(c, dto.DefaultDateDTO{Date: date}, "default date computed", http.StatusOK)
}
