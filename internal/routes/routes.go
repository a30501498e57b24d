package routes

import (
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"yard-dashboard/internal/controllers"
	"yard-dashboard/internal/repositories"
	"yard-dashboard/internal/services"
	"yard-dashboard/pkg/config"
)

func InitRouter(e *echo.Echo, redisClient *redis.Client, logger *zap.Logger, cfg *config.Config, loc *time.Location) {
	logger.Info("InitRouter: wiring dashboard routes")

	// --- 1. REPOSITORIES ---
	var source repositories.SheetRepositoryInterface
	if cfg.Source.Mode == "excel" {
		source = repositories.NewExcelSheetRepository(cfg.Source.ExcelPath, logger)
	} else {
		source = repositories.NewGoogleSheetRepository(cfg.Source.SpreadsheetID, cfg.Source.SheetGIDs, logger)
	}
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)
	cachedSource := repositories.NewCachedSheetRepository(source, cacheRepo, cfg.Source.CacheTTL, logger)

	// --- 2. SERVICES ---
	ingestService := services.NewIngestService(cachedSource, loc, cfg.Metrics.NumericThreshold, logger)
	metricsService := services.NewMetricsService(ingestService, loc, logger)

	// --- 3. CONTROLLERS ---
	dashboardCtrl := controllers.NewDashboardController(metricsService, loc, logger)

	// --- 4. ROUTES ---
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	dashboard := api.Group("/dashboard")
	dashboard.GET("/status-counts", dashboardCtrl.GetStatusCounts)
	dashboard.GET("/waiting", dashboardCtrl.GetCurrentWaiting)
	dashboard.GET("/metrics", dashboardCtrl.GetPerTruckMetrics)
	dashboard.GET("/daily-performance", dashboardCtrl.GetDailyPerformance)
	dashboard.GET("/default-date", dashboardCtrl.GetDefaultDate)
}
