package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port string
}

type RedisConfig struct {
	Address  string
	Password string
}

// SourceConfig describes where the four yard sheets come from.
// Mode "sheets" fetches the Google Sheets CSV export; mode "excel"
// reads a local workbook export with one tab per sheet.
type SourceConfig struct {
	Mode          string
	SpreadsheetID string
	SheetGIDs     map[string]string
	ExcelPath     string
	CacheTTL      time.Duration
}

type MetricsConfig struct {
	// Timezone the yard operates in; all naive timestamps are wall
	// clock in this zone.
	LocalTZ string
	// Fraction of numeric-looking entries above which a timestamp
	// column is read as spreadsheet serial days.
	NumericThreshold float64
}

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	Source  SourceConfig
	Metrics MetricsConfig
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or could not be loaded.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Source: SourceConfig{
			Mode:          getEnv("SOURCE_MODE", "sheets"),
			SpreadsheetID: getEnv("SPREADSHEET_ID", "1KMpaAiTMAlWsGxLZaqrWJfIXL8ynUt5i0nfsja7mXWs"),
			SheetGIDs: map[string]string{
				"security": getEnv("SHEET_GID_SECURITY", "1814716377"),
				"driver":   getEnv("SHEET_GID_DRIVER", "2019928657"),
				"status":   getEnv("SHEET_GID_STATUS", "1969607654"),
				"logistic": getEnv("SHEET_GID_LOGISTIC", "1027892338"),
			},
			ExcelPath: getEnv("EXCEL_EXPORT_PATH", "data/yard_export.xlsx"),
			CacheTTL:  getDurationEnv("SOURCE_CACHE_TTL", 15*time.Second),
		},
		Metrics: MetricsConfig{
			LocalTZ:          getEnv("LOCAL_TZ", "Asia/Phnom_Penh"),
			NumericThreshold: getFloatEnv("TIMESTAMP_NUMERIC_THRESHOLD", 0.5),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration in %s, using default %s", key, fallback)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Warning: invalid float in %s, using default %g", key, fallback)
	}
	return fallback
}
