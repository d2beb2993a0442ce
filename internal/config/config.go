// backend-go/internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	App        AppConfig
	Cache      CacheConfig
	Sheets     SheetsConfig
	Drive      DriveConfig
	Settlement SettlementConfig
	Storage    StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	ReportDir     string
	PriceBookFile string
	LogFormat     string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

// SheetsConfig points at the Google Form response spreadsheet.
type SheetsConfig struct {
	CredentialsJSON string
	SpreadsheetID   string
	MainSheet       string
	DataRange       string
	SettingsSheet   string
	SettingsRange   string
}

type DriveConfig struct {
	CredentialsJSON string
	FolderID        string
	DownloadDir     string
}

type SettlementConfig struct {
	Timezone     string
	PeriodDays   int
	FetchTimeout time.Duration
	CostBasis    string
	Workers      int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_ENABLED", false)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "chicken_settlement")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_REPORT_DIR", "./data/reports")
		viper.SetDefault("APP_PRICE_BOOK_FILE", "./data/chicken_prices.json")
		viper.SetDefault("APP_LOG_FORMAT", "console")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 300)
		viper.SetDefault("GOOGLE_SHEETS_CREDENTIALS_JSON", "")
		viper.SetDefault("GOOGLE_SHEETS_SPREADSHEET_ID", "")
		viper.SetDefault("GOOGLE_SHEETS_MAIN_SHEET", "表單回應 1")
		viper.SetDefault("GOOGLE_SHEETS_DATA_RANGE", "A1:Z1000")
		viper.SetDefault("GOOGLE_SHEETS_SETTINGS_SHEET", "設定")
		viper.SetDefault("GOOGLE_SHEETS_SETTINGS_RANGE", "A1:Z100")
		viper.SetDefault("GOOGLE_DRIVE_CREDENTIALS_JSON", "")
		viper.SetDefault("GOOGLE_DRIVE_FOLDER_ID", "")
		viper.SetDefault("GOOGLE_DRIVE_DOWNLOAD_DIR", "./data/downloads")
		viper.SetDefault("SETTLEMENT_TIMEZONE", "Asia/Taipei")
		viper.SetDefault("SETTLEMENT_PERIOD_DAYS", 14)
		viper.SetDefault("SETTLEMENT_FETCH_TIMEOUT", "30s")
		viper.SetDefault("SETTLEMENT_COST_BASIS", "")
		viper.SetDefault("SETTLEMENT_WORKERS", 4)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "chicken-reports")

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_REPORT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Enabled:  viper.GetBool("DB_ENABLED"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				ReportDir:     viper.GetString("APP_REPORT_DIR"),
				PriceBookFile: viper.GetString("APP_PRICE_BOOK_FILE"),
				LogFormat:     viper.GetString("APP_LOG_FORMAT"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ReportTTLSeconds: viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
			},
			Sheets: SheetsConfig{
				CredentialsJSON: viper.GetString("GOOGLE_SHEETS_CREDENTIALS_JSON"),
				SpreadsheetID:   viper.GetString("GOOGLE_SHEETS_SPREADSHEET_ID"),
				MainSheet:       viper.GetString("GOOGLE_SHEETS_MAIN_SHEET"),
				DataRange:       viper.GetString("GOOGLE_SHEETS_DATA_RANGE"),
				SettingsSheet:   viper.GetString("GOOGLE_SHEETS_SETTINGS_SHEET"),
				SettingsRange:   viper.GetString("GOOGLE_SHEETS_SETTINGS_RANGE"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
				FolderID:        viper.GetString("GOOGLE_DRIVE_FOLDER_ID"),
				DownloadDir:     viper.GetString("GOOGLE_DRIVE_DOWNLOAD_DIR"),
			},
			Settlement: SettlementConfig{
				Timezone:     viper.GetString("SETTLEMENT_TIMEZONE"),
				PeriodDays:   viper.GetInt("SETTLEMENT_PERIOD_DAYS"),
				FetchTimeout: viper.GetDuration("SETTLEMENT_FETCH_TIMEOUT"),
				CostBasis:    viper.GetString("SETTLEMENT_COST_BASIS"),
				Workers:      viper.GetInt("SETTLEMENT_WORKERS"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
			},
		}
	})

	return instance
}

// Location resolves the settlement timezone. Dates in the form sheet carry no
// zone, so every row is interpreted in this one location.
func (c SettlementConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, falling back to UTC+8: %v", c.Timezone, err)
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
