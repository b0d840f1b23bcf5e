package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"educenter/internal/ledger"
	"educenter/internal/logger"
	"educenter/pkg/models"
)

type Config struct {
	// Ledger source
	LedgerSource string
	LedgerPath   string

	// Google Sheets Configuration
	GoogleSheetURL          string
	GoogleCredentialsFile   string
	GoogleCredentialsJSON   string
	GoogleSheetNoticeTarget string

	// Bank account overrides, applied over the ledger's center settings
	BankBin           string
	BankAccountNumber string
	BankAccountHolder string
	BankName          string

	// HTTP API
	HTTPAddr       string
	HTTPRateLimit  float64 // Requests per second, 0 disables limiting
	NoticeCacheTTL time.Duration // Zero disables notice caching

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		LedgerSource:            strings.ToLower(getEnv("LEDGER_SOURCE", string(ledger.SourceFile))),
		LedgerPath:              getEnv("LEDGER_PATH", "backup.json"),
		GoogleSheetURL:          getEnv("GOOGLE_SHEET_URL", ""),
		GoogleCredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		GoogleCredentialsJSON:   getEnv("GOOGLE_CREDENTIALS", ""),
		GoogleSheetNoticeTarget: getEnv("GOOGLE_SHEET_NOTICES", "Phieu_Bao_Hoc_Phi"),
		BankBin:                 getEnv("BANK_BIN", ""),
		BankAccountNumber:       getEnv("BANK_ACCOUNT_NUMBER", ""),
		BankAccountHolder:       getEnv("BANK_ACCOUNT_HOLDER", ""),
		BankName:                getEnv("BANK_NAME", ""),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogFormat:               getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:           getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:               getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	if config.HTTPRateLimit, err = strconv.ParseFloat(getEnv("HTTP_RATE_LIMIT", "10"), 64); err != nil {
		return nil, fmt.Errorf("HTTP_RATE_LIMIT must be a number: %w", err)
	}
	if config.NoticeCacheTTL, err = time.ParseDuration(getEnv("NOTICE_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("NOTICE_CACHE_TTL must be a duration: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch ledger.Source(c.LedgerSource) {
	case ledger.SourceFile, ledger.SourceSQLite:
		if c.LedgerPath == "" {
			return fmt.Errorf("LEDGER_PATH is required for the %s source", c.LedgerSource)
		}
	case ledger.SourceSheets:
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required for the sheets source")
		}
	default:
		return fmt.Errorf("LEDGER_SOURCE %q: %w", c.LedgerSource, ledger.ErrUnsupportedSource)
	}
	if c.HTTPRateLimit < 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must not be negative")
	}
	if c.NoticeCacheTTL < 0 {
		return fmt.Errorf("NOTICE_CACHE_TTL must not be negative")
	}
	return nil
}

// LedgerOptions returns the options for opening the configured ledger store.
func (c *Config) LedgerOptions() ledger.Options {
	return ledger.Options{
		Source:          ledger.Source(c.LedgerSource),
		Path:            c.LedgerPath,
		SheetURL:        c.GoogleSheetURL,
		CredentialsFile: c.GoogleCredentialsFile,
		CredentialsJSON: c.GoogleCredentialsJSON,
	}
}

// BankOverrides returns the bank fields set in the environment. Empty fields
// leave the ledger's own settings in place.
func (c *Config) BankOverrides() models.CenterSettings {
	return models.CenterSettings{
		BankName:          c.BankName,
		BankBin:           c.BankBin,
		BankAccountNumber: c.BankAccountNumber,
		BankAccountHolder: c.BankAccountHolder,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
