package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"educenter/internal/ledger"
)

var envKeys = []string{
	"LEDGER_SOURCE", "LEDGER_PATH", "GOOGLE_SHEET_URL",
	"GOOGLE_APPLICATION_CREDENTIALS", "GOOGLE_CREDENTIALS", "GOOGLE_SHEET_NOTICES",
	"BANK_BIN", "BANK_ACCOUNT_NUMBER", "BANK_ACCOUNT_HOLDER", "BANK_NAME",
	"HTTP_ADDR", "HTTP_RATE_LIMIT", "NOTICE_CACHE_TTL",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
}

// clearEnv blanks every variable Load reads; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.LedgerSource)
	assert.Equal(t, "backup.json", cfg.LedgerPath)
	assert.Equal(t, "Phieu_Bao_Hoc_Phi", cfg.GoogleSheetNoticeTarget)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10.0, cfg.HTTPRateLimit)
	assert.Equal(t, 5*time.Minute, cfg.NoticeCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "stderr", cfg.LogOutput)
}

func TestLoadFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_SOURCE", "SQLite")
	t.Setenv("LEDGER_PATH", "/data/ledger.db")
	t.Setenv("HTTP_RATE_LIMIT", "2.5")
	t.Setenv("NOTICE_CACHE_TTL", "30s")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.LedgerSource)
	assert.Equal(t, 2.5, cfg.HTTPRateLimit)
	assert.Equal(t, 30*time.Second, cfg.NoticeCacheTTL)

	opts := cfg.LedgerOptions()
	assert.Equal(t, ledger.SourceSQLite, opts.Source)
	assert.Equal(t, "/data/ledger.db", opts.Path)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stderr", lc.Output)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown source", map[string]string{"LEDGER_SOURCE": "postgres"}},
		{"sheets without url", map[string]string{"LEDGER_SOURCE": "sheets"}},
		{"rate limit not a number", map[string]string{"HTTP_RATE_LIMIT": "fast"}},
		{"negative rate limit", map[string]string{"HTTP_RATE_LIMIT": "-1"}},
		{"ttl not a duration", map[string]string{"NOTICE_CACHE_TTL": "5"}},
		{"negative ttl", map[string]string{"NOTICE_CACHE_TTL": "-1m"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoadZeroCacheTTLDisablesCaching(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTICE_CACHE_TTL", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.NoticeCacheTTL)
}

func TestLoadUnknownSourceWrapsSentinel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_SOURCE", "postgres")

	_, err := Load()
	assert.True(t, errors.Is(err, ledger.ErrUnsupportedSource))
}

func TestLoadSheetsSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_SOURCE", "sheets")
	t.Setenv("GOOGLE_SHEET_URL", "https://docs.google.com/spreadsheets/d/abc123/edit")
	t.Setenv("GOOGLE_CREDENTIALS", `{"type":"service_account"}`)

	cfg, err := Load()
	require.NoError(t, err)

	opts := cfg.LedgerOptions()
	assert.Equal(t, ledger.SourceSheets, opts.Source)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/edit", opts.SheetURL)
	assert.Equal(t, `{"type":"service_account"}`, opts.CredentialsJSON)
}

func TestBankOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BANK_BIN", "970415")
	t.Setenv("BANK_ACCOUNT_NUMBER", "1122334455")
	t.Setenv("BANK_ACCOUNT_HOLDER", "TRUNG TAM")

	cfg, err := Load()
	require.NoError(t, err)

	o := cfg.BankOverrides()
	assert.Equal(t, "970415", o.BankBin)
	assert.Equal(t, "1122334455", o.BankAccountNumber)
	assert.Equal(t, "TRUNG TAM", o.BankAccountHolder)
	assert.Empty(t, o.BankName)
}
