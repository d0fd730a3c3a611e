package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:                 "8081",
		RateLimitPerMinute:   60,
		DataBackend:          "memory",
		CatalogCacheTTL:      time.Minute,
		DashboardRecentLimit: 10,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid memory backend config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name: "valid api backend config",
			mutate: func(c *Config) {
				c.DataBackend = "api"
				c.APIURL = "https://ledger.example.com/api/"
				c.APITimeout = 5 * time.Second
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets'",
		},
		{
			name:        "api backend without URL",
			mutate:      func(c *Config) { c.DataBackend = "api"; c.APITimeout = time.Second },
			wantErr:     true,
			errorString: "API URL is required when using api backend",
		},
		{
			name: "api backend with relative URL",
			mutate: func(c *Config) {
				c.DataBackend = "api"
				c.APIURL = "/api"
				c.APITimeout = time.Second
			},
			wantErr:     true,
			errorString: "must be an absolute http(s) URL",
		},
		{
			name:        "bad AMQP scheme",
			mutate:      func(c *Config) { c.AMQPURL = "http://localhost"; c.AMQPExchange = "x"; c.AMQPQueue = "q" },
			wantErr:     true,
			errorString: "invalid AMQP URL scheme 'http'",
		},
		{
			name:        "AMQP without queue",
			mutate:      func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPExchange = "x" },
			wantErr:     true,
			errorString: "AMQP queue name cannot be empty",
		},
		{
			name:        "trusted proxy without mask",
			mutate:      func(c *Config) { c.TrustedProxies = []string{"10.1.0.0/16", "203.0.113.7"} },
			wantErr:     true,
			errorString: "invalid trusted proxy '203.0.113.7'",
		},
		{
			name:        "negative request timeout",
			mutate:      func(c *Config) { c.RequestTimeout = -time.Second },
			wantErr:     true,
			errorString: "invalid request timeout",
		},
		{
			name:        "negative horizon",
			mutate:      func(c *Config) { c.OpenEndedHorizonMonths = -1 },
			wantErr:     true,
			errorString: "invalid open-ended horizon -1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.DataBackend = "nope"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if n := strings.Count(err.Error(), "\n- "); n != 2 {
		t.Errorf("expected 2 listed problems, got %d: %s", n, err)
	}
}

func TestConfig_ValidateSQLiteCreatesDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := validConfig()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(tmpDir, "nested", "fiscora.db")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "nested")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestConfig_ValidateWorker(t *testing.T) {
	tmpDir := t.TempDir()
	creds := filepath.Join(tmpDir, "sa.json")
	if err := os.WriteFile(creds, []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	cfg.AMQPURL = "amqp://localhost"
	cfg.GoogleSpreadsheetID = "sheet"
	cfg.GoogleSheetName = "Transactions"
	cfg.GoogleSummarySheetName = "Summary"
	cfg.GoogleCredentialsFile = creds
	if err := cfg.ValidateWorker(); err != nil {
		t.Fatalf("ValidateWorker() error = %v", err)
	}

	cfg.GoogleCredentialsFile = filepath.Join(tmpDir, "missing.json")
	if err := cfg.ValidateWorker(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		for _, key := range []string{"PORT", "DATA_BACKEND", "API_TIMEOUT", "CATALOG_CACHE_TTL", "OPEN_ENDED_HORIZON_MONTHS"} {
			t.Setenv(key, "")
		}
		cfg := Load()
		if cfg.Port != "8081" || cfg.DataBackend != "memory" {
			t.Errorf("unexpected defaults: port=%s backend=%s", cfg.Port, cfg.DataBackend)
		}
		if cfg.APITimeout != 10*time.Second || cfg.CatalogCacheTTL != 10*time.Minute {
			t.Errorf("unexpected duration defaults: %v %v", cfg.APITimeout, cfg.CatalogCacheTTL)
		}
		if cfg.OpenEndedHorizonMonths != 0 {
			t.Errorf("OpenEndedHorizonMonths = %d", cfg.OpenEndedHorizonMonths)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "api")
		t.Setenv("API_URL", "http://localhost:8000/api/")
		t.Setenv("API_TIMEOUT", "3s")
		t.Setenv("OPEN_ENDED_HORIZON_MONTHS", "24")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "not-a-number")

		cfg := Load()
		if cfg.Port != "9090" || cfg.DataBackend != "api" || cfg.APIURL != "http://localhost:8000/api/" {
			t.Errorf("env not applied: %+v", cfg)
		}
		if cfg.APITimeout != 3*time.Second || cfg.OpenEndedHorizonMonths != 24 {
			t.Errorf("env not parsed: timeout=%v horizon=%d", cfg.APITimeout, cfg.OpenEndedHorizonMonths)
		}
		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("invalid int should fall back to default, got %d", cfg.RateLimitPerMinute)
		}
	})
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,192.168.1.0/24 ,")
	got := getEnvList("TRUSTED_PROXIES")
	if len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "192.168.1.0/24" {
		t.Errorf("getEnvList = %q", got)
	}

	t.Setenv("TRUSTED_PROXIES", "")
	if got := getEnvList("TRUSTED_PROXIES"); got != nil {
		t.Errorf("empty variable = %q, want nil", got)
	}
}
