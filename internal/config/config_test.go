package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
global:
  api_key: "test_key"
  api_secret: "test_secret"
  futures_url: "https://testnet.binancefuture.com"
  timeout_ms: 3000
  recv_window_ms: 5000
  log_level: "debug"

markets:
  - symbol: "btcusdt"
    interval: "5m"
    limit: 200
    ema_period: 50
  - symbol: "ETHUSDT"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Global.LogLevel != "debug" {
		t.Errorf("Expected LogLevel 'debug', got '%s'", cfg.Global.LogLevel)
	}
	if cfg.GetTimeout() != 3*time.Second {
		t.Errorf("Expected timeout 3s, got %s", cfg.GetTimeout())
	}

	if len(cfg.Markets) != 2 {
		t.Fatalf("Expected 2 markets, got %d", len(cfg.Markets))
	}
	btc := cfg.GetMarket("BTCUSDT")
	if btc == nil {
		t.Fatalf("Expected BTCUSDT market (symbol should be upper-cased)")
	}
	if btc.Interval != "5m" || btc.Limit != 200 || btc.EMAPeriod != 50 {
		t.Errorf("Unexpected BTCUSDT market %+v", *btc)
	}

	eth := cfg.GetMarket("ethusdt")
	if eth == nil {
		t.Fatalf("Expected ETHUSDT market")
	}
	if eth.Interval != defaultInterval || eth.Limit != 500 || eth.EMAPeriod != defaultEMAPeriod {
		t.Errorf("Expected defaults for ETHUSDT, got %+v", *eth)
	}

	if got := strings.Join(cfg.GetAllSymbols(), ","); got != "BTCUSDT,ETHUSDT" {
		t.Errorf("Unexpected symbols %s", got)
	}
	if GetConfig() == nil {
		t.Error("Expected global config to be set")
	}

	cc := cfg.ClientConfig()
	if cc.Credentials.APIKey != "test_key" || cc.Credentials.SecretKey != "test_secret" {
		t.Errorf("Unexpected credentials")
	}
	if cc.Origins.Futures != "https://testnet.binancefuture.com" || cc.Origins.Spot != "" {
		t.Errorf("Unexpected origins %+v", cc.Origins)
	}
	if cc.RecvWindowMs != 5000 {
		t.Errorf("Expected recvWindow 5000, got %d", cc.RecvWindowMs)
	}
	if cc.HTTPClient == nil {
		t.Errorf("Expected HTTP client")
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "env_key")
	t.Setenv("BINANCE_SECRET_KEY", "env_secret")
	t.Setenv("FAPI_LOG_LEVEL", "warn")
	t.Setenv("FAPI_METRICS_PORT", "9191")

	path := writeTempConfig(t, `
global:
  api_key: "file_key"
  api_secret: "file_secret"
  log_level: "info"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	creds := cfg.Credentials()
	if creds.APIKey != "env_key" || creds.SecretKey != "env_secret" {
		t.Errorf("Expected env credentials to win")
	}
	if cfg.Global.LogLevel != "warn" {
		t.Errorf("Expected LogLevel 'warn', got '%s'", cfg.Global.LogLevel)
	}
	if cfg.Global.MetricsPort != 9191 {
		t.Errorf("Expected MetricsPort 9191, got %d", cfg.Global.MetricsPort)
	}
}

func TestLoadConfigEnvOnly(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "env_key")
	t.Setenv("BINANCE_SECRET_KEY", "env_secret")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Credentials().IsZero() {
		t.Errorf("Expected credentials from environment")
	}
	if cfg.Global.TimeoutMs != defaultTimeoutMs {
		t.Errorf("Expected default timeout, got %d", cfg.Global.TimeoutMs)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"key without secret", Config{Global: GlobalConfig{APIKey: "k"}}},
		{"secret without key", Config{Global: GlobalConfig{APISecret: "s"}}},
		{"bad futures url", Config{Global: GlobalConfig{FuturesURL: "fapi.binance.com"}}},
		{"timeout too small", Config{Global: GlobalConfig{TimeoutMs: 10}}},
		{"negative recv window", Config{Global: GlobalConfig{RecvWindowMs: -1}}},
		{"empty symbol", Config{Markets: []MarketConfig{{Interval: "1m"}}}},
		{"limit too large", Config{Markets: []MarketConfig{{Symbol: "BTCUSDT", Limit: 5000}}}},
		{"ema longer than limit", Config{Markets: []MarketConfig{{Symbol: "BTCUSDT", Limit: 10, EMAPeriod: 20}}}},
	}
	for _, tc := range cases {
		cfg := tc.cfg
		if err := validateConfig(&cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}

	ok := Config{}
	if err := validateConfig(&ok); err != nil {
		t.Errorf("Expected empty config to be valid (public only), got %v", err)
	}
}
