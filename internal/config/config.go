package config

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	gateway "github.com/newplayman/fapi-port/internal/exchange"
)

const (
	defaultTimeoutMs = 10000
	defaultInterval  = "1m"
	defaultEMAPeriod = 20
	maxKlineLimit    = 1500
)

// Config 全局配置结构
type Config struct {
	Global  GlobalConfig   `mapstructure:"global"`
	Markets []MarketConfig `mapstructure:"markets"`
}

// GlobalConfig 全局配置
type GlobalConfig struct {
	APIKey       string `mapstructure:"api_key"`        // Binance API Key
	APISecret    string `mapstructure:"api_secret"`     // Binance API Secret
	FuturesURL   string `mapstructure:"futures_url"`    // 合约 REST 根地址，空则用默认
	SpotURL      string `mapstructure:"spot_url"`       // 现货 REST 根地址，空则用默认
	TimeoutMs    int    `mapstructure:"timeout_ms"`     // HTTP 超时 (ms)
	RecvWindowMs int64  `mapstructure:"recv_window_ms"` // 签名请求 recvWindow，0 表示不发送
	LogLevel     string `mapstructure:"log_level"`      // 日志级别
	LogFile      string `mapstructure:"log_file"`       // 日志文件，空则只输出到控制台
	MetricsPort  int    `mapstructure:"metrics_port"`   // Prometheus 端口，0 表示不启动
}

// MarketConfig 单个行情订阅配置
type MarketConfig struct {
	Symbol    string `mapstructure:"symbol"`     // 交易对符号 (e.g., BTCUSDT)
	Interval  string `mapstructure:"interval"`   // K 线周期
	Limit     int    `mapstructure:"limit"`      // K 线数量
	EMAPeriod int    `mapstructure:"ema_period"` // EMA 周期
}

var (
	mu           sync.RWMutex
	globalConfig *Config
)

// LoadConfig 加载配置文件。path 为空时只读取环境变量。
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.SetEnvPrefix("FAPI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("global.api_key", "BINANCE_API_KEY")
	v.BindEnv("global.api_secret", "BINANCE_SECRET_KEY")
	v.BindEnv("global.log_level", "FAPI_LOG_LEVEL")
	v.BindEnv("global.metrics_port", "FAPI_METRICS_PORT")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	// 验证配置
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	setConfig(&cfg)

	if path != "" {
		// 启动热重载监听
		go watchConfig(v)
		log.Info().Str("path", path).Msg("配置加载成功")
	}
	return &cfg, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

func setConfig(cfg *Config) {
	mu.Lock()
	globalConfig = cfg
	mu.Unlock()
}

// validateConfig 验证配置有效性，并填充默认值
func validateConfig(cfg *Config) error {
	g := &cfg.Global
	if (g.APIKey == "") != (g.APISecret == "") {
		return fmt.Errorf("API Key 和 Secret 必须同时配置")
	}
	for name, raw := range map[string]string{"futures_url": g.FuturesURL, "spot_url": g.SpotURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s 不是合法的地址: %q", name, raw)
		}
	}
	if g.TimeoutMs == 0 {
		g.TimeoutMs = defaultTimeoutMs
	}
	if g.TimeoutMs < 100 || g.TimeoutMs > 60000 {
		return fmt.Errorf("timeout_ms 必须在 100-60000 之间")
	}
	if g.RecvWindowMs < 0 || g.RecvWindowMs > 60000 {
		return fmt.Errorf("recv_window_ms 必须在 0-60000 之间")
	}
	if g.MetricsPort < 0 || g.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port 超出范围")
	}

	for i := range cfg.Markets {
		m := &cfg.Markets[i]
		if m.Symbol == "" {
			return fmt.Errorf("markets[%d]: symbol 不能为空", i)
		}
		m.Symbol = strings.ToUpper(m.Symbol)
		if m.Interval == "" {
			m.Interval = defaultInterval
		}
		if m.Limit == 0 {
			m.Limit = gateway.DefaultKlineLimit
		}
		if m.Limit < 1 || m.Limit > maxKlineLimit {
			return fmt.Errorf("markets[%d]: limit 必须在 1-%d 之间", i, maxKlineLimit)
		}
		if m.EMAPeriod == 0 {
			m.EMAPeriod = defaultEMAPeriod
		}
		if m.EMAPeriod < 1 || m.EMAPeriod > m.Limit {
			return fmt.Errorf("markets[%d]: ema_period 必须在 1-limit 之间", i)
		}
	}
	return nil
}

// watchConfig 监听配置文件变化并热重载
func watchConfig(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info().Str("file", e.Name).Msg("检测到配置文件变化，正在重载...")

		var newCfg Config
		if err := v.Unmarshal(&newCfg); err != nil {
			log.Error().Err(err).Msg("重载配置失败")
			return
		}

		if err := validateConfig(&newCfg); err != nil {
			log.Error().Err(err).Msg("新配置验证失败，保持旧配置")
			return
		}

		setConfig(&newCfg)
		log.Info().Msg("配置热重载成功")
	})
	v.WatchConfig()
}

// GetTimeout 获取 HTTP 超时
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Global.TimeoutMs) * time.Millisecond
}

// Credentials 返回 API 凭证
func (c *Config) Credentials() gateway.Credentials {
	return gateway.Credentials{APIKey: c.Global.APIKey, SecretKey: c.Global.APISecret}
}

// ClientConfig 构造 REST 客户端配置
func (c *Config) ClientConfig() gateway.ClientConfig {
	return gateway.ClientConfig{
		Credentials:  c.Credentials(),
		Origins:      gateway.Origins{Futures: c.Global.FuturesURL, Spot: c.Global.SpotURL},
		HTTPClient:   &http.Client{Timeout: c.GetTimeout()},
		RecvWindowMs: c.Global.RecvWindowMs,
	}
}

// GetMarket 根据交易对符号获取配置
func (c *Config) GetMarket(symbol string) *MarketConfig {
	symbol = strings.ToUpper(symbol)
	for i := range c.Markets {
		if c.Markets[i].Symbol == symbol {
			return &c.Markets[i]
		}
	}
	return nil
}

// GetAllSymbols 获取所有交易对符号列表
func (c *Config) GetAllSymbols() []string {
	symbols := make([]string, len(c.Markets))
	for i, m := range c.Markets {
		symbols[i] = m.Symbol
	}
	return symbols
}
