package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/newplayman/fapi-port/internal/config"
	gateway "github.com/newplayman/fapi-port/internal/exchange"
	"github.com/newplayman/fapi-port/internal/metrics"
)

var (
	configFile   = flag.String("config", "", "配置文件路径 (为空则只读环境变量)")
	logLevel     = flag.String("log", "", "日志级别 (debug, info, warn, error)")
	op           = flag.String("op", "klines", "操作: klines, ticker, exchange-info, balance, order, orders, leverage, cancel, cancel-all, new-order")
	symbol       = flag.String("symbol", "", "交易对")
	interval     = flag.String("interval", "1m", "K 线周期")
	limit        = flag.Int("limit", gateway.DefaultKlineLimit, "K 线数量")
	emaPeriod    = flag.Int("ema", 20, "EMA 周期")
	every        = flag.Duration("every", 0, "klines 轮询间隔，0 表示只执行一次")
	orderID      = flag.Int64("order-id", 0, "订单ID")
	leverage     = flag.Int("leverage", 0, "杠杆倍数")
	side         = flag.String("side", "", "BUY / SELL")
	orderType    = flag.String("type", "", "订单类型, 如 LIMIT, MARKET")
	timeInForce  = flag.String("tif", "", "GTC / IOC / FOK / GTX")
	quantity     = flag.String("qty", "", "数量")
	price        = flag.String("price", "", "价格")
	stopPrice    = flag.String("stop-price", "", "触发价")
	callbackRate = flag.String("callback-rate", "", "回调比例")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		setupLogger("info", "")
		log.Fatal().Err(err).Msg("加载配置失败")
	}

	level := cfg.Global.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	setupLogger(level, cfg.Global.LogFile)

	client, err := gateway.NewClient(cfg.ClientConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("创建REST客户端失败")
	}

	if cfg.Global.MetricsPort > 0 {
		if _, err := metrics.StartMetricsServer(cfg.Global.MetricsPort); err != nil {
			log.Error().Err(err).Msg("启动监控服务器失败")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, client); err != nil {
		log.Error().Err(err).Str("op", *op).Msg("执行失败")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, client *gateway.Client) error {
	if *op == "klines" {
		return runKlines(ctx, cfg, client)
	}

	sym := strings.ToUpper(*symbol)
	var (
		body string
		err  error
	)
	switch *op {
	case "ticker":
		body, err = client.Ticker24hr(ctx, sym)
	case "exchange-info":
		body, err = client.ExchangeInfo(ctx)
	case "balance":
		body, err = client.Balance(ctx)
	case "order":
		body, err = client.QueryOrder(ctx, sym, *orderID)
	case "orders":
		body, err = client.AllOrders(ctx, sym)
	case "leverage":
		body, err = client.ChangeLeverage(ctx, sym, *leverage)
	case "cancel":
		body, err = client.CancelOrder(ctx, sym, *orderID)
	case "cancel-all":
		body, err = client.CancelAllOpenOrders(ctx, sym)
	case "new-order":
		var p gateway.OrderParams
		p, err = orderParamsFromFlags(sym)
		if err != nil {
			return err
		}
		body, err = client.NewOrder(ctx, p)
	default:
		return fmt.Errorf("未知操作: %s", *op)
	}
	if err != nil {
		return err
	}
	fmt.Println(body)
	return nil
}

func runKlines(ctx context.Context, cfg *config.Config, client *gateway.Client) error {
	sym := strings.ToUpper(*symbol)
	log.Info().Strs("symbols", cfg.GetAllSymbols()).Msg("已配置交易对")
	return pollReports(ctx, client, os.Stdout, *every, func() []config.MarketConfig {
		return resolveMarkets(currentConfig(cfg), sym)
	})
}

// pollReports 输出一次行情报告；every > 0 时按间隔重复，每轮重新取市场列表以跟随配置热重载。
func pollReports(ctx context.Context, client *gateway.Client, w io.Writer, every time.Duration, markets func() []config.MarketConfig) error {
	initial := markets()
	if len(initial) == 0 {
		return errors.New("未配置交易对，请使用 -symbol 或在配置文件中设置 markets")
	}
	printReports(w, fetchReports(ctx, client, initial))
	if every <= 0 {
		return nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("收到退出信号")
			return nil
		case <-ticker.C:
			current := markets()
			if len(current) == 0 {
				log.Warn().Msg("配置中没有交易对，跳过本轮")
				continue
			}
			printReports(w, fetchReports(ctx, client, current))
		}
	}
}

// currentConfig 返回热重载后的最新配置，尚未加载时使用 fallback。
func currentConfig(fallback *config.Config) *config.Config {
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	return fallback
}

// resolveMarkets 选出要拉取的市场：未指定 symbol 时取配置中的全部；
// 指定的 symbol 在配置中存在时沿用其 interval/limit/ema_period，否则使用命令行参数。
func resolveMarkets(cfg *config.Config, sym string) []config.MarketConfig {
	if sym == "" {
		return cfg.Markets
	}
	if m := cfg.GetMarket(sym); m != nil {
		return []config.MarketConfig{*m}
	}
	return []config.MarketConfig{{
		Symbol:    sym,
		Interval:  *interval,
		Limit:     *limit,
		EMAPeriod: *emaPeriod,
	}}
}

func orderParamsFromFlags(sym string) (gateway.OrderParams, error) {
	p := gateway.OrderParams{
		Symbol:      optFlag(sym),
		Side:        optFlag(strings.ToUpper(*side)),
		Type:        optFlag(strings.ToUpper(*orderType)),
		TimeInForce: optFlag(strings.ToUpper(*timeInForce)),
	}
	decimals := []struct {
		name string
		raw  string
		dst  **decimal.Decimal
	}{
		{"qty", *quantity, &p.Quantity},
		{"price", *price, &p.Price},
		{"stop-price", *stopPrice, &p.StopPrice},
		{"callback-rate", *callbackRate, &p.CallbackRate},
	}
	for _, d := range decimals {
		if d.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(d.raw)
		if err != nil {
			return p, fmt.Errorf("-%s 不是合法数字: %w", d.name, err)
		}
		*d.dst = &v
	}
	return p, nil
}

func optFlag(s string) *string {
	if s == "" {
		return nil
	}
	return gateway.Opt(s)
}
