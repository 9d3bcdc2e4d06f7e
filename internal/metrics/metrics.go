package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	// 请求指标
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fapi_request_count_total",
			Help: "已发送的 REST 请求数",
		},
		[]string{"endpoint", "method", "signed"},
	)

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fapi_api_latency_seconds",
			Help:    "API请求延迟",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"endpoint", "status"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fapi_error_count_total",
			Help: "错误计数",
		},
		[]string{"type", "endpoint"},
	)

	// 行情指标（CLI 拉取 K 线后更新）
	LastClose = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fapi_last_close",
			Help: "最近一根K线收盘价",
		},
		[]string{"symbol", "interval"},
	)

	EMADisparity = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fapi_ema_disparity_percent",
			Help: "收盘价相对EMA的乖离率 (%)",
		},
		[]string{"symbol", "interval"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		APILatency,
		ErrorCount,
		LastClose,
		EMADisparity,
	)
}

// StartMetricsServer 启动Prometheus监控服务器，并返回实际监听端口
func StartMetricsServer(port int) (int, error) {
	if port < 0 {
		port = 0
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("listen on %s failed: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	log.Info().Int("port", actualPort).Msg("启动Prometheus监控服务器")

	go func() {
		if err := http.Serve(listener, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Prometheus服务器异常退出")
		}
	}()

	return actualPort, nil
}

// RecordRequest 记录一次完成的请求（任何 HTTP 状态）
func RecordRequest(endpoint, method string, signed bool, status int, elapsed time.Duration) {
	RequestCount.WithLabelValues(endpoint, method, fmt.Sprint(signed)).Inc()
	APILatency.WithLabelValues(endpoint, fmt.Sprint(status)).Observe(elapsed.Seconds())
}

// RecordError 记录错误
func RecordError(errType, endpoint string) {
	ErrorCount.WithLabelValues(errType, endpoint).Inc()
}

// UpdateKlineMetrics 更新行情指标
func UpdateKlineMetrics(symbol, interval string, lastClose, disparity float64) {
	LastClose.WithLabelValues(symbol, interval).Set(lastClose)
	EMADisparity.WithLabelValues(symbol, interval).Set(disparity)
}
