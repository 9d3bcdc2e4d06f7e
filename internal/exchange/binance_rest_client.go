package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/newplayman/fapi-port/internal/metrics"
	"github.com/rs/zerolog/log"
)

// HTTPDoer 是发送请求所需的最小接口，*http.Client 满足它，测试可注入计数桩。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Credentials 由配置在初始化时提供，只读共享；API key 只通过请求头发送。
type Credentials struct {
	APIKey    string
	SecretKey string
}

func (c Credentials) String() string {
	return "Credentials{APIKey:<redacted> SecretKey:<redacted>}"
}

func (c Credentials) GoString() string {
	return c.String()
}

// IsZero 报告是否完全没有配置凭证（仅公共接口可用）。
func (c Credentials) IsZero() bool {
	return c.APIKey == "" && c.SecretKey == ""
}

// ClientConfig 构造 Client 所需的全部显式配置，组件内部不读取环境变量。
type ClientConfig struct {
	Credentials  Credentials
	Origins      Origins
	HTTPClient   HTTPDoer
	Clock        func() time.Time
	RecvWindowMs int64
}

// Client 把接口变体转换成（可选签名的）HTTP 请求并返回原始响应体。
// 没有可变的调用状态，可被多个 goroutine 并发使用。
type Client struct {
	origins      Origins
	apiKey       string
	signer       *Signer
	httpClient   HTTPDoer
	clock        func() time.Time
	recvWindowMs int64
}

// NewClient 校验凭证并构造客户端。凭证为空时只能调用公共接口；
// 只配置了其中一项时返回 ErrConfiguration。
func NewClient(cfg ClientConfig) (*Client, error) {
	c := &Client{
		origins:      cfg.Origins,
		httpClient:   cfg.HTTPClient,
		clock:        cfg.Clock,
		recvWindowMs: cfg.RecvWindowMs,
	}
	if c.httpClient == nil {
		c.httpClient = NewDefaultHTTPClient()
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if !cfg.Credentials.IsZero() {
		if cfg.Credentials.APIKey == "" {
			return nil, fmt.Errorf("%w: empty api key", ErrConfiguration)
		}
		signer, err := NewSigner(cfg.Credentials.SecretKey)
		if err != nil {
			return nil, err
		}
		c.apiKey = cfg.Credentials.APIKey
		c.signer = signer
	}
	return c, nil
}

// NewDefaultHTTPClient 提供一个带超时的 http.Client。
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// Public 发送不签名的请求：不加时间戳、不加签名、不带 API key 头。
func (c *Client) Public(ctx context.Context, verb string, req Request) (string, error) {
	method, err := ParseMethod(verb)
	if err != nil {
		return "", err
	}
	if err := req.Endpoint.Validate(); err != nil {
		return "", err
	}
	query := req.Endpoint.QueryFields().Encode()
	target, err := BuildURL(c.origins.Resolve(req.Origin), req.Endpoint.Path(), query)
	if err != nil {
		return "", err
	}
	return c.dispatch(ctx, method, target, req.Endpoint, nil)
}

// Signed 发送签名请求：query 追加 timestamp 后签名，再追加 signature，并带 X-MBX-APIKEY 头。
func (c *Client) Signed(ctx context.Context, verb string, req Request) (string, error) {
	if c.signer == nil {
		return "", fmt.Errorf("%w: credentials required for %s", ErrConfiguration, req.Endpoint.Kind)
	}
	method, err := ParseMethod(verb)
	if err != nil {
		return "", err
	}
	if err := req.Endpoint.Validate(); err != nil {
		return "", err
	}
	fields := req.Endpoint.QueryFields()
	if c.recvWindowMs > 0 {
		fields = fields.With("recvWindow", strconv.FormatInt(c.recvWindowMs, 10))
	}
	signed := c.signer.SignQuery(fields.Encode(), c.clock().UnixMilli())
	target, err := BuildURL(c.origins.Resolve(req.Origin), req.Endpoint.Path(), signed.Encode())
	if err != nil {
		return "", err
	}
	header := http.Header{}
	header.Set("X-MBX-APIKEY", c.apiKey)
	return c.dispatch(ctx, method, target, req.Endpoint, header)
}

// Do 按接口表选择动词和签名路径。
func (c *Client) Do(ctx context.Context, req Request) (string, error) {
	if req.Endpoint.Signed() {
		return c.Signed(ctx, req.Endpoint.Method(), req)
	}
	return c.Public(ctx, req.Endpoint.Method(), req)
}

// dispatch 执行一次 HTTP 调用，任何状态码都原样返回响应体，只有传输失败才报错。
func (c *Client) dispatch(ctx context.Context, method, target string, ep Endpoint, header http.Header) (string, error) {
	name := ep.Kind.String()
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrURLConstruction, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordError("transport", name)
		return "", &TransportError{Method: method, Path: ep.Path(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.RecordError("read_body", name)
		return "", &TransportError{Method: method, Path: ep.Path(), Err: err}
	}
	elapsed := time.Since(start)
	metrics.RecordRequest(name, method, header != nil, resp.StatusCode, elapsed)

	log.Debug().
		Str("endpoint", name).
		Str("method", method).
		Str("path", ep.Path()).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("请求完成")
	return string(body), nil
}

// Klines 获取 K 线；limit 为 nil 时使用 500。
func (c *Client) Klines(ctx context.Context, symbol, interval string, limit *int) (string, error) {
	return c.Do(ctx, NewRequest(Futures, Klines(symbol, interval, limit)))
}

// ExchangeInfo 获取交易规则和交易对信息。
func (c *Client) ExchangeInfo(ctx context.Context) (string, error) {
	return c.Do(ctx, NewRequest(Futures, ExchangeInfo()))
}

// Ticker24hr 获取 24 小时价格变动快照。
func (c *Client) Ticker24hr(ctx context.Context, symbol string) (string, error) {
	return c.Do(ctx, NewRequest(Futures, Ticker24hr(symbol)))
}

// Balance 查询合约账户余额（/fapi/v3/balance）。
func (c *Client) Balance(ctx context.Context) (string, error) {
	return c.Do(ctx, NewRequest(Futures, Balance()))
}

// QueryOrder 查询单个订单。
func (c *Client) QueryOrder(ctx context.Context, symbol string, orderID int64) (string, error) {
	return c.Do(ctx, NewRequest(Futures, QueryOrder(symbol, orderID)))
}

// AllOrders 查询所有订单。
func (c *Client) AllOrders(ctx context.Context, symbol string) (string, error) {
	return c.Do(ctx, NewRequest(Futures, AllOrders(symbol)))
}

// ChangeLeverage 调整杠杆倍数。
func (c *Client) ChangeLeverage(ctx context.Context, symbol string, leverage int) (string, error) {
	return c.Do(ctx, NewRequest(Futures, ChangeLeverage(symbol, leverage)))
}

// CancelOrder 通过交易所订单ID取消订单。
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) (string, error) {
	return c.Do(ctx, NewRequest(Futures, CancelOrder(symbol, orderID)))
}

// CancelAllOpenOrders 撤销指定合约的所有挂单。
func (c *Client) CancelAllOpenOrders(ctx context.Context, symbol string) (string, error) {
	return c.Do(ctx, NewRequest(Futures, AllOpenOrders(symbol)))
}

// NewOrder 下单，字段按订单类型选取。
func (c *Client) NewOrder(ctx context.Context, p OrderParams) (string, error) {
	return c.Do(ctx, NewRequest(Futures, NewOrder(p)))
}
