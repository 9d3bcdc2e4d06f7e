package gateway

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultKlineLimit 是 K 线请求未指定 limit 时使用的条数。
const DefaultKlineLimit = 500

// EndpointKind 标识一个封闭的接口变体集合。
type EndpointKind int

const (
	KindKlines EndpointKind = iota + 1
	KindExchangeInfo
	KindTicker24hr
	KindBalance
	KindQueryOrder
	KindAllOrders
	KindLeverage
	KindCancelOrder
	KindAllOpenOrders
	KindNewOrder
)

var kindNames = map[EndpointKind]string{
	KindKlines:        "klines",
	KindExchangeInfo:  "exchange_info",
	KindTicker24hr:    "ticker_24hr",
	KindBalance:       "balance",
	KindQueryOrder:    "query_order",
	KindAllOrders:     "all_orders",
	KindLeverage:      "leverage",
	KindCancelOrder:   "cancel_order",
	KindAllOpenOrders: "all_open_orders",
	KindNewOrder:      "new_order",
}

func (k EndpointKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// 下单类型
const (
	OrderTypeLimit              = "LIMIT"
	OrderTypeMarket             = "MARKET"
	OrderTypeStop               = "STOP"
	OrderTypeTakeProfit         = "TAKE_PROFIT"
	OrderTypeStopMarket         = "STOP_MARKET"
	OrderTypeTakeProfitMarket   = "TAKE_PROFIT_MARKET"
	OrderTypeTrailingStopMarket = "TRAILING_STOP_MARKET"
)

// OrderParams 新订单参数。调用边界上全部可选，编码前补默认值；
// symbol/side/type 缺失时由 Validate 拒绝。
type OrderParams struct {
	Symbol       *string
	Side         *string
	Type         *string
	TimeInForce  *string
	Quantity     *decimal.Decimal
	Price        *decimal.Decimal
	StopPrice    *decimal.Decimal
	CallbackRate *decimal.Decimal
}

// Endpoint 是一个带标签的请求变体：Kind 决定路径、字段和动词，其余字段只有对应变体才读取。
type Endpoint struct {
	Kind     EndpointKind
	Symbol   string
	Interval string
	Limit    *int
	Leverage int
	OrderID  int64
	Order    OrderParams
}

// Opt 返回 v 的指针，便于填充可选参数。
func Opt[T any](v T) *T {
	return &v
}

// Klines 获取 K 线（GET /fapi/v1/klines），limit 为 nil 时使用 500。
func Klines(symbol, interval string, limit *int) Endpoint {
	return Endpoint{Kind: KindKlines, Symbol: symbol, Interval: interval, Limit: limit}
}

// ExchangeInfo 获取交易规则（GET /fapi/v1/exchangeInfo）。
func ExchangeInfo() Endpoint {
	return Endpoint{Kind: KindExchangeInfo}
}

// Ticker24hr 获取 24 小时行情（GET /fapi/v1/ticker/24hr）。
func Ticker24hr(symbol string) Endpoint {
	return Endpoint{Kind: KindTicker24hr, Symbol: symbol}
}

// Balance 查询账户余额（GET /fapi/v3/balance）。
func Balance() Endpoint {
	return Endpoint{Kind: KindBalance}
}

// QueryOrder 查询单个订单（GET /fapi/v1/order）。
func QueryOrder(symbol string, orderID int64) Endpoint {
	return Endpoint{Kind: KindQueryOrder, Symbol: symbol, OrderID: orderID}
}

// AllOrders 查询全部订单（GET /fapi/v1/allOrders）。
func AllOrders(symbol string) Endpoint {
	return Endpoint{Kind: KindAllOrders, Symbol: symbol}
}

// ChangeLeverage 调整杠杆（POST /fapi/v1/leverage）。
func ChangeLeverage(symbol string, leverage int) Endpoint {
	return Endpoint{Kind: KindLeverage, Symbol: symbol, Leverage: leverage}
}

// CancelOrder 按订单ID撤单（DELETE /fapi/v1/order）。
func CancelOrder(symbol string, orderID int64) Endpoint {
	return Endpoint{Kind: KindCancelOrder, Symbol: symbol, OrderID: orderID}
}

// AllOpenOrders 撤销指定合约的全部挂单（DELETE /fapi/v1/allOpenOrders）。
func AllOpenOrders(symbol string) Endpoint {
	return Endpoint{Kind: KindAllOpenOrders, Symbol: symbol}
}

// NewOrder 下单（POST /fapi/v1/order），字段按订单类型选取。
func NewOrder(p OrderParams) Endpoint {
	return Endpoint{Kind: KindNewOrder, Order: p}
}

type endpointDef struct {
	path     string
	method   string
	signed   bool
	fields   func(Endpoint) []Field
	validate func(Endpoint) error
}

var endpointTable = map[EndpointKind]endpointDef{
	KindKlines: {
		path:   "/fapi/v1/klines",
		method: http.MethodGet,
		fields: func(e Endpoint) []Field {
			limit := DefaultKlineLimit
			if e.Limit != nil {
				limit = *e.Limit
			}
			return []Field{
				{"symbol", e.Symbol},
				{"interval", e.Interval},
				{"limit", strconv.Itoa(limit)},
			}
		},
		validate: func(e Endpoint) error {
			if err := require("symbol", e.Symbol); err != nil {
				return err
			}
			return require("interval", e.Interval)
		},
	},
	KindExchangeInfo: {
		path:   "/fapi/v1/exchangeInfo",
		method: http.MethodGet,
	},
	KindTicker24hr: {
		path:     "/fapi/v1/ticker/24hr",
		method:   http.MethodGet,
		fields:   symbolOnly,
		validate: requireSymbol,
	},
	KindBalance: {
		path:   "/fapi/v3/balance",
		method: http.MethodGet,
		signed: true,
	},
	// 查单和撤单在 symbol 之外有意加上 orderId，交易所要求 orderId 或 origClientOrderId
	KindQueryOrder: {
		path:     "/fapi/v1/order",
		method:   http.MethodGet,
		signed:   true,
		fields:   symbolAndOrderID,
		validate: requireSymbolAndOrderID,
	},
	KindAllOrders: {
		path:     "/fapi/v1/allOrders",
		method:   http.MethodGet,
		signed:   true,
		fields:   symbolOnly,
		validate: requireSymbol,
	},
	KindLeverage: {
		path:   "/fapi/v1/leverage",
		method: http.MethodPost,
		signed: true,
		fields: func(e Endpoint) []Field {
			return []Field{
				{"symbol", e.Symbol},
				{"leverage", strconv.Itoa(e.Leverage)},
			}
		},
		validate: func(e Endpoint) error {
			if err := requireSymbol(e); err != nil {
				return err
			}
			if e.Leverage <= 0 {
				return fmt.Errorf("%w: leverage must be > 0", ErrMissingField)
			}
			return nil
		},
	},
	// 同查单，字段集有意扩展为 symbol + orderId
	KindCancelOrder: {
		path:     "/fapi/v1/order",
		method:   http.MethodDelete,
		signed:   true,
		fields:   symbolAndOrderID,
		validate: requireSymbolAndOrderID,
	},
	KindAllOpenOrders: {
		path:     "/fapi/v1/allOpenOrders",
		method:   http.MethodDelete,
		signed:   true,
		fields:   symbolOnly,
		validate: requireSymbol,
	},
	KindNewOrder: {
		path:     "/fapi/v1/order",
		method:   http.MethodPost,
		signed:   true,
		fields:   newOrderFields,
		validate: validateNewOrder,
	},
}

// Path 返回变体固定的 URL 路径，未知变体返回空串。
func (e Endpoint) Path() string {
	return endpointTable[e.Kind].path
}

// Method 返回变体默认使用的 HTTP 动词。
func (e Endpoint) Method() string {
	return endpointTable[e.Kind].method
}

// Signed 报告该变体是否需要签名。
func (e Endpoint) Signed() bool {
	return endpointTable[e.Kind].signed
}

// QueryFields 返回该变体规范的、有序的查询字段。
func (e Endpoint) QueryFields() Query {
	def, ok := endpointTable[e.Kind]
	if !ok || def.fields == nil {
		return nil
	}
	return def.fields(e)
}

// Validate 在构造请求前检查身份字段，避免把空 symbol/side 发往交易所。
func (e Endpoint) Validate() error {
	def, ok := endpointTable[e.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, e.Kind)
	}
	if def.validate == nil {
		return nil
	}
	return def.validate(e)
}

func symbolOnly(e Endpoint) []Field {
	return []Field{{"symbol", e.Symbol}}
}

func symbolAndOrderID(e Endpoint) []Field {
	return []Field{
		{"symbol", e.Symbol},
		{"orderId", strconv.FormatInt(e.OrderID, 10)},
	}
}

func requireSymbol(e Endpoint) error {
	return require("symbol", e.Symbol)
}

func requireSymbolAndOrderID(e Endpoint) error {
	if err := requireSymbol(e); err != nil {
		return err
	}
	if e.OrderID <= 0 {
		return fmt.Errorf("%w: orderId", ErrMissingField)
	}
	return nil
}

func require(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return nil
}

// newOrderFields 按订单类型选取字段；未知类型返回空集合。
func newOrderFields(e Endpoint) []Field {
	p := e.Order
	symbol := Field{"symbol", optString(p.Symbol)}
	side := Field{"side", optString(p.Side)}
	typ := Field{"type", optString(p.Type)}
	quantity := Field{"quantity", optDecimal(p.Quantity)}
	price := Field{"price", optDecimal(p.Price)}
	stopPrice := Field{"stopPrice", optDecimal(p.StopPrice)}

	switch typ.Value {
	case OrderTypeLimit:
		return []Field{symbol, side, typ, {"timeInForce", optString(p.TimeInForce)}, quantity, price}
	case OrderTypeMarket:
		return []Field{symbol, side, typ, quantity}
	case OrderTypeStop, OrderTypeTakeProfit:
		return []Field{symbol, side, typ, quantity, price, stopPrice}
	case OrderTypeStopMarket, OrderTypeTakeProfitMarket:
		return []Field{symbol, side, typ, stopPrice}
	case OrderTypeTrailingStopMarket:
		return []Field{symbol, side, typ, {"callbackRate", optDecimal(p.CallbackRate)}}
	default:
		return []Field{}
	}
}

func validateNewOrder(e Endpoint) error {
	p := e.Order
	if err := require("symbol", optString(p.Symbol)); err != nil {
		return err
	}
	if err := require("side", optString(p.Side)); err != nil {
		return err
	}
	return require("type", optString(p.Type))
}

func optString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optDecimal(v *decimal.Decimal) string {
	if v == nil {
		return decimal.Zero.String()
	}
	return v.String()
}
