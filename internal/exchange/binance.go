package gateway

// Binance REST 源站（USDⓈ-M 合约 / 现货）
const (
	BinanceFuturesRestEndpoint = "https://fapi.binance.com"
	BinanceSpotRestEndpoint    = "https://api.binance.com"
)

// BaseOrigin 选择请求的源站，按调用指定。
type BaseOrigin int

const (
	Futures BaseOrigin = iota
	Spot
)

// String 返回源站的 scheme+host。
func (o BaseOrigin) String() string {
	switch o {
	case Spot:
		return BinanceSpotRestEndpoint
	default:
		return BinanceFuturesRestEndpoint
	}
}

// Origins 允许覆盖默认源站（测试网、httptest）。空字段使用默认值。
type Origins struct {
	Futures string
	Spot    string
}

// Resolve 返回 origin 对应的实际地址。
func (o Origins) Resolve(origin BaseOrigin) string {
	switch origin {
	case Spot:
		if o.Spot != "" {
			return o.Spot
		}
	default:
		if o.Futures != "" {
			return o.Futures
		}
	}
	return origin.String()
}
