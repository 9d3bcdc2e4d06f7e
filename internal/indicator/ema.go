package indicator

// EMA 计算指数移动平均，K = 2/(N+1)。
// 以前 period 个价格的简单平均作为初值，再依次平滑全部价格，返回与 prices 等长的序列。
// period 非法或数据不足时返回 nil。
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return nil
	}
	k := 2.0 / (float64(period) + 1.0)

	var sum float64
	for _, p := range prices[:period] {
		sum += p
	}
	prev := sum / float64(period)

	out := make([]float64, len(prices))
	for i, p := range prices {
		prev = p*k + prev*(1-k)
		out[i] = prev
	}
	return out
}

// Disparity 返回价格相对 EMA 的乖离率（%）。价格为 0 时返回 0。
func Disparity(ema, price float64) float64 {
	if price == 0 {
		return 0
	}
	return (price - ema) / price * 100.0
}
