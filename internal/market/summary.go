package market

import (
	"fmt"

	"github.com/newplayman/fapi-port/internal/indicator"
)

// Summary 最新收盘价及其相对 EMA 的乖离率
type Summary struct {
	Last      Kline
	EMA       float64
	Disparity float64
}

// Summarize 计算 K 线序列最后一根的 EMA 与乖离率。
func Summarize(ks Klines, period int) (Summary, error) {
	last, ok := ks.Last()
	if !ok {
		return Summary{}, fmt.Errorf("no klines")
	}
	emas := indicator.EMA(ks.Closes(), period)
	if emas == nil {
		return Summary{}, fmt.Errorf("need at least %d klines for ema, got %d", period, len(ks))
	}
	ema := emas[len(emas)-1]
	price := last.Close.InexactFloat64()
	return Summary{
		Last:      last,
		EMA:       ema,
		Disparity: indicator.Disparity(ema, price),
	}, nil
}
