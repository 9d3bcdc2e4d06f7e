// Package market 把交易所返回的原始 JSON 解析为行情记录。
package market

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// ErrMalformedKline K 线数组长度或字段类型不符合预期。
var ErrMalformedKline = errors.New("malformed kline")

// APIError 是交易所返回的 {"code":..,"msg":..} 错误体。
type APIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance error %d: %s", e.Code, e.Msg)
}

// Kline 一根 K 线
type Kline struct {
	OpenTime  int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
	CloseTime int64
}

// OpenAt 返回开盘时间（UTC）。
func (k Kline) OpenAt() time.Time {
	return time.UnixMilli(k.OpenTime).UTC()
}

// CloseAt 返回收盘时间（UTC）。
func (k Kline) CloseAt() time.Time {
	return time.UnixMilli(k.CloseTime).UTC()
}

func (k Kline) String() string {
	return fmt.Sprintf("%s O:%s H:%s L:%s C:%s V:%s",
		k.OpenAt().Format(time.RFC3339), k.Open, k.High, k.Low, k.Close, k.Volume)
}

// Klines 按时间升序排列的 K 线序列。
type Klines []Kline

// Closes 返回收盘价序列，供指标计算使用。
func (ks Klines) Closes() []float64 {
	out := make([]float64, len(ks))
	for i, k := range ks {
		out[i] = k.Close.InexactFloat64()
	}
	return out
}

// Last 返回最后一根 K 线。
func (ks Klines) Last() (Kline, bool) {
	if len(ks) == 0 {
		return Kline{}, false
	}
	return ks[len(ks)-1], true
}

// ParseKlines 解析 /fapi/v1/klines 的响应体。响应是错误对象时返回 *APIError。
func ParseKlines(body string) (Klines, error) {
	raw := bytes.TrimSpace([]byte(body))
	if len(raw) > 0 && raw[0] == '{' {
		var apiErr APIError
		if err := json.Unmarshal(raw, &apiErr); err != nil {
			return nil, fmt.Errorf("decode error body: %w", err)
		}
		return nil, &apiErr
	}

	var rows [][]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	out := make(Klines, 0, len(rows))
	for i, row := range rows {
		k, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d: %w", i, err)
		}
		out = append(out, k)
	}
	return out, nil
}

func parseKline(row []json.RawMessage) (Kline, error) {
	var k Kline
	if len(row) < 7 {
		return k, fmt.Errorf("%w: %d fields", ErrMalformedKline, len(row))
	}
	if err := json.Unmarshal(row[0], &k.OpenTime); err != nil {
		return k, fmt.Errorf("%w: open time: %v", ErrMalformedKline, err)
	}
	if err := json.Unmarshal(row[6], &k.CloseTime); err != nil {
		return k, fmt.Errorf("%w: close time: %v", ErrMalformedKline, err)
	}
	prices := []struct {
		name string
		dst  *decimal.Decimal
		src  json.RawMessage
	}{
		{"open", &k.Open, row[1]},
		{"high", &k.High, row[2]},
		{"low", &k.Low, row[3]},
		{"close", &k.Close, row[4]},
		{"volume", &k.Volume, row[5]},
	}
	for _, p := range prices {
		var s string
		if err := json.Unmarshal(p.src, &s); err != nil {
			return k, fmt.Errorf("%w: %s: %v", ErrMalformedKline, p.name, err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return k, fmt.Errorf("%w: %s: %v", ErrMalformedKline, p.name, err)
		}
		*p.dst = d
	}
	return k, nil
}
