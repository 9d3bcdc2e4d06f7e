package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/newplayman/fapi-port/internal/config"
	gateway "github.com/newplayman/fapi-port/internal/exchange"
	"github.com/newplayman/fapi-port/internal/market"
	"github.com/newplayman/fapi-port/internal/metrics"
)

var (
	green  = color.New(color.FgGreen).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
	bold   = color.New(color.Bold).SprintfFunc()
)

type marketReport struct {
	market  config.MarketConfig
	summary market.Summary
	err     error
}

// fetchReports 并发拉取每个市场的 K 线并计算 EMA 乖离率
func fetchReports(ctx context.Context, client *gateway.Client, markets []config.MarketConfig) []marketReport {
	reports := make([]marketReport, len(markets))
	var wg conc.WaitGroup
	for i, m := range markets {
		i, m := i, m
		wg.Go(func() {
			reports[i] = fetchReport(ctx, client, m)
		})
	}
	wg.Wait()
	return reports
}

func fetchReport(ctx context.Context, client *gateway.Client, m config.MarketConfig) marketReport {
	r := marketReport{market: m}
	body, err := client.Klines(ctx, m.Symbol, m.Interval, gateway.Opt(m.Limit))
	if err != nil {
		r.err = err
		return r
	}
	ks, err := market.ParseKlines(body)
	if err != nil {
		r.err = err
		return r
	}
	r.summary, r.err = market.Summarize(ks, m.EMAPeriod)
	if r.err == nil {
		metrics.UpdateKlineMetrics(m.Symbol, m.Interval, r.summary.Last.Close.InexactFloat64(), r.summary.Disparity)
	}
	return r
}

func printReports(w io.Writer, reports []marketReport) {
	for _, r := range reports {
		label := bold("%-12s %-4s", r.market.Symbol, r.market.Interval)
		if r.err != nil {
			log.Error().Err(r.err).Str("symbol", r.market.Symbol).Msg("行情获取失败")
			fmt.Fprintf(w, "%s %s\n", label, red("error: %v", r.err))
			continue
		}
		s := r.summary
		disp := fmt.Sprintf("%+.3f%%", s.Disparity)
		switch {
		case s.Disparity > 0:
			disp = green("%s", disp)
		case s.Disparity < 0:
			disp = red("%s", disp)
		default:
			disp = yellow("%s", disp)
		}
		fmt.Fprintf(w, "%s close=%s ema(%d)=%.4f disparity=%s at %s\n",
			label, s.Last.Close, r.market.EMAPeriod, s.EMA, disp, s.Last.CloseAt().Format("2006-01-02 15:04:05"))
	}
}
