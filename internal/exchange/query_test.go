package gateway

import "testing"

func TestQueryEncodePreservesOrder(t *testing.T) {
	q := Query{{"symbol", "BTCUSDT"}, {"interval", "1m"}, {"limit", "500"}}
	if got := q.Encode(); got != "symbol=BTCUSDT&interval=1m&limit=500" {
		t.Fatalf("unexpected query %s", got)
	}
	q = Query{{"limit", "500"}, {"symbol", "BTCUSDT"}}
	if got := q.Encode(); got != "limit=500&symbol=BTCUSDT" {
		t.Fatalf("order not preserved: %s", got)
	}
}

func TestQueryEncodeEscapesValues(t *testing.T) {
	q := Query{{"symbol", "BTC&USDT"}, {"note", "a b=c"}}
	if got := q.Encode(); got != "symbol=BTC%26USDT&note=a+b%3Dc" {
		t.Fatalf("unexpected escaped query %s", got)
	}
}

func TestQueryEncodeEmpty(t *testing.T) {
	if got := (Query{}).Encode(); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
	var q Query
	if got := q.Encode(); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
}

func TestQueryWithDoesNotMutate(t *testing.T) {
	base := make(Query, 1, 4)
	base[0] = Field{"symbol", "BTCUSDT"}
	a := base.With("recvWindow", "5000")
	b := base.With("recvWindow", "6000")
	if len(base) != 1 {
		t.Fatalf("base mutated: %v", base)
	}
	if a.Encode() != "symbol=BTCUSDT&recvWindow=5000" || b.Encode() != "symbol=BTCUSDT&recvWindow=6000" {
		t.Fatalf("unexpected appended queries %s / %s", a.Encode(), b.Encode())
	}
}

func TestWithTimestamp(t *testing.T) {
	if got := WithTimestamp("symbol=BTCUSDT", 1700000000000); got != "symbol=BTCUSDT&timestamp=1700000000000" {
		t.Fatalf("unexpected %s", got)
	}
	if got := WithTimestamp("", 1700000000000); got != "timestamp=1700000000000" {
		t.Fatalf("unexpected %s", got)
	}
}
