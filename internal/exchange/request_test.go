package gateway

import (
	"errors"
	"net/http"
	"testing"
)

func TestBuildURL(t *testing.T) {
	const want = "https://fapi.example.com/fapi/v1/klines?symbol=BTCUSDT&interval=1m&limit=500"
	query := "symbol=BTCUSDT&interval=1m&limit=500"
	cases := []struct{ origin, path string }{
		{"https://fapi.example.com", "/fapi/v1/klines"},
		{"https://fapi.example.com/", "/fapi/v1/klines"},
		{"https://fapi.example.com", "fapi/v1/klines"},
		{"https://fapi.example.com/", "fapi/v1/klines"},
	}
	for _, tc := range cases {
		got, err := BuildURL(tc.origin, tc.path, query)
		if err != nil {
			t.Fatalf("%s + %s: %v", tc.origin, tc.path, err)
		}
		if got != want {
			t.Errorf("%s + %s = %s, want %s", tc.origin, tc.path, got, want)
		}
	}
}

func TestBuildURLWithoutQuery(t *testing.T) {
	got, err := BuildURL("https://fapi.example.com", "/fapi/v1/exchangeInfo", "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got != "https://fapi.example.com/fapi/v1/exchangeInfo" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestBuildURLRejectsBadOrigin(t *testing.T) {
	for _, origin := range []string{"", "fapi.example.com", "://bad", "https://"} {
		if _, err := BuildURL(origin, "/fapi/v1/klines", ""); !errors.Is(err, ErrURLConstruction) {
			t.Errorf("origin %q: expected ErrURLConstruction, got %v", origin, err)
		}
	}
}

func TestParseMethod(t *testing.T) {
	ok := map[string]string{
		"get":    http.MethodGet,
		"GET":    http.MethodGet,
		"Post":   http.MethodPost,
		"delete": http.MethodDelete,
		"Delete": http.MethodDelete,
	}
	for token, want := range ok {
		got, err := ParseMethod(token)
		if err != nil || got != want {
			t.Errorf("ParseMethod(%q) = %q, %v", token, got, err)
		}
	}
	for _, token := range []string{"PATCH", "PUT", "", "HEAD"} {
		if _, err := ParseMethod(token); !errors.Is(err, ErrUnsupportedMethod) {
			t.Errorf("ParseMethod(%q): expected ErrUnsupportedMethod, got %v", token, err)
		}
	}
}

func TestOriginsResolve(t *testing.T) {
	var o Origins
	if o.Resolve(Futures) != "https://fapi.binance.com" || o.Resolve(Spot) != "https://api.binance.com" {
		t.Fatalf("unexpected default origins")
	}
	o = Origins{Futures: "https://testnet.binancefuture.com"}
	if o.Resolve(Futures) != "https://testnet.binancefuture.com" {
		t.Fatalf("futures override ignored")
	}
	if o.Resolve(Spot) != "https://api.binance.com" {
		t.Fatalf("spot should fall back to default")
	}
}
