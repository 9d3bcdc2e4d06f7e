package gateway

import (
	"errors"
	"testing"
)

func TestSignFixture(t *testing.T) {
	const want = "2ab6765436359ed0d99bde3f15fe5295bc908c56fc0ae55fd1e986354d5de793"
	msg := "symbol=BTCUSDT&timestamp=1700000000000"
	if got := Sign("abc", msg); got != want {
		t.Fatalf("signature = %s, want %s", got, want)
	}
	if got := Sign("abc", msg); got != want {
		t.Fatalf("signature not deterministic: %s", got)
	}
}

func TestNewSignerRejectsEmptySecret(t *testing.T) {
	if _, err := NewSigner(""); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestSignQueryCoversTimestamp(t *testing.T) {
	s, err := NewSigner("abc")
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	sq := s.SignQuery("symbol=BTCUSDT", 1700000000000)
	if sq.Signature != "2ab6765436359ed0d99bde3f15fe5295bc908c56fc0ae55fd1e986354d5de793" {
		t.Fatalf("signature must cover query+timestamp, got %s", sq.Signature)
	}
	want := "symbol=BTCUSDT&timestamp=1700000000000&signature=" + sq.Signature
	if got := sq.Encode(); got != want {
		t.Fatalf("encoded = %s, want %s", got, want)
	}
}

func TestSignQueryEmptyBase(t *testing.T) {
	s, _ := NewSigner("secret")
	sq := s.SignQuery("", 1700000000000)
	if sq.Signature != "d615d05216c634afd48df5e1fc52c0d95b77892f19502e1b619f391bc9d68205" {
		t.Fatalf("unexpected signature %s", sq.Signature)
	}
	if got := sq.Encode(); got != "timestamp=1700000000000&signature="+sq.Signature {
		t.Fatalf("unexpected encoded query %s", got)
	}
}
