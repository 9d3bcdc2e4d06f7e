package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Signer 持有 API secret，对已编码的 query 计算 HMAC-SHA256。
type Signer struct {
	secret []byte
}

// NewSigner 在客户端构造时校验 secret，空 secret 直接失败，不会发起任何请求。
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret key", ErrConfiguration)
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign 返回 message 的十六进制签名。
func (s *Signer) Sign(message string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign 对 message 做一次性签名。
func Sign(secret, message string) string {
	return (&Signer{secret: []byte(secret)}).Sign(message)
}

// SignedQuery 是带时间戳和签名的 query，只在单次调用内存在，不打印不持久化。
type SignedQuery struct {
	Query     string
	Timestamp int64
	Signature string
}

// SignQuery 追加 timestamp 后签名；签名覆盖 timestamp，但不包含 signature 本身。
func (s *Signer) SignQuery(query string, timestampMs int64) SignedQuery {
	withTs := WithTimestamp(query, timestampMs)
	return SignedQuery{
		Query:     query,
		Timestamp: timestampMs,
		Signature: s.Sign(withTs),
	}
}

// Encode 返回实际发送的 query：query&timestamp=ts&signature=hex。
func (q SignedQuery) Encode() string {
	return appendParam(WithTimestamp(q.Query, q.Timestamp), "signature", q.Signature)
}
