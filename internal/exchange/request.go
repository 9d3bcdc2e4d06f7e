package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Request 是 { 源站, 接口变体 } 的纯值，构造时不做任何 I/O。
type Request struct {
	Origin   BaseOrigin
	Endpoint Endpoint
}

func NewRequest(origin BaseOrigin, endpoint Endpoint) Request {
	return Request{Origin: origin, Endpoint: endpoint}
}

// BuildURL 按 RFC 3986 引用解析把 path 拼到 origin 上，并附加原样的 rawQuery。
// 源站结尾是否带 / 不影响结果。
func BuildURL(origin, path, rawQuery string) (string, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("%w: parse origin: %v", ErrURLConstruction, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: origin %q is not absolute", ErrURLConstruction, origin)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("%w: parse path: %v", ErrURLConstruction, err)
	}
	u := base.ResolveReference(ref)
	u.RawQuery = rawQuery
	u.Fragment = ""
	return u.String(), nil
}

// ParseMethod 将大小写不敏感的 GET/POST/DELETE 映射为 HTTP 动词。
func ParseMethod(token string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case http.MethodGet:
		return http.MethodGet, nil
	case http.MethodPost:
		return http.MethodPost, nil
	case http.MethodDelete:
		return http.MethodDelete, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, token)
	}
}
