package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration 凭证不可用（例如空 secret），在构造时返回。
	ErrConfiguration = errors.New("invalid client configuration")
	// ErrUnsupportedMethod 动词不在 GET/POST/DELETE 内，发生在任何网络活动之前。
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrURLConstruction 源站与路径无法拼成合法 URL。
	ErrURLConstruction = errors.New("url construction failed")
	// ErrMissingField 必填的身份字段（symbol、side、type 等）缺失。
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownEndpoint 变体不在接口表内。
	ErrUnknownEndpoint = errors.New("unknown endpoint")
)

// TransportError 表示发送阶段的网络失败（连接、超时、读取响应体、取消）。
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
