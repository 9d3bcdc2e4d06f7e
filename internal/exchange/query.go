package gateway

import (
	"net/url"
	"strconv"
	"strings"
)

// Field 是一个查询参数，值已转为字符串。
type Field struct {
	Name  string
	Value string
}

// Query 是有序的参数列表，顺序即签名和发送时的顺序。
type Query []Field

// Encode 按原顺序拼接 name=value，值做百分号编码。
func (q Query) Encode() string {
	var b strings.Builder
	for i, f := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.Value))
	}
	return b.String()
}

// With 返回追加了 name=value 的新 Query，不修改 q。
func (q Query) With(name, value string) Query {
	out := make(Query, len(q), len(q)+1)
	copy(out, q)
	return append(out, Field{Name: name, Value: value})
}

// WithTimestamp 在已编码的 query 后追加 timestamp=<ms>。
func WithTimestamp(query string, timestampMs int64) string {
	return appendParam(query, "timestamp", strconv.FormatInt(timestampMs, 10))
}

func appendParam(query, name, value string) string {
	if query == "" {
		return name + "=" + value
	}
	return query + "&" + name + "=" + value
}
