// Package logging 统一创建 logrus 日志实例。
// 面向用户的进度输出走 Output writer，这里只负责诊断日志（默认 warn，--verbose 时 debug）。
package logging

import (
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

const redacted = "<redacted>"

// New 创建写入 w 的 logger
func New(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !verbose,
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.WarnLevel)
	}
	return l
}

// Discard 返回丢弃所有输出的 logger，用于调用方未注入 logger 的情况
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OrDiscard nil 时返回 Discard()
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}

// RedactedHeaders 把请求头转成日志字段，凭证类头部替换为占位符
func RedactedHeaders(h http.Header) logrus.Fields {
	fields := logrus.Fields{}
	for key := range h {
		keyLower := strings.ToLower(key)
		switch keyLower {
		case "authorization", "cookie", "set-cookie":
			fields[keyLower] = redacted
		default:
			fields[keyLower] = h.Get(key)
		}
	}
	return fields
}
