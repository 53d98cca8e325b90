// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"ai-workbench/pkg/log"

	"github.com/gin-gonic/gin"
)

// maxLoggedBody 日志中保留的请求/响应体最大字节数。
const maxLoggedBody = 2048

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w bodyLogWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody + 1 - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger 是一个 Gin 中间件，用于记录请求和响应日志。
// 只记录 JSON 请求体（截断）；multipart 只记录大小，文件内容不会进入日志。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestBody := ""
		switch {
		case strings.HasPrefix(c.ContentType(), "application/json") && c.Request.Body != nil:
			raw, _ := io.ReadAll(c.Request.Body)
			// 将读取的请求体重新设置回 c.Request.Body，以便后续处理函数可以正常读取
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			requestBody = truncate(string(raw))
		case strings.HasPrefix(c.ContentType(), "multipart/"):
			requestBody = "<multipart " + byteSize(c.Request.ContentLength) + ">"
		}

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"requestBody", requestBody,
			"responseBody", truncate(blw.body.String()),
		)
	}
}

func truncate(s string) string {
	if len(s) <= maxLoggedBody {
		return s
	}
	// 回退到字符边界，避免截断多字节 UTF-8 字符
	cut := maxLoggedBody
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...(truncated)"
}

func byteSize(n int64) string {
	if n < 0 {
		return "unknown size"
	}
	return fmt.Sprintf("%d bytes", n)
}
