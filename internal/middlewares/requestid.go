package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeader 是请求标识的透传头；上游网关带来的值原样保留。
const requestIDHeader = "X-Request-Id"

// ContextRequestID 是请求标识在 Gin Context 中的键，
// 访问日志与审计记录用它把同一次写操作串起来。
const ContextRequestID = "request_id"

// RequestID 中间件：为每个请求确定一个标识。请求头里已有则透传，
// 否则生成 UUID；随后写入 Context 并回写响应头，便于调用方关联排查。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ContextRequestID, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}
