package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestID tags every request with a correlation id. An inbound
// X-Request-ID is honored so clients and upstream proxies can trace a
// consultation end to end; otherwise a fresh one is assigned. The id is
// echoed on the response and attached to all request-scoped log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)
		c.Next()
	}
}

// RequestIDFromContext returns the correlation id RequestID assigned, or ""
// outside the middleware chain.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
