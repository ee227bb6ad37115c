package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CtxRequestIDKey = "request_id"
	HeaderRequestID = "X-Request-ID"
)

// maxRequestIDLen bounds ids accepted from clients.
const maxRequestIDLen = 128

// RequestIDMiddleware tags every request with an id. A sane id sent by the
// client is kept, otherwise a new UUID is generated. The id is echoed in the
// response header.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Set(CtxRequestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestID returns the id assigned by RequestIDMiddleware, or "" when the
// middleware did not run.
func RequestID(c *gin.Context) string {
	v, ok := c.Get(CtxRequestIDKey)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
