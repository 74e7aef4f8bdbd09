package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-ID"

// RequestIDKey is the gin context key of the request id.
const RequestIDKey = "request_id"

// maxRequestIDLen bounds client supplied ids.
const maxRequestIDLen = 128

// RequestID reuses the caller's X-Request-ID or issues a uuid, echoes it and
// stores a request-scoped logger in the request context.
func RequestID(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(HeaderRequestID, id)
		ctx := logging.IntoContext(c.Request.Context(), logger.With(logging.String("request_id", id)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

//Personal.AI order the ending
