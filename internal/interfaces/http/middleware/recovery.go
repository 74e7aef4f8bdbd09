package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

// Recovery turns a handler panic into a 500 envelope.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("handler panic",
			logging.String("path", c.Request.URL.Path),
			logging.String("request_id", c.GetString(RequestIDKey)),
			logging.String("panic", fmt.Sprint(recovered)))
		handlers.WriteError(c, errors.Internal("internal server error"))
	})
}

// BodyLimit caps request bodies at n bytes.  Zero disables the cap.
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}

//Personal.AI order the ending
