package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blockberries/nodeapi/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// CtxRequestID is the gin context key of the request ID.
const CtxRequestID = "REQ_ID"

// RequestID takes the caller's X-Request-ID, or assigns one, echoes it
// in the response and stores it in the request context for logging.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = logging.NewRequestID()
		}
		c.Set(CtxRequestID, id)
		c.Header(RequestIDHeader, id)

		ctx := logging.WithSource(c.Request.Context(), "http")
		ctx = logging.WithRequestID(ctx, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UseLogger logs one line per request: successes at info, client
// errors at debug and server errors at error.
func UseLogger(logger *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		l := logging.WithRequest(c.Request.Context(), logger).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		})
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			l = l.WithField("error", msg)
		}
		switch {
		case status >= 500:
			l.Error("request failed")
		case status >= 400:
			l.Debug("request rejected")
		default:
			l.Info("request served")
		}
	}
}
