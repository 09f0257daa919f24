package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ReasonKey is the gin context key handlers set to the rejection label of a
// failed codec request. RequestLogger reports it alongside the status.
const ReasonKey = "beacon.reason"

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}

// RequestLogger logs one line per inspector request. Rejected requests log at
// warn with their reason, server faults at error.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		if reason := c.GetString(ReasonKey); reason != "" {
			event = event.Str("reason", reason)
		}

		event.
			Str("method", c.Request.Method).
			Str("route", routeOf(c)).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("took", time.Since(began)).
			Str("client_ip", c.ClientIP()).
			Msg("inspect request")
	}
}

// RequestMetricsMiddleware feeds beacon_http_* for the named service.
func RequestMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		began := time.Now()
		c.Next()
		RecordHTTPRequest(service, c.Request.Method, routeOf(c), c.Writer.Status(), time.Since(began))
	}
}
