package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/dlp-generator/internal/observability"
)

// RouteUnmatched labels requests that did not hit a registered route, so
// scanners probing random paths cannot blow up label cardinality.
const RouteUnmatched = "unmatched"

var unobservedRoutes = map[string]bool{
	"/metrics": true,
}

// Metrics records per-route request latency and the in-flight gauge.
// A nil registry turns it into a pass-through.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if unobservedRoutes[c.FullPath()] {
			c.Next()
			return
		}
		m.ApiInflightInc()
		began := time.Now()
		c.Next()
		m.ApiInflightDec()

		m.ObserveAPI(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status()), time.Since(began))
	}
}

func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return RouteUnmatched
}
