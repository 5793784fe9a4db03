package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "swu_tracker_http_requests_in_flight",
	Help: "HTTP requests currently being served.",
})

// HTTPMetrics is Gin middleware that records request count, latency, and the
// in-flight gauge. Labels use the route pattern rather than the raw URL so
// parameterized routes do not explode cardinality.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpInFlight.Inc()
		start := time.Now()
		defer func() {
			httpInFlight.Dec()
			HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		}()

		c.Next()
	}
}
