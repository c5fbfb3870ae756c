// Package httpapi serves the node API over HTTP with gin.
//
// Each sub-API served by the connection gets its routes; the health
// and metrics routes are always mounted.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/blockberries/nodeapi"
	"github.com/blockberries/nodeapi/logging"
)

// Route paths.
const (
	PathEntityIterator  = "/engine-state/entity/iterator"
	PathKVStoreIterator = "/browse/kv-store/iterator"
	PathHealth          = "/healthz"
	PathMetrics         = "/metrics"
)

// Options configures the router. Every field is optional.
type Options struct {
	Logger *logrus.Entry
	// Gatherer backs /metrics. Nil leaves the route unmounted.
	Gatherer prometheus.Gatherer
	// Ready backs /healthz. Nil reports always ready.
	Ready func() bool
}

// NewRouter builds a gin engine serving the sub-APIs of conn.
func NewRouter(conn nodeapi.Connection, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		logger.Debugf("Endpoint: %-6s %s", httpMethod, absolutePath)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		RequestID(),
		UseLogger(logger),
	)

	h := newHandlers()
	if es := conn.AsEngineState(); es != nil {
		router.POST(PathEntityIterator, h.listEntities(es))
	}
	if b := conn.AsBrowse(); b != nil {
		router.POST(PathKVStoreIterator, h.listKeyValueStoreKeys(b))
	}

	ready := opts.Ready
	router.GET(PathHealth, func(c *gin.Context) {
		if ready != nil && !ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "apis": conn.APIs().String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "apis": conn.APIs().String()})
	})
	if opts.Gatherer != nil {
		router.GET(PathMetrics, gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return router
}
