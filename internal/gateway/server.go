package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/polyserve/internal/books"
	"github.com/betbot/polyserve/internal/groups"
	"github.com/betbot/polyserve/internal/registry"
	"github.com/betbot/polyserve/pkg/logger"
)

// Server serves the gateway HTTP surface: search, name lookup, book
// aggregation, order pass-through and asset grouping.
type Server struct {
	reg    *registry.Registry
	books  *books.Aggregator
	groups *groups.Store
	trader VenueTrader
}

func New(reg *registry.Registry, agg *books.Aggregator, store *groups.Store, trader VenueTrader) *Server {
	return &Server{
		reg:    reg,
		books:  agg,
		groups: store,
		trader: trader,
	}
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLog())

	r.GET("/healthz", wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	r.GET("/search", wrap(s.handleSearch))
	r.GET("/get_names", wrap(s.handleGetNames))
	r.GET("/get_id", wrap(s.handleGetID))
	r.GET("/get_books", wrap(s.handleGetBooks))
	r.POST("/place_order", wrap(s.handlePlaceOrder))
	r.GET("/get_orders", wrap(s.handleGetOrders))

	r.POST("/set_group", wrap(s.handleSetGroup))
	r.PATCH("/rename_group", wrap(s.handleRenameGroup))
	r.PATCH("/extend_group", wrap(s.handleExtendGroup))
	r.PATCH("/reduce_group", wrap(s.handleReduceGroup))
	r.GET("/get_group", wrap(s.handleGetGroup))
	r.GET("/get_groups", wrap(s.handleGetGroups))
	r.DELETE("/remove_group", wrap(s.handleRemoveGroup))

	return r
}

// wrap adapts net/http handlers to gin.
func wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h(c.Writer, c.Request)
	}
}

// requestLog tags every request with a short id and logs method, path and latency.
func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()[:8]
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"req":    reqID,
			"status": c.Writer.Status(),
			"took":   time.Since(start).String(),
		}).Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
