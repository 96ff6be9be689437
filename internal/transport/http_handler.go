package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/model"
	"github.com/goodnatureofminers/hashroad-backend/internal/tron/service/syncer"
	"go.uber.org/zap"
)

const (
	defaultBlocksLimit = 1000
	maxBlocksLimit     = 10000
)

type intervalRequest struct {
	Interval uint64 `json:"interval" binding:"required"`
}

type filterRequest struct {
	Query string `json:"query"`
}

// HTTPHandler serves the REST API.
type HTTPHandler struct {
	engine  Engine
	archive Archive
	metrics Metrics
	logger  *zap.Logger
}

// NewHTTPHandler returns an HTTPHandler. A nil archive disables the archive routes.
func NewHTTPHandler(engine Engine, archive Archive, metrics Metrics, logger *zap.Logger) (*HTTPHandler, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if metrics == nil {
		return nil, errors.New("http metrics is required")
	}
	return &HTTPHandler{
		engine:  engine,
		archive: archive,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Router builds the gin engine with every route registered.
func (h *HTTPHandler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(h.logger), requestMetrics(h.metrics))

	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/status", h.status)
	api.GET("/window", h.window)
	api.GET("/roads/:mode", h.road)
	api.GET("/summary", h.summary)
	api.POST("/interval", h.setInterval)
	api.POST("/refresh", h.refresh)
	api.POST("/filter", h.setFilter)
	api.DELETE("/filter", h.clearFilter)
	api.GET("/blocks", h.blocks)
	api.GET("/stats", h.stats)
	api.DELETE("/blocks", h.clearBlocks)
	return r
}

func (h *HTTPHandler) health(c *gin.Context) {
	status := h.engine.Snapshot().Status
	code := http.StatusOK
	if status == syncer.StatusInitializing {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, Response{Success: code == http.StatusOK, Data: gin.H{"status": status}})
}

func (h *HTTPHandler) status(c *gin.Context) {
	ok(c, h.engine.Snapshot())
}

func (h *HTTPHandler) window(c *gin.Context) {
	w := h.engine.Window()
	okList(c, w, len(w))
}

func (h *HTTPHandler) road(c *gin.Context) {
	grid, err := h.engine.Road(model.Mode(c.Param("mode")))
	if err != nil {
		fail(c, err)
		return
	}
	okList(c, grid, len(grid))
}

func (h *HTTPHandler) summary(c *gin.Context) {
	ok(c, h.engine.Summary())
}

func (h *HTTPHandler) setInterval(c *gin.Context) {
	var req intervalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	interval, err := model.ParseInterval(req.Interval)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.engine.SetInterval(detached(c), interval); err != nil {
		fail(c, err)
		return
	}
	ok(c, h.engine.Snapshot())
}

func (h *HTTPHandler) refresh(c *gin.Context) {
	if err := h.engine.Refresh(detached(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, h.engine.Snapshot())
}

func (h *HTTPHandler) setFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, Response{Error: err.Error()})
		return
	}
	if err := h.engine.SetFilter(req.Query); err != nil {
		fail(c, err)
		return
	}
	w := h.engine.Window()
	okList(c, w, len(w))
}

func (h *HTTPHandler) clearFilter(c *gin.Context) {
	if err := h.engine.ClearFilter(detached(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, h.engine.Snapshot())
}

func (h *HTTPHandler) blocks(c *gin.Context) {
	if h.archive == nil {
		fail(c, errArchiveDisabled)
		return
	}
	limit := defaultBlocksLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(c, errInvalidLimit)
			return
		}
		limit = min(n, maxBlocksLimit)
	}
	blocks, err := h.archive.RecentBlocks(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	okList(c, blocks, len(blocks))
}

func (h *HTTPHandler) stats(c *gin.Context) {
	if h.archive == nil {
		fail(c, errArchiveDisabled)
		return
	}
	stats, err := h.archive.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stats)
}

func (h *HTTPHandler) clearBlocks(c *gin.Context) {
	if h.archive == nil {
		fail(c, errArchiveDisabled)
		return
	}
	if err := h.archive.Clear(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	h.logger.Info("archive cleared")
	ok(c, gin.H{"cleared": true})
}

// detached keeps the request values and ignores client cancellation.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
