package handlers

import (
	"context"
	"net/http"
	"strconv"

	"bakai-assistant/category"
	"bakai-assistant/database"
	"bakai-assistant/rag"
	"bakai-assistant/web/services"
	"bakai-assistant/web/types"

	"github.com/gin-gonic/gin"
)

// StatsProvider reports the live index counters.
type StatsProvider interface {
	Stats() rag.IndexStats
}

// QueryHistory lists logged queries.
type QueryHistory interface {
	RecentQueries(ctx context.Context, limit int) ([]database.QueryLogEntry, error)
}

type AdminHandler struct {
	reindex *services.ReindexService
	stats   StatsProvider
	links   *category.Links
	history QueryHistory
}

// NewAdminHandler creates the handler. reindex and history may be nil.
func NewAdminHandler(reindex *services.ReindexService, stats StatsProvider, links *category.Links, history QueryHistory) *AdminHandler {
	return &AdminHandler{
		reindex: reindex,
		stats:   stats,
		links:   links,
		history: history,
	}
}

// Reindex handles POST /api/reindex.
func (h *AdminHandler) Reindex(c *gin.Context) {
	if h.reindex == nil {
		respondWithClientError(c, http.StatusNotImplemented, "reindexing is not configured")
		return
	}
	var req types.ReindexRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondWithClientError(c, http.StatusBadRequest, "Invalid request")
			return
		}
	}

	resp, err := h.reindex.Reindex(c.Request.Context(), req.Neighbors)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /api/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats.Stats())
}

// Categories handles GET /api/categories.
func (h *AdminHandler) Categories(c *gin.Context) {
	resp := types.CategoriesResponse{
		Categories: h.links.List(),
		General:    h.links.For(category.General),
	}
	if err := h.links.Validate(); err != nil {
		resp.LinkError = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// RecentQueries handles GET /api/queries.
func (h *AdminHandler) RecentQueries(c *gin.Context) {
	if h.history == nil {
		respondWithClientError(c, http.StatusNotImplemented, "query log is not configured")
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			respondWithClientError(c, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	entries, err := h.history.RecentQueries(c.Request.Context(), limit)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	if entries == nil {
		entries = []database.QueryLogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"queries": entries})
}

// Health handles GET /healthz. It reports 503 until the first index is built.
func (h *AdminHandler) Health(c *gin.Context) {
	stats := h.stats.Stats()
	status := http.StatusOK
	state := "ok"
	if !stats.Ready {
		status = http.StatusServiceUnavailable
		state = "starting"
	}
	c.JSON(status, gin.H{"status": state, "generation": stats.Generation})
}
