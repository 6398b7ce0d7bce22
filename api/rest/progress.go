package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unbirthdayhatter/socialmorpho/broadcast"
	"github.com/unbirthdayhatter/socialmorpho/game/quest"
	"go.uber.org/zap"
)

// ProgressHandler handles line ingest, statistics and the activity feed.
type ProgressHandler struct {
	engine *quest.Engine
	hub    *broadcast.Hub
	logger *zap.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(e *quest.Engine, hub *broadcast.Hub, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{engine: e, hub: hub, logger: logger}
}

type linesRequest struct {
	Lines []string `json:"lines" binding:"required,min=1,max=50"`
}

// IngestLines handles POST /api/lines: a batch of raw chat/log lines in
// arrival order. Suppressed and unmatched lines simply produce no update.
func (h *ProgressHandler) IngestLines(c *gin.Context) {
	var req linesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make([]*quest.ProgressUpdate, 0, len(req.Lines))
	for _, line := range req.Lines {
		if u := h.engine.ProcessLine(line); u != nil {
			updates = append(updates, u)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"accepted": len(updates),
		"updates":  updates,
	})
}

type systemEventRequest struct {
	Key      string `json:"key"`
	Fallback string `json:"fallback"`
}

// IngestEvent handles POST /api/events: a pre-classified game event from
// the plugin's hook side (duty completion and the like).
func (h *ProgressHandler) IngestEvent(c *gin.Context) {
	var req systemEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Key == "" && req.Fallback == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key or fallback required"})
		return
	}
	u := h.engine.ProcessSystemEvent(req.Key, req.Fallback)
	c.JSON(http.StatusOK, gin.H{"update": u})
}

// Stats handles GET /api/stats.
func (h *ProgressHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.Stats())
}

// TitleProgress handles GET /api/stats/title.
func (h *ProgressHandler) TitleProgress(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.TitleProgress())
}

// SecretTitles handles GET /api/stats/secret-titles.
func (h *ProgressHandler) SecretTitles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"titles": h.engine.SecretTitleProgress()})
}

// TopEvents handles GET /api/stats/top-events?limit=10.
func (h *ProgressHandler) TopEvents(c *gin.Context) {
	limit := int64(10)
	if l, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && l > 0 && l <= 50 {
		limit = l
	}
	entries, err := h.hub.TopEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Warn("leaderboard read failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"events": []broadcast.EventCount{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": entries})
}

// Feed handles GET /api/feed?limit=20: recent accepted progress, newest
// first.
func (h *ProgressHandler) Feed(c *gin.Context) {
	limit := int64(20)
	if l, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil && l > 0 {
		limit = l
	}
	raw, err := h.hub.RecentFeed(c.Request.Context(), limit)
	if err != nil {
		h.logger.Warn("feed read failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"feed": []json.RawMessage{}})
		return
	}
	feed := make([]json.RawMessage, 0, len(raw))
	for _, item := range raw {
		feed = append(feed, json.RawMessage(item))
	}
	c.JSON(http.StatusOK, gin.H{"feed": feed})
}
