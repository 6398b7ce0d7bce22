package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/unbirthdayhatter/socialmorpho/game/pack"
	"github.com/unbirthdayhatter/socialmorpho/game/quest"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"go.uber.org/zap"
)

// QuestHandler handles quest CRUD, the daily board and pack exchange.
type QuestHandler struct {
	engine *quest.Engine
	logger *zap.Logger
}

// NewQuestHandler creates a QuestHandler.
func NewQuestHandler(e *quest.Engine, logger *zap.Logger) *QuestHandler {
	return &QuestHandler{engine: e, logger: logger}
}

// List handles GET /api/quests.
func (h *QuestHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quests": h.engine.Quests()})
}

// Active handles GET /api/quests/active: the up-to-three overlay quests.
func (h *QuestHandler) Active(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quests": h.engine.GetActiveQuests()})
}

type createQuestRequest struct {
	Title       string              `json:"title" binding:"required,max=120"`
	Description string              `json:"description" binding:"max=400"`
	Type        model.QuestType     `json:"type"`
	GoalCount   int                 `json:"goal_count"`
	Triggers    []string            `json:"triggers"`
	Reset       model.ResetSchedule `json:"reset"`
	Risk        model.RiskClass     `json:"risk"`
}

// Create handles POST /api/quests.
func (h *QuestHandler) Create(c *gin.Context) {
	var req createQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	q := &model.Quest{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		GoalCount:   req.GoalCount,
		Reset:       req.Reset,
		Risk:        req.Risk,
	}
	if q.Reset == "" {
		q.Reset = model.ResetNone
	}
	q.SetTriggerPhrases(req.Triggers)

	created := h.engine.AddQuest(q)
	h.logger.Info("quest created", zap.Int64("quest_id", created.ID), zap.String("title", created.Title))
	c.JSON(http.StatusCreated, created)
}

// Delete handles DELETE /api/quests/:id.
func (h *QuestHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad quest id"})
		return
	}
	h.engine.RemoveQuest(id)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Reroll handles POST /api/daily/reroll: redraws today's daily board.
func (h *QuestHandler) Reroll(c *gin.Context) {
	h.engine.ForceRerollDailyQuests(time.Now())
	c.JSON(http.StatusOK, gin.H{"quests": h.engine.GetActiveQuests()})
}

// ExportPack handles GET /api/pack/export.
func (h *QuestHandler) ExportPack(c *gin.Context) {
	name := c.Query("name")
	data, err := pack.Export(h.engine.Quests(), name, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// ImportPack handles POST /api/pack/import. Every quest in the pack is
// added as a fresh user quest with zero progress.
func (h *QuestHandler) ImportPack(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	quests, err := pack.Import(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]int64, 0, len(quests))
	for _, q := range quests {
		ids = append(ids, h.engine.AddQuest(q).ID)
	}
	h.logger.Info("quest pack imported", zap.Int("count", len(ids)))
	c.JSON(http.StatusOK, gin.H{"imported": ids})
}
