package model

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// QuestType categorizes a quest.
type QuestType string

const (
	QuestSocial QuestType = "social"
	QuestBuff   QuestType = "buff"
	QuestEmote  QuestType = "emote"
	QuestCustom QuestType = "custom"
)

// ResetSchedule controls periodic counter resets.
type ResetSchedule string

const (
	ResetNone   ResetSchedule = "none"
	ResetDaily  ResetSchedule = "daily"
	ResetWeekly ResetSchedule = "weekly"
)

// RiskClass is the anti-cheat review class of a quest. High-risk quests get
// every accepted progress event written to the audit trail.
type RiskClass string

const (
	RiskLow    RiskClass = "low"
	RiskMedium RiskClass = "medium"
	RiskHigh   RiskClass = "high"
)

// Quest is one tracked social quest. IDs are assigned by the engine (user
// quests) or by the rotation scheduler (fixed daily ID range) and stay
// stable for the quest's lifetime.
type Quest struct {
	ID           int64          `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `json:"description"`
	Type         QuestType      `gorm:"default:social" json:"type"`
	GoalCount    int            `gorm:"not null" json:"goal_count"`
	CurrentCount int            `gorm:"default:0" json:"current_count"`
	Completed    bool           `gorm:"default:false" json:"completed"`
	IsDaily      bool           `gorm:"default:false;index" json:"is_daily"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at"`
	Reset        ResetSchedule  `gorm:"default:none" json:"reset"`
	LastResetAt  *time.Time     `json:"last_reset_at"`
	Triggers     datatypes.JSON `json:"triggers"` // ["phrase", ...], matched case-insensitively
	Risk         RiskClass      `gorm:"default:low" json:"risk"`
	SeasonID     *int           `json:"season_id"`
}

// TriggerPhrases decodes the trigger phrase list. A nil or malformed column
// yields an empty list.
func (q *Quest) TriggerPhrases() []string {
	if len(q.Triggers) == 0 {
		return nil
	}
	var phrases []string
	_ = json.Unmarshal(q.Triggers, &phrases)
	return phrases
}

// SetTriggerPhrases encodes the trigger phrase list, lower-casing each entry
// so matching never has to normalize twice.
func (q *Quest) SetTriggerPhrases(phrases []string) {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	b, _ := json.Marshal(lowered)
	q.Triggers = datatypes.JSON(b)
}
