package model

import (
	"time"

	"gorm.io/datatypes"
)

// ProgressAudit is one accepted progress event, kept for anti-cheat review.
// Raw lines are stored hashed; only the canonical event key and quest
// context are kept in the clear.
type ProgressAudit struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `json:"trace_id"`
	QuestID   int64          `gorm:"index" json:"quest_id"`
	EventKey  string         `json:"event_key"`
	LineHash  string         `json:"line_hash"`
	Risk      RiskClass      `json:"risk"`
	Detail    datatypes.JSON `json:"detail"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}
