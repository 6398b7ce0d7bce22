package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// DayCount is one entry in the bounded daily completion history.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, local
	Count int    `json:"count"`
}

// SocialStats is the single cumulative statistics row. All mutation funnels
// through the ledger; nothing else writes these fields.
type SocialStats struct {
	ID                int64          `gorm:"primaryKey" json:"id"`
	TotalTicks        int            `gorm:"default:0" json:"total_ticks"`
	TotalCompletions  int            `gorm:"default:0" json:"total_completions"`
	CurrentStreak     int            `gorm:"default:0" json:"current_streak"`
	BestStreak        int            `gorm:"default:0" json:"best_streak"`
	LastCompletionDay *time.Time     `json:"last_completion_day"`
	WeekStart         *time.Time     `json:"week_start"` // Monday of the current weekly bucket
	WeeklyCompletions int            `gorm:"default:0" json:"weekly_completions"`
	WeeklyRank        string         `json:"weekly_rank"`
	UnlockedTitle     string         `json:"unlocked_title"`
	DailyHistory      datatypes.JSON `json:"daily_history"` // []DayCount, most recent 14 dates
	EventCounts       datatypes.JSON `json:"event_counts"`  // {"hug": 12, ...} lifetime
}

// History decodes the daily completion history.
func (s *SocialStats) History() []DayCount {
	if len(s.DailyHistory) == 0 {
		return nil
	}
	var h []DayCount
	_ = json.Unmarshal(s.DailyHistory, &h)
	return h
}

// SetHistory encodes the daily completion history.
func (s *SocialStats) SetHistory(h []DayCount) {
	b, _ := json.Marshal(h)
	s.DailyHistory = datatypes.JSON(b)
}

// Counts decodes the lifetime tracked-event counters.
func (s *SocialStats) Counts() map[string]int {
	counts := make(map[string]int)
	if len(s.EventCounts) > 0 {
		_ = json.Unmarshal(s.EventCounts, &counts)
	}
	return counts
}

// SetCounts encodes the lifetime tracked-event counters.
func (s *SocialStats) SetCounts(counts map[string]int) {
	b, _ := json.Marshal(counts)
	s.EventCounts = datatypes.JSON(b)
}
