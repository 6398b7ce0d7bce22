// Package pack implements quest pack export/import: a portable JSON
// snapshot of the user-defined quest list, for sharing boards between
// players. Daily quests and all progress counters are excluded so an
// imported pack always starts clean.
package pack

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/model"
)

// FormatVersion is bumped whenever the pack layout changes shape.
const FormatVersion = 1

var (
	ErrEmptyPack  = errors.New("pack: no quests to export")
	ErrBadVersion = errors.New("pack: unsupported format version")
	ErrNoQuests   = errors.New("pack: pack contains no quests")
)

// Pack is the on-disk/wire shape.
type Pack struct {
	Version    int         `json:"version"`
	Name       string      `json:"name,omitempty"`
	ExportedAt time.Time   `json:"exported_at"`
	Quests     []PackQuest `json:"quests"`
}

// PackQuest carries a quest's definition without its runtime state.
type PackQuest struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Type        model.QuestType     `json:"type"`
	GoalCount   int                 `json:"goal_count"`
	Triggers    []string            `json:"triggers,omitempty"`
	Reset       model.ResetSchedule `json:"reset,omitempty"`
	Risk        model.RiskClass     `json:"risk,omitempty"`
}

// Export serializes the non-daily quests. Progress, completion state and
// IDs are dropped; receivers always get a fresh board.
func Export(quests []*model.Quest, name string, now time.Time) ([]byte, error) {
	p := Pack{
		Version:    FormatVersion,
		Name:       name,
		ExportedAt: now,
	}
	for _, q := range quests {
		if q.IsDaily {
			continue
		}
		p.Quests = append(p.Quests, PackQuest{
			Title:       q.Title,
			Description: q.Description,
			Type:        q.Type,
			GoalCount:   q.GoalCount,
			Triggers:    q.TriggerPhrases(),
			Reset:       q.Reset,
			Risk:        q.Risk,
		})
	}
	if len(p.Quests) == 0 {
		return nil, ErrEmptyPack
	}
	return json.MarshalIndent(p, "", "  ")
}

// Import parses a pack and materializes its quests with counters at zero
// and no IDs assigned; the engine assigns IDs on insertion.
func Import(data []byte) ([]*model.Quest, error) {
	var p Pack
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("pack: decode: %w", err)
	}
	if p.Version != FormatVersion {
		return nil, ErrBadVersion
	}
	if len(p.Quests) == 0 {
		return nil, ErrNoQuests
	}

	out := make([]*model.Quest, 0, len(p.Quests))
	for i, pq := range p.Quests {
		if pq.Title == "" {
			return nil, fmt.Errorf("pack: quest %d has no title", i)
		}
		q := &model.Quest{
			Title:       pq.Title,
			Description: pq.Description,
			Type:        pq.Type,
			GoalCount:   pq.GoalCount,
			Reset:       pq.Reset,
			Risk:        pq.Risk,
		}
		if q.GoalCount < 1 {
			q.GoalCount = 1
		}
		if q.Type == "" {
			q.Type = model.QuestCustom
		}
		if q.Reset == "" {
			q.Reset = model.ResetNone
		}
		if q.Risk == "" {
			q.Risk = model.RiskLow
		}
		q.SetTriggerPhrases(pq.Triggers)
		out = append(out, q)
	}
	return out, nil
}
