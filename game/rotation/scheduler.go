package rotation

import (
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/model"
	"go.uber.org/zap"
)

// DailyIDBase is the fixed ID range daily quests occupy; slot n gets
// DailyIDBase+n so rotation can reuse IDs across days without colliding
// with user quests.
const DailyIDBase int64 = 9000000

const slotCount = 3

// QuestSet is the quest collection the scheduler mutates. The engine owns
// the collection; the scheduler only reaches it through this interface.
type QuestSet interface {
	All() []*model.Quest
	ByID(id int64) (*model.Quest, bool)
	Add(q *model.Quest)
	Remove(id int64)
	Save(q *model.Quest)
}

// Scheduler rotates the three daily quest slots per calendar day and
// preset, and applies generic daily/weekly reset schedules.
type Scheduler struct {
	templates []Template
	state     *model.DailyRotation
	preset    string
	logger    *zap.Logger
}

// NewScheduler wraps the persisted rotation row. Nil templates fall back
// to the built-in pool.
func NewScheduler(templates []Template, state *model.DailyRotation, preset string, logger *zap.Logger) *Scheduler {
	if templates == nil {
		templates = DefaultTemplates
	}
	if state.ID == 0 {
		state.ID = 1
	}
	if preset == "" {
		preset = "Solo"
	}
	return &Scheduler{templates: templates, state: state, preset: preset, logger: logger}
}

// State returns the rotation row for persistence.
func (s *Scheduler) State() *model.DailyRotation {
	return s.state
}

// Ensure brings the daily slots up to date for the given day. Returns true
// when anything changed (fresh selection or a slot repair).
func (s *Scheduler) Ensure(now time.Time, quests QuestSet) bool {
	s.refreshTitles(quests)

	if s.stable(now, quests) {
		return s.repairCompletedSlots(now, quests)
	}
	s.selectDaily(now, quests)
	return true
}

// ForceReroll discards the recorded selection date and redraws today's
// slots, regardless of their current state.
func (s *Scheduler) ForceReroll(now time.Time, quests QuestSet) {
	s.state.SelectedOn = ""
	s.selectDaily(now, quests)
}

// stable reports whether today's slots are already selected and intact:
// same date, same preset, right slot count, every referenced quest alive.
func (s *Scheduler) stable(now time.Time, quests QuestSet) bool {
	if s.state.SelectedOn != dateKey(now) || s.state.Preset != s.preset {
		return false
	}
	slots := s.state.Slots()
	if len(slots) != slotCount {
		return false
	}
	for _, id := range slots {
		if _, ok := quests.ByID(id); !ok {
			return false
		}
	}
	return true
}

// repairCompletedSlots replaces each individually completed daily slot
// with a fresh quest under the same ID, leaving the other slots untouched.
func (s *Scheduler) repairCompletedSlots(now time.Time, quests QuestSet) bool {
	slots := s.state.Slots()
	changed := false
	for i, id := range slots {
		q, ok := quests.ByID(id)
		if !ok || !q.Completed {
			continue
		}

		// Descriptions already on the other two slots are excluded so the
		// board stays varied; reuse is allowed only when nothing else fits.
		inUse := make(map[string]bool)
		for j, otherID := range slots {
			if j == i {
				continue
			}
			if other, ok := quests.ByID(otherID); ok {
				inUse[other.Description] = true
			}
		}

		pool := s.presetPool()
		candidates := make([]Template, 0, len(pool))
		for _, tpl := range pool {
			if !inUse[tpl.Description] {
				candidates = append(candidates, tpl)
			}
		}
		if len(candidates) == 0 {
			candidates = pool
		}
		if len(candidates) == 0 {
			continue
		}

		rng := rand.New(rand.NewSource(s.seed(now) + id))
		tpl := candidates[rng.Intn(len(candidates))]

		quests.Remove(id)
		quests.Add(s.materialize(tpl, id, now))
		changed = true
		s.logger.Info("daily slot replaced",
			zap.Int64("quest_id", id),
			zap.String("template", tpl.Title))
	}
	return changed
}

// selectDaily removes every daily quest and draws three fresh ones for
// today. Selection is deterministic for a given date and preset, so
// repeated calls on the same day reproduce the same board.
func (s *Scheduler) selectDaily(now time.Time, quests QuestSet) {
	for _, q := range quests.All() {
		if q.IsDaily {
			quests.Remove(q.ID)
		}
	}

	pool := s.presetPool()
	if len(pool) == 0 {
		s.state.SelectedOn = dateKey(now)
		s.state.Preset = s.preset
		s.state.SetSlots(nil)
		s.logger.Warn("no daily quest templates available")
		return
	}
	rng := rand.New(rand.NewSource(s.seed(now)))

	ids := make([]int64, 0, slotCount)
	if len(pool) >= slotCount {
		perm := rng.Perm(len(pool))
		for slot := 0; slot < slotCount; slot++ {
			id := DailyIDBase + int64(slot)
			quests.Add(s.materialize(pool[perm[slot]], id, now))
			ids = append(ids, id)
		}
	} else {
		// Degenerate pool: repeats allowed rather than leaving slots empty.
		for slot := 0; slot < slotCount; slot++ {
			id := DailyIDBase + int64(slot)
			quests.Add(s.materialize(pool[rng.Intn(len(pool))], id, now))
			ids = append(ids, id)
		}
	}

	s.state.SelectedOn = dateKey(now)
	s.state.Preset = s.preset
	s.state.SetSlots(ids)
	s.logger.Info("daily quests selected",
		zap.String("date", s.state.SelectedOn),
		zap.String("preset", s.preset))
}

// refreshTitles resynchronizes daily quest titles from their templates,
// joined on description. Touched quests are saved so a rename survives a
// restart even when the board is otherwise stable.
func (s *Scheduler) refreshTitles(quests QuestSet) {
	for _, q := range quests.All() {
		if !q.IsDaily {
			continue
		}
		for _, tpl := range s.templates {
			if tpl.Description == q.Description && tpl.Title != q.Title {
				q.Title = tpl.Title
				quests.Save(q)
				break
			}
		}
	}
}

// presetPool filters templates by the active preset, falling back to the
// whole pool when fewer than three match.
func (s *Scheduler) presetPool() []Template {
	pool := make([]Template, 0, len(s.templates))
	for _, tpl := range s.templates {
		if tpl.HasPreset(s.preset) {
			pool = append(pool, tpl)
		}
	}
	if len(pool) < slotCount {
		return s.templates
	}
	return pool
}

func (s *Scheduler) materialize(tpl Template, id int64, now time.Time) *model.Quest {
	risk := tpl.Risk
	if risk == "" {
		risk = model.RiskLow
	}
	q := &model.Quest{
		ID:          id,
		Title:       tpl.Title,
		Description: tpl.Description,
		Type:        tpl.Type,
		GoalCount:   tpl.Goal,
		IsDaily:     true,
		CreatedAt:   now,
		Reset:       model.ResetDaily,
		Risk:        risk,
	}
	q.SetTriggerPhrases(tpl.Triggers)
	return q
}

// seed derives the deterministic selection seed from the calendar date
// and the active preset.
func (s *Scheduler) seed(now time.Time) int64 {
	h := fnv.New32a()
	h.Write([]byte(s.preset))
	y, m, d := now.Date()
	return int64(y)*10000 + int64(m)*100 + int64(d) + int64(h.Sum32())
}

// ApplyResets runs the generic reset schedules over every quest and
// returns the IDs that were reset. The first evaluation of a quest only
// stamps its reset date.
func (s *Scheduler) ApplyResets(now time.Time, quests QuestSet) []int64 {
	var reset []int64
	for _, q := range quests.All() {
		if q.Reset == model.ResetNone || q.Reset == "" {
			continue
		}
		if q.LastResetAt == nil {
			stamp := now
			q.LastResetAt = &stamp
			continue
		}
		if s.due(q.Reset, *q.LastResetAt, now) {
			q.CurrentCount = 0
			q.Completed = false
			q.CompletedAt = nil
			stamp := now
			q.LastResetAt = &stamp
			reset = append(reset, q.ID)
		}
	}
	return reset
}

func (s *Scheduler) due(schedule model.ResetSchedule, last, now time.Time) bool {
	switch schedule {
	case model.ResetDaily:
		return dayOf(last).Before(dayOf(now))
	case model.ResetWeekly:
		// The elapsed-time rule is authoritative; the Monday-crossing
		// check only catches resets inside a 7-day window.
		if now.Sub(last) >= 7*24*time.Hour {
			return true
		}
		if dayOf(last).Equal(dayOf(now)) {
			return false
		}
		return mondayOrdinal(now) < mondayOrdinal(last)
	default:
		return false
	}
}

// mondayOrdinal maps a weekday onto a Monday-start week: Monday → 0,
// Sunday → 6.
func mondayOrdinal(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
