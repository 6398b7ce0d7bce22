package quest

import (
	"sort"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/game/title"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"go.uber.org/zap"
)

// Weekly rank labels, reset every Monday.
const (
	RankGoldenHeart     = "Golden Heart"
	RankSilverSocialite = "Silver Socialite"
	RankBronzeButterfly = "Bronze Butterfly"
	RankSproutling      = "Sproutling"
)

const historyDays = 14

// ProgressUpdate is the result of one accepted progress tick.
type ProgressUpdate struct {
	QuestID       int64           `json:"quest_id"`
	QuestTitle    string          `json:"quest_title"`
	Type          model.QuestType `json:"type"`
	EventKey      string          `json:"event_key,omitempty"`
	Delta         int             `json:"delta"`
	Current       int             `json:"current"`
	Goal          int             `json:"goal"`
	JustCompleted bool            `json:"just_completed"`
	UnlockedTitle string          `json:"unlocked_title"`
}

// Ledger owns the statistics aggregate. Every mutation of SocialStats
// funnels through here; callers never write its fields directly.
type Ledger struct {
	stats  *model.SocialStats
	titles *title.Resolver
	logger *zap.Logger
}

// NewLedger wraps an existing stats row (a fresh zero row on first run).
func NewLedger(stats *model.SocialStats, titles *title.Resolver, logger *zap.Logger) *Ledger {
	if stats.ID == 0 {
		stats.ID = 1
	}
	return &Ledger{stats: stats, titles: titles, logger: logger}
}

// Stats returns the aggregate for read-only use.
func (l *Ledger) Stats() *model.SocialStats {
	return l.stats
}

// ApplyProgress advances a quest by one tick, clamped to the goal. A quest
// already at goal is a no-op and returns nil. Completion registers into
// the statistics and recomputes the unlocked title.
func (l *Ledger) ApplyProgress(q *model.Quest, now time.Time) *ProgressUpdate {
	if q.Completed || q.CurrentCount >= q.GoalCount {
		return nil
	}
	old := q.CurrentCount
	q.CurrentCount++
	if q.CurrentCount > q.GoalCount {
		q.CurrentCount = q.GoalCount
	}
	delta := q.CurrentCount - old
	if delta <= 0 {
		return nil
	}

	l.stats.TotalTicks += delta

	just := false
	if q.CurrentCount >= q.GoalCount {
		q.Completed = true
		completedAt := now
		q.CompletedAt = &completedAt
		l.RegisterCompletion(now)
		just = true
		l.logger.Info("quest completed",
			zap.Int64("quest_id", q.ID),
			zap.String("title", q.Title))
	}
	l.stats.UnlockedTitle = l.titles.Resolve(l.stats)

	return &ProgressUpdate{
		QuestID:       q.ID,
		QuestTitle:    q.Title,
		Type:          q.Type,
		Delta:         delta,
		Current:       q.CurrentCount,
		Goal:          q.GoalCount,
		JustCompleted: just,
		UnlockedTitle: l.stats.UnlockedTitle,
	}
}

// RegisterCompletion records one quest completion at the given time:
// lifetime total, Monday-aligned weekly bucket and rank, streak, and the
// bounded daily history.
func (l *Ledger) RegisterCompletion(now time.Time) {
	l.stats.TotalCompletions++

	// Weekly bucket rolls whenever now's Monday differs from the stored one.
	monday := mondayOf(now)
	if l.stats.WeekStart == nil || !sameDay(*l.stats.WeekStart, monday) {
		l.stats.WeekStart = &monday
		l.stats.WeeklyCompletions = 0
	}
	l.stats.WeeklyCompletions++
	l.stats.WeeklyRank = weeklyRank(l.stats.WeeklyCompletions)

	// Streak over calendar days.
	today := dayOf(now)
	switch {
	case l.stats.LastCompletionDay == nil:
		l.stats.CurrentStreak = 1
	case sameDay(*l.stats.LastCompletionDay, today):
		// Same-day repeat: unchanged.
	case sameDay(l.stats.LastCompletionDay.AddDate(0, 0, 1), today):
		l.stats.CurrentStreak++
	default:
		l.stats.CurrentStreak = 1
	}
	if l.stats.CurrentStreak > l.stats.BestStreak {
		l.stats.BestStreak = l.stats.CurrentStreak
	}
	l.stats.LastCompletionDay = &today

	l.recordHistory(today)
}

// recordHistory merges today's completion into the daily ring and prunes
// to the most recent 14 dates, ascending.
func (l *Ledger) recordHistory(today time.Time) {
	date := today.Format(time.DateOnly)
	history := l.stats.History()

	merged := false
	for i := range history {
		if history[i].Date == date {
			history[i].Count++
			merged = true
			break
		}
	}
	if !merged {
		history = append(history, model.DayCount{Date: date, Count: 1})
	}

	sort.Slice(history, func(i, j int) bool { return history[i].Date < history[j].Date })
	if len(history) > historyDays {
		history = history[len(history)-historyDays:]
	}
	l.stats.SetHistory(history)
}

// TrackEvent bumps the lifetime counter for a canonical event key. This
// runs on every accepted event, quest match or not, so secret titles keep
// progressing.
func (l *Ledger) TrackEvent(key string) int {
	counts := l.stats.Counts()
	counts[key]++
	l.stats.SetCounts(counts)
	l.stats.UnlockedTitle = l.titles.Resolve(l.stats)
	return counts[key]
}

func weeklyRank(completions int) string {
	switch {
	case completions >= 10:
		return RankGoldenHeart
	case completions >= 5:
		return RankSilverSocialite
	case completions >= 1:
		return RankBronzeButterfly
	default:
		return RankSproutling
	}
}

// ---- calendar helpers ----

// dayOf truncates to local midnight.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// mondayOf returns local midnight of the Monday of t's ISO week.
func mondayOf(t time.Time) time.Time {
	d := dayOf(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday → 0 ... Sunday → 6
	return d.AddDate(0, 0, -offset)
}
