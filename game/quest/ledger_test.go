package quest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/game/title"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"go.uber.org/zap"
)

func newTestLedger() *Ledger {
	return NewLedger(&model.SocialStats{ID: 1}, title.NewResolver(nil, nil), zap.NewNop())
}

// A Wednesday at noon, local time.
var baseDay = time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

func TestApplyProgress_TickAndComplete(t *testing.T) {
	l := newTestLedger()
	q := &model.Quest{ID: 1, Title: "Wave Hello", GoalCount: 2}

	u := l.ApplyProgress(q, baseDay)
	require.NotNil(t, u)
	assert.Equal(t, 1, u.Current)
	assert.Equal(t, 1, u.Delta)
	assert.False(t, u.JustCompleted)
	assert.Equal(t, 1, l.Stats().TotalTicks)
	assert.Equal(t, 0, l.Stats().TotalCompletions)

	u = l.ApplyProgress(q, baseDay)
	require.NotNil(t, u)
	assert.Equal(t, 2, u.Current)
	assert.True(t, u.JustCompleted)
	assert.True(t, q.Completed)
	require.NotNil(t, q.CompletedAt)
	assert.Equal(t, 1, l.Stats().TotalCompletions)

	// At goal: further ticks are no-ops.
	assert.Nil(t, l.ApplyProgress(q, baseDay))
	assert.Equal(t, 2, q.CurrentCount)
}

func TestApplyProgress_ResolvesTitle(t *testing.T) {
	l := newTestLedger()
	q := &model.Quest{ID: 1, Title: "One", GoalCount: 1}
	u := l.ApplyProgress(q, baseDay)
	require.NotNil(t, u)
	assert.Equal(t, "New Adventurer", u.UnlockedTitle)
}

func TestRegisterCompletion_StreakRules(t *testing.T) {
	l := newTestLedger()

	l.RegisterCompletion(baseDay)
	assert.Equal(t, 1, l.Stats().CurrentStreak)

	// Same day: unchanged.
	l.RegisterCompletion(baseDay.Add(3 * time.Hour))
	assert.Equal(t, 1, l.Stats().CurrentStreak)

	// Next day: +1.
	l.RegisterCompletion(baseDay.AddDate(0, 0, 1))
	assert.Equal(t, 2, l.Stats().CurrentStreak)
	assert.Equal(t, 2, l.Stats().BestStreak)

	// Gap: reset to 1, best preserved.
	l.RegisterCompletion(baseDay.AddDate(0, 0, 5))
	assert.Equal(t, 1, l.Stats().CurrentStreak)
	assert.Equal(t, 2, l.Stats().BestStreak)
}

func TestRegisterCompletion_WeeklyBucket(t *testing.T) {
	l := newTestLedger()

	l.RegisterCompletion(baseDay) // Wednesday
	assert.Equal(t, 1, l.Stats().WeeklyCompletions)
	require.NotNil(t, l.Stats().WeekStart)
	assert.Equal(t, time.Monday, l.Stats().WeekStart.Weekday())

	// Sunday of the same week: same bucket.
	l.RegisterCompletion(baseDay.AddDate(0, 0, 4))
	assert.Equal(t, 2, l.Stats().WeeklyCompletions)

	// Next Monday: bucket rolls.
	l.RegisterCompletion(baseDay.AddDate(0, 0, 5))
	assert.Equal(t, 1, l.Stats().WeeklyCompletions)
}

func TestWeeklyRankThresholds(t *testing.T) {
	assert.Equal(t, RankSproutling, weeklyRank(0))
	assert.Equal(t, RankBronzeButterfly, weeklyRank(1))
	assert.Equal(t, RankBronzeButterfly, weeklyRank(4))
	assert.Equal(t, RankSilverSocialite, weeklyRank(5))
	assert.Equal(t, RankSilverSocialite, weeklyRank(9))
	assert.Equal(t, RankGoldenHeart, weeklyRank(10))
}

func TestRecordHistory_BoundedAscending(t *testing.T) {
	l := newTestLedger()
	for i := 0; i < 20; i++ {
		l.RegisterCompletion(baseDay.AddDate(0, 0, i))
	}
	history := l.Stats().History()
	require.Len(t, history, 14)
	for i := 1; i < len(history); i++ {
		assert.Less(t, history[i-1].Date, history[i].Date)
	}
	// Oldest six days pruned.
	assert.Equal(t, baseDay.AddDate(0, 0, 6).Format(time.DateOnly), history[0].Date)
}

func TestRecordHistory_MergesSameDay(t *testing.T) {
	l := newTestLedger()
	l.RegisterCompletion(baseDay)
	l.RegisterCompletion(baseDay.Add(time.Hour))
	history := l.Stats().History()
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].Count)
}

func TestTrackEvent_CountsAndSecretTitle(t *testing.T) {
	l := newTestLedger()
	for i := 0; i < 49; i++ {
		l.TrackEvent("dance")
	}
	assert.Equal(t, 49, l.Stats().Counts()["dance"])
	assert.NotEqual(t, "Wallflower No More", l.Stats().UnlockedTitle)

	n := l.TrackEvent("dance")
	assert.Equal(t, 50, n)
	assert.Equal(t, "Wallflower No More", l.Stats().UnlockedTitle)
}

func TestMondayOf(t *testing.T) {
	// Wednesday → previous Monday.
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local), mondayOf(baseDay))
	// Sunday → Monday six days back.
	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local), mondayOf(sunday))
	// Monday is its own Monday.
	monday := time.Date(2026, 3, 2, 1, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local), mondayOf(monday))
}
