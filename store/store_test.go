package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"github.com/unbirthdayhatter/socialmorpho/store"
	"github.com/unbirthdayhatter/socialmorpho/testutil"
	"go.uber.org/zap"
)

func TestStore_QuestRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, zap.NewNop())

	q := &model.Quest{ID: 1, Title: "Warm Welcome", GoalCount: 2, CreatedAt: time.Now()}
	q.SetTriggerPhrases([]string{"Hugs You"})
	s.SaveQuest(q)
	s.Stop()

	s2 := store.New(db, zap.NewNop())
	defer s2.Stop()
	quests, err := s2.LoadQuests()
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, "Warm Welcome", quests[0].Title)
	assert.Equal(t, []string{"hugs you"}, quests[0].TriggerPhrases())
}

func TestStore_DeleteQuest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, zap.NewNop())

	s.SaveQuest(&model.Quest{ID: 5, Title: "Gone", GoalCount: 1})
	s.DeleteQuest(5)
	s.Stop()

	s2 := store.New(db, zap.NewNop())
	defer s2.Stop()
	quests, err := s2.LoadQuests()
	require.NoError(t, err)
	assert.Empty(t, quests)
}

func TestStore_SaveIsSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, zap.NewNop())

	q := &model.Quest{ID: 1, Title: "Snap", GoalCount: 3, CurrentCount: 1}
	s.SaveQuest(q)
	// Mutations after enqueue must not leak into the queued write.
	q.CurrentCount = 99
	s.Stop()

	s2 := store.New(db, zap.NewNop())
	defer s2.Stop()
	quests, err := s2.LoadQuests()
	require.NoError(t, err)
	require.Len(t, quests, 1)
	assert.Equal(t, 1, quests[0].CurrentCount)
}

func TestStore_StatsFirstRun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, zap.NewNop())
	defer s.Stop()

	stats, err := s.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ID)
	assert.Zero(t, stats.TotalCompletions)
}

func TestStore_StatsRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, zap.NewNop())

	stats := &model.SocialStats{ID: 1, TotalCompletions: 7, UnlockedTitle: "New Adventurer"}
	stats.SetCounts(map[string]int{"hug": 3})
	s.SaveStats(stats)
	s.Stop()

	loaded, err := store.New(db, zap.NewNop()).LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.TotalCompletions)
	assert.Equal(t, 3, loaded.Counts()["hug"])
}

func TestStore_RotationRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := store.New(db, zap.NewNop())

	rot := &model.DailyRotation{ID: 1, SelectedOn: "2026-03-04", Preset: "Solo"}
	rot.SetSlots([]int64{9000000, 9000001, 9000002})
	s.SaveRotation(rot)
	s.Stop()

	loaded, err := store.New(db, zap.NewNop()).LoadRotation()
	require.NoError(t, err)
	assert.Equal(t, "2026-03-04", loaded.SelectedOn)
	assert.Equal(t, []int64{9000000, 9000001, 9000002}, loaded.Slots())
}
