package pack_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/game/pack"
	"github.com/unbirthdayhatter/socialmorpho/model"
)

func sampleQuests() []*model.Quest {
	user := &model.Quest{
		ID: 1, Title: "Warm Welcome",
		Description:  "Receive /hug from other players 2 times.",
		Type:         model.QuestEmote,
		GoalCount:    2,
		CurrentCount: 1,
		Reset:        model.ResetDaily,
		Risk:         model.RiskMedium,
	}
	user.SetTriggerPhrases([]string{"hugs you"})
	daily := &model.Quest{ID: 9000000, Title: "Daily Slot", GoalCount: 1, IsDaily: true}
	done := &model.Quest{ID: 2, Title: "Finished", GoalCount: 1, CurrentCount: 1, Completed: true}
	return []*model.Quest{user, daily, done}
}

func TestExportImport_RoundTrip(t *testing.T) {
	data, err := pack.Export(sampleQuests(), "my board", time.Now())
	require.NoError(t, err)

	quests, err := pack.Import(data)
	require.NoError(t, err)
	require.Len(t, quests, 2, "daily quests are excluded")

	q := quests[0]
	assert.Equal(t, "Warm Welcome", q.Title)
	assert.Equal(t, model.QuestEmote, q.Type)
	assert.Equal(t, 2, q.GoalCount)
	assert.Equal(t, []string{"hugs you"}, q.TriggerPhrases())
	assert.Equal(t, model.ResetDaily, q.Reset)
	assert.Equal(t, model.RiskMedium, q.Risk)

	// Runtime state never travels.
	for _, q := range quests {
		assert.Zero(t, q.ID)
		assert.Zero(t, q.CurrentCount)
		assert.False(t, q.Completed)
	}
}

func TestExport_OnlyDailies(t *testing.T) {
	daily := &model.Quest{ID: 9000000, Title: "Daily", GoalCount: 1, IsDaily: true}
	_, err := pack.Export([]*model.Quest{daily}, "", time.Now())
	assert.ErrorIs(t, err, pack.ErrEmptyPack)
}

func TestImport_BadVersion(t *testing.T) {
	_, err := pack.Import([]byte(`{"version":99,"quests":[{"title":"x","goal_count":1}]}`))
	assert.ErrorIs(t, err, pack.ErrBadVersion)
}

func TestImport_Empty(t *testing.T) {
	_, err := pack.Import([]byte(`{"version":1,"quests":[]}`))
	assert.ErrorIs(t, err, pack.ErrNoQuests)
}

func TestImport_Garbage(t *testing.T) {
	_, err := pack.Import([]byte(`not json`))
	assert.Error(t, err)
}

func TestImport_DefaultsApplied(t *testing.T) {
	quests, err := pack.Import([]byte(`{"version":1,"quests":[{"title":"Minimal"}]}`))
	require.NoError(t, err)
	require.Len(t, quests, 1)
	q := quests[0]
	assert.Equal(t, 1, q.GoalCount)
	assert.Equal(t, model.QuestCustom, q.Type)
	assert.Equal(t, model.ResetNone, q.Reset)
	assert.Equal(t, model.RiskLow, q.Risk)
}

func TestImport_MissingTitle(t *testing.T) {
	_, err := pack.Import([]byte(`{"version":1,"quests":[{"goal_count":2}]}`))
	assert.Error(t, err)
}
