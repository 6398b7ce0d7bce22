package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySystemMessages(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		line string
		want string
	}{
		{"Completion time: 22:31.", KeyDutyCompletion},
		{"One or more party members completed this duty for the first time!", KeyHelpingHand},
		{"One or more party members have yet to complete this duty.", KeyWonderousFriend},
		{"You have joined the party.", KeyPartyJoin},
		{"Alphinaud joins the party.", KeyPartyJoin},
		{"You received a player commendation!", KeyCommendation},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.line), "line: %s", tc.line)
	}
}

func TestClassifyEmotes(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		line string
		want string
	}{
		{"X'thalia dotes on you.", "dote"},
		{"Mira blows you a kiss.", "blowkiss"},
		{"Kuro dances with you.", "dance"},
		{"Rin gives you a thumbs up.", "thumbsup"},
		{"Taro salutes you.", "salute"},
		{"Sora cheers you on.", "cheer"},
		{"Ayumi waves to you.", "wave"},
		{"Lily hugs you.", "hug"},
		{"Hana bows to you.", "bow"},
		{"Gaius strikes a battle stance before you.", "battlestance"},
		{"Nero strikes a victory pose for you.", "victory"},
		{"Yugiri adjusts her spectacles as she looks at you.", "spectacles"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, c.Classify(tc.line), "line: %s", tc.line)
	}
}

func TestClassifyRequiresDirectedAtYou(t *testing.T) {
	c := NewClassifier()
	// Same emotes aimed at someone else are ignored.
	assert.Equal(t, "", c.Classify("X'thalia dotes on Urianger."))
	assert.Equal(t, "", c.Classify("Lily hugs Alisaie."))
}

func TestClassifySystemBeforeEmote(t *testing.T) {
	c := NewClassifier()
	// A structured duty message that happens to mention "you" must not fall
	// into an emote bucket.
	assert.Equal(t, KeyPartyJoin, c.Classify("Mira waves as you have joined the party."))
}

func TestClassifyEmotePriorityOrder(t *testing.T) {
	c := NewClassifier()
	// blowkiss outranks bow even though "bows" is present too.
	assert.Equal(t, "blowkiss", c.Classify("Mira bows and blows you a kiss."))
	// dote is the highest-priority bucket.
	assert.Equal(t, "dote", c.Classify("Mira dotes on you and waves."))
}

func TestClassifyEmptyAndNoise(t *testing.T) {
	c := NewClassifier()
	assert.Equal(t, "", c.Classify(""))
	assert.Equal(t, "", c.Classify("   "))
	assert.Equal(t, "", c.Classify("The weather is lovely today."))
	assert.Equal(t, "", c.Classify("you"))
}

func TestDirectedAtYou(t *testing.T) {
	assert.True(t, DirectedAtYou("she waves to you"))
	assert.True(t, DirectedAtYou("he is watching you closely"))
	assert.False(t, DirectedAtYou("your chocobo looks tired"))
	assert.False(t, DirectedAtYou("nothing here"))
}

func TestRuleTablesCoverAllKeys(t *testing.T) {
	// The rule lists are the contract; enumerate them so an accidental
	// reorder or removal shows up as a test diff.
	var sysKeys []string
	for _, r := range SystemRules {
		sysKeys = append(sysKeys, r.Key)
	}
	assert.Equal(t, []string{
		KeyDutyCompletion, KeyHelpingHand, KeyWonderousFriend, KeyPartyJoin, KeyCommendation,
	}, sysKeys)

	var emoteKeys []string
	for _, r := range EmoteRules {
		emoteKeys = append(emoteKeys, r.Key)
	}
	assert.Equal(t, []string{
		"dote", "blowkiss", "dance", "thumbsup", "salute", "cheer",
		"wave", "hug", "bow", "battlestance", "victory", "spectacles",
	}, emoteKeys)
}
