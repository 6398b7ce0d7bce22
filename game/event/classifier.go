package event

import "strings"

// Canonical event keys for fixed-phrase system messages.
const (
	KeyDutyCompletion  = "duty_completion"
	KeyHelpingHand     = "helping_hand"
	KeyWonderousFriend = "wonderous_friend"
	KeyPartyJoin       = "party_join"
	KeyCommendation    = "commendation"
	KeyHousingEntry    = "housing_entry"
)

// SystemRule maps fixed system-message phrases to a canonical event key.
// Any phrase matching as a substring classifies the line.
type SystemRule struct {
	Key     string
	Phrases []string
}

// EmoteRule maps an emote keyword bucket to a canonical event key. Words
// match as substrings; Pairs match when both words co-occur anywhere in
// the line.
type EmoteRule struct {
	Key   string
	Words []string
	Pairs [][2]string
}

// SystemRules is the fixed-phrase rule list. Order matters: structured
// system messages are classified before the generic emote buckets so a
// duty message mentioning "you" never lands in an emote bucket.
var SystemRules = []SystemRule{
	{Key: KeyDutyCompletion, Phrases: []string{"completion time"}},
	{Key: KeyHelpingHand, Phrases: []string{"one or more party members completed this duty for the first time"}},
	{Key: KeyWonderousFriend, Phrases: []string{"one or more party members have yet to complete this duty"}},
	{Key: KeyPartyJoin, Phrases: []string{"you have joined the party", "joined the party", "joins the party"}},
	{Key: KeyCommendation, Phrases: []string{"commendation"}},
}

// EmoteRules is the emote keyword rule list, in fixed priority order.
// blowkiss is listed before bow so "blows you a kiss" never matches the
// bow bucket first.
var EmoteRules = []EmoteRule{
	{Key: "dote", Words: []string{"dote", "dotes", "doting"}},
	{Key: "blowkiss", Words: []string{"blowkiss", "blow kiss", "blow kisses"}, Pairs: [][2]string{{"blow", "kiss"}}},
	{Key: "dance", Words: []string{"dance", "dances", "dancing"}},
	{Key: "thumbsup", Words: []string{"thumbsup", "thumbs up", "thumbs-up"}},
	{Key: "salute", Words: []string{"salute", "salutes", "saluting"}},
	{Key: "cheer", Words: []string{"cheer", "cheers", "cheering"}},
	{Key: "wave", Words: []string{"wave", "waves", "waving"}},
	{Key: "hug", Words: []string{"hug", "hugs", "hugging"}},
	{Key: "bow", Words: []string{"bow", "bows", "bowing"}},
	{Key: "battlestance", Words: []string{"battlestance", "battle stance"}},
	{Key: "victory", Words: []string{"victory", "victory pose"}},
	{Key: "spectacles", Words: []string{"spectacles"}},
}

// Normalize trims and lower-cases a raw line. All classification and
// duplicate suppression operates on normalized lines.
func Normalize(line string) string {
	return strings.ToLower(strings.TrimSpace(line))
}

// DirectedAtYou reports whether a line looks aimed at the local player:
// it contains " you" or ends with "you".
func DirectedAtYou(line string) bool {
	return strings.Contains(line, " you") || strings.HasSuffix(line, "you")
}

// MatchesEmoteRule tests a normalized line against one emote bucket.
func MatchesEmoteRule(rule EmoteRule, line string) bool {
	for _, w := range rule.Words {
		if strings.Contains(line, w) {
			return true
		}
	}
	for _, p := range rule.Pairs {
		if strings.Contains(line, p[0]) && strings.Contains(line, p[1]) {
			return true
		}
	}
	return false
}

// EmoteRuleFor returns the emote bucket for a canonical emote key.
func EmoteRuleFor(key string) (EmoteRule, bool) {
	for _, r := range EmoteRules {
		if r.Key == key {
			return r, true
		}
	}
	return EmoteRule{}, false
}

// Classifier maps normalized text lines to canonical event keys. The rule
// tables are fixed at construction and shared; Classify never mutates.
type Classifier struct {
	system []SystemRule
	emotes []EmoteRule
}

// NewClassifier creates a Classifier over the built-in rule tables.
func NewClassifier() *Classifier {
	return &Classifier{system: SystemRules, emotes: EmoteRules}
}

// Classify returns the canonical event key for a line, or "" when the line
// classifies to nothing. The line is normalized internally.
func (c *Classifier) Classify(line string) string {
	line = Normalize(line)
	if line == "" {
		return ""
	}

	for _, rule := range c.system {
		for _, phrase := range rule.Phrases {
			if strings.Contains(line, phrase) {
				return rule.Key
			}
		}
	}

	// Emote buckets only apply to lines directed at the player.
	if !DirectedAtYou(line) {
		return ""
	}
	for _, rule := range c.emotes {
		if MatchesEmoteRule(rule, line) {
			return rule.Key
		}
	}
	return ""
}
