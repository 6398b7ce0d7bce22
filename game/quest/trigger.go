package quest

import (
	"regexp"
	"strings"

	"github.com/unbirthdayhatter/socialmorpho/game/event"
	"github.com/unbirthdayhatter/socialmorpho/model"
)

// emoteTokenRe finds the first slash-command token ("/hug", "/dote") in a
// quest's description or title.
var emoteTokenRe = regexp.MustCompile(`/([a-zA-Z]+)`)

// emoteToken extracts the emote keyword from free text, lower-cased, or "".
func emoteToken(text string) string {
	m := emoteTokenRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// MatchQuest reports whether a line satisfies a quest.
//
// Trigger phrases match as case-insensitive substrings and need no
// directed-at-you check. When no phrase matches, the flexible emote rule
// applies: the quest's /word token (description first, then title) is
// tested against its emote keyword bucket, and the line must look aimed
// at the player.
func MatchQuest(q *model.Quest, line string) bool {
	if q.Completed {
		return false
	}
	norm := event.Normalize(line)
	if norm == "" {
		return false
	}

	for _, phrase := range q.TriggerPhrases() {
		if phrase != "" && strings.Contains(norm, phrase) {
			return true
		}
	}

	key := emoteToken(q.Description)
	if key == "" {
		key = emoteToken(q.Title)
	}
	if key == "" {
		return false
	}
	if !event.DirectedAtYou(norm) {
		return false
	}
	if rule, ok := event.EmoteRuleFor(key); ok {
		return event.MatchesEmoteRule(rule, norm)
	}
	// Unknown emote: bare word match (which also covers the naive plural).
	return strings.Contains(norm, key)
}
