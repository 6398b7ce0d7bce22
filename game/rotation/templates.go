package rotation

import "github.com/unbirthdayhatter/socialmorpho/model"

// Template is one daily-quest blueprint. Description is the stable join
// key between a materialized quest and its template; titles may be edited
// between releases and get resynchronized on load.
type Template struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Type        model.QuestType `json:"type"`
	Goal        int             `json:"goal"`
	Presets     []string        `json:"presets"`
	Triggers    []string        `json:"triggers,omitempty"`
	Risk        model.RiskClass `json:"risk,omitempty"`
}

// HasPreset reports whether the template belongs to the named preset pool.
func (t Template) HasPreset(preset string) bool {
	for _, p := range t.Presets {
		if p == preset {
			return true
		}
	}
	return false
}

// DefaultTemplates is the built-in daily pool, overridable via a data file.
var DefaultTemplates = []Template{
	{
		Title:       "Wave Hello",
		Description: "Receive /wave from other players 3 times.",
		Type:        model.QuestEmote, Goal: 3,
		Presets: []string{"Solo", "Party", "RP"},
	},
	{
		Title:       "Warm Welcome",
		Description: "Receive /hug from other players 2 times.",
		Type:        model.QuestEmote, Goal: 2,
		Presets: []string{"Solo", "RP"},
	},
	{
		Title:       "Adored",
		Description: "Receive /dote from another player.",
		Type:        model.QuestEmote, Goal: 1,
		Presets: []string{"RP"},
	},
	{
		Title:       "Crowd Pleaser",
		Description: "Receive /cheer from other players 3 times.",
		Type:        model.QuestEmote, Goal: 3,
		Presets: []string{"Party"},
	},
	{
		Title:       "Dance Partner",
		Description: "Receive /dance from another player 2 times.",
		Type:        model.QuestEmote, Goal: 2,
		Presets: []string{"Party", "RP"},
	},
	{
		Title:       "Well Met",
		Description: "Receive /bow from another player 2 times.",
		Type:        model.QuestEmote, Goal: 2,
		Presets: []string{"Solo", "RP"},
	},
	{
		Title:       "Seal of Approval",
		Description: "Receive /thumbsup from other players 3 times.",
		Type:        model.QuestEmote, Goal: 3,
		Presets: []string{"Solo", "Party"},
	},
	{
		Title:       "Duty Calls",
		Description: "Complete any duty with other players.",
		Type:        model.QuestSocial, Goal: 1,
		Triggers: []string{"completion time"},
		Presets:  []string{"Party"},
	},
	{
		Title:       "Helping Hand",
		Description: "Complete a duty with a first-timer in the party.",
		Type:        model.QuestSocial, Goal: 1,
		Triggers: []string{"completed this duty for the first time"},
		Presets:  []string{"Party"},
		Risk:     model.RiskMedium,
	},
	{
		Title:       "Party Animal",
		Description: "Join a party with other players.",
		Type:        model.QuestSocial, Goal: 1,
		Triggers: []string{"joined the party", "joins the party"},
		Presets:  []string{"Solo", "Party"},
	},
	{
		Title:       "Commendable",
		Description: "Receive a player commendation.",
		Type:        model.QuestSocial, Goal: 1,
		Triggers: []string{"commendation"},
		Presets:  []string{"Party"},
		Risk:     model.RiskHigh,
	},
	{
		Title:       "Blown Away",
		Description: "Receive /blowkiss from another player.",
		Type:        model.QuestEmote, Goal: 1,
		Presets: []string{"RP"},
	},
	{
		Title:       "At Attention",
		Description: "Receive /salute from another player 2 times.",
		Type:        model.QuestEmote, Goal: 2,
		Presets: []string{"Solo"},
	},
}
