package title

import "github.com/unbirthdayhatter/socialmorpho/model"

// BaseTier is one cumulative-completions title tier.
type BaseTier struct {
	Title          string `json:"title"`
	MinCompletions int    `json:"min_completions"`
}

// SecretTier is a hidden title unlocked by a lifetime tracked-event count.
// The tier list is ordered: the first qualifying tier wins outright,
// regardless of threshold magnitude.
type SecretTier struct {
	Title    string `json:"title"`
	EventKey string `json:"event_key"`
	Required int    `json:"required"`
}

// DefaultBaseTiers in descending threshold order; the last entry is the
// floor every player holds.
var DefaultBaseTiers = []BaseTier{
	{Title: "Heart of Eorzea", MinCompletions: 75},
	{Title: "Social Star", MinCompletions: 30},
	{Title: "Budding Friend", MinCompletions: 10},
	{Title: "New Adventurer", MinCompletions: 0},
}

// DefaultSecretTiers in precedence order.
var DefaultSecretTiers = []SecretTier{
	{Title: "Dote Devotee", EventKey: "dote", Required: 100},
	{Title: "Sweetheart of the Realm", EventKey: "blowkiss", Required: 75},
	{Title: "Hugging Menace", EventKey: "hug", Required: 150},
	{Title: "Wallflower No More", EventKey: "dance", Required: 50},
	{Title: "Commended Comrade", EventKey: "commendation", Required: 30},
	{Title: "Helping Hand", EventKey: "helping_hand", Required: 25},
}

// Progress describes where the player stands on the base tier ladder.
type Progress struct {
	CurrentTitle string `json:"current_title"`
	NextTitle    string `json:"next_title,omitempty"`
	Remaining    int    `json:"remaining"`
	MaxRank      bool   `json:"max_rank"`
}

// SecretProgress describes one secret tier's lifetime progress.
type SecretProgress struct {
	Title    string `json:"title"`
	EventKey string `json:"event_key"`
	Required int    `json:"required"`
	Current  int    `json:"current"`
	Unlocked bool   `json:"unlocked"`
}

// Resolver derives the unlocked display title from ledger statistics.
// It is stateless; the tier tables are fixed at construction.
type Resolver struct {
	base   []BaseTier
	secret []SecretTier
}

// NewResolver creates a Resolver. Nil tables fall back to the defaults.
func NewResolver(base []BaseTier, secret []SecretTier) *Resolver {
	if base == nil {
		base = DefaultBaseTiers
	}
	if secret == nil {
		secret = DefaultSecretTiers
	}
	return &Resolver{base: base, secret: secret}
}

// Resolve returns the currently unlocked title: the first qualifying
// secret tier, else the highest base tier the completion count reaches.
func (r *Resolver) Resolve(stats *model.SocialStats) string {
	counts := stats.Counts()
	for _, tier := range r.secret {
		if counts[tier.EventKey] >= tier.Required {
			return tier.Title
		}
	}
	for _, tier := range r.base {
		if stats.TotalCompletions >= tier.MinCompletions {
			return tier.Title
		}
	}
	// Unreachable with a 0-threshold floor tier, but keep a sane fallback.
	return ""
}

// TitleProgress reports the highest reached base tier and the distance to
// the next one. MaxRank is set when no higher tier remains.
func (r *Resolver) TitleProgress(stats *model.SocialStats) Progress {
	p := Progress{MaxRank: true}
	completions := stats.TotalCompletions

	// Highest reached tier: largest threshold ≤ completions.
	reached := -1
	for _, tier := range r.base {
		if completions >= tier.MinCompletions && tier.MinCompletions > reached {
			reached = tier.MinCompletions
			p.CurrentTitle = tier.Title
		}
	}
	// Next unmet tier: smallest threshold > completions.
	next := -1
	for _, tier := range r.base {
		if tier.MinCompletions > completions && (next == -1 || tier.MinCompletions < next) {
			next = tier.MinCompletions
			p.NextTitle = tier.Title
		}
	}
	if next >= 0 {
		p.MaxRank = false
		p.Remaining = next - completions
	}
	return p
}

// SecretTitleProgress reports lifetime progress toward every secret tier,
// in precedence order.
func (r *Resolver) SecretTitleProgress(stats *model.SocialStats) []SecretProgress {
	counts := stats.Counts()
	out := make([]SecretProgress, 0, len(r.secret))
	for _, tier := range r.secret {
		current := counts[tier.EventKey]
		out = append(out, SecretProgress{
			Title:    tier.Title,
			EventKey: tier.EventKey,
			Required: tier.Required,
			Current:  current,
			Unlocked: current >= tier.Required,
		})
	}
	return out
}
