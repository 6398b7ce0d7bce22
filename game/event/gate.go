package event

import "time"

// defaultCooldowns lists the built-in per-key cooldowns. Keys not listed
// fall back to the gate's default (2s unless configured otherwise).
var defaultCooldowns = map[string]time.Duration{
	KeyDutyCompletion:  20 * time.Second,
	KeyHelpingHand:     20 * time.Second,
	KeyWonderousFriend: 20 * time.Second,
	KeyPartyJoin:       60 * time.Second,
	KeyCommendation:    10 * time.Second,
	KeyHousingEntry:    30 * time.Second,
}

// DefaultCooldowns returns a copy of the built-in cooldown table.
func DefaultCooldowns() map[string]time.Duration {
	out := make(map[string]time.Duration, len(defaultCooldowns))
	for k, v := range defaultCooldowns {
		out[k] = v
	}
	return out
}

// GateConfig tunes the rate gate. Cooldowns entries override the built-in
// table per event key.
type GateConfig struct {
	DuplicateWindow time.Duration
	DefaultCooldown time.Duration
	Cooldowns       map[string]time.Duration
}

// Gate suppresses duplicate lines and enforces per-event cooldowns. Both
// maps are process-lifetime only and never persisted. The gate is an
// advisory pre-filter: a key with no recorded acceptance always passes.
type Gate struct {
	cfg       GateConfig
	cooldowns map[string]time.Duration
	lastLine  map[string]time.Time
	lastEvent map[string]time.Time
	now       func() time.Time
}

// NewGate creates a Gate. Zero config fields get the built-in defaults
// (2s duplicate window, 2s default cooldown).
func NewGate(cfg GateConfig) *Gate {
	if cfg.DuplicateWindow <= 0 {
		cfg.DuplicateWindow = 2 * time.Second
	}
	if cfg.DefaultCooldown <= 0 {
		cfg.DefaultCooldown = 2 * time.Second
	}
	cooldowns := DefaultCooldowns()
	for k, v := range cfg.Cooldowns {
		cooldowns[k] = v
	}
	return &Gate{
		cfg:       cfg,
		cooldowns: cooldowns,
		lastLine:  make(map[string]time.Time),
		lastEvent: make(map[string]time.Time),
		now:       time.Now,
	}
}

// AllowLine records the line as seen and reports whether it passed the
// duplicate window. A repeat within the window is dropped outright, but
// still refreshes the last-seen stamp so a burst stays suppressed.
func (g *Gate) AllowLine(line string) bool {
	line = Normalize(line)
	if line == "" {
		return false
	}
	now := g.now()
	last, seen := g.lastLine[line]
	g.lastLine[line] = now
	if seen && now.Sub(last) < g.cfg.DuplicateWindow {
		return false
	}
	return true
}

// OnCooldown reports whether the event key is still inside its cooldown.
// It does not refresh the timer; only MarkAccepted does.
func (g *Gate) OnCooldown(key string) bool {
	last, ok := g.lastEvent[key]
	if !ok {
		return false
	}
	return g.now().Sub(last) < g.cooldownFor(key)
}

// MarkAccepted starts the cooldown for an event key. Called only when the
// event was actually accepted, so a gated occurrence never extends its own
// suppression.
func (g *Gate) MarkAccepted(key string) {
	g.lastEvent[key] = g.now()
}

func (g *Gate) cooldownFor(key string) time.Duration {
	if d, ok := g.cooldowns[key]; ok {
		return d
	}
	return g.cfg.DefaultCooldown
}
