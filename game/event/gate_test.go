package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests advance gate time deterministically.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestGate(cfg GateConfig) (*Gate, *fakeClock) {
	g := NewGate(cfg)
	clk := &fakeClock{t: time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local)}
	g.now = clk.now
	return g, clk
}

func TestAllowLineDuplicateWindow(t *testing.T) {
	g, clk := newTestGate(GateConfig{})

	assert.True(t, g.AllowLine("Mira dotes on you."))
	clk.advance(time.Second)
	assert.False(t, g.AllowLine("Mira dotes on you."), "repeat within 2s window")

	clk.advance(3 * time.Second)
	assert.True(t, g.AllowLine("Mira dotes on you."), "window elapsed")
}

func TestAllowLineRefreshesOnSuppressedRepeat(t *testing.T) {
	g, clk := newTestGate(GateConfig{})

	assert.True(t, g.AllowLine("spam"))
	// Keep repeating every second; the stamp refreshes each time, so the
	// burst never gets through.
	for i := 0; i < 5; i++ {
		clk.advance(time.Second)
		assert.False(t, g.AllowLine("spam"))
	}
}

func TestAllowLineNormalizes(t *testing.T) {
	g, clk := newTestGate(GateConfig{})

	assert.True(t, g.AllowLine("Mira hugs you."))
	clk.advance(time.Second)
	assert.False(t, g.AllowLine("  MIRA HUGS YOU.  "), "case/space variants are the same line")
}

func TestAllowLineEmpty(t *testing.T) {
	g, _ := newTestGate(GateConfig{})
	assert.False(t, g.AllowLine(""))
	assert.False(t, g.AllowLine("   "))
}

func TestEventCooldown(t *testing.T) {
	g, clk := newTestGate(GateConfig{})

	assert.False(t, g.OnCooldown("hug"), "no acceptance yet")
	g.MarkAccepted("hug")
	clk.advance(time.Second)
	assert.True(t, g.OnCooldown("hug"))
	clk.advance(2 * time.Second)
	assert.False(t, g.OnCooldown("hug"), "emote cooldown is 2s")
}

func TestEventCooldownPerKeyDefaults(t *testing.T) {
	g, clk := newTestGate(GateConfig{})

	g.MarkAccepted(KeyPartyJoin)
	g.MarkAccepted(KeyCommendation)
	g.MarkAccepted(KeyDutyCompletion)

	clk.advance(15 * time.Second)
	assert.True(t, g.OnCooldown(KeyPartyJoin), "party joins cool down for 60s")
	assert.False(t, g.OnCooldown(KeyCommendation), "commendation cools down for 10s")
	assert.True(t, g.OnCooldown(KeyDutyCompletion), "duty events cool down for 20s")

	clk.advance(50 * time.Second)
	assert.False(t, g.OnCooldown(KeyPartyJoin))
}

func TestEventCooldownNotRefreshedByCheck(t *testing.T) {
	g, clk := newTestGate(GateConfig{})

	g.MarkAccepted(KeyDutyCompletion)
	for i := 0; i < 19; i++ {
		clk.advance(time.Second)
		g.OnCooldown(KeyDutyCompletion) // checks must not extend the timer
	}
	clk.advance(2 * time.Second)
	assert.False(t, g.OnCooldown(KeyDutyCompletion))
}

func TestCooldownOverrides(t *testing.T) {
	g, clk := newTestGate(GateConfig{
		Cooldowns:       map[string]time.Duration{"hug": 30 * time.Second},
		DefaultCooldown: 5 * time.Second,
	})

	g.MarkAccepted("hug")
	g.MarkAccepted("mystery_key")

	clk.advance(10 * time.Second)
	assert.True(t, g.OnCooldown("hug"), "override applies")
	assert.False(t, g.OnCooldown("mystery_key"), "unlisted key uses the default")
}
