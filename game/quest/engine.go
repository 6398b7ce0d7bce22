package quest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/game/event"
	"github.com/unbirthdayhatter/socialmorpho/game/rotation"
	"github.com/unbirthdayhatter/socialmorpho/game/title"
	"github.com/unbirthdayhatter/socialmorpho/model"
	"github.com/unbirthdayhatter/socialmorpho/plugin/hook"
	"go.uber.org/zap"
)

// Saver persists engine state. Saves are advisory: the engine keeps the
// authoritative in-memory copy and never waits on or reacts to store
// failures.
type Saver interface {
	SaveQuest(q *model.Quest)
	DeleteQuest(id int64)
	SaveStats(st *model.SocialStats)
	SaveRotation(rt *model.DailyRotation)
}

// Auditor records accepted progress events for anti-cheat review.
type Auditor interface {
	Record(questID int64, eventKey, line string, risk model.RiskClass)
}

// Broadcaster fans accepted updates out to the feed/leaderboard/stream.
type Broadcaster interface {
	ProgressAccepted(u *ProgressUpdate)
	EventCounted(key string, lifetime int)
}

// Options wires an Engine. Store, Audit, Broadcast and Hooks may be nil.
type Options struct {
	Quests      []*model.Quest
	Stats       *model.SocialStats
	Rotation    *model.DailyRotation
	Templates   []rotation.Template
	BaseTiers   []title.BaseTier
	SecretTiers []title.SecretTier
	Gate        event.GateConfig
	Preset      string
	Store       Saver
	Audit       Auditor
	Broadcast   Broadcaster
	Hooks       *hook.Center
	Logger      *zap.Logger
}

// Engine is the quest-progress core: it classifies incoming lines, gates
// them, matches them against active quests and applies progress. Public
// operations are total; suppressed, malformed or unmatched input returns
// nil, never an error. A mutex serializes callers since HTTP handlers may
// invoke the engine concurrently.
type Engine struct {
	mu         sync.Mutex
	classifier *event.Classifier
	gate       *event.Gate
	ledger     *Ledger
	titles     *title.Resolver
	rot        *rotation.Scheduler
	list       *questList
	store      Saver
	audit      Auditor
	broadcast  Broadcaster
	hooks      *hook.Center
	logger     *zap.Logger
	now        func() time.Time
	nextUserID int64
}

// NewEngine creates an Engine over previously loaded state.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := opts.Stats
	if stats == nil {
		stats = &model.SocialStats{ID: 1}
	}
	rotState := opts.Rotation
	if rotState == nil {
		rotState = &model.DailyRotation{ID: 1}
	}

	titles := title.NewResolver(opts.BaseTiers, opts.SecretTiers)
	e := &Engine{
		classifier: event.NewClassifier(),
		gate:       event.NewGate(opts.Gate),
		ledger:     NewLedger(stats, titles, logger),
		titles:     titles,
		rot:        rotation.NewScheduler(opts.Templates, rotState, opts.Preset, logger),
		list:       &questList{store: opts.Store},
		store:      opts.Store,
		audit:      opts.Audit,
		broadcast:  opts.Broadcast,
		hooks:      opts.Hooks,
		logger:     logger,
		now:        time.Now,
	}
	for _, q := range opts.Quests {
		e.list.items = append(e.list.items, q)
		if !q.IsDaily && q.ID >= e.nextUserID {
			e.nextUserID = q.ID
		}
	}
	return e
}

// ProcessLine runs one raw chat/event line through the pipeline. It
// returns the progress update for the single quest the line advanced, or
// nil when the line was empty, suppressed, unclassified or matched
// nothing.
func (e *Engine) ProcessLine(line string) *ProgressUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()

	if strings.TrimSpace(line) == "" {
		return nil
	}
	if !e.gate.AllowLine(line) {
		return nil
	}

	now := e.now()
	key := e.classifier.Classify(line)
	if key != "" {
		if e.gate.OnCooldown(key) {
			return nil
		}
		e.trackEvent(key)
	}
	return e.advance(key, line, now)
}

// ProcessSystemEvent feeds a pre-classified event (duty completion hooks
// and the like). The fallback text is used for quest matching; the
// duplicate window does not apply, only the event cooldown.
func (e *Engine) ProcessSystemEvent(key, fallback string) *ProgressUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()

	if key == "" {
		key = e.classifier.Classify(fallback)
	}
	if key == "" {
		return nil
	}
	if e.gate.OnCooldown(key) {
		return nil
	}
	e.trackEvent(key)

	now := e.now()
	line := fallback
	if strings.TrimSpace(line) == "" {
		line = key
	}
	return e.advance(key, line, now)
}

// trackEvent accepts an event key: starts its cooldown and bumps its
// lifetime counter so secret titles progress even without a quest match.
func (e *Engine) trackEvent(key string) {
	before := e.ledger.Stats().UnlockedTitle
	e.gate.MarkAccepted(key)
	count := e.ledger.TrackEvent(key)
	if e.broadcast != nil {
		e.broadcast.EventCounted(key, count)
	}
	e.saveStats()
	e.notifyTitleChange(before)
}

// advance finds the first quest in stored order the line satisfies and
// applies one tick. At most one quest advances per accepted line.
func (e *Engine) advance(key, line string, now time.Time) *ProgressUpdate {
	for _, q := range e.list.items {
		if q.Completed || !MatchQuest(q, line) {
			continue
		}

		before := e.ledger.Stats().UnlockedTitle
		streakBefore := e.ledger.Stats().CurrentStreak
		u := e.ledger.ApplyProgress(q, now)
		if u == nil {
			return nil
		}
		u.EventKey = key

		if e.store != nil {
			e.store.SaveQuest(q)
		}
		e.saveStats()
		if e.audit != nil {
			e.audit.Record(q.ID, key, line, q.Risk)
		}
		if e.broadcast != nil {
			e.broadcast.ProgressAccepted(u)
		}
		e.trigger(hook.OnProgressTick, u)
		if u.JustCompleted {
			e.trigger(hook.OnQuestComplete, u)
			if streak := e.ledger.Stats().CurrentStreak; streak != streakBefore {
				e.trigger(hook.OnStreakChanged, streak)
			}
		}
		e.notifyTitleChange(before)
		return u
	}
	return nil
}

func (e *Engine) notifyTitleChange(before string) {
	after := e.ledger.Stats().UnlockedTitle
	if after != before && after != "" {
		e.trigger(hook.OnTitleChanged, after)
	}
}

func (e *Engine) trigger(name string, data interface{}) {
	if e.hooks == nil {
		return
	}
	if _, err := e.hooks.Trigger(context.Background(), name, data); err != nil {
		e.logger.Warn("hook interrupted", zap.String("hook", name), zap.Error(err))
	}
}

// GetActiveQuests returns up to three quests for the overlay: the
// non-completed daily slots first, then the most recently created
// non-daily quests.
func (e *Engine) GetActiveQuests() []*model.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*model.Quest, 0, 3)
	for _, id := range e.rot.State().Slots() {
		if q, ok := e.list.ByID(id); ok && !q.Completed {
			out = append(out, q)
		}
		if len(out) == 3 {
			return out
		}
	}

	others := make([]*model.Quest, 0, len(e.list.items))
	for _, q := range e.list.items {
		if !q.IsDaily && !q.Completed {
			others = append(others, q)
		}
	}
	sort.Slice(others, func(i, j int) bool {
		return others[i].CreatedAt.After(others[j].CreatedAt)
	})
	for _, q := range others {
		if len(out) == 3 {
			break
		}
		out = append(out, q)
	}
	return out
}

// Quests returns the full quest list in stored order.
func (e *Engine) Quests() []*model.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list.All()
}

// AddQuest inserts a user/offer quest, assigning the next free ID when
// unset, and persists it.
func (e *Engine) AddQuest(q *model.Quest) *model.Quest {
	e.mu.Lock()
	defer e.mu.Unlock()

	if q.ID == 0 {
		e.nextUserID++
		q.ID = e.nextUserID
	} else if !q.IsDaily && q.ID > e.nextUserID {
		e.nextUserID = q.ID
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = e.now()
	}
	if q.GoalCount < 1 {
		q.GoalCount = 1
	}
	if q.Risk == "" {
		q.Risk = model.RiskLow
	}
	if q.Type == "" {
		q.Type = model.QuestCustom
	}
	e.list.Add(q)
	return q
}

// RemoveQuest deletes a quest by ID. Unknown IDs are a no-op.
func (e *Engine) RemoveQuest(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list.Remove(id)
}

// EnsureDailyQuests brings the three daily slots up to date for now's
// calendar day, repairing individually completed slots.
func (e *Engine) EnsureDailyQuests(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rot.Ensure(now, e.list) {
		e.saveRotation()
		e.trigger(hook.OnDailyRotation, e.rot.State().Slots())
	}
}

// ForceRerollDailyQuests redraws today's slots unconditionally.
func (e *Engine) ForceRerollDailyQuests(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rot.ForceReroll(now, e.list)
	e.saveRotation()
	e.trigger(hook.OnDailyRotation, e.rot.State().Slots())
}

// CheckAndResetQuests applies the generic daily/weekly reset schedules.
func (e *Engine) CheckAndResetQuests() {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := e.rot.ApplyResets(e.now(), e.list)
	if len(ids) > 0 {
		e.logger.Info("quests reset", zap.Int64s("quest_ids", ids))
	}
	if e.store != nil {
		// First evaluations stamp a reset date without resetting, so
		// persist every scheduled quest, not just the returned IDs.
		for _, q := range e.list.items {
			if q.Reset != model.ResetNone && q.Reset != "" {
				e.store.SaveQuest(q)
			}
		}
	}
}

// Stats returns the statistics aggregate. Callers must treat it as
// read-only; all mutation goes through the engine.
func (e *Engine) Stats() *model.SocialStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Stats()
}

// TitleProgress reports the base-tier ladder position.
func (e *Engine) TitleProgress() title.Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.titles.TitleProgress(e.ledger.Stats())
}

// SecretTitleProgress reports lifetime progress toward every secret tier.
func (e *Engine) SecretTitleProgress() []title.SecretProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.titles.SecretTitleProgress(e.ledger.Stats())
}

func (e *Engine) saveStats() {
	if e.store != nil {
		e.store.SaveStats(e.ledger.Stats())
	}
}

func (e *Engine) saveRotation() {
	if e.store != nil {
		e.store.SaveRotation(e.rot.State())
	}
}

// ---- quest collection ----

// questList is the engine-owned quest collection. Adds and removes are
// mirrored to the store immediately so rotation mutations persist without
// the scheduler knowing about storage.
type questList struct {
	items []*model.Quest
	store Saver
}

func (l *questList) All() []*model.Quest {
	out := make([]*model.Quest, len(l.items))
	copy(out, l.items)
	return out
}

func (l *questList) ByID(id int64) (*model.Quest, bool) {
	for _, q := range l.items {
		if q.ID == id {
			return q, true
		}
	}
	return nil, false
}

func (l *questList) Add(q *model.Quest) {
	l.items = append(l.items, q)
	if l.store != nil {
		l.store.SaveQuest(q)
	}
}

func (l *questList) Save(q *model.Quest) {
	if l.store != nil {
		l.store.SaveQuest(q)
	}
}

func (l *questList) Remove(id int64) {
	for i, q := range l.items {
		if q.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			if l.store != nil {
				l.store.DeleteQuest(id)
			}
			return
		}
	}
}
