package store

import (
	"sync"

	"github.com/unbirthdayhatter/socialmorpho/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type opKind int

const (
	opSaveQuest opKind = iota
	opDeleteQuest
	opSaveStats
	opSaveRotation
)

type op struct {
	kind     opKind
	questID  int64
	quest    *model.Quest
	stats    *model.SocialStats
	rotation *model.DailyRotation
}

// Store is the persistence collaborator. Loads are synchronous (boot
// only); saves are fire-and-forget through a background worker, so the
// engine never blocks on or observes storage failures.
type Store struct {
	db     *gorm.DB
	ch     chan op
	stopCh chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a Store and starts its background writer.
func New(db *gorm.DB, logger *zap.Logger) *Store {
	s := &Store{
		db:     db,
		ch:     make(chan op, 1024),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// LoadQuests returns all quests in stored order.
func (s *Store) LoadQuests() ([]*model.Quest, error) {
	var quests []*model.Quest
	if err := s.db.Order("created_at asc, id asc").Find(&quests).Error; err != nil {
		return nil, err
	}
	return quests, nil
}

// LoadStats returns the statistics row, or a fresh zero row on first run.
func (s *Store) LoadStats() (*model.SocialStats, error) {
	var stats model.SocialStats
	err := s.db.First(&stats, 1).Error
	if err == gorm.ErrRecordNotFound {
		return &model.SocialStats{ID: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// LoadRotation returns the daily rotation row, or a fresh zero row.
func (s *Store) LoadRotation() (*model.DailyRotation, error) {
	var rot model.DailyRotation
	err := s.db.First(&rot, 1).Error
	if err == gorm.ErrRecordNotFound {
		return &model.DailyRotation{ID: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	return &rot, nil
}

// SaveQuest enqueues an upsert of the quest's current state.
func (s *Store) SaveQuest(q *model.Quest) {
	snapshot := *q
	s.enqueue(op{kind: opSaveQuest, quest: &snapshot})
}

// DeleteQuest enqueues a delete.
func (s *Store) DeleteQuest(id int64) {
	s.enqueue(op{kind: opDeleteQuest, questID: id})
}

// SaveStats enqueues an upsert of the statistics row.
func (s *Store) SaveStats(st *model.SocialStats) {
	snapshot := *st
	s.enqueue(op{kind: opSaveStats, stats: &snapshot})
}

// SaveRotation enqueues an upsert of the rotation row.
func (s *Store) SaveRotation(rt *model.DailyRotation) {
	snapshot := *rt
	s.enqueue(op{kind: opSaveRotation, rotation: &snapshot})
}

func (s *Store) enqueue(o op) {
	select {
	case s.ch <- o:
	default:
		s.logger.Warn("store queue full, dropping write", zap.Int("kind", int(o.kind)))
	}
}

// Stop drains pending writes and shuts the worker down. It blocks until
// the worker goroutine has finished.
func (s *Store) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}

func (s *Store) worker() {
	defer s.wg.Done()
	for {
		select {
		case o := <-s.ch:
			s.apply(o)
		case <-s.stopCh:
			// Drain remaining writes.
			for {
				select {
				case o := <-s.ch:
					s.apply(o)
				default:
					return
				}
			}
		}
	}
}

func (s *Store) apply(o op) {
	var err error
	switch o.kind {
	case opSaveQuest:
		err = s.db.Save(o.quest).Error
	case opDeleteQuest:
		err = s.db.Delete(&model.Quest{}, o.questID).Error
	case opSaveStats:
		err = s.db.Save(o.stats).Error
	case opSaveRotation:
		err = s.db.Save(o.rotation).Error
	}
	if err != nil {
		s.logger.Error("store write failed", zap.Int("kind", int(o.kind)), zap.Error(err))
	}
}
