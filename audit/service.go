package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service records accepted progress events for later anti-cheat review.
// Records are batched and written off the hot path; a dropped record is
// logged, never surfaced to the caller.
type Service struct {
	db       *gorm.DB
	ch       chan *model.ProgressAudit
	stopCh   chan struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
	batchMax int
	interval time.Duration
}

// New creates the audit service and starts its writer.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	s := &Service{
		db:       db,
		ch:       make(chan *model.ProgressAudit, 512),
		stopCh:   make(chan struct{}),
		logger:   logger,
		batchMax: 50,
		interval: 5 * time.Second,
	}
	s.wg.Add(1)
	go s.worker()
	return s
}

// Record enqueues one accepted progress event. The raw line is stored as
// a hash only; the plain text never reaches disk.
func (s *Service) Record(questID int64, eventKey, line string, risk model.RiskClass) {
	rec := &model.ProgressAudit{
		QuestID:  questID,
		EventKey: eventKey,
		LineHash: hashLine(line),
		Risk:     risk,
	}
	select {
	case s.ch <- rec:
	default:
		s.logger.Warn("audit queue full, dropping record",
			zap.Int64("quest_id", questID),
			zap.String("event_key", eventKey))
	}
}

// RecordDetail enqueues an event with extra structured context attached.
func (s *Service) RecordDetail(questID int64, eventKey, line string, risk model.RiskClass, detail []byte) {
	rec := &model.ProgressAudit{
		QuestID:  questID,
		EventKey: eventKey,
		LineHash: hashLine(line),
		Risk:     risk,
		Detail:   datatypes.JSON(detail),
	}
	select {
	case s.ch <- rec:
	default:
		s.logger.Warn("audit queue full, dropping record", zap.Int64("quest_id", questID))
	}
}

// Recent returns the newest n audit records.
func (s *Service) Recent(n int) ([]*model.ProgressAudit, error) {
	var out []*model.ProgressAudit
	if err := s.db.Order("id desc").Limit(n).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Stop flushes pending records and shuts the writer down.
func (s *Service) Stop() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()
}

func (s *Service) worker() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	batch := make([]*model.ProgressAudit, 0, s.batchMax)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.db.Create(&batch).Error; err != nil {
			s.logger.Error("audit batch write failed", zap.Int("count", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-s.ch:
			batch = append(batch, rec)
			if len(batch) >= s.batchMax {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case rec := <-s.ch:
					batch = append(batch, rec)
				default:
					flush()
					return
				}
			}
		}
	}
}

func hashLine(line string) string {
	sum := sha256.Sum256([]byte(line))
	return hex.EncodeToString(sum[:])
}
