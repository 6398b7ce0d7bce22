// Package sync pushes the unlocked display title to a remote companion
// endpoint and pulls it back on demand. Each direction carries an
// in-flight guard and a retry backoff so a slow or dead remote never
// stacks requests or hammers the network.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	stdsync "sync"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/config"
	"github.com/unbirthdayhatter/socialmorpho/plugin/hook"
	"go.uber.org/zap"
)

var (
	ErrDisabled = errors.New("sync: disabled")
	ErrInFlight = errors.New("sync: request already in flight")
	ErrBackoff  = errors.New("sync: in retry backoff window")
)

type titlePayload struct {
	Player    string    `json:"player"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service is the remote title synchronizer.
type Service struct {
	cfg    config.SyncConfig
	client *http.Client
	logger *zap.Logger

	mu         stdsync.Mutex
	pushing    bool
	pulling    bool
	nextPushAt time.Time
	nextPullAt time.Time
	lastPushed string
}

// New creates a Service. The service is inert until RegisterHooks or an
// explicit Push/Pull call.
func New(cfg config.SyncConfig, logger *zap.Logger) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// RegisterHooks attaches the service to the title-changed hook so every
// unlock is pushed out as it happens.
func (s *Service) RegisterHooks(hc *hook.Center) {
	hc.Register(hook.OnTitleChanged, 100, "title-sync", func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		if t, ok := data.(string); ok {
			s.PushAsync(t)
		}
		return data, nil
	})
}

// PushAsync pushes in the background; failures are logged and retried on
// the next title change or periodic tick.
func (s *Service) PushAsync(title string) {
	go func() {
		if err := s.PushTitle(context.Background(), title); err != nil &&
			!errors.Is(err, ErrDisabled) && !errors.Is(err, ErrInFlight) && !errors.Is(err, ErrBackoff) {
			s.logger.Warn("title push failed", zap.String("title", title), zap.Error(err))
		}
	}()
}

// PushTitle sends the title to the remote endpoint. At most one push is
// in flight at a time; pushes during the backoff window are dropped.
func (s *Service) PushTitle(ctx context.Context, title string) error {
	if !s.cfg.Enabled || s.cfg.Endpoint == "" {
		return ErrDisabled
	}

	s.mu.Lock()
	if s.pushing {
		s.mu.Unlock()
		return ErrInFlight
	}
	if time.Now().Before(s.nextPushAt) {
		s.mu.Unlock()
		return ErrBackoff
	}
	if s.lastPushed == title {
		s.mu.Unlock()
		return nil
	}
	s.pushing = true
	s.mu.Unlock()

	err := s.doPush(ctx, title)

	s.mu.Lock()
	s.pushing = false
	if err != nil {
		s.nextPushAt = time.Now().Add(s.backoff())
	} else {
		s.nextPushAt = time.Time{}
		s.lastPushed = title
	}
	s.mu.Unlock()
	return err
}

// PullTitle fetches the remotely stored title. Same guard discipline as
// the push path, on its own flag and backoff.
func (s *Service) PullTitle(ctx context.Context) (string, error) {
	if !s.cfg.Enabled || s.cfg.Endpoint == "" {
		return "", ErrDisabled
	}

	s.mu.Lock()
	if s.pulling {
		s.mu.Unlock()
		return "", ErrInFlight
	}
	if time.Now().Before(s.nextPullAt) {
		s.mu.Unlock()
		return "", ErrBackoff
	}
	s.pulling = true
	s.mu.Unlock()

	title, err := s.doPull(ctx)

	s.mu.Lock()
	s.pulling = false
	if err != nil {
		s.nextPullAt = time.Now().Add(s.backoff())
	} else {
		s.nextPullAt = time.Time{}
	}
	s.mu.Unlock()
	return title, err
}

// Tick re-pushes the current title on the periodic sync interval; a title
// already pushed is a no-op inside PushTitle.
func (s *Service) Tick(current string) {
	if current == "" {
		return
	}
	s.PushAsync(current)
}

func (s *Service) doPush(ctx context.Context, title string) error {
	body, err := json.Marshal(titlePayload{
		Player:    s.cfg.PlayerName,
		Title:     title,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync: push status %d", resp.StatusCode)
	}
	s.logger.Info("title pushed", zap.String("title", title))
	return nil
}

func (s *Service) doPull(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Endpoint, nil)
	if err != nil {
		return "", err
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sync: pull status %d", resp.StatusCode)
	}
	var p titlePayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return "", fmt.Errorf("sync: decode: %w", err)
	}
	return p.Title, nil
}

func (s *Service) backoff() time.Duration {
	if s.cfg.RetryBackoff > 0 {
		return s.cfg.RetryBackoff
	}
	return 2 * time.Minute
}
