package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/schedule"
	"github.com/dm/minerdeck/internal/store"
)

// DefaultInterval is how often the held credential's expiry is checked.
const DefaultInterval = time.Hour

// ErrNoCredential is returned by Logout when nothing is held.
var ErrNoCredential = errors.New("no credential held")

// Refresher exchanges a refresh token for a new credential.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*model.Credential, error)
}

// Manager owns the credential store. It refreshes an expired credential on
// every tick and is the only writer of the store.
type Manager struct {
	refresher Refresher
	cred      *store.Value[*model.Credential]
	interval  time.Duration
	log       logrus.FieldLogger

	now func() time.Time
	mu  sync.Mutex // serializes credential writes, never held across a refresh
}

// NewManager returns a manager writing into cred.
func NewManager(refresher Refresher, cred *store.Value[*model.Credential], interval time.Duration, log logrus.FieldLogger) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{
		refresher: refresher,
		cred:      cred,
		interval:  interval,
		log:       log.WithField("component", "auth"),
		now:       time.Now,
	}
}

// Login installs the initial credential. A zero ExpiresAt is filled from the
// token's exp claim when it has one.
func (m *Manager) Login(c model.Credential) error {
	if c.Token == "" {
		return fmt.Errorf("login: %w", ErrMissingToken)
	}
	if c.ExpiresAt == 0 {
		if exp, err := tokenExpiry(c.Token); err == nil {
			c.ExpiresAt = exp.Unix()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred.Set(&c)
	m.log.WithField("expires_at", c.Expiry().Format(time.RFC3339)).Info("credential installed")
	return nil
}

// Logout drops the held credential. The backend keeps the last token it was given.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred.Get() == nil {
		return ErrNoCredential
	}
	m.cred.Set(nil)
	m.log.Info("credential cleared")
	return nil
}

// Check refreshes the held credential once if it has expired. A failure is
// logged and returned; the stale credential stays in place for the next tick.
//
// The refresh call runs without the lock. If Login or Logout wrote the store
// meanwhile, the refreshed credential is discarded.
func (m *Manager) Check(ctx context.Context) error {
	m.mu.Lock()
	cur := m.cred.Get()
	ver := m.cred.Version()
	m.mu.Unlock()

	if cur == nil {
		return nil
	}
	if !cur.Expired(m.now()) {
		return nil
	}

	next, err := m.refresher.Refresh(ctx, cur.RefreshToken)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.log.WithError(err).Warn("credential refresh failed")
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred.Version() != ver {
		m.log.Debug("credential changed during refresh, discarding result")
		return nil
	}
	m.cred.Set(next)
	m.log.WithField("expires_at", next.Expiry().Format(time.RFC3339)).Info("credential refreshed")
	return nil
}

// Run checks the credential immediately and then every interval until ctx
// is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	h, err := schedule.Every(ctx, m.interval, func(ctx context.Context) {
		_ = m.Check(ctx)
	}, schedule.RunNow(), schedule.WithName("token-refresh"), schedule.WithLogger(m.log))
	if err != nil {
		return err
	}
	<-ctx.Done()
	h.Cancel()
	return nil
}
