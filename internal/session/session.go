// Package session assembles the stores and sync components from config and
// runs them for the lifetime of the dashboard.
package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dm/minerdeck/internal/auth"
	"github.com/dm/minerdeck/internal/bridge"
	"github.com/dm/minerdeck/internal/config"
	"github.com/dm/minerdeck/internal/engine"
	"github.com/dm/minerdeck/internal/events"
	"github.com/dm/minerdeck/internal/hardware"
	"github.com/dm/minerdeck/internal/mining"
	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/store"
)

// ErrAlreadyStarted is returned by a second Start.
var ErrAlreadyStarted = errors.New("session already started")

// Session owns every store and background component.
type Session struct {
	Stores     *store.Stores
	Client     *bridge.Client
	Controller *mining.Controller
	Poller     *engine.Poller
	Auth       *auth.Manager
	Hub        *events.Hub

	propagator *auth.Propagator
	listener   *events.Listener // nil when events are disabled
	tracker    *mining.Tracker
	details    *engine.DetailsPoller
	sampler    *hardware.Sampler // nil when hardware sampling is disabled

	cfg *config.Config
	log logrus.FieldLogger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// New builds a session from cfg. Nothing runs until Start.
func New(cfg *config.Config, log logrus.FieldLogger) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("session: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	inv, err := bridge.NewHTTPInvoker(bridge.HTTPConfig{
		BaseURL:            cfg.Bridge.URL,
		Username:           cfg.Bridge.Username,
		Password:           cfg.Bridge.Password,
		InsecureSkipVerify: cfg.Bridge.InsecureSkipVerify,
		RequestTimeout:     cfg.Bridge.RequestTimeout.Duration,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	stores := store.New()
	client := bridge.NewClient(inv)
	hub := events.NewHub(log)

	s := &Session{
		Stores:     stores,
		Client:     client,
		Controller: mining.NewController(client, stores, log),
		Poller:     engine.NewPoller(client, stores, cfg.Poll.Interval.Duration, log),
		Auth: auth.NewManager(&auth.RefreshClient{URL: cfg.Auth.RefreshURL},
			&stores.Credential, cfg.Auth.RefreshInterval.Duration, log),
		Hub:        hub,
		propagator: auth.NewPropagator(client, &stores.Credential, cfg.Bridge.RequestTimeout.Duration, log),
		details:    engine.NewDetailsPoller(client, stores, cfg.Poll.DetailsInterval.Duration, log),
		tracker:    mining.NewTracker(stores, cfg.Poll.Interval.Duration, cfg.Poll.StuckTimeout.Duration, log),
		cfg:        cfg,
		log:        log.WithField("component", "session"),
	}

	if cfg.Events.Enabled {
		s.listener, err = events.NewListener(inv.BaseURL(), cfg.Events.Path, bridgeHeader(cfg.Bridge), hub, log)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	if cfg.Hardware.Enabled {
		s.sampler = hardware.NewSampler(nil, &stores.Hardware, cfg.Hardware.Interval.Duration, log)
	}
	return s, nil
}

func bridgeHeader(b config.BridgeConfig) http.Header {
	if b.Username == "" && b.Password == "" {
		return nil
	}
	h := http.Header{}
	h.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(b.Username+":"+b.Password)))
	return h
}

// Config returns the configuration the session was built from.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Start launches every component on ctx. It returns immediately.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	if s.cfg.Auth.AccessToken != "" {
		if err := s.Auth.Login(model.Credential{
			Token:        s.cfg.Auth.AccessToken,
			RefreshToken: s.cfg.Auth.RefreshToken,
			ExpiresAt:    s.cfg.Auth.ExpiresAt,
		}); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	s.group = g

	points := events.SubscribeJSON(s.Hub, events.PointsUpdate, func(p model.Points) {
		s.Stores.Points.Set(p)
	})
	g.Go(func() error {
		<-gctx.Done()
		points.Unsubscribe()
		return nil
	})

	g.Go(func() error {
		s.checkBridge(gctx)
		return nil
	})
	g.Go(func() error { return s.Poller.Run(gctx) })
	g.Go(func() error { return s.details.Run(gctx) })
	g.Go(func() error { return s.Auth.Run(gctx) })
	g.Go(func() error { return s.propagator.Run(gctx) })
	g.Go(func() error { return s.tracker.Run(gctx) })
	if s.listener != nil {
		g.Go(func() error { return s.listener.Run(gctx) })
	}
	if s.sampler != nil {
		g.Go(func() error { return s.sampler.Run(gctx) })
	}

	s.log.WithField("bridge", s.cfg.Bridge.URL).Info("session started")
	return nil
}

// checkBridge pings the backend once so an unreachable bridge shows up as an
// error instead of only a disconnected header.
func (s *Session) checkBridge(ctx context.Context) {
	err := s.Client.Ping(ctx)
	if err == nil || ctx.Err() != nil {
		return
	}
	s.log.WithError(err).Warn("backend bridge unreachable")
	s.Stores.Error.Report(fmt.Errorf("backend bridge unreachable at %s: %w", s.cfg.Bridge.URL, err))
}

// Wait blocks until every component has stopped.
func (s *Session) Wait() error {
	s.mu.Lock()
	g := s.group
	s.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// Close stops every component and waits for them. After Close returns no
// component writes to the stores.
func (s *Session) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	err := s.Wait()
	s.log.Info("session stopped")
	return err
}

// Run starts the session and blocks until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}
