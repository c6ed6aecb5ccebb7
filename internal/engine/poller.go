// Package engine keeps the domain stores in step with the backend.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/schedule"
	"github.com/dm/minerdeck/internal/store"
)

// DefaultInterval is the status poll period.
const DefaultInterval = time.Second

// StatusSource is the part of the command bridge the poller needs.
type StatusSource interface {
	Status(ctx context.Context) (*model.StatusSnapshot, error)
	TelemetryMode(ctx context.Context) (bool, error)
}

// Poller fetches the status snapshot on a fixed period and fans it out into
// the stores. It is the only writer of the mode, miner, node, wallet, sync
// and history stores.
type Poller struct {
	src      StatusSource
	stores   *store.Stores
	interval time.Duration
	log      logrus.FieldLogger

	mu sync.Mutex // one poll at a time
}

// NewPoller returns a poller writing into stores. A non-positive interval
// means DefaultInterval.
func NewPoller(src StatusSource, stores *store.Stores, interval time.Duration, log logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{
		src:      src,
		stores:   stores,
		interval: interval,
		log:      log.WithField("component", "poller"),
	}
}

// Interval returns the poll period.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// requestTimeout bounds one status call so a slow backend cannot stack polls.
func (p *Poller) requestTimeout() time.Duration {
	d := p.interval - 100*time.Millisecond
	if d < 500*time.Millisecond {
		d = 500 * time.Millisecond
	}
	return d
}

// Run polls immediately and then every interval until ctx is cancelled.
// The telemetry preference is queried once alongside the first poll. Run
// returns nil after the schedule has stopped; no store is written after that.
func (p *Poller) Run(ctx context.Context) error {
	h, err := schedule.Every(ctx, p.interval, func(ctx context.Context) {
		_ = p.PollOnce(ctx)
	}, schedule.RunNow(), schedule.WithName("status-poll"), schedule.WithLogger(p.log))
	if err != nil {
		return err
	}
	defer h.Cancel()

	p.seedTelemetry(ctx)

	<-ctx.Done()
	return nil
}

func (p *Poller) seedTelemetry(ctx context.Context) {
	before := p.stores.Telemetry.Version()

	qctx, cancel := context.WithTimeout(ctx, p.requestTimeout())
	defer cancel()
	allowed, err := p.src.TelemetryMode(qctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.WithError(err).Warn("telemetry mode query failed")
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	// A user toggle that landed first wins.
	if p.stores.Telemetry.Version() != before {
		return
	}
	p.stores.Telemetry.Set(allowed)
}

// PollOnce performs one status fetch and applies it. On failure no domain
// store is touched; only the sync health records the error. Failures caused
// by ctx ending are returned without being recorded.
func (p *Poller) PollOnce(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, p.requestTimeout())
	defer cancel()

	snap, err := p.src.Status(pctx)
	if err == nil && snap == nil {
		err = errors.New("status: empty response")
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.log.WithError(err).Warn("status poll failed")
		p.stores.Sync.Update(func(h model.SyncHealth) model.SyncHealth {
			h.Connected = false
			h.ConsecutiveFails++
			h.LastError = err.Error()
			return h
		})
		return err
	}

	p.apply(snap)
	return nil
}

func (p *Poller) apply(snap *model.StatusSnapshot) {
	at := snap.FetchedAt
	if at.IsZero() {
		at = time.Now()
	}

	s := p.stores
	s.Mode.Set(snap.Mode)
	s.CPU.Set(snap.CPU)
	s.GPU.Set(snap.GPU)
	s.BaseNode.Set(snap.BaseNode)
	s.Wallet.Set(snap.WalletBalance)
	s.History.Update(func(h *model.HashrateHistory) *model.HashrateHistory {
		var next *model.HashrateHistory
		if h == nil {
			next = model.NewHashrateHistory(0)
		} else {
			next = h.Clone()
		}
		next.Push(model.HashratePoint{
			Timestamp:   at,
			CPUHashrate: snap.CPU.HashRate,
			GPUHashrate: snap.GPU.HashRate,
		})
		return next
	})
	s.Sync.Set(model.SyncHealth{Connected: true, LastUpdated: at})
}
