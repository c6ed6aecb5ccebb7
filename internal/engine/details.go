package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/schedule"
	"github.com/dm/minerdeck/internal/store"
)

// DefaultDetailsInterval is the P2Pool and wallet address poll period.
const DefaultDetailsInterval = 5 * time.Second

// slowFetch is the duration past which a details call is logged as slow.
const slowFetch = time.Second

// DetailsSource is the part of the command bridge the details poller needs.
type DetailsSource interface {
	P2PoolStats(ctx context.Context) (model.P2PoolSnapshot, error)
	WalletDetails(ctx context.Context) (*model.WalletDetails, error)
}

// DetailsPoller fetches the P2Pool stats and the wallet address on their own
// period. It is the only writer of the P2Pool and wallet address stores; the
// wallet balance stays with the status poller.
type DetailsPoller struct {
	src      DetailsSource
	stores   *store.Stores
	interval time.Duration
	log      logrus.FieldLogger
}

// NewDetailsPoller returns a details poller writing into stores.
func NewDetailsPoller(src DetailsSource, stores *store.Stores, interval time.Duration, log logrus.FieldLogger) *DetailsPoller {
	if interval <= 0 {
		interval = DefaultDetailsInterval
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DetailsPoller{
		src:      src,
		stores:   stores,
		interval: interval,
		log:      log.WithField("component", "details"),
	}
}

// Run polls immediately and then every interval until ctx is cancelled.
func (d *DetailsPoller) Run(ctx context.Context) error {
	h, err := schedule.Every(ctx, d.interval, func(ctx context.Context) {
		d.PollOnce(ctx)
	}, schedule.RunNow(), schedule.WithName("details-poll"), schedule.WithLogger(d.log))
	if err != nil {
		return err
	}
	<-ctx.Done()
	h.Cancel()
	return nil
}

// PollOnce fetches both details concurrently. A failed fetch leaves its store
// as it was.
func (d *DetailsPoller) PollOnce(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		stats, err := timed(ctx, d.log, "p2pool stats", d.src.P2PoolStats)
		if err == nil {
			d.stores.P2Pool.Set(stats)
		}
		return nil
	})
	g.Go(func() error {
		details, err := timed(ctx, d.log, "wallet details", d.src.WalletDetails)
		if err == nil && details != nil && details.TariAddressBase58 != d.stores.WalletAddress.Get() {
			d.stores.WalletAddress.Set(details.TariAddressBase58)
		}
		return nil
	})
	_ = g.Wait()
}

// timed runs fetch, logging failures and calls slower than slowFetch.
func timed[T any](ctx context.Context, log logrus.FieldLogger, what string, fetch func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fetch(ctx)
	if took := time.Since(start); took > slowFetch {
		log.WithField("took", took.Round(time.Millisecond)).Warnf("%s fetch is slow", what)
	}
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warnf("%s fetch failed", what)
		}
		return v, err
	}
	if ctx.Err() != nil {
		return v, ctx.Err()
	}
	return v, nil
}
