package mining

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/schedule"
	"github.com/dm/minerdeck/internal/store"
)

// DefaultStuckTimeout is how long starting or stopping may last before the
// tracker reports it.
const DefaultStuckTimeout = 5 * time.Second

// Tracker derives readiness from the mining intent and the miners' reported
// state. It is the only writer of the readiness store.
type Tracker struct {
	stores     *store.Stores
	interval   time.Duration
	stuckAfter time.Duration
	log        logrus.FieldLogger

	now func() time.Time

	mu      sync.Mutex
	stopped bool
}

// NewTracker returns a tracker that re-evaluates every interval.
func NewTracker(stores *store.Stores, interval, stuckAfter time.Duration, log logrus.FieldLogger) *Tracker {
	if interval <= 0 {
		interval = time.Second
	}
	if stuckAfter <= 0 {
		stuckAfter = DefaultStuckTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Tracker{
		stores:     stores,
		interval:   interval,
		stuckAfter: stuckAfter,
		log:        log.WithField("component", "readiness"),
		now:        time.Now,
	}
}

// Derive maps intent and observed activity to a readiness state.
func Derive(intent, active bool) model.ReadinessState {
	switch {
	case intent && active:
		return model.ReadinessMining
	case intent:
		return model.ReadinessStarting
	case active:
		return model.ReadinessStopping
	default:
		return model.ReadinessIdle
	}
}

// Evaluate recomputes readiness once.
func (t *Tracker) Evaluate() {
	t.adoptRunningMiners()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	now := t.now()
	intent := t.stores.MiningInitiated.Get()
	active := t.stores.CPU.Get().IsMining || t.stores.GPU.Get().IsMining
	state := Derive(intent, active)

	cur := t.stores.Readiness.Get()
	next := cur
	if state != cur.State || cur.Since.IsZero() {
		next = model.Readiness{State: state, Since: now}
	}

	if next.Loading() && !next.Stuck && now.Sub(next.Since) >= t.stuckAfter {
		next.Stuck = true
		err := fmt.Errorf("miner still %s after %v", next.State, t.stuckAfter)
		t.log.Warn(err.Error())
		t.stores.Error.Report(err)
	}

	if next != cur {
		t.stores.Readiness.Set(next)
	}
}

// adoptRunningMiners seeds the mining intent from the first status snapshot
// when no user action has set it yet, so attaching to a backend that is
// already mining reads as mining rather than stopping.
//
// It runs outside t.mu: writing the intent notifies the tracker's own
// subscription, which re-enters Evaluate.
func (t *Tracker) adoptRunningMiners() {
	intent := &t.stores.MiningInitiated
	if intent.Version() != 0 || t.stores.Sync.Get().LastUpdated.IsZero() {
		return
	}
	if !t.stores.CPU.Get().IsMining && !t.stores.GPU.Get().IsMining {
		return
	}
	if intent.SetIf(0, true) {
		t.log.Info("backend already mining, adopting intent")
	}
}

// Run evaluates on every change of intent or miner state and on a fixed
// interval, until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	onChange := func() { t.Evaluate() }
	unsubs := []func(){
		t.stores.MiningInitiated.Subscribe(func(bool) { onChange() }),
		t.stores.CPU.Subscribe(func(model.CPUStatus) { onChange() }),
		t.stores.GPU.Subscribe(func(model.GPUStatus) { onChange() }),
		t.stores.Sync.Subscribe(func(model.SyncHealth) { onChange() }),
	}

	h, err := schedule.Every(ctx, t.interval, func(context.Context) {
		t.Evaluate()
	}, schedule.RunNow(), schedule.WithName("readiness"), schedule.WithLogger(t.log))
	if err != nil {
		for _, u := range unsubs {
			u()
		}
		return err
	}

	<-ctx.Done()
	h.Cancel()
	for _, u := range unsubs {
		u()
	}
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	return nil
}
