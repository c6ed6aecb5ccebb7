package mining

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/minerdeck/internal/logging"
	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/store"
)

func TestDerive(t *testing.T) {
	assert.Equal(t, model.ReadinessMining, Derive(true, true))
	assert.Equal(t, model.ReadinessStarting, Derive(true, false))
	assert.Equal(t, model.ReadinessStopping, Derive(false, true))
	assert.Equal(t, model.ReadinessIdle, Derive(false, false))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(stuck time.Duration) (*Tracker, *store.Stores, *fakeClock) {
	s := store.New()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	tr := NewTracker(s, time.Second, stuck, logging.Discard())
	tr.now = clk.Now
	return tr, s, clk
}

func TestEvaluate_FollowsIntentAndMiners(t *testing.T) {
	tr, s, clk := newTestTracker(5 * time.Second)

	tr.Evaluate()
	assert.Equal(t, model.ReadinessIdle, s.Readiness.Get().State)

	s.MiningInitiated.Set(true)
	tr.Evaluate()
	r := s.Readiness.Get()
	assert.Equal(t, model.ReadinessStarting, r.State)
	assert.Equal(t, clk.Now(), r.Since)
	assert.True(t, r.Loading())

	clk.Advance(time.Second)
	s.CPU.Set(model.CPUStatus{IsMining: true})
	tr.Evaluate()
	assert.Equal(t, model.ReadinessMining, s.Readiness.Get().State)

	s.MiningInitiated.Set(false)
	tr.Evaluate()
	assert.Equal(t, model.ReadinessStopping, s.Readiness.Get().State)

	s.CPU.Set(model.CPUStatus{})
	s.GPU.Set(model.GPUStatus{IsMining: false})
	tr.Evaluate()
	assert.Equal(t, model.ReadinessIdle, s.Readiness.Get().State)
}

func TestEvaluate_GPUCountsAsActive(t *testing.T) {
	tr, s, _ := newTestTracker(5 * time.Second)
	s.MiningInitiated.Set(true)
	s.GPU.Set(model.GPUStatus{IsMining: true})
	tr.Evaluate()
	assert.Equal(t, model.ReadinessMining, s.Readiness.Get().State)
}

func TestEvaluate_StuckReportsOnce(t *testing.T) {
	tr, s, clk := newTestTracker(5 * time.Second)
	s.MiningInitiated.Set(true)
	tr.Evaluate()

	clk.Advance(4 * time.Second)
	tr.Evaluate()
	assert.False(t, s.Readiness.Get().Stuck)
	assert.Empty(t, s.Error.Get())

	clk.Advance(time.Second)
	tr.Evaluate()
	assert.True(t, s.Readiness.Get().Stuck)
	assert.Equal(t, "miner still starting after 5s", s.Error.Get())

	errVer := s.Error.Version()
	clk.Advance(10 * time.Second)
	tr.Evaluate()
	assert.Equal(t, errVer, s.Error.Version(), "stuck is reported once")

	// Reaching a stable state clears the flag.
	s.CPU.Set(model.CPUStatus{IsMining: true})
	tr.Evaluate()
	r := s.Readiness.Get()
	assert.Equal(t, model.ReadinessMining, r.State)
	assert.False(t, r.Stuck)
}

func TestEvaluate_NoWriteWhenUnchanged(t *testing.T) {
	tr, s, clk := newTestTracker(5 * time.Second)
	tr.Evaluate()
	ver := s.Readiness.Version()

	clk.Advance(time.Minute)
	tr.Evaluate()
	tr.Evaluate()
	assert.Equal(t, ver, s.Readiness.Version())
}

func TestRun_ReactsToStoreChanges(t *testing.T) {
	s := store.New()
	tr := NewTracker(s, time.Hour, time.Hour, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	// The interval is an hour, so only the subscription can pick this up.
	require.Eventually(t, func() bool {
		s.MiningInitiated.Set(true)
		return s.Readiness.Get().State == model.ReadinessStarting
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	ver := s.Readiness.Version()
	s.MiningInitiated.Set(false)
	assert.Equal(t, ver, s.Readiness.Version(), "no readiness write after Run returns")
}

func TestEvaluate_AttachesToRunningMiner(t *testing.T) {
	tr, s, clk := newTestTracker(5 * time.Second)

	// The backend was mining before this process started.
	s.CPU.Set(model.CPUStatus{IsMining: true})
	s.Sync.Set(model.SyncHealth{Connected: true, LastUpdated: clk.Now()})
	tr.Evaluate()

	assert.True(t, s.MiningInitiated.Get())
	assert.Equal(t, model.ReadinessMining, s.Readiness.Get().State)

	clk.Advance(6 * time.Second)
	tr.Evaluate()
	r := s.Readiness.Get()
	assert.Equal(t, model.ReadinessMining, r.State)
	assert.False(t, r.Stuck)
	assert.Empty(t, s.Error.Get())
}

func TestEvaluate_WaitsForFirstSnapshotBeforeAdopting(t *testing.T) {
	tr, s, _ := newTestTracker(5 * time.Second)
	s.GPU.Set(model.GPUStatus{IsMining: true})
	tr.Evaluate()

	assert.Equal(t, uint64(0), s.MiningInitiated.Version())
}

func TestEvaluate_UserIntentWinsOverAdoption(t *testing.T) {
	tr, s, clk := newTestTracker(5 * time.Second)

	// The user pressed stop before the first snapshot arrived.
	s.MiningInitiated.Set(false)
	s.CPU.Set(model.CPUStatus{IsMining: true})
	s.Sync.Set(model.SyncHealth{Connected: true, LastUpdated: clk.Now()})
	tr.Evaluate()

	assert.False(t, s.MiningInitiated.Get())
	assert.Equal(t, model.ReadinessStopping, s.Readiness.Get().State)
}
