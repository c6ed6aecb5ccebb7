// Package schedule runs callbacks on a fixed period until cancelled.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrInvalidPeriod is returned by Every for a non-positive period.
var ErrInvalidPeriod = errors.New("schedule: period must be positive")

// Func is invoked on every tick. Its context is cancelled when the handle is
// cancelled or the parent context ends.
type Func func(ctx context.Context)

// Option configures a schedule.
type Option func(*options)

type options struct {
	runNow bool
	name   string
	log    logrus.FieldLogger
}

// RunNow invokes the callback once immediately, before the first period elapses.
func RunNow() Option {
	return func(o *options) { o.runNow = true }
}

// WithName labels log entries for this schedule.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used to report recovered panics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

// Handle controls a running schedule.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every starts calling fn every period on a dedicated goroutine. Invocations
// never overlap: ticks that arrive while fn is running are dropped.
func Every(ctx context.Context, period time.Duration, fn Func, opts ...Option) (*Handle, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, period)
	}
	o := options{name: "schedule"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go h.run(ctx, period, fn, o)
	return h, nil
}

func (h *Handle) run(ctx context.Context, period time.Duration, fn Func, o options) {
	defer close(h.done)

	if o.runNow {
		invoke(ctx, fn, o)
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick and a cancel can be ready together; cancel wins.
			if ctx.Err() != nil {
				return
			}
			invoke(ctx, fn, o)
		}
	}
}

// invoke runs fn, recovering a panic so one bad tick cannot end the schedule.
func invoke(ctx context.Context, fn Func, o options) {
	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("schedule", o.name).Errorf("recovered panic in scheduled callback: %v", r)
		}
	}()
	fn(ctx)
}

// Cancel stops the schedule and waits for an in-flight invocation to return.
// No invocation starts after Cancel returns. Cancel is idempotent, and must
// not be called from inside the schedule's own callback; cancel the callback's
// context owner instead.
func (h *Handle) Cancel() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the schedule's goroutine has exited, whether through
// Cancel or the parent context ending.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
