// Package mining turns user intent into backend commands and tracks whether
// the miners have caught up with it.
package mining

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/dm/minerdeck/internal/model"
	"github.com/dm/minerdeck/internal/store"
)

// Commander is the part of the command bridge user actions drive.
type Commander interface {
	StartMining(ctx context.Context) error
	StopMining(ctx context.Context) error
	SetMode(ctx context.Context, mode model.Mode) error
	SetGPUMiningEnabled(ctx context.Context, enabled bool) error
	SetCPUMiningEnabled(ctx context.Context, enabled bool) error
	SetTelemetryMode(ctx context.Context, allowed bool) error
}

// StopOptions tunes Stop.
type StopOptions struct {
	// IsPause leaves the animation in the paused state instead of stopped.
	IsPause bool
}

// Controller runs the user-initiated mining actions. It has no return
// values; outcomes land in the stores and failures in the error slot.
type Controller struct {
	cmd    Commander
	stores *store.Stores
	log    logrus.FieldLogger
}

// NewController returns a controller writing into stores.
func NewController(cmd Commander, stores *store.Stores, log logrus.FieldLogger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Controller{
		cmd:    cmd,
		stores: stores,
		log:    log.WithField("component", "mining"),
	}
}

// Start records the intent to mine and asks the backend to start.
func (c *Controller) Start(ctx context.Context) {
	c.stores.MiningInitiated.Set(true)

	if err := c.cmd.StartMining(ctx); err != nil {
		c.log.WithError(err).Error("start mining failed")
		c.stores.Animation.Set(model.AnimationStop)
		c.stores.MiningInitiated.Set(false)
		c.stores.Error.Report(err)
		return
	}
	c.stores.Animation.Set(model.AnimationStart)
}

// Stop clears the intent to mine and asks the backend to stop.
func (c *Controller) Stop(ctx context.Context, opts StopOptions) {
	c.stores.MiningInitiated.Set(false)

	if err := c.cmd.StopMining(ctx); err != nil {
		c.log.WithError(err).Error("stop mining failed")
		c.stores.Animation.Set(model.AnimationStart)
		c.stores.MiningInitiated.Set(true)
		c.stores.Error.Report(err)
		return
	}
	if opts.IsPause {
		c.stores.Animation.Set(model.AnimationPause)
		return
	}
	c.stores.Animation.Set(model.AnimationStop)
}

// SetMode asks the backend to switch mode. The mode store follows on the
// next successful poll.
func (c *Controller) SetMode(ctx context.Context, mode model.Mode) {
	if err := c.cmd.SetMode(ctx, mode); err != nil {
		c.log.WithError(err).WithField("mode", mode).Error("set mode failed")
		c.stores.Error.Report(err)
		return
	}
	c.log.WithField("mode", mode).Info("mode change requested")
}

// SetGPUMiningEnabled flips the GPU preference, rolling back on failure.
func (c *Controller) SetGPUMiningEnabled(ctx context.Context, enabled bool) {
	prev := c.stores.GPUMiningEnabled.Get()
	c.stores.GPUMiningEnabled.Set(enabled)

	if err := c.cmd.SetGPUMiningEnabled(ctx, enabled); err != nil {
		c.log.WithError(err).Error("set gpu mining failed")
		c.stores.GPUMiningEnabled.Set(prev)
		c.stores.Error.Report(err)
	}
}

// SetCPUMiningEnabled flips the CPU preference, rolling back on failure.
func (c *Controller) SetCPUMiningEnabled(ctx context.Context, enabled bool) {
	prev := c.stores.CPUMiningEnabled.Get()
	c.stores.CPUMiningEnabled.Set(enabled)

	if err := c.cmd.SetCPUMiningEnabled(ctx, enabled); err != nil {
		c.log.WithError(err).Error("set cpu mining failed")
		c.stores.CPUMiningEnabled.Set(prev)
		c.stores.Error.Report(err)
	}
}

// SetTelemetryMode flips the telemetry preference, rolling back on failure.
func (c *Controller) SetTelemetryMode(ctx context.Context, allowed bool) {
	prev := c.stores.Telemetry.Get()
	c.stores.Telemetry.Set(allowed)

	if err := c.cmd.SetTelemetryMode(ctx, allowed); err != nil {
		c.log.WithError(err).Error("set telemetry mode failed")
		c.stores.Telemetry.Set(prev)
		c.stores.Error.Report(err)
	}
}
