package store

import (
	"github.com/dm/minerdeck/internal/model"
)

// Stores groups the domain stores. Field comments name the single writer.
type Stores struct {
	// Status poller.
	Mode     Value[model.Mode]
	CPU      Value[model.CPUStatus]
	GPU      Value[model.GPUStatus]
	BaseNode Value[model.BaseNodeStatus]
	Wallet   Value[model.WalletBalance]
	Sync     Value[model.SyncHealth]
	History  Value[*model.HashrateHistory]

	// Details poller.
	P2Pool        Value[model.P2PoolSnapshot]
	WalletAddress Value[string]

	// Seeded once by the status poller at startup, then user action.
	Telemetry Value[bool]

	// User actions. The readiness tracker seeds MiningInitiated once, with
	// SetIf on version 0, when it attaches to a backend that is already mining.
	MiningInitiated  Value[bool]
	Animation        Value[model.AnimationState]
	GPUMiningEnabled Value[bool]
	CPUMiningEnabled Value[bool]

	// Readiness tracker.
	Readiness Value[model.Readiness]

	// Token refresh manager. nil means no credential is held.
	Credential Value[*model.Credential]

	// Event listener.
	Points Value[model.Points]

	// Hardware sampler.
	Hardware Value[model.HardwareSample]

	// Any component reporting a user-visible failure.
	Error ErrorSlot
}

// New returns stores with their startup values.
func New() *Stores {
	s := &Stores{}
	s.History.Set(model.NewHashrateHistory(0))
	s.Animation.Set(model.AnimationStop)
	s.GPUMiningEnabled.Set(true)
	s.CPUMiningEnabled.Set(true)
	s.Readiness.Set(model.Readiness{State: model.ReadinessIdle})
	return s
}
