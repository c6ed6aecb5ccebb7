package model

import "time"

// AnimationState is the visual state the dashboard shows for the miner.
type AnimationState string

const (
	AnimationStart AnimationState = "start"
	AnimationStop  AnimationState = "stop"
	AnimationPause AnimationState = "pause"
)

// ReadinessState is the derived mining lifecycle state.
type ReadinessState string

const (
	ReadinessIdle     ReadinessState = "idle"
	ReadinessStarting ReadinessState = "starting"
	ReadinessMining   ReadinessState = "mining"
	ReadinessStopping ReadinessState = "stopping"
)

// Readiness is the tracker's view of whether user intent and the miners agree.
type Readiness struct {
	State ReadinessState
	// Stuck is set when a loading state outlived the stuck timeout.
	Stuck bool
	// Since is when State was entered.
	Since time.Time
}

// Loading reports whether intent and observed mining disagree.
func (r Readiness) Loading() bool {
	return r.State == ReadinessStarting || r.State == ReadinessStopping
}
