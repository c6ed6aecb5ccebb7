package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Mode is the backend mining intensity.
type Mode string

const (
	ModeEco       Mode = "Eco"
	ModeLudicrous Mode = "Ludicrous"
)

// Next returns the mode the dashboard cycles to from m.
func (m Mode) Next() Mode {
	if m == ModeEco {
		return ModeLudicrous
	}
	return ModeEco
}

// CPUStatus is the CPU miner part of a status snapshot.
type CPUStatus struct {
	IsMining          bool                `json:"is_mining"`
	HashRate          float64             `json:"hash_rate"`
	EstimatedEarnings uint64              `json:"estimated_earnings"`
	Connection        CPUConnectionStatus `json:"connection"`
}

// CPUConnectionStatus reports whether the CPU miner reaches its proxy.
type CPUConnectionStatus struct {
	IsConnected bool `json:"is_connected"`
}

// GPUStatus is the GPU miner part of a status snapshot.
type GPUStatus struct {
	IsMining          bool    `json:"is_mining"`
	HashRate          float64 `json:"hash_rate"`
	EstimatedEarnings uint64  `json:"estimated_earnings"`
	IsAvailable       bool    `json:"is_available"`
}

// BaseNodeStatus is the base node part of a status snapshot.
type BaseNodeStatus struct {
	BlockHeight    uint64   `json:"block_height"`
	BlockTime      uint64   `json:"block_time"`
	IsSynced       bool     `json:"is_synced"`
	IsConnected    bool     `json:"is_connected"`
	ConnectedPeers []string `json:"connected_peers"`
}

// WalletBalance holds wallet amounts in micro-XTM.
type WalletBalance struct {
	AvailableBalance       uint64 `json:"available_balance"`
	TimelockedBalance      uint64 `json:"timelocked_balance"`
	PendingIncomingBalance uint64 `json:"pending_incoming_balance"`
	PendingOutgoingBalance uint64 `json:"pending_outgoing_balance"`
}

// Total returns the spendable plus timelocked balance.
func (w WalletBalance) Total() uint64 {
	return w.AvailableBalance + w.TimelockedBalance
}

// UnmarshalJSON accepts either the full balance object or a bare number,
// which older backends send and which is read as the available balance.
func (w *WalletBalance) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		if string(trimmed) == "null" {
			*w = WalletBalance{}
			return nil
		}
		var n uint64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*w = WalletBalance{AvailableBalance: n}
		return nil
	}
	type plain WalletBalance
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*w = WalletBalance(p)
	return nil
}

// StatusSnapshot is the aggregate returned by the backend "status" command.
// A snapshot is never merged into a previous one; the next one replaces it.
type StatusSnapshot struct {
	Mode          Mode           `json:"mode"`
	CPU           CPUStatus      `json:"cpu"`
	GPU           GPUStatus      `json:"gpu"`
	BaseNode      BaseNodeStatus `json:"base_node"`
	WalletBalance WalletBalance  `json:"wallet_balance"`

	FetchedAt time.Time `json:"-"`
}

// Points is the airdrop points total pushed by the backend.
type Points struct {
	Base float64 `json:"base"`
	Gems float64 `json:"gems"`
}

// HardwareSample is one reading of local resource usage.
type HardwareSample struct {
	CPUPercent    float64
	MemUsedBytes  uint64
	MemTotalBytes uint64
	SampledAt     time.Time
}

// MemPercent returns memory usage as a percentage, or 0 when the total is unknown.
func (h HardwareSample) MemPercent() float64 {
	if h.MemTotalBytes == 0 {
		return 0
	}
	return float64(h.MemUsedBytes) / float64(h.MemTotalBytes) * 100
}

// SyncHealth describes how the status poll is doing.
type SyncHealth struct {
	Connected        bool
	ConsecutiveFails int
	LastError        string
	LastUpdated      time.Time
}
