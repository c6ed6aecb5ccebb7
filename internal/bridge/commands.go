package bridge

import (
	"context"
	"time"

	"github.com/dm/minerdeck/internal/model"
)

// Backend command names.
const (
	CmdStatus                = "status"
	CmdGetTelemetryMode      = "get_telemetry_mode"
	CmdSetTelemetryMode      = "set_telemetry_mode"
	CmdSetAirdropAccessToken = "set_airdrop_access_token"
	CmdStartMining           = "start_mining"
	CmdStopMining            = "stop_mining"
	CmdSetGPUMiningEnabled   = "set_gpu_mining_enabled"
	CmdSetCPUMiningEnabled   = "set_cpu_mining_enabled"
	CmdSetMode               = "set_mode"
	CmdGetP2PoolStats        = "get_p2pool_stats"
	CmdGetTariWalletDetails  = "get_tari_wallet_details"
)

// Client exposes the backend commands as typed methods.
type Client struct {
	inv Invoker
}

// NewClient wraps inv.
func NewClient(inv Invoker) *Client {
	return &Client{inv: inv}
}

// Status fetches the aggregate status snapshot.
func (c *Client) Status(ctx context.Context) (*model.StatusSnapshot, error) {
	var snap model.StatusSnapshot
	if err := c.inv.Invoke(ctx, CmdStatus, nil, &snap); err != nil {
		return nil, err
	}
	snap.FetchedAt = time.Now()
	return &snap, nil
}

// TelemetryMode reports whether telemetry is allowed.
func (c *Client) TelemetryMode(ctx context.Context) (bool, error) {
	var allowed bool
	if err := c.inv.Invoke(ctx, CmdGetTelemetryMode, nil, &allowed); err != nil {
		return false, err
	}
	return allowed, nil
}

// SetTelemetryMode allows or forbids telemetry.
func (c *Client) SetTelemetryMode(ctx context.Context, allowed bool) error {
	return c.inv.Invoke(ctx, CmdSetTelemetryMode, map[string]bool{"telemetryMode": allowed}, nil)
}

// P2PoolStats fetches the share-chain stats per algorithm.
func (c *Client) P2PoolStats(ctx context.Context) (model.P2PoolSnapshot, error) {
	var stats model.P2PoolSnapshot
	if err := c.inv.Invoke(ctx, CmdGetP2PoolStats, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// WalletDetails fetches the wallet balance and receive address.
func (c *Client) WalletDetails(ctx context.Context) (*model.WalletDetails, error) {
	var d model.WalletDetails
	if err := c.inv.Invoke(ctx, CmdGetTariWalletDetails, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetAirdropAccessToken hands the current airdrop access token to the backend.
func (c *Client) SetAirdropAccessToken(ctx context.Context, token string) error {
	return c.inv.Invoke(ctx, CmdSetAirdropAccessToken, map[string]string{"token": token}, nil)
}

// StartMining starts the enabled miners.
func (c *Client) StartMining(ctx context.Context) error {
	return c.inv.Invoke(ctx, CmdStartMining, nil, nil)
}

// StopMining stops all miners.
func (c *Client) StopMining(ctx context.Context) error {
	return c.inv.Invoke(ctx, CmdStopMining, nil, nil)
}

// SetGPUMiningEnabled enables or disables the GPU miner.
func (c *Client) SetGPUMiningEnabled(ctx context.Context, enabled bool) error {
	return c.inv.Invoke(ctx, CmdSetGPUMiningEnabled, map[string]bool{"enabled": enabled}, nil)
}

// SetCPUMiningEnabled enables or disables the CPU miner.
func (c *Client) SetCPUMiningEnabled(ctx context.Context, enabled bool) error {
	return c.inv.Invoke(ctx, CmdSetCPUMiningEnabled, map[string]bool{"enabled": enabled}, nil)
}

// SetMode switches the mining intensity.
func (c *Client) SetMode(ctx context.Context, mode model.Mode) error {
	return c.inv.Invoke(ctx, CmdSetMode, map[string]string{"mode": string(mode)}, nil)
}

// Ping checks connectivity with a status call bounded to one second.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	return c.inv.Invoke(pingCtx, CmdStatus, nil, nil)
}
