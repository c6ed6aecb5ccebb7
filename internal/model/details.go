package model

import "sort"

// P2PoolStats is the share-chain view for one mining algorithm.
type P2PoolStats struct {
	Connected         bool    `json:"connected"`
	PeerCount         uint64  `json:"peer_count"`
	NumOfMiners       uint64  `json:"num_of_miners"`
	ShareChainHeight  uint64  `json:"share_chain_height"`
	PoolHashRate      float64 `json:"pool_hash_rate"`
	PoolTotalEarnings uint64  `json:"pool_total_earnings"`
}

// P2PoolSnapshot maps an algorithm name such as "sha3x" or "randomx" to its
// share-chain stats. A nil snapshot means P2Pool is not running.
type P2PoolSnapshot map[string]P2PoolStats

// Chains returns the algorithm names in sorted order.
func (s P2PoolSnapshot) Chains() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Totals sums miners and hash rate over every chain and reports whether any
// chain is connected.
func (s P2PoolSnapshot) Totals() (miners uint64, hashRate float64, connected bool) {
	for _, st := range s {
		miners += st.NumOfMiners
		hashRate += st.PoolHashRate
		connected = connected || st.Connected
	}
	return miners, hashRate, connected
}

// WalletDetails is the wallet's balance together with its receive address.
// The balance is zero while the wallet has not started.
type WalletDetails struct {
	WalletBalance     WalletBalance `json:"wallet_balance"`
	TariAddressBase58 string        `json:"tari_address_base58"`
}
