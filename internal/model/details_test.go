package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestP2PoolSnapshot_Totals(t *testing.T) {
	var empty P2PoolSnapshot
	m, h, c := empty.Totals()
	assert.Zero(t, m)
	assert.Zero(t, h)
	assert.False(t, c)
	assert.Empty(t, empty.Chains())

	s := P2PoolSnapshot{
		"sha3x":   {Connected: false, NumOfMiners: 3, PoolHashRate: 1000},
		"randomx": {Connected: true, NumOfMiners: 5, PoolHashRate: 250},
	}
	m, h, c = s.Totals()
	assert.Equal(t, uint64(8), m)
	assert.InDelta(t, 1250, h, 0)
	assert.True(t, c)
	assert.Equal(t, []string{"randomx", "sha3x"}, s.Chains())
}

func TestWalletDetails_AcceptsBareBalance(t *testing.T) {
	var d WalletDetails
	require.NoError(t, json.Unmarshal([]byte(`{"wallet_balance":0,"tari_address_base58":"f2abc"}`), &d))
	assert.Equal(t, "f2abc", d.TariAddressBase58)
	assert.Zero(t, d.WalletBalance.Total())
}
