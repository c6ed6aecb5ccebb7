package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashrateHistory_PushAndLen(t *testing.T) {
	h := NewHashrateHistory(5)
	assert.Equal(t, 0, h.Len())

	h.Push(HashratePoint{Timestamp: time.Now(), CPUHashrate: 1.0})
	assert.Equal(t, 1, h.Len())

	h.Push(HashratePoint{Timestamp: time.Now(), CPUHashrate: 2.0})
	h.Push(HashratePoint{Timestamp: time.Now(), CPUHashrate: 3.0})
	assert.Equal(t, 3, h.Len())
}

func TestHashrateHistory_OverwritesOldest(t *testing.T) {
	h := NewHashrateHistory(3)

	h.Push(HashratePoint{CPUHashrate: 10})
	h.Push(HashratePoint{CPUHashrate: 20})
	h.Push(HashratePoint{CPUHashrate: 30})
	require.Equal(t, 3, h.Len())

	// Push beyond capacity: oldest (10) should be overwritten
	h.Push(HashratePoint{CPUHashrate: 40})
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{20, 30, 40}, h.Values("cpu"))

	h.Push(HashratePoint{CPUHashrate: 50})
	assert.Equal(t, []float64{30, 40, 50}, h.Values("cpu"))
}

func TestHashrateHistory_Values_AllFields(t *testing.T) {
	h := NewHashrateHistory(2)
	h.Push(HashratePoint{CPUHashrate: 1.5, GPUHashrate: 2.5})

	assert.Equal(t, []float64{1.5}, h.Values("cpu"))
	assert.Equal(t, []float64{2.5}, h.Values("gpu"))
	assert.Equal(t, []float64{4.0}, h.Values("total"))
}

func TestHashrateHistory_Values_UnknownField(t *testing.T) {
	h := NewHashrateHistory(3)
	h.Push(HashratePoint{CPUHashrate: 5})

	assert.Equal(t, []float64{0}, h.Values("bogusField"))
}

func TestHashrateHistory_Clear(t *testing.T) {
	h := NewHashrateHistory(4)
	h.Push(HashratePoint{CPUHashrate: 1})
	h.Push(HashratePoint{CPUHashrate: 2})
	require.Equal(t, 2, h.Len())

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Values("cpu"))

	h.Push(HashratePoint{CPUHashrate: 99})
	assert.Equal(t, []float64{99}, h.Values("cpu"))
}

func TestHashrateHistory_DefaultCapacity(t *testing.T) {
	h := NewHashrateHistory(0)
	for i := 0; i < 65; i++ {
		h.Push(HashratePoint{GPUHashrate: float64(i)})
	}
	assert.Equal(t, 60, h.Len())
	vals := h.Values("gpu")
	assert.Equal(t, float64(5), vals[0])
	assert.Equal(t, float64(64), vals[59])
}

func TestHashrateHistory_CloneIsIndependent(t *testing.T) {
	h := NewHashrateHistory(3)
	h.Push(HashratePoint{CPUHashrate: 1})

	c := h.Clone()
	h.Push(HashratePoint{CPUHashrate: 2})

	assert.Equal(t, []float64{1}, c.Values("cpu"))
	assert.Equal(t, []float64{1, 2}, h.Values("cpu"))
}
