package engine

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/dm/minerdeck/internal/model"
)

// MockStatusSource implements StatusSource for testing.
type MockStatusSource struct {
	StatusFn    func(ctx context.Context) (*model.StatusSnapshot, error)
	TelemetryFn func(ctx context.Context) (bool, error)

	statusCalls atomic.Int32
}

func (m *MockStatusSource) Status(ctx context.Context) (*model.StatusSnapshot, error) {
	m.statusCalls.Add(1)
	if m.StatusFn != nil {
		return m.StatusFn(ctx)
	}
	return &model.StatusSnapshot{Mode: model.ModeEco}, nil
}

func (m *MockStatusSource) TelemetryMode(ctx context.Context) (bool, error) {
	if m.TelemetryFn != nil {
		return m.TelemetryFn(ctx)
	}
	return false, nil
}

func (m *MockStatusSource) StatusCalls() int {
	return int(m.statusCalls.Load())
}

var errMockFailure = errors.New("mock failure")

// MockDetailsSource implements DetailsSource for testing.
type MockDetailsSource struct {
	P2PoolFn func(ctx context.Context) (model.P2PoolSnapshot, error)
	WalletFn func(ctx context.Context) (*model.WalletDetails, error)
}

func (m *MockDetailsSource) P2PoolStats(ctx context.Context) (model.P2PoolSnapshot, error) {
	if m.P2PoolFn != nil {
		return m.P2PoolFn(ctx)
	}
	return nil, nil
}

func (m *MockDetailsSource) WalletDetails(ctx context.Context) (*model.WalletDetails, error) {
	if m.WalletFn != nil {
		return m.WalletFn(ctx)
	}
	return &model.WalletDetails{}, nil
}
