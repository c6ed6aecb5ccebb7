package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/minerdeck/internal/bridge/bridgetest"
	"github.com/dm/minerdeck/internal/logging"
	"github.com/dm/minerdeck/internal/model"
)

// newTestInvoker creates an HTTPInvoker pointed at the given test server URL.
func newTestInvoker(t *testing.T, baseURL string) *HTTPInvoker {
	t.Helper()
	inv, err := NewHTTPInvoker(HTTPConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
	}, logging.Discard())
	require.NoError(t, err)
	return inv
}

func TestNewHTTPInvoker_RequiresBaseURL(t *testing.T) {
	_, err := NewHTTPInvoker(HTTPConfig{}, nil)
	assert.Error(t, err)
}

func TestInvoke_RequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/invoke/set_mode", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "miner", user)
		assert.Equal(t, "secret", pass)

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"mode":"Ludicrous"}`, string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	inv, err := NewHTTPInvoker(HTTPConfig{BaseURL: srv.URL + "/", Username: "miner", Password: "secret"}, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, NewClient(inv).SetMode(context.Background(), model.ModeLudicrous))
}

func TestInvoke_NilArgsSendsEmptyObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "{}", string(body))
	}))
	defer srv.Close()

	require.NoError(t, newTestInvoker(t, srv.URL).Invoke(context.Background(), "start_mining", nil, nil))
}

func TestInvoke_CommandError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "node not started", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestInvoker(t, srv.URL).Invoke(context.Background(), "start_mining", nil, nil)
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "start_mining", cmdErr.Command)
	assert.Equal(t, http.StatusInternalServerError, cmdErr.Status)
	assert.Equal(t, "start_mining: node not started", err.Error())
}

func TestInvoke_CommandErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestInvoker(t, srv.URL).Invoke(context.Background(), "status", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "status: backend returned status 502", err.Error())
}

func TestInvoke_LongErrorIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, strings.Repeat("x", 500), http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestInvoker(t, srv.URL).Invoke(context.Background(), "status", nil, nil)
	require.Error(t, err)
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
	assert.Less(t, len(err.Error()), 250)
}

func TestInvoke_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestInvoker(t, srv.URL).Invoke(context.Background(), "status", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode result")
}

func TestInvoke_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestInvoker(t, srv.URL).Invoke(ctx, "status", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_StatusAgainstFakeBackend(t *testing.T) {
	backend := bridgetest.New(t)
	backend.SetStatus(model.StatusSnapshot{
		Mode:          model.ModeEco,
		CPU:           model.CPUStatus{IsMining: true, HashRate: 2048},
		BaseNode:      model.BaseNodeStatus{BlockHeight: 42, IsSynced: true},
		WalletBalance: model.WalletBalance{AvailableBalance: 500},
	})

	c := NewClient(newTestInvoker(t, backend.URL()))
	snap, err := c.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.ModeEco, snap.Mode)
	assert.True(t, snap.CPU.IsMining)
	assert.Equal(t, uint64(42), snap.BaseNode.BlockHeight)
	assert.Equal(t, uint64(500), snap.WalletBalance.AvailableBalance)
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestClient_Commands(t *testing.T) {
	backend := bridgetest.New(t)
	c := NewClient(newTestInvoker(t, backend.URL()))
	ctx := context.Background()

	backend.SetTelemetry(true)
	allowed, err := c.TelemetryMode(ctx)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, c.SetTelemetryMode(ctx, false))
	allowed, err = c.TelemetryMode(ctx)
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, c.SetAirdropAccessToken(ctx, "tok-1"))
	calls := backend.Calls(CmdSetAirdropAccessToken)
	require.Len(t, calls, 1)
	var args map[string]string
	require.NoError(t, json.Unmarshal(calls[0], &args))
	assert.Equal(t, "tok-1", args["token"])

	require.NoError(t, c.StartMining(ctx))
	assert.True(t, backend.Status().CPU.IsMining)
	require.NoError(t, c.StopMining(ctx))
	assert.False(t, backend.Status().CPU.IsMining)

	require.NoError(t, c.SetGPUMiningEnabled(ctx, false))
	require.NoError(t, c.SetCPUMiningEnabled(ctx, true))
	assert.Equal(t, 1, backend.CallCount(CmdSetGPUMiningEnabled))
	assert.Equal(t, 1, backend.CallCount(CmdSetCPUMiningEnabled))

	require.NoError(t, c.Ping(ctx))
}

func TestClient_Details(t *testing.T) {
	backend := bridgetest.New(t)
	c := NewClient(newTestInvoker(t, backend.URL()))
	ctx := context.Background()

	stats, err := c.P2PoolStats(ctx)
	require.NoError(t, err)
	assert.Nil(t, stats, "no stats while P2Pool is down")

	backend.SetP2Pool(model.P2PoolSnapshot{"sha3x": {Connected: true, NumOfMiners: 4, ShareChainHeight: 900}})
	stats, err = c.P2PoolStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), stats["sha3x"].ShareChainHeight)

	backend.SetStatus(model.StatusSnapshot{WalletBalance: model.WalletBalance{AvailableBalance: 7}})
	backend.SetWalletAddress("f2xyz")
	d, err := c.WalletDetails(ctx)
	require.NoError(t, err)
	assert.Equal(t, "f2xyz", d.TariAddressBase58)
	assert.Equal(t, uint64(7), d.WalletBalance.AvailableBalance)
}

func TestClient_FailingCommand(t *testing.T) {
	backend := bridgetest.New(t)
	backend.Fail(CmdStartMining, http.StatusInternalServerError, "xmrig missing")
	c := NewClient(newTestInvoker(t, backend.URL()))

	err := c.StartMining(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xmrig missing")

	backend.Recover(CmdStartMining)
	assert.NoError(t, c.StartMining(context.Background()))
}

func TestClient_UnknownCommand(t *testing.T) {
	backend := bridgetest.New(t)
	inv := newTestInvoker(t, backend.URL())

	err := inv.Invoke(context.Background(), "launch_rocket", nil, nil)
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, http.StatusNotFound, cmdErr.Status)
}
