// Package bridgetest provides an in-process fake mining backend that speaks
// the command bridge and event channel protocols.
package bridgetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/dm/minerdeck/internal/model"
)

type failure struct {
	status  int
	message string
}

// Backend is a fake backend. The zero value is not usable; call New.
type Backend struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu        sync.Mutex
	status    model.StatusSnapshot
	telemetry bool
	p2pool    model.P2PoolSnapshot
	address   string
	failures  map[string]failure
	calls     map[string][]json.RawMessage

	connMu sync.Mutex
	conns  map[*websocket.Conn]struct{}
	connCh chan struct{}
}

// New starts a Backend that is closed when t finishes.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		status:   model.StatusSnapshot{Mode: model.ModeEco},
		failures: make(map[string]failure),
		calls:    make(map[string][]json.RawMessage),
		conns:    make(map[*websocket.Conn]struct{}),
		connCh:   make(chan struct{}, 16),
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Post("/invoke/{command}", b.handleInvoke)
	r.Get("/events", b.handleEvents)
	return r
}

// URL returns the backend's base URL.
func (b *Backend) URL() string {
	return b.server.URL
}

// Close drops event connections and stops the server.
func (b *Backend) Close() {
	b.connMu.Lock()
	for c := range b.conns {
		_ = c.Close()
	}
	b.conns = make(map[*websocket.Conn]struct{})
	b.connMu.Unlock()
	b.server.Close()
}

// SetStatus sets the snapshot returned by the status command.
func (b *Backend) SetStatus(s model.StatusSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = s
}

// Status returns the snapshot the backend currently reports.
func (b *Backend) Status() model.StatusSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// SetTelemetry sets the value returned by get_telemetry_mode.
func (b *Backend) SetTelemetry(allowed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.telemetry = allowed
}

// SetP2Pool sets the stats returned by get_p2pool_stats.
func (b *Backend) SetP2Pool(s model.P2PoolSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.p2pool = s
}

// SetWalletAddress sets the address returned by get_tari_wallet_details.
// The balance comes from the status snapshot.
func (b *Backend) SetWalletAddress(addr string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.address = addr
}

// Fail makes command answer with status and message until Recover is called.
func (b *Backend) Fail(command string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[command] = failure{status: status, message: message}
}

// Recover undoes Fail for command.
func (b *Backend) Recover(command string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, command)
}

// Calls returns the argument payloads command was invoked with, oldest first.
func (b *Backend) Calls(command string) []json.RawMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]json.RawMessage, len(b.calls[command]))
	copy(out, b.calls[command])
	return out
}

// CallCount returns how many times command was invoked.
func (b *Backend) CallCount(command string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls[command])
}

func (b *Backend) handleInvoke(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[command] = append(b.calls[command], json.RawMessage(body))

	if f, ok := b.failures[command]; ok {
		http.Error(w, f.message, f.status)
		return
	}

	var result any
	switch command {
	case "status":
		result = b.status
	case "get_telemetry_mode":
		result = b.telemetry
	case "get_p2pool_stats":
		result = b.p2pool
	case "get_tari_wallet_details":
		result = model.WalletDetails{WalletBalance: b.status.WalletBalance, TariAddressBase58: b.address}
	case "set_telemetry_mode":
		var args struct {
			TelemetryMode bool `json:"telemetryMode"`
		}
		if err := json.Unmarshal(body, &args); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.telemetry = args.TelemetryMode
	case "set_mode":
		var args struct {
			Mode model.Mode `json:"mode"`
		}
		if err := json.Unmarshal(body, &args); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.status.Mode = args.Mode
	case "start_mining":
		b.status.CPU.IsMining = true
	case "stop_mining":
		b.status.CPU.IsMining = false
		b.status.GPU.IsMining = false
	case "set_airdrop_access_token", "set_gpu_mining_enabled", "set_cpu_mining_enabled":
	default:
		http.Error(w, "unknown command "+command, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (b *Backend) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	b.connMu.Lock()
	b.conns[conn] = struct{}{}
	b.connMu.Unlock()

	select {
	case b.connCh <- struct{}{}:
	default:
	}

	// Drain client frames so close messages are processed.
	go func() {
		defer func() {
			b.connMu.Lock()
			delete(b.conns, conn)
			b.connMu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()
}

// Connected is signalled every time an event subscriber connects.
func (b *Backend) Connected() <-chan struct{} {
	return b.connCh
}

// Push sends one event envelope to every connected subscriber.
func (b *Backend) Push(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}{Event: event, Payload: raw}

	b.connMu.Lock()
	defer b.connMu.Unlock()
	for c := range b.conns {
		if err := c.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

// DropConnections closes every event connection without stopping the server.
func (b *Backend) DropConnections() {
	b.connMu.Lock()
	defer b.connMu.Unlock()
	for c := range b.conns {
		_ = c.Close()
	}
}
