package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/unityctl/bridge/core/logger"
)

// Peer is the currently installed editor connection. Its generation ties an
// operation back to the exact connection it observed, so a stale close or
// send from a superseded connection never disturbs the live one.
type Peer struct {
	conn       *websocket.Conn
	writeMu    sync.Mutex
	generation uint64
	hello      Frame
}

// WriteMessage writes a single message to the peer's underlying connection
// under a per-peer lock. gorilla/websocket forbids concurrent writers on
// one connection, and this peer can be written to from more than one place
// at once: the hello-ack write during upgrade and every subsequent
// ConnectionManager.Send call from an in-flight RPC.
func (p *Peer) WriteMessage(messageType int, data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteMessage(messageType, data)
}

// ConnectionManager owns the single allowed peer connection, atomically
// replacing it on reconnect and notifying the Reload Coordinator of
// connect/disconnect transitions. Only one peer is ever installed at a
// time; a second hello closes out whichever connection was there before.
type ConnectionManager struct {
	mu         sync.Mutex
	peer       *Peer
	generation uint64
	waiters    []chan struct{}

	reload *ReloadCoordinator
	logger *slog.Logger
}

// NewConnectionManager builds a manager with no peer installed.
func NewConnectionManager(reload *ReloadCoordinator, log *slog.Logger) *ConnectionManager {
	if log == nil {
		log = slog.Default()
	}
	return &ConnectionManager{reload: reload, logger: log}
}

// Install makes conn the current peer, evicting and closing whatever
// connection preceded it, and releases anyone blocked in WaitForPeer.
func (m *ConnectionManager) Install(conn *websocket.Conn, hello Frame) *Peer {
	m.mu.Lock()
	previous := m.peer
	m.generation++
	p := &Peer{conn: conn, generation: m.generation, hello: hello}
	m.peer = p
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	if previous != nil {
		m.logger.Info("replacing existing peer connection", logger.ID("project_id", hello.ProjectID))
		_ = previous.conn.Close()
	}
	for _, ch := range waiters {
		close(ch)
	}

	m.reload.OnReconnect()
	return p
}

// Clear removes p as the current peer, provided it is still installed
// (a superseded connection's own close must not evict its successor), and
// informs the Reload Coordinator of the disconnect.
func (m *ConnectionManager) Clear(p *Peer) {
	m.mu.Lock()
	cleared := false
	if m.peer != nil && m.peer.generation == p.generation {
		m.peer = nil
		cleared = true
	}
	m.mu.Unlock()

	if cleared {
		m.reload.OnDisconnect()
	}
}

// Current returns the installed peer, or nil if none is connected.
func (m *ConnectionManager) Current() *Peer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peer
}

// WaitForPeer blocks until a peer connects or ctx is done.
func (m *ConnectionManager) WaitForPeer(ctx context.Context) error {
	m.mu.Lock()
	if m.peer != nil {
		m.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send implements peerSender by marshaling f and writing it as a single
// text message to the current peer. A write failure evicts the peer before
// reporting ErrPeerAbsent upstream, since a broken socket is as good as no
// connection at all.
func (m *ConnectionManager) Send(ctx context.Context, f *Frame) error {
	p := m.Current()
	if p == nil {
		return newError(ErrPeerAbsent, "no peer connection")
	}

	data, err := json.Marshal(f)
	if err != nil {
		return newError(ErrInternal, "failed to encode frame")
	}

	if err := p.WriteMessage(websocket.TextMessage, data); err != nil {
		m.Clear(p)
		return newError(ErrPeerAbsent, "peer write failed")
	}
	return nil
}
