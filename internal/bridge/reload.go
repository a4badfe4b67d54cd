package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/unityctl/bridge/core/logger"
)

// ReloadState is the Reload Coordinator's state machine position.
type ReloadState int

const (
	StateIdle ReloadState = iota
	StateReloading
)

func (s ReloadState) String() string {
	if s == StateReloading {
		return "reloading"
	}
	return "idle"
}

// ReloadCoordinator tracks the editor's domain-reload grace period: a
// window, opened by a "reload_starting" event and closed either by
// reconnection or by a grace deadline, during which peer loss is expected
// and in-flight requests are left pending rather than cancelled.
type ReloadCoordinator struct {
	mu    sync.Mutex
	state ReloadState
	timer *time.Timer
	grace time.Duration

	requests *RequestRegistry
	waiters  *EventWaiterRegistry
	logger   *slog.Logger
}

// NewReloadCoordinator builds a coordinator starting in StateIdle.
func NewReloadCoordinator(grace time.Duration, requests *RequestRegistry, waiters *EventWaiterRegistry, log *slog.Logger) *ReloadCoordinator {
	if log == nil {
		log = slog.Default()
	}
	return &ReloadCoordinator{
		grace:    grace,
		requests: requests,
		waiters:  waiters,
		logger:   log,
	}
}

// State reports the current position, for the health endpoint.
func (c *ReloadCoordinator) State() ReloadState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnReloadStarting opens the grace window. Idempotent: a reload_starting
// event received while already Reloading does not re-arm the deadline.
func (c *ReloadCoordinator) OnReloadStarting() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateReloading {
		return
	}
	c.state = StateReloading
	c.logger.Info("reload grace period opened", logger.Duration(c.grace))

	c.timer = time.AfterFunc(c.grace, c.onGraceExpired)
}

// onGraceExpired fires when no reconnection arrives before the grace
// deadline: the coordinator falls back to Idle and gives up on every
// request and wait that was depending on a reconnect.
func (c *ReloadCoordinator) onGraceExpired() {
	c.mu.Lock()
	if c.state != StateReloading {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.timer = nil
	c.mu.Unlock()

	c.logger.Warn("reload grace period expired without reconnect")
	c.requests.CancelAll()
	c.waiters.CancelAll()
}

// OnDisconnect is called whenever the peer connection is lost. Outside the
// grace window this is an ordinary disconnect: every in-flight request and
// wait is cancelled immediately, since nothing will ever complete them.
// Inside the window, it is the expected mid-reload drop and nothing happens.
func (c *ReloadCoordinator) OnDisconnect() {
	c.mu.Lock()
	reloading := c.state == StateReloading
	c.mu.Unlock()

	if reloading {
		return
	}
	c.requests.CancelAll()
	c.waiters.CancelAll()
}

// OnReconnect closes the grace window on a fresh peer connection, whether
// or not a reload was actually in progress.
func (c *ReloadCoordinator) OnReconnect() {
	c.mu.Lock()
	wasReloading := c.state == StateReloading
	c.state = StateIdle
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if wasReloading {
		c.logger.Info("peer reconnected, reload grace period closed")
	}
}
