package bridge

import (
	"context"
	"log/slog"

	"github.com/unityctl/bridge/core/event"
)

// Bridge wires together every component the daemon needs to mediate
// between clients and the editor peer: connection lifecycle, request
// correlation, event waiting, reload grace tracking, and log fan-out.
type Bridge struct {
	ProjectID string

	Conn       *ConnectionManager
	Requests   *RequestRegistry
	Waiters    *EventWaiterRegistry
	Reload     *ReloadCoordinator
	Logs       *LogStore
	Policies   *PolicyTable
	Dispatcher *Dispatcher
	Router     *MessageRouter

	bus       *event.ChannelBus
	processor *event.Processor
}

// New assembles a Bridge for a single project, ready for ProjectID to be
// reported over /health and for a transport layer to start feeding it
// frames via Router.HandleFrame.
func New(cfg Config, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}

	projectID := ComputeProjectID(cfg.ProjectPath)

	bus := event.NewChannelBus(
		event.WithBufferSize(256),
		event.WithChannelLogger(log),
	)
	publisher := event.NewPublisher(bus, event.WithPublisherLogger(log))

	requests := NewRequestRegistry(nil, log)
	waiters := NewEventWaiterRegistry(log)
	reload := NewReloadCoordinator(cfg.ReloadGrace, requests, waiters, log)
	conn := NewConnectionManager(reload, log)
	requests.sender = conn

	// The coordinator's Reloading transition happens synchronously in
	// MessageRouter.handleEvent, on the same goroutine that will observe
	// a subsequent disconnect. This handler only logs: it exists so the
	// event bus carries a record of every reload_starting frame even
	// though it's no longer on the critical path for the state machine.
	processor := event.NewProcessor(
		event.WithEventSource(bus),
		event.WithHandler(event.NewHandlerFunc(func(_ context.Context, _ ReloadStarting) error {
			log.Info("reload_starting observed on event bus")
			return nil
		})),
		event.WithProcessorLogger(log),
	)

	logs := NewLogStore(cfg.LogCapacity, cfg.SubscriptionBufferSize)
	policies := NewPolicyTable(cfg.CommandTimeouts())
	dispatcher := NewDispatcher(requests, waiters, policies, log)
	router := NewMessageRouter(requests, waiters, logs, reload, publisher, log)

	return &Bridge{
		ProjectID:  projectID,
		Conn:       conn,
		Requests:   requests,
		Waiters:    waiters,
		Reload:     reload,
		Logs:       logs,
		Policies:   policies,
		Dispatcher: dispatcher,
		Router:     router,
		bus:        bus,
		processor:  processor,
	}
}

// Run starts the internal event processor and returns a function
// compatible with errgroup.Group.Go, stopping cleanly when ctx is done.
func (b *Bridge) Run(ctx context.Context) func() error {
	return b.processor.Run(ctx)
}
