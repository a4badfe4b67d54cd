package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/unityctl/bridge/core/event"
	"github.com/unityctl/bridge/core/logger"
)

// ReloadStarting is published onto the internal event bus whenever a
// "reload_starting" frame arrives, after the Message Router has already
// moved the Reload Coordinator into Reloading directly. The bus handler
// only logs it.
type ReloadStarting struct{}

// logEventNames lists the event names the editor emits that represent
// console output rather than lifecycle signals.
var logEventNames = map[string]string{
	"log.message": "editor",
	"log.warning": "editor",
	"log.error":   "editor",
}

// MessageRouter is the single point where frames read off the peer
// transport are decoded and fanned out: responses resolve pending
// requests, events feed the waiter registry, the log store, the reload
// coordinator, and the internal event bus.
type MessageRouter struct {
	requests  *RequestRegistry
	waiters   *EventWaiterRegistry
	logs      *LogStore
	reload    *ReloadCoordinator
	publisher *event.Publisher
	logger    *slog.Logger
}

// NewMessageRouter builds a router wired to the given components.
func NewMessageRouter(requests *RequestRegistry, waiters *EventWaiterRegistry, logs *LogStore, reload *ReloadCoordinator, publisher *event.Publisher, log *slog.Logger) *MessageRouter {
	if log == nil {
		log = slog.Default()
	}
	return &MessageRouter{requests: requests, waiters: waiters, logs: logs, reload: reload, publisher: publisher, logger: log}
}

// HandleFrame decodes raw and dispatches it by Frame.Type. Malformed frames
// are logged and dropped rather than surfaced as an HTTP error: there is no
// request to fail on the other end of a transport-level read.
func (r *MessageRouter) HandleFrame(ctx context.Context, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		r.logger.Warn("dropping malformed frame", logger.Error(err))
		return
	}

	switch f.Type {
	case FrameResponse:
		r.requests.Complete(f.RequestID, &f)

	case FrameEvent:
		r.handleEvent(ctx, f)

	case FrameHello, FrameRequest:
		r.logger.Warn("dropping unexpected frame type from peer", logger.Type(string(f.Type)))

	default:
		r.logger.Warn("dropping frame with unknown type", logger.Type(string(f.Type)))
	}
}

func (r *MessageRouter) handleEvent(ctx context.Context, f Frame) {
	signal := EventSignal{Name: f.Event, Payload: f.Payload}
	r.waiters.Process(signal)

	if source, ok := logEventNames[f.Event]; ok {
		r.logs.Ingest(ctx, logEntryFromEvent(f, source))
	}

	if f.Event == "reload_starting" {
		// The coordinator's state must flip to Reloading before this call
		// returns: HandleFrame runs on the same peer read loop as the
		// disconnect that follows a domain reload, and OnDisconnect's
		// decision to cancel in-flight work depends on seeing Reloading
		// already set. Publishing onto the event bus and letting the
		// processor goroutine make the transition would race that
		// disconnect. The bus publish below is for observability only.
		r.reload.OnReloadStarting()

		if err := r.publisher.Publish(ctx, ReloadStarting{}); err != nil {
			r.logger.Error("failed to publish reload_starting internally", logger.Error(err))
		}
	}
}

func logEntryFromEvent(f Frame, source string) LogEntry {
	var body struct {
		Message    string `json:"message"`
		Level      string `json:"level"`
		StackTrace string `json:"stackTrace"`
	}
	_ = json.Unmarshal(f.Payload, &body)

	level := body.Level
	if level == "" {
		switch f.Event {
		case "log.warning":
			level = "warning"
		case "log.error":
			level = "error"
		default:
			level = "info"
		}
	}

	return LogEntry{
		Timestamp:  time.Now(),
		Source:     source,
		Level:      level,
		Message:    body.Message,
		StackTrace: body.StackTrace,
	}
}
