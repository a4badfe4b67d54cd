package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"sync"
)

// waiterOutcome is what a registered wait resolves to: either a matching
// event or a cancellation from a Reload Coordinator sweep.
type waiterOutcome struct {
	event     EventSignal
	cancelled bool
}

type waiter struct {
	eventName     string
	expectedState map[string]any
	resultCh      chan waiterOutcome
}

// EventWaiterRegistry tracks, per request, a single pending wait on a named
// event whose payload matches a set of expected top-level fields. At most
// one waiter exists per request id at a time, so the request id doubles as
// the waiter handle.
type EventWaiterRegistry struct {
	mu      sync.Mutex
	waiters map[string]*waiter
	logger  *slog.Logger
}

// NewEventWaiterRegistry builds an empty registry.
func NewEventWaiterRegistry(log *slog.Logger) *EventWaiterRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &EventWaiterRegistry{waiters: make(map[string]*waiter), logger: log}
}

// Register arms a wait for eventName on behalf of requestID. expectedState,
// if non-nil, is compared field-by-field against the event's JSON payload;
// a nil map matches any payload for that event name.
func (r *EventWaiterRegistry) Register(requestID, eventName string, expectedState map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waiters[requestID] = &waiter{
		eventName:     eventName,
		expectedState: expectedState,
		resultCh:      make(chan waiterOutcome, 1),
	}
}

// Await blocks until the waiter registered for requestID resolves: a
// matching event arrives, ctx is done, or CancelAll fires. Cancel only
// removes the waiter and does not wake an Await already blocked on it.
func (r *EventWaiterRegistry) Await(ctx context.Context, requestID string) (EventSignal, error) {
	r.mu.Lock()
	w, ok := r.waiters[requestID]
	r.mu.Unlock()
	if !ok {
		return EventSignal{}, newError(ErrInternal, "no waiter registered for request")
	}

	select {
	case outcome := <-w.resultCh:
		if outcome.cancelled {
			return EventSignal{}, newError(ErrCancelled, "wait cancelled")
		}
		return outcome.event, nil
	case <-ctx.Done():
		r.Cancel(requestID)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return EventSignal{}, newError(ErrTimeout, "timed out waiting for completion event")
		}
		return EventSignal{}, newError(ErrCancelled, "wait cancelled")
	}
}

// Cancel removes and discards the waiter for requestID, if any. Safe to
// call even when no waiter was ever registered or it already resolved.
func (r *EventWaiterRegistry) Cancel(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waiters, requestID)
}

// CancelAll resolves every pending waiter as cancelled, mirroring
// RequestRegistry.CancelAll for the Reload Coordinator's Idle-disconnect path.
func (r *EventWaiterRegistry) CancelAll() {
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = make(map[string]*waiter)
	r.mu.Unlock()

	for _, w := range waiters {
		select {
		case w.resultCh <- waiterOutcome{cancelled: true}:
		default:
		}
	}
}

// Process matches an incoming event against every pending waiter for that
// event name and resolves the ones whose expected state matches.
func (r *EventWaiterRegistry) Process(evt EventSignal) {
	r.mu.Lock()
	var matched []string
	for requestID, w := range r.waiters {
		if w.eventName != evt.Name {
			continue
		}
		if !matchesExpectedState(evt.Payload, w.expectedState) {
			continue
		}
		matched = append(matched, requestID)
	}
	resolved := make([]*waiter, 0, len(matched))
	for _, requestID := range matched {
		resolved = append(resolved, r.waiters[requestID])
		delete(r.waiters, requestID)
	}
	r.mu.Unlock()

	for _, w := range resolved {
		select {
		case w.resultCh <- waiterOutcome{event: evt}:
		default:
		}
	}
}

// matchesExpectedState reports whether every key in expected is present in
// payload with an equal value. A nil or empty expected map always matches.
func matchesExpectedState(payload json.RawMessage, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return false
	}
	for key, want := range expected {
		got, ok := fields[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
