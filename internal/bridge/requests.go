package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/unityctl/bridge/core/logger"
)

// peerSender transmits a request Frame to the connected peer. ConnectionManager
// implements it; kept as a narrow interface so RequestRegistry can be tested
// without a real websocket connection.
type peerSender interface {
	Send(ctx context.Context, f *Frame) error
}

type requestOutcome struct {
	frame     *Frame
	cancelled bool
}

// RequestRegistry holds one-shot result slots for in-flight requests,
// correlating each outbound Frame with the response frame that eventually
// carries its requestId. A slot lives from Send until exactly one of
// reply, timeout, client cancellation, or CancelAll resolves it.
type RequestRegistry struct {
	sender peerSender
	slots  sync.Map // requestID -> chan requestOutcome
	logger *slog.Logger
}

// NewRequestRegistry builds a registry that transmits through sender.
func NewRequestRegistry(sender peerSender, log *slog.Logger) *RequestRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &RequestRegistry{sender: sender, logger: log}
}

// Send transmits req and blocks until a matching response frame arrives,
// ctx is done, or the request is cancelled by a Reload Coordinator sweep.
// ctx carries both the command's deadline and the inbound HTTP request's
// cancellation, so context.DeadlineExceeded and context.Canceled already
// distinguish Timeout from Cancelled without extra bookkeeping.
func (r *RequestRegistry) Send(ctx context.Context, req *Frame) (*Frame, error) {
	resultCh := make(chan requestOutcome, 1)
	r.slots.Store(req.RequestID, resultCh)

	if err := r.sender.Send(ctx, req); err != nil {
		r.slots.Delete(req.RequestID)
		return nil, newError(ErrPeerAbsent, "no peer connection")
	}

	select {
	case outcome := <-resultCh:
		if outcome.cancelled {
			return nil, newError(ErrCancelled, "request cancelled")
		}
		return outcome.frame, nil
	case <-ctx.Done():
		r.slots.Delete(req.RequestID)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, newError(ErrTimeout, "timed out waiting for a response")
		}
		return nil, newError(ErrCancelled, "request cancelled")
	}
}

// Complete resolves the slot for requestID with resp, if one is still
// pending. A requestId with no pending slot (already timed out, already
// cancelled, or never registered) is logged and dropped.
func (r *RequestRegistry) Complete(requestID string, resp *Frame) {
	v, ok := r.slots.LoadAndDelete(requestID)
	if !ok {
		r.logger.Warn("response for unknown or already-resolved request", logger.ID("request_id", requestID))
		return
	}
	ch := v.(chan requestOutcome)
	select {
	case ch <- requestOutcome{frame: resp}:
	default:
	}
}

// CancelAll resolves every pending slot as cancelled. Used by the Reload
// Coordinator on peer loss while Idle, where in-flight requests have no
// reload grace period to survive under.
func (r *RequestRegistry) CancelAll() {
	r.slots.Range(func(key, value any) bool {
		r.slots.Delete(key)
		ch := value.(chan requestOutcome)
		select {
		case ch <- requestOutcome{cancelled: true}:
		default:
		}
		return true
	})
}
