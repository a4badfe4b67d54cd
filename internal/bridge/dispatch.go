package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/unityctl/bridge/core/logger"
)

// Dispatcher runs the full request/response/completion sequence for one RPC
// call: allocate a request id, optionally arm an event wait from the
// command's completion policy, send, wait for the reply, and, if the
// policy names a completion event, wait for that too before returning.
type Dispatcher struct {
	requests *RequestRegistry
	waiters  *EventWaiterRegistry
	policies *PolicyTable
	logger   *slog.Logger
}

// NewDispatcher builds a dispatcher over the given components. Peer
// presence is not checked directly: requests.Send already fails with
// ErrPeerAbsent when there is nothing to send to.
func NewDispatcher(requests *RequestRegistry, waiters *EventWaiterRegistry, policies *PolicyTable, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{requests: requests, waiters: waiters, policies: policies, logger: log}
}

// Dispatch runs command against the connected peer on behalf of agentID and
// returns the requestID it allocated alongside the result a client should
// see: the response's Result, replaced with the completion event's payload
// when the policy names one to wait for. ctx supplies client-side
// cancellation; the command's own timeout is layered underneath it.
func (d *Dispatcher) Dispatch(ctx context.Context, command, agentID string, args map[string]any) (requestID string, result json.RawMessage, err error) {
	policy := d.policies.Lookup(command)

	dctx, cancel := context.WithTimeout(ctx, policy.Timeout)
	defer cancel()

	requestID = uuid.NewString()
	if policy.WaitEvent != "" {
		d.waiters.Register(requestID, policy.WaitEvent, nil)
	}

	req := &Frame{
		Type:      FrameRequest,
		RequestID: requestID,
		AgentID:   agentID,
		Command:   command,
		Args:      args,
	}

	resp, err := d.requests.Send(dctx, req)
	if err != nil {
		if policy.WaitEvent != "" {
			d.waiters.Cancel(requestID)
		}
		return requestID, nil, err
	}

	if resp.Status == "error" {
		if policy.WaitEvent != "" {
			d.waiters.Cancel(requestID)
		}
		return requestID, nil, &Error{Kind: ErrPeerError, Message: "peer reported an error", Peer: resp.Error}
	}

	if policy.WaitEvent == "" {
		return requestID, resp.Result, nil
	}

	d.logger.Debug("waiting for completion event", logger.Event(policy.WaitEvent), logger.ID("request_id", requestID))
	evt, err := d.waiters.Await(dctx, requestID)
	if err != nil {
		return requestID, nil, err
	}

	return requestID, evt.Payload, nil
}
