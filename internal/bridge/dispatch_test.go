package bridge

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dispatchHarness struct {
	requests *RequestRegistry
	waiters  *EventWaiterRegistry
	dispatch *Dispatcher
}

func newDispatchHarness(t *testing.T, sender peerSender) *dispatchHarness {
	t.Helper()
	requests := NewRequestRegistry(sender, nil)
	waiters := NewEventWaiterRegistry(nil)
	policies := NewPolicyTable(nil)
	return &dispatchHarness{
		requests: requests,
		waiters:  waiters,
		dispatch: NewDispatcher(requests, waiters, policies, nil),
	}
}

func TestDispatcher_NoPeer(t *testing.T) {
	h := newDispatchHarness(t, &fakeSender{fail: true})
	_, _, err := h.dispatch.Dispatch(context.Background(), "project.ping", "agent-1", nil)
	require.Error(t, err)
	var bridgeErr *Error
	require.ErrorAs(t, err, &bridgeErr)
	assert.ErrorIs(t, bridgeErr, ErrPeerAbsent)
}

func TestDispatcher_PeerError(t *testing.T) {
	h := newDispatchHarness(t, &fakeSender{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, err := h.dispatch.Dispatch(context.Background(), "project.ping", "agent-1", nil)
		require.Error(t, err)
		var bridgeErr *Error
		require.ErrorAs(t, err, &bridgeErr)
		assert.ErrorIs(t, bridgeErr, ErrPeerError)
	}()

	time.Sleep(10 * time.Millisecond)
	h.requests.slots.Range(func(key, value any) bool {
		h.requests.Complete(key.(string), &Frame{
			RequestID: key.(string),
			Status:    "error",
			Error:     &ErrorDetail{Code: "bad_command", Message: "unknown command"},
		})
		return false
	})
	<-done
}

func TestDispatcher_SimpleCompletionNoEventWait(t *testing.T) {
	h := newDispatchHarness(t, &fakeSender{})

	done := make(chan struct{})
	var result json.RawMessage
	go func() {
		defer close(done)
		_, r, err := h.dispatch.Dispatch(context.Background(), "project.ping", "agent-1", nil)
		require.NoError(t, err)
		result = r
	}()

	time.Sleep(10 * time.Millisecond)
	h.requests.slots.Range(func(key, value any) bool {
		h.requests.Complete(key.(string), &Frame{
			RequestID: key.(string),
			Status:    "ok",
			Result:    json.RawMessage(`{"pong":true}`),
		})
		return false
	})
	<-done
	assert.JSONEq(t, `{"pong":true}`, string(result))
}

func TestDispatcher_WaitsForCompletionEvent(t *testing.T) {
	h := newDispatchHarness(t, &fakeSender{})

	done := make(chan struct{})
	var result json.RawMessage
	go func() {
		defer close(done)
		_, r, err := h.dispatch.Dispatch(context.Background(), "play.enter", "agent-1", nil)
		require.NoError(t, err)
		result = r
	}()

	time.Sleep(10 * time.Millisecond)
	var requestID string
	h.requests.slots.Range(func(key, value any) bool {
		requestID = key.(string)
		return false
	})
	h.requests.Complete(requestID, &Frame{RequestID: requestID, Status: "ok"})

	time.Sleep(10 * time.Millisecond)
	h.waiters.Process(EventSignal{Name: "playModeChanged", Payload: json.RawMessage(`{"isPlaying":true}`)})

	<-done
	assert.JSONEq(t, `{"isPlaying":true}`, string(result))
}
