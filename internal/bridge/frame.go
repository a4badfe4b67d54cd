// Package bridge implements the control-plane daemon that mediates between
// CLI/agent clients and a single connected Unity editor peer: frame
// correlation, reload-grace state tracking, and log fan-out.
package bridge

import "encoding/json"

// FrameType discriminates the four shapes a Frame can take on the wire.
type FrameType string

const (
	FrameHello    FrameType = "hello"
	FrameRequest  FrameType = "request"
	FrameResponse FrameType = "response"
	FrameEvent    FrameType = "event"
)

// ErrorDetail carries a peer-reported failure. It rides inside a Frame of
// type FrameResponse when Status is "error".
type ErrorDetail struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Frame is the single wire envelope exchanged over the peer transport.
// Only the fields relevant to Type are populated; the rest are left zero.
type Frame struct {
	Type FrameType `json:"type"`

	// hello
	ProjectID       string `json:"projectId,omitempty"`
	UnityVersion    string `json:"unityVersion,omitempty"`
	ProtocolVersion string `json:"protocolVersion,omitempty"`
	PluginVersion   string `json:"pluginVersion,omitempty"`

	// request / response
	RequestID string          `json:"requestId,omitempty"`
	AgentID   string          `json:"agentId,omitempty"`
	Command   string          `json:"command,omitempty"`
	Args      map[string]any  `json:"args,omitempty"`
	Status    string          `json:"status,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *ErrorDetail    `json:"error,omitempty"`

	// event
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventSignal is the internal, typed shape a raw event Frame is translated
// into before it travels across the in-process event bus. Name matches the
// wire-level Frame.Event value; Payload is the still-raw per-event body.
type EventSignal struct {
	Name    string
	Payload json.RawMessage
}
