package broadcast

import "errors"

var (
	// ErrBroadcasterClosed indicates a Broadcaster is no longer accepting
	// subscribers or messages. Reserved for custom implementations;
	// MemoryBroadcaster treats both operations as no-ops once closed.
	ErrBroadcasterClosed = errors.New("broadcast: broadcaster closed")

	// ErrSubscriberClosed indicates a Subscriber is no longer receiving
	// messages. Reserved for custom implementations.
	ErrSubscriberClosed = errors.New("broadcast: subscriber closed")
)
