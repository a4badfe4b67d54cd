package event

import "errors"

var (
	// ErrBufferFull is returned when the channel buffer is full.
	ErrBufferFull = errors.New("event buffer is full")

	// ErrNoHandlers is returned by Processor.Start when neither handlers nor a fallback handler are registered.
	ErrNoHandlers = errors.New("no handlers registered for event")

	// ErrChannelBusClosed is returned when publishing to a closed ChannelBus.
	ErrChannelBusClosed = errors.New("channel bus is closed")

	// ErrEventSourceNil is returned when starting a processor without an event source.
	ErrEventSourceNil = errors.New("event source is nil")

	// ErrHealthcheckFailed is returned by Processor.Healthcheck when the processor is unhealthy.
	ErrHealthcheckFailed = errors.New("processor healthcheck failed")

	// ErrProcessorNotRunning is joined with ErrHealthcheckFailed when the processor is not running.
	ErrProcessorNotRunning = errors.New("processor is not running")

	// ErrProcessorAlreadyStarted is returned when attempting to start a processor that is already running.
	ErrProcessorAlreadyStarted = errors.New("processor already started")

	// ErrProcessorNotStarted is returned when attempting to stop a processor that is not running.
	ErrProcessorNotStarted = errors.New("processor not started")
)
