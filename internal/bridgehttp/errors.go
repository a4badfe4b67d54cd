package bridgehttp

import (
	"errors"

	"github.com/unityctl/bridge/core/response"
	"github.com/unityctl/bridge/internal/bridge"
)

// translateError turns a bridge.Error into the response.HTTPError the HTTP
// layer renders. It exists because convertToHTTPError falls back to 500 for
// any status code that isn't a key in httpErrorsByStatus, which would
// silently eat both ErrPeerError's 200 and ErrCancelled's 499 - two of the
// five statuses the bridge actually reports. Anything else is left alone
// for the router's default error handler.
func translateError(err error) error {
	var bridgeErr *bridge.Error
	if !errors.As(err, &bridgeErr) {
		return err
	}

	httpErr := response.HTTPError{
		Status:  bridgeErr.StatusCode(),
		Code:    errorCode(bridgeErr),
		Message: bridgeErr.Error(),
	}
	if bridgeErr.Peer != nil {
		httpErr.Details = map[string]any{
			"peerCode":    bridgeErr.Peer.Code,
			"peerMessage": bridgeErr.Peer.Message,
		}
	}
	return httpErr
}

func errorCode(e *bridge.Error) string {
	switch {
	case errors.Is(e.Kind, bridge.ErrPeerAbsent):
		return "peer_absent"
	case errors.Is(e.Kind, bridge.ErrTimeout):
		return "timeout"
	case errors.Is(e.Kind, bridge.ErrCancelled):
		return "cancelled"
	case errors.Is(e.Kind, bridge.ErrPeerError):
		return "peer_error"
	case errors.Is(e.Kind, bridge.ErrMalformed):
		return "malformed"
	default:
		return "internal_error"
	}
}
