// Package bridgehttp exposes a Bridge over HTTP: RPC dispatch, log
// retrieval and streaming, health reporting, and the websocket upgrade the
// editor peer connects through.
package bridgehttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/unityctl/bridge/core/handler"
	"github.com/unityctl/bridge/core/health"
	"github.com/unityctl/bridge/core/logger"
	"github.com/unityctl/bridge/core/response"
	"github.com/unityctl/bridge/core/router"
	"github.com/unityctl/bridge/internal/bridge"
	"github.com/unityctl/bridge/middleware"
)

type server struct {
	bridge *bridge.Bridge
	logger *slog.Logger
}

// NewRouter builds the daemon's HTTP surface around b.
func NewRouter(b *bridge.Bridge, log *slog.Logger) router.Router[*router.Context] {
	if log == nil {
		log = slog.Default()
	}

	s := &server{bridge: b, logger: log}

	r := router.New[*router.Context](
		router.WithErrorHandler[*router.Context](response.JSONErrorHandler[*router.Context]),
		router.WithLogger[*router.Context](log),
		router.WithMiddleware[*router.Context](
			middleware.RequestID[*router.Context](),
			middleware.Logging[*router.Context](),
			middleware.ClientIP[*router.Context](),
			middleware.BodyLimit[*router.Context](),
			middleware.SecurityHeaders[*router.Context](),
		),
	)

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](log, s.peerReady))
	r.Post("/rpc", s.handleRPC)
	r.Get("/logs/tail", s.handleLogsTail)
	r.Post("/console/clear", s.handleConsoleClear)
	r.Get("/logs/stream", s.handleLogsStream)
	r.Get("/peer", s.handlePeerUpgrade)

	return r
}

type healthResponse struct {
	Status         string `json:"status"`
	ProjectID      string `json:"projectId"`
	UnityConnected bool   `json:"unityConnected"`
	ReloadState    string `json:"reloadState"`
}

// peerReady backs the /health/ready probe: a CLI waiting on the daemon to
// come up cares whether a project peer is actually attached, not just
// whether the HTTP listener is accepting connections.
func (s *server) peerReady(ctx context.Context) error {
	if s.bridge.Conn.Current() == nil {
		return errors.New("no editor peer connected")
	}
	return nil
}

func (s *server) handleHealth(ctx *router.Context) handler.Response {
	return response.JSON(healthResponse{
		Status:         "ok",
		ProjectID:      s.bridge.ProjectID,
		UnityConnected: s.bridge.Conn.Current() != nil,
		ReloadState:    s.bridge.Reload.State().String(),
	})
}

type rpcRequest struct {
	Command string         `json:"command"`
	AgentID string         `json:"agentId"`
	Args    map[string]any `json:"args"`
}

// rpcResponse mirrors the shape of a peer response frame, so a caller sees
// the same {status, result} or {status, error} envelope whether the RPC
// resolved against the peer directly or against a synthesized local error.
type rpcResponse struct {
	RequestID string          `json:"requestId"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
}

func (s *server) handleRPC(ctx *router.Context) handler.Response {
	var req rpcRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
		return response.Error(response.ErrBadRequest.WithError(err))
	}
	if req.Command == "" {
		return response.Error(response.ErrBadRequest.WithMessage("command is required"))
	}

	requestID, result, err := s.bridge.Dispatcher.Dispatch(ctx.Request().Context(), req.Command, req.AgentID, req.Args)
	if err != nil {
		return response.Error(translateError(err))
	}
	return response.JSON(rpcResponse{RequestID: requestID, Status: "ok", Result: result})
}

func (s *server) handleLogsTail(ctx *router.Context) handler.Response {
	q := ctx.Request().URL.Query()
	lines := 0
	if raw := q.Get("lines"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			lines = n
		}
	}
	includeCleared := q.Get("includeCleared") == "true"

	entries := s.bridge.Logs.Recent(lines, q.Get("source"), includeCleared)
	return response.JSON(map[string]any{"entries": entries})
}

func (s *server) handleConsoleClear(ctx *router.Context) handler.Response {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(ctx.Request().Body).Decode(&body)

	s.bridge.Logs.Clear(body.Reason)
	return response.JSON(map[string]any{"success": true})
}

func (s *server) handleLogsStream(ctx *router.Context) handler.Response {
	reqCtx := ctx.Request().Context()
	source := ctx.Request().URL.Query().Get("source")
	sub := s.bridge.Logs.Subscribe(reqCtx)
	defer sub.Close()

	events := make(chan any)
	go func() {
		defer close(events)
		for {
			select {
			case <-reqCtx.Done():
				return
			case msg, ok := <-sub.Receive(reqCtx):
				if !ok {
					return
				}
				if source != "" && source != "all" && msg.Data.Source != source {
					continue
				}
				select {
				case events <- msg.Data:
				case <-reqCtx.Done():
					return
				}
			}
		}
	}()

	return response.SSE(events, response.WithEventName("log"))
}

// handlePeerUpgrade upgrades the request to a websocket and treats it as the
// editor peer connection: the first message must be a hello frame, which
// installs the connection before anything else is accepted. Everything
// after that flows through the message router until the socket closes.
func (s *server) handlePeerUpgrade(ctx *router.Context) handler.Response {
	var peer *bridge.Peer

	onConnect := func(connCtx context.Context, conn *websocket.Conn) error {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var hello bridge.Frame
		if err := json.Unmarshal(data, &hello); err != nil {
			return err
		}
		if hello.Type != bridge.FrameHello {
			return errors.New("first frame from peer was not a hello")
		}

		peer = s.bridge.Conn.Install(conn, hello)

		ack, err := json.Marshal(bridge.Frame{Type: bridge.FrameResponse, ProjectID: s.bridge.ProjectID})
		if err != nil {
			return err
		}
		return peer.WriteMessage(websocket.TextMessage, ack)
	}

	onDisconnect := func(connCtx context.Context, conn *websocket.Conn) {
		if peer != nil {
			s.bridge.Conn.Clear(peer)
		}
	}

	onError := func(connCtx context.Context, err error) {
		s.logger.Warn("peer websocket error", logger.Error(err))
	}

	messageHandler := func(connCtx context.Context, conn *websocket.Conn) error {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return nil
			}
			s.bridge.Router.HandleFrame(connCtx, data)
		}
	}

	return response.WebSocket(messageHandler,
		response.WithWSOnConnect(onConnect),
		response.WithWSOnDisconnect(onDisconnect),
		response.WithWSErrorHandler(onError),
	)
}
