package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/campus-assistant/internal/conversation"
	"github.com/ashureev/campus-assistant/internal/identity"
)

const wsWriteTimeout = 10 * time.Second

// ChatSocket runs conversation turns over a WebSocket. Frames from the
// client are read one at a time, so a connection never has two turns of its
// session in flight.
type ChatSocket struct {
	svc           *conversation.Service
	allowedOrigin string
	isDev         bool
}

// NewChatSocket creates a new WebSocket chat handler.
func NewChatSocket(svc *conversation.Service, allowedOrigin string, isDev bool) *ChatSocket {
	return &ChatSocket{svc: svc, allowedOrigin: allowedOrigin, isDev: isDev}
}

// wsInbound is a client frame.
type wsInbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// wsOutbound is a server frame.
type wsOutbound struct {
	Type  string        `json:"type"`
	Turn  *turnResponse `json:"turn,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for GET /ws/assistant?session={id}.
func (h *ChatSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := r.URL.Query().Get("session")
	log := slog.With("user_id", userID, "session_id", sessionID)

	if !h.checkOrigin(r) {
		Error(w, http.StatusForbidden, "origin not allowed")
		return
	}

	sess, err := h.svc.Session(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if sess.UserID() != userID {
		writeServiceError(w, conversation.ErrSessionNotFound)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Origin is checked above against the configured frontend.
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			log.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	log.Info("Assistant socket connected")
	h.readLoop(r.Context(), ws, sess.ID(), log)
	log.Info("Assistant socket ended")
}

func (h *ChatSocket) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *ChatSocket) readLoop(ctx context.Context, ws *websocket.Conn, sessionID string, log *slog.Logger) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				log.Warn("WebSocket read error", "error", err)
			}
			return
		}

		var in wsInbound
		if err := json.Unmarshal(data, &in); err != nil {
			h.send(ws, log, wsOutbound{Type: "error", Error: "invalid frame"})
			continue
		}

		switch in.Type {
		case "ping":
			h.send(ws, log, wsOutbound{Type: "pong"})
		case "message":
			res, err := h.svc.Send(ctx, sessionID, in.Content)
			if err != nil {
				status := statusFor(err)
				if status == http.StatusInternalServerError {
					log.Error("assistant turn failed", "error", err)
					h.send(ws, log, wsOutbound{Type: "error", Error: "internal error"})
					continue
				}
				h.send(ws, log, wsOutbound{Type: "error", Error: err.Error()})
				if status == http.StatusNotFound || status == http.StatusGone {
					return
				}
				continue
			}
			turn := newTurnResponse(res)
			h.send(ws, log, wsOutbound{Type: "turn", Turn: &turn})
		default:
			h.send(ws, log, wsOutbound{Type: "error", Error: "unknown frame type"})
		}
	}
}

// send writes a frame with its own deadline so a reply still reaches the
// client after the request context is done.
func (h *ChatSocket) send(ws *websocket.Conn, log *slog.Logger, v wsOutbound) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn("failed to marshal websocket frame", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	if err := ws.Write(ctx, websocket.MessageText, data); err != nil {
		log.Debug("WebSocket write error", "error", err)
	}
}
