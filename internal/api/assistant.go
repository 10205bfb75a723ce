package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/campus-assistant/internal/assistant"
	"github.com/ashureev/campus-assistant/internal/conversation"
	"github.com/ashureev/campus-assistant/internal/domain"
	"github.com/ashureev/campus-assistant/internal/identity"
	"github.com/ashureev/campus-assistant/internal/store"
)

// AssistantHandler exposes conversation sessions over JSON.
type AssistantHandler struct {
	svc     *conversation.Service
	seed    *domain.Snapshot
	limiter func(http.Handler) http.Handler
}

// NewAssistantHandler creates the handler. seed is the snapshot used when a
// session is started without one; it may be nil. limiter throttles the
// endpoints that run turns or create tickets; it may be nil.
func NewAssistantHandler(svc *conversation.Service, seed *domain.Snapshot, limiter func(http.Handler) http.Handler) *AssistantHandler {
	if limiter == nil {
		limiter = func(next http.Handler) http.Handler { return next }
	}
	return &AssistantHandler{svc: svc, seed: seed, limiter: limiter}
}

// RegisterRoutes registers the assistant routes.
func (h *AssistantHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/assistant/sessions", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Get("/messages", h.ListMessages)
			r.With(h.limiter).Post("/messages", h.SendMessage)
			r.Get("/tickets", h.ListTickets)
			r.With(h.limiter).Post("/tickets", h.SubmitTicket)
		})
	})
}

type startSessionRequest struct {
	Snapshot *domain.Snapshot `json:"snapshot,omitempty"`
}

type sessionResponse struct {
	ID       string                 `json:"id"`
	Pending  bool                   `json:"pending"`
	Form     conversation.FormState `json:"form"`
	Messages []domain.Message       `json:"messages"`
}

func newSessionResponse(sess *conversation.Session) sessionResponse {
	return sessionResponse{
		ID:       sess.ID(),
		Pending:  sess.Pending(),
		Form:     sess.Form().State(),
		Messages: sess.Log().Messages(0),
	}
}

// StartSession handles POST /api/assistant/sessions.
func (h *AssistantHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	var snap domain.Snapshot
	switch {
	case req.Snapshot != nil:
		snap = *req.Snapshot
	case h.seed != nil:
		snap = *h.seed
	}

	sess, err := h.svc.StartSession(r.Context(), conversation.StartSessionInput{
		UserID:   identity.UserIDFromContext(r.Context()),
		Snapshot: snap,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSON(w, http.StatusCreated, newSessionResponse(sess))
}

// session loads the session named in the URL and checks that it belongs to
// the caller. Foreign sessions are reported as not found.
func (h *AssistantHandler) session(w http.ResponseWriter, r *http.Request) (*conversation.Session, bool) {
	sess, err := h.svc.Session(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	if sess.UserID() != identity.UserIDFromContext(r.Context()) {
		writeServiceError(w, conversation.ErrSessionNotFound)
		return nil, false
	}
	return sess, true
}

// GetSession handles GET /api/assistant/sessions/{sessionID}.
func (h *AssistantHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	JSON(w, http.StatusOK, newSessionResponse(sess))
}

// CloseSession handles DELETE /api/assistant/sessions/{sessionID}.
func (h *AssistantHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.svc.CloseSession(r.Context(), sess.ID()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMessages handles GET /api/assistant/sessions/{sessionID}/messages.
// An optional limit query parameter returns only the most recent messages.
func (h *AssistantHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	JSON(w, http.StatusOK, map[string]interface{}{"messages": sess.Log().Messages(limit)})
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	UserMessage domain.Message  `json:"userMessage"`
	Reply       *domain.Message `json:"reply,omitempty"`
	Intent      assistant.Kind  `json:"intent"`
	Ticket      *domain.Ticket  `json:"ticket,omitempty"`
	Delivered   bool            `json:"delivered"`
}

func newTurnResponse(res *conversation.TurnResult) turnResponse {
	out := turnResponse{
		UserMessage: res.UserMessage,
		Intent:      res.Intent,
		Ticket:      res.Ticket,
		Delivered:   res.Delivered,
	}
	if res.Delivered {
		reply := res.AgentMessage
		out.Reply = &reply
	}
	return out
}

// SendMessage handles POST /api/assistant/sessions/{sessionID}/messages.
func (h *AssistantHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	slog.Info("assistant message received",
		"session_id", sess.ID(),
		"message_length", len(req.Message),
		"request_id", chiMiddleware.GetReqID(r.Context()),
	)

	res, err := h.svc.Send(r.Context(), sess.ID(), req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, newTurnResponse(res))
}

type ticketResponse struct {
	Ticket  *domain.Ticket `json:"ticket,omitempty"`
	Message domain.Message `json:"message"`
}

// SubmitTicket handles POST /api/assistant/sessions/{sessionID}/tickets.
// A ticket service failure is reported as a chat message with status 502;
// the form keeps its fields for a retry.
func (h *AssistantHandler) SubmitTicket(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var form conversation.TicketForm
	if !decodeJSON(w, r, &form, false) {
		return
	}

	res, err := h.svc.SubmitTicketForm(r.Context(), sess.ID(), form)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Ticket == nil {
		status = http.StatusBadGateway
	}
	JSON(w, status, ticketResponse{Ticket: res.Ticket, Message: res.Message})
}

type ticketRecordResponse struct {
	MessageID string        `json:"messageId,omitempty"`
	Source    string        `json:"source"`
	Ticket    domain.Ticket `json:"ticket"`
	CreatedAt string        `json:"createdAt"`
}

// ListTickets handles GET /api/assistant/sessions/{sessionID}/tickets.
func (h *AssistantHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	records, err := h.svc.Tickets(r.Context(), sess.ID())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"tickets": ticketRecords(records)})
}

func ticketRecords(records []store.TicketRecord) []ticketRecordResponse {
	out := make([]ticketRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, ticketRecordResponse{
			MessageID: rec.MessageID,
			Source:    rec.Source,
			Ticket:    rec.Ticket,
			CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
