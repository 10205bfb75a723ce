package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/campus-assistant/internal/assistant"
	"github.com/ashureev/campus-assistant/internal/domain"
	"github.com/ashureev/campus-assistant/internal/metrics"
	"github.com/ashureev/campus-assistant/internal/store"
	"github.com/ashureev/campus-assistant/internal/ticket"
)

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTurnInFlight is returned when a message is sent while the previous
	// turn of the same session is still pending.
	ErrTurnInFlight = errors.New("previous message is still being answered")
	// ErrEmptyMessage is returned for blank messages.
	ErrEmptyMessage = errors.New("message is required")
)

// Service owns live sessions and runs turns through the assistant.
type Service struct {
	repo      store.Repository
	assistant *assistant.Assistant
	tickets   ticket.Creator
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates a conversation service. tickets is used by the ticket form;
// chat-detected issues go through the assistant's own ticket filer.
func NewService(repo store.Repository, a *assistant.Assistant, tickets ticket.Creator) *Service {
	return &Service{
		repo:      repo,
		assistant: a,
		tickets:   tickets,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// StartSessionInput carries what the caller supplies at session start.
type StartSessionInput struct {
	UserID   string
	Snapshot domain.Snapshot
}

// StartSession creates a session with a welcome message.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*Session, error) {
	now := s.now()
	header := domain.Session{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Snapshot:  in.Snapshot,
		CreatedAt: now,
		UpdatedAt: now,
	}

	log := slog.With("session_id", header.ID, "user_id", in.UserID)
	log.Info("starting session",
		"courses", len(in.Snapshot.Courses),
		"events", len(in.Snapshot.Events),
	)

	if err := s.repo.CreateSession(ctx, &header); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, fmt.Errorf("create session: %w", err)
	}

	sess := s.newSession(header, nil)
	welcome := newMessage(domain.RoleAssistant, fmt.Sprintf(
		"Hi %s! I'm your study assistant. Ask me about your courses, grades, deadlines, notes or announcements.",
		sess.snapshot.User.FirstName()), now)
	if err := sess.log.Append(ctx, welcome); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.sessions[header.ID] = sess
	s.mu.Unlock()

	return sess, nil
}

func (s *Service) newSession(header domain.Session, existing []domain.Message) *Session {
	snap := header.Snapshot
	sess := &Session{
		header:   header,
		snapshot: &snap,
		log:      NewLog(header.ID, s.repo, existing),
	}
	sess.form = newFormController(header.ID, s.tickets, sess.log, sess.snapshot, s.now)
	sess.form.onCreated = func(ctx context.Context, t *domain.Ticket) {
		s.saveTicket(ctx, header.ID, "", metrics.SourceForm, t)
	}
	return sess
}

// Session returns a live session, loading it from the store after a restart.
func (s *Service) Session(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	header, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if header == nil || header.Closed {
		return nil, ErrSessionNotFound
	}
	msgs, err := s.repo.ListMessages(ctx, sessionID, 0)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if sess, ok := s.sessions[sessionID]; ok {
		return sess, nil
	}
	sess = s.newSession(*header, msgs)
	s.sessions[sessionID] = sess
	slog.Info("session restored from store", "session_id", sessionID, "messages", len(msgs))
	return sess, nil
}

// TurnResult is the outcome of Send.
type TurnResult struct {
	UserMessage  domain.Message
	AgentMessage domain.Message
	Intent       assistant.Kind
	Ticket       *domain.Ticket
	// Delivered is false when the session was closed before the reply could
	// be appended; the reply is then discarded.
	Delivered bool
}

// Send runs one turn: append the user message, produce the reply, append it.
//
// Turns are serialized per session; a Send while another turn is pending
// returns ErrTurnInFlight. The reply is produced on a context detached from
// ctx's cancellation so that a started ticket request completes or fails on
// its own.
func (s *Service) Send(ctx context.Context, sessionID, text string) (*TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Closed() {
		return nil, ErrSessionClosed
	}
	if !sess.beginTurn() {
		return nil, ErrTurnInFlight
	}
	defer sess.endTurn()

	started := s.now()
	log := slog.With("session_id", sessionID)

	userMsg := newMessage(domain.RoleUser, text, started)
	if err := sess.log.Append(ctx, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	turnCtx := context.WithoutCancel(ctx)
	reply := s.assistant.Reply(turnCtx, userMsg.ID, text, sess.snapshot)

	metrics.ObserveIntent(string(reply.Intent.Kind))
	if reply.Intent.Kind == assistant.KindOutOfScope {
		metrics.ObserveOutOfScope()
	}
	if reply.Ticket != nil {
		s.saveTicket(turnCtx, sessionID, userMsg.ID, metrics.SourceChat, reply.Ticket)
	}

	result := &TurnResult{
		UserMessage: userMsg,
		Intent:      reply.Intent.Kind,
		Ticket:      reply.Ticket,
	}
	result.AgentMessage = newMessage(domain.RoleAssistant, reply.Text, s.now())

	if err := sess.log.Record(turnCtx, result.AgentMessage); err != nil {
		if errors.Is(err, ErrSessionClosed) {
			log.Info("session closed before reply was delivered", "intent", reply.Intent.Kind)
			return result, nil
		}
		// The reply stays in the live log; only its stored copy is missing.
		log.Error("failed to persist assistant message", "error", err, "message_id", result.AgentMessage.ID)
	}
	result.Delivered = true

	if err := s.repo.TouchSession(turnCtx, sessionID, s.now()); err != nil {
		log.Warn("failed to touch session", "error", err)
	}
	metrics.ObserveTurn(s.now().Sub(started).Seconds())

	log.Info("turn completed",
		"intent", reply.Intent.Kind,
		"rule", reply.Intent.Rule,
		"ticket_failed", reply.TicketFailed,
	)
	return result, nil
}

func (s *Service) saveTicket(ctx context.Context, sessionID, messageID, source string, t *domain.Ticket) {
	err := s.repo.SaveTicket(ctx, store.TicketRecord{
		SessionID: sessionID,
		MessageID: messageID,
		Source:    source,
		Ticket:    *t,
		CreatedAt: s.now(),
	})
	if err != nil {
		slog.Warn("failed to store ticket echo", "session_id", sessionID, "ticket_id", t.ID, "error", err)
	}
}

// History returns the session's messages in insertion order.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.log.Messages(limit), nil
}

// Tickets returns the ticket echoes recorded for a session.
func (s *Service) Tickets(ctx context.Context, sessionID string) ([]store.TicketRecord, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListTickets(ctx, sessionID)
}

// SubmitTicketForm sets the form fields of a session and submits them.
func (s *Service) SubmitTicketForm(ctx context.Context, sessionID string, fields TicketForm) (*FormResult, error) {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Closed() {
		return nil, ErrSessionClosed
	}
	sess.form.Open()
	sess.form.Set(fields)
	res, err := sess.form.Submit(context.WithoutCancel(ctx))
	if err == nil {
		if touchErr := s.repo.TouchSession(context.WithoutCancel(ctx), sessionID, s.now()); touchErr != nil {
			slog.Warn("failed to touch session", "session_id", sessionID, "error", touchErr)
		}
	}
	return res, err
}

// CloseSession disposes a session. A turn still in flight finishes its
// network work but its reply is not appended.
func (s *Service) CloseSession(ctx context.Context, sessionID string) error {
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.close()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.repo.CloseSession(ctx, sessionID); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	slog.Info("session closed", "session_id", sessionID)
	return nil
}

// CleanupExpired disposes sessions idle for longer than ttl and removes them from the store.
func (s *Service) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	now := s.now()
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.Pending() {
			continue
		}
		header := sess.header
		header.UpdatedAt = s.lastActivity(sess)
		if header.Expired(now, ttl) {
			sess.close()
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	n, err := s.repo.CleanupExpiredSessions(ctx, ttl)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return n, nil
}

func (s *Service) lastActivity(sess *Session) time.Time {
	last := sess.header.UpdatedAt
	if msgs := sess.log.Messages(1); len(msgs) == 1 && msgs[0].CreatedAt.After(last) {
		last = msgs[0].CreatedAt
	}
	return last
}
