// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// TicketRecord is the local echo of a ticket created during a session.
type TicketRecord struct {
	SessionID string
	MessageID string
	Source    string
	Ticket    domain.Ticket
	CreatedAt time.Time
}

// Repository defines the interface for persisting conversation sessions.
type Repository interface {
	// CreateSession stores a new session header and its snapshot.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by id. It returns nil, nil when absent.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// TouchSession updates the session's updated_at timestamp.
	TouchSession(ctx context.Context, sessionID string, at time.Time) error

	// CloseSession marks a session as closed.
	CloseSession(ctx context.Context, sessionID string) error

	// AppendMessage appends a message to the session's log.
	AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error

	// ListMessages returns the session's messages in insertion order.
	// A limit <= 0 returns all messages.
	ListMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// SaveTicket stores the local echo of a created ticket.
	SaveTicket(ctx context.Context, rec TicketRecord) error

	// ListTickets returns the tickets created during a session.
	ListTickets(ctx context.Context, sessionID string) ([]TicketRecord, error)

	// CleanupExpiredSessions removes sessions idle for longer than ttl.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
