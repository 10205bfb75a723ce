// Package conversation manages chat sessions: the append-only conversation
// log, serialized turns through the assistant, and the support ticket form.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// ErrSessionClosed is returned when appending to a closed session.
var ErrSessionClosed = errors.New("session closed")

// Appender persists messages as they are appended.
type Appender interface {
	AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error
}

// Log is the ordered, append-only record of a session's messages. Insertion
// order is the only ordering guarantee.
type Log struct {
	sessionID string
	appender  Appender

	mu       sync.RWMutex
	messages []domain.Message
	closed   bool
}

// NewLog creates a log seeded with previously persisted messages.
func NewLog(sessionID string, appender Appender, existing []domain.Message) *Log {
	msgs := make([]domain.Message, len(existing))
	copy(msgs, existing)
	return &Log{sessionID: sessionID, appender: appender, messages: msgs}
}

// Append persists msg and adds it to the log.
func (l *Log) Append(ctx context.Context, msg domain.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrSessionClosed
	}
	if l.appender != nil {
		if err := l.appender.AppendMessage(ctx, l.sessionID, msg); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
	}
	l.messages = append(l.messages, msg)
	return nil
}

// Record appends an assistant reply. Unlike Append it keeps msg in the log
// when persisting fails, so a reply to a logged user message is never lost;
// the persistence error is still returned. Only a closed log rejects msg.
func (l *Log) Record(ctx context.Context, msg domain.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrSessionClosed
	}
	l.messages = append(l.messages, msg)
	if l.appender != nil {
		if err := l.appender.AppendMessage(ctx, l.sessionID, msg); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
	}
	return nil
}

// Messages returns a copy of the log. A limit > 0 keeps the most recent entries.
func (l *Log) Messages(limit int) []domain.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	src := l.messages
	if limit > 0 && len(src) > limit {
		src = src[len(src)-limit:]
	}
	out := make([]domain.Message, len(src))
	copy(out, src)
	return out
}

// Len returns the number of messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Close disposes the log; later appends fail with ErrSessionClosed.
func (l *Log) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
}

func newMessage(role domain.Role, content string, now time.Time) domain.Message {
	return domain.Message{
		ID:               uuid.NewString(),
		Role:             role,
		Content:          content,
		DisplayTimestamp: now.Format(domain.DisplayTimeLayout),
		CreatedAt:        now,
	}
}
