package domain

import (
	"time"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayTimeLayout renders message timestamps in the chat view.
const DisplayTimeLayout = "3:04 PM"

// Message is a single entry in a conversation log. It is never modified after append.
type Message struct {
	ID               string    `json:"id"`
	Role             Role      `json:"role"`
	Content          string    `json:"content"`
	DisplayTimestamp string    `json:"displayTimestamp"`
	CreatedAt        time.Time `json:"-"`
}

// Session is the persisted header of a conversation session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Snapshot  Snapshot  `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Closed    bool      `json:"closed"`
}

// Expired reports whether the session has been idle longer than ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}
