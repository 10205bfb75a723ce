package ticket

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ashureev/campus-assistant/internal/domain"
	"github.com/ashureev/campus-assistant/internal/metrics"
)

// defaultMemory is how many message outcomes the dispatcher remembers.
const defaultMemory = 4096

var errNoCreator = errors.New("no ticket creator configured")

type outcome struct {
	ticket *domain.Ticket
	err    error
}

// Dispatcher files tickets detected in chat. Each triggering message is
// dispatched at most once: concurrent calls for the same message share one
// request and later calls replay the recorded outcome.
type Dispatcher struct {
	creator Creator
	group   singleflight.Group

	mu       sync.Mutex
	outcomes map[string]outcome
	order    *list.List
	memory   int
}

// NewDispatcher creates a dispatcher backed by creator.
func NewDispatcher(creator Creator) *Dispatcher {
	return &Dispatcher{
		creator:  creator,
		outcomes: make(map[string]outcome),
		order:    list.New(),
		memory:   defaultMemory,
	}
}

// FileIssue builds a ticket from issue text with an inferred category and
// medium priority, and submits it once for messageID.
func (d *Dispatcher) FileIssue(ctx context.Context, messageID, issue string, course *domain.Course, who domain.Identity) (*domain.Ticket, error) {
	if messageID == "" {
		return nil, fmt.Errorf("file issue: message id is required")
	}
	if prev, ok := d.recall(messageID); ok {
		slog.Info("ticket already dispatched for message", "message_id", messageID)
		metrics.ObserveTicket(metrics.SourceChat, metrics.OutcomeReused)
		return prev.ticket, prev.err
	}

	v, _, _ := d.group.Do(messageID, func() (any, error) {
		if prev, ok := d.recall(messageID); ok {
			return prev, nil
		}
		res := d.dispatch(ctx, messageID, issue, course, who)
		d.remember(messageID, res)
		return res, nil
	})
	res := v.(outcome)
	return res.ticket, res.err
}

// BuildRequest assembles the ticket payload for a chat-detected issue.
func BuildRequest(issue string, course *domain.Course, who domain.Identity) domain.TicketRequest {
	category := InferCategory(issue)
	req := domain.TicketRequest{
		Identity:    who,
		Subject:     subjectFor(category, course),
		Description: strings.TrimSpace(issue),
		Category:    category,
		Priority:    domain.PriorityMedium,
	}
	if course != nil {
		req.CourseID = course.ID
		req.CourseName = course.Title
	}
	return req
}

func (d *Dispatcher) dispatch(ctx context.Context, messageID, issue string, course *domain.Course, who domain.Identity) outcome {
	if d.creator == nil {
		metrics.ObserveTicket(metrics.SourceChat, metrics.OutcomeFailed)
		return outcome{err: errNoCreator}
	}
	req := BuildRequest(issue, course, who)
	t, err := d.creator.Create(ctx, req)
	if err != nil {
		slog.Warn("chat ticket dispatch failed",
			"message_id", messageID,
			"category", req.Category,
			"error", err,
		)
		metrics.ObserveTicket(metrics.SourceChat, metrics.OutcomeFailed)
		return outcome{err: err}
	}
	slog.Info("chat ticket created",
		"message_id", messageID,
		"ticket_id", t.ID,
		"category", req.Category,
		"course_id", req.CourseID,
	)
	metrics.ObserveTicket(metrics.SourceChat, metrics.OutcomeCreated)
	return outcome{ticket: t}
}

func (d *Dispatcher) recall(messageID string) (outcome, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.outcomes[messageID]
	return o, ok
}

func (d *Dispatcher) remember(messageID string, o outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.outcomes[messageID]; ok {
		return
	}
	d.outcomes[messageID] = o
	d.order.PushBack(messageID)
	// Evict oldest outcomes beyond the memory bound.
	for d.order.Len() > d.memory {
		front := d.order.Front()
		delete(d.outcomes, front.Value.(string))
		d.order.Remove(front)
	}
}
