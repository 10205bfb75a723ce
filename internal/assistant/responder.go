package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// TicketFiler files a support ticket on behalf of a chat message. messageID
// identifies the triggering message; implementations must not file twice for it.
type TicketFiler interface {
	FileIssue(ctx context.Context, messageID, issue string, course *domain.Course, who domain.Identity) (*domain.Ticket, error)
}

// Picker returns a value in [0, n). It selects among fixed reply variants.
type Picker func(n int) int

// Options configures a Responder. Zero values select the defaults.
type Options struct {
	DisplayLimit int
	Now          func() time.Time
	Pick         Picker
}

// Reply is the outcome of one turn.
type Reply struct {
	Text   string
	Intent Intent
	// Ticket is set when a support intent filed a ticket successfully.
	Ticket *domain.Ticket
	// TicketFailed is set when a support intent tried and failed to file.
	TicketFailed bool
}

type turn struct {
	messageID string
	intent    Intent
	snap      *domain.Snapshot
	now       time.Time

	ticket       *domain.Ticket
	ticketFailed bool
}

type handler func(ctx context.Context, t *turn) string

// Responder turns intents into reply text. Only support intents perform I/O.
type Responder struct {
	tickets  TicketFiler
	limit    int
	now      func() time.Time
	pick     Picker
	handlers map[Kind]handler
}

// NewResponder creates a responder. tickets may be nil, in which case support
// intents always take the escalation fallback.
func NewResponder(tickets TicketFiler, opts Options) *Responder {
	r := &Responder{
		tickets: tickets,
		limit:   opts.DisplayLimit,
		now:     opts.Now,
		pick:    opts.Pick,
	}
	if r.limit <= 0 {
		r.limit = DefaultDisplayLimit
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.pick == nil {
		r.pick = rand.IntN
	}
	r.handlers = map[Kind]handler{
		KindOutOfScope:         r.outOfScope,
		KindGreeting:           r.greeting,
		KindGratitude:          r.gratitude,
		KindWellBeing:          r.wellBeing,
		KindCapabilities:       r.capabilities,
		KindGradeSummary:       r.gradeSummary,
		KindCourseList:         r.courseList,
		KindDeadlines:          r.deadlines,
		KindNotesList:          r.notesList,
		KindSentimentPositive:  r.sentimentPositive,
		KindSentimentNegative:  r.sentimentNegative,
		KindSupportIssueCourse: r.supportIssue,
		KindSupportIssue:       r.supportIssue,
		KindCourseGrades:       r.courseGrades,
		KindPerformance:        r.performance,
		KindSchedule:           r.schedule,
		KindEnrollment:         r.enrollment,
		KindCourseDetail:       r.courseDetail,
		KindNotes:              r.notes,
		KindAnnouncements:      r.announcements,
		KindNavigation:         r.navigation,
		KindTopic:              r.topic,
		KindQuestion:           r.question,
		KindFallback:           r.fallback,
	}
	return r
}

// Respond produces the reply for intent. It never returns empty text; unknown
// kinds use the fallback handler.
func (r *Responder) Respond(ctx context.Context, messageID string, intent Intent, snap *domain.Snapshot) Reply {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	t := &turn{
		messageID: messageID,
		intent:    intent,
		snap:      snap,
		now:       r.now(),
	}
	h, ok := r.handlers[intent.Kind]
	if !ok {
		slog.Warn("no handler for intent, using fallback", "intent", intent.Kind)
		h = r.fallback
	}
	text := h(ctx, t)
	if text == "" {
		text = r.fallback(ctx, t)
	}
	return Reply{
		Text:         text,
		Intent:       intent,
		Ticket:       t.ticket,
		TicketFailed: t.ticketFailed,
	}
}

// supportIssue files a ticket and echoes its id, or promises escalation
// without an id when filing fails.
func (r *Responder) supportIssue(ctx context.Context, t *turn) string {
	course := t.intent.Course
	who := t.snap.User.Identity()

	var ticket *domain.Ticket
	var err error
	if r.tickets == nil {
		err = fmt.Errorf("no ticket service configured")
	} else {
		ticket, err = r.tickets.FileIssue(ctx, t.messageID, t.intent.Text, course, who)
	}
	if err != nil || ticket == nil || ticket.ID == "" {
		slog.Warn("support ticket not created", "message_id", t.messageID, "error", err)
		t.ticketFailed = true
		if course != nil {
			return fmt.Sprintf("I'm sorry about the trouble with %s. I couldn't create a support ticket right now, "+
				"but the issue will be escalated to the support team. You can try again in a moment or use the support ticket form.", course.Title)
		}
		return "I'm sorry about the trouble. I couldn't create a support ticket right now, " +
			"but the issue will be escalated to the support team. You can try again in a moment or use the support ticket form."
	}

	t.ticket = ticket
	contact := ""
	if who.StudentEmail != "" {
		contact = fmt.Sprintf(" You'll hear back at %s.", who.StudentEmail)
	}
	if course != nil {
		return fmt.Sprintf("I've filed support ticket #%s about %s for you. The support team will review it shortly.%s",
			ticket.ID, course.Title, contact)
	}
	return fmt.Sprintf("I've filed support ticket #%s for you. The support team will review it shortly.%s", ticket.ID, contact)
}
