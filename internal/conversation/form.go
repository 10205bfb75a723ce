package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/campus-assistant/internal/domain"
	"github.com/ashureev/campus-assistant/internal/metrics"
	"github.com/ashureev/campus-assistant/internal/ticket"
)

var (
	// ErrInvalidForm is returned when a ticket form is missing required fields.
	ErrInvalidForm = errors.New("invalid ticket form")
	// ErrSubmitInFlight is returned when a form submission is already running.
	ErrSubmitInFlight = errors.New("ticket submission in progress")
)

// TicketForm holds the fields of the explicit support ticket form.
type TicketForm struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	CourseID    string                `json:"courseId,omitempty"`
	Category    domain.TicketCategory `json:"category"`
	Priority    domain.TicketPriority `json:"priority"`
}

func emptyForm() TicketForm {
	return TicketForm{Category: domain.CategoryGeneral, Priority: domain.PriorityMedium}
}

// Validate checks that subject and description are present and the
// category and priority are known.
func (f TicketForm) Validate() error {
	if strings.TrimSpace(f.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidForm)
	}
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidForm)
	}
	if !f.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidForm, f.Category)
	}
	if !f.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidForm, f.Priority)
	}
	return nil
}

// FormState is a point-in-time view of the form controller.
type FormState struct {
	Fields     TicketForm `json:"fields"`
	Open       bool       `json:"open"`
	Submitting bool       `json:"submitting"`
	CanSubmit  bool       `json:"canSubmit"`
}

// FormResult is the outcome of a submission.
type FormResult struct {
	Ticket  *domain.Ticket
	Message domain.Message
}

// FormController drives the explicit ticket form of one session. It submits
// through the same ticket service as chat-detected issues, with the
// category and priority chosen by the student.
type FormController struct {
	creator   ticket.Creator
	log       *Log
	snap      *domain.Snapshot
	sessionID string
	onCreated func(ctx context.Context, t *domain.Ticket)
	now       func() time.Time

	mu         sync.Mutex
	fields     TicketForm
	open       bool
	submitting bool
}

func newFormController(sessionID string, creator ticket.Creator, log *Log, snap *domain.Snapshot, now func() time.Time) *FormController {
	return &FormController{
		creator:   creator,
		log:       log,
		snap:      snap,
		sessionID: sessionID,
		now:       now,
		fields:    emptyForm(),
	}
}

// Open shows the form.
func (f *FormController) Open() {
	f.mu.Lock()
	f.open = true
	f.mu.Unlock()
}

// Close hides the form without clearing its fields.
func (f *FormController) Close() {
	f.mu.Lock()
	f.open = false
	f.mu.Unlock()
}

// Set replaces the form fields. Empty category and priority keep their defaults.
func (f *FormController) Set(fields TicketForm) {
	if fields.Category == "" {
		fields.Category = domain.CategoryGeneral
	}
	if fields.Priority == "" {
		fields.Priority = domain.PriorityMedium
	}
	f.mu.Lock()
	f.fields = fields
	f.mu.Unlock()
}

// State returns the current form state.
func (f *FormController) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FormState{
		Fields:     f.fields,
		Open:       f.open,
		Submitting: f.submitting,
		CanSubmit:  !f.submitting && f.fields.Validate() == nil,
	}
}

// Submit sends the current fields to the ticket service.
//
// On success a confirmation message is appended, the fields are reset and the
// form closes. On failure a failure message is appended and the fields are
// left as they were. The submitting flag is cleared on both paths.
func (f *FormController) Submit(ctx context.Context) (*FormResult, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	fields := f.fields
	if err := fields.Validate(); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.submitting = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	req := domain.TicketRequest{
		Identity:    f.snap.User.Identity(),
		Subject:     strings.TrimSpace(fields.Subject),
		Description: strings.TrimSpace(fields.Description),
		Category:    fields.Category,
		Priority:    fields.Priority,
	}
	if c := f.snap.CourseByID(fields.CourseID); c != nil {
		req.CourseID = c.ID
		req.CourseName = c.Title
	}

	var created *domain.Ticket
	var err error
	if f.creator == nil {
		err = errors.New("no ticket service configured")
	} else {
		created, err = f.creator.Create(ctx, req)
	}

	if err != nil {
		slog.Warn("ticket form submission failed", "session_id", f.sessionID, "category", req.Category, "error", err)
		metrics.ObserveTicket(metrics.SourceForm, metrics.OutcomeFailed)
		msg := newMessage(domain.RoleAssistant,
			"Sorry, I couldn't submit your support ticket right now. Your details are still in the form, so please try again in a moment.",
			f.now())
		if appendErr := f.log.Record(ctx, msg); appendErr != nil {
			slog.Warn("failed to append form failure message", "session_id", f.sessionID, "error", appendErr)
		}
		return &FormResult{Message: msg}, nil
	}

	metrics.ObserveTicket(metrics.SourceForm, metrics.OutcomeCreated)
	slog.Info("ticket form submitted", "session_id", f.sessionID, "ticket_id", created.ID, "category", req.Category)
	if f.onCreated != nil {
		f.onCreated(ctx, created)
	}

	msg := newMessage(domain.RoleAssistant,
		fmt.Sprintf("Your support ticket #%s (\"%s\") has been submitted. The support team will get back to you soon.",
			created.ID, req.Subject),
		f.now())
	if appendErr := f.log.Record(ctx, msg); appendErr != nil {
		slog.Warn("failed to append form confirmation message", "session_id", f.sessionID, "error", appendErr)
	}

	f.mu.Lock()
	f.fields = emptyForm()
	f.open = false
	f.mu.Unlock()

	return &FormResult{Ticket: created, Message: msg}, nil
}
