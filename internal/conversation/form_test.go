package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assistant/internal/domain"
)

type stubCreator struct {
	mu    sync.Mutex
	err   error
	gate  chan struct{}
	calls []domain.TicketRequest
}

func (s *stubCreator) Create(_ context.Context, req domain.TicketRequest) (*domain.Ticket, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	gate, err := s.gate, s.err
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &domain.Ticket{ID: "TCK-9", TicketRequest: req, Status: "open"}, nil
}

func validForm() TicketForm {
	return TicketForm{
		Subject:     "Quiz 2 marks",
		Description: "Quiz 2 is missing from my total",
		CourseID:    "c-1",
		Category:    domain.CategoryGrades,
		Priority:    domain.PriorityHigh,
	}
}

func TestTicketFormValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*TicketForm)
		ok   bool
	}{
		{"valid", func(*TicketForm) {}, true},
		{"blank subject", func(f *TicketForm) { f.Subject = "  " }, false},
		{"blank description", func(f *TicketForm) { f.Description = "" }, false},
		{"unknown category", func(f *TicketForm) { f.Category = "billing" }, false},
		{"unknown priority", func(f *TicketForm) { f.Priority = "urgent" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.edit(&f)
			err := f.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidForm)
		})
	}
}

func TestFormSubmitSuccessResetsAndCloses(t *testing.T) {
	creator := &stubCreator{}
	repo := newMemRepo()
	svc := newTestService(t, repo, nil, creator)
	ctx := context.Background()
	sess, err := svc.StartSession(ctx, StartSessionInput{UserID: "anon_1", Snapshot: testSnapshot()})
	require.NoError(t, err)

	res, err := svc.SubmitTicketForm(ctx, sess.ID(), validForm())
	require.NoError(t, err)
	require.Equal(t, "TCK-9", res.Ticket.ID)
	require.Contains(t, res.Message.Content, "#TCK-9")

	require.Len(t, creator.calls, 1)
	req := creator.calls[0]
	require.Equal(t, domain.CategoryGrades, req.Category)
	require.Equal(t, domain.PriorityHigh, req.Priority)
	require.Equal(t, "Database Systems", req.CourseName)
	require.Equal(t, "S-1", req.StudentID)

	state := sess.Form().State()
	require.False(t, state.Open)
	require.False(t, state.Submitting)
	require.Equal(t, emptyForm(), state.Fields)
	require.False(t, state.CanSubmit)

	msgs := sess.Log().Messages(0)
	require.Equal(t, res.Message.ID, msgs[len(msgs)-1].ID)

	tickets, err := svc.Tickets(ctx, sess.ID())
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	require.Equal(t, "form", tickets[0].Source)
	require.Empty(t, tickets[0].MessageID)
}

func TestFormSubmitFailureKeepsFields(t *testing.T) {
	creator := &stubCreator{err: errors.New("503 from ticket service")}
	svc := newTestService(t, newMemRepo(), nil, creator)
	ctx := context.Background()
	sess, err := svc.StartSession(ctx, StartSessionInput{UserID: "anon_1", Snapshot: testSnapshot()})
	require.NoError(t, err)

	res, err := svc.SubmitTicketForm(ctx, sess.ID(), validForm())
	require.NoError(t, err)
	require.Nil(t, res.Ticket)
	require.Contains(t, res.Message.Content, "couldn't submit")

	state := sess.Form().State()
	require.True(t, state.Open)
	require.False(t, state.Submitting)
	require.True(t, state.CanSubmit)
	require.Equal(t, validForm(), state.Fields)
	require.Equal(t, 2, sess.Log().Len())
}

func TestFormSubmitInvalidNeverCallsService(t *testing.T) {
	creator := &stubCreator{}
	svc := newTestService(t, newMemRepo(), nil, creator)
	ctx := context.Background()
	sess, err := svc.StartSession(ctx, StartSessionInput{UserID: "anon_1", Snapshot: testSnapshot()})
	require.NoError(t, err)

	_, err = svc.SubmitTicketForm(ctx, sess.ID(), TicketForm{Description: "no subject"})
	require.ErrorIs(t, err, ErrInvalidForm)
	require.Empty(t, creator.calls)
	require.Equal(t, 1, sess.Log().Len())
}

func TestFormSetKeepsDefaults(t *testing.T) {
	svc := newTestService(t, newMemRepo(), nil, nil)
	sess, err := svc.StartSession(context.Background(), StartSessionInput{UserID: "anon_1", Snapshot: testSnapshot()})
	require.NoError(t, err)

	sess.Form().Set(TicketForm{Subject: "s", Description: "d"})
	state := sess.Form().State()
	require.Equal(t, domain.CategoryGeneral, state.Fields.Category)
	require.Equal(t, domain.PriorityMedium, state.Fields.Priority)
	require.True(t, state.CanSubmit)
}

func TestFormRejectsConcurrentSubmit(t *testing.T) {
	creator := &stubCreator{gate: make(chan struct{})}
	svc := newTestService(t, newMemRepo(), nil, creator)
	ctx := context.Background()
	sess, err := svc.StartSession(ctx, StartSessionInput{UserID: "anon_1", Snapshot: testSnapshot()})
	require.NoError(t, err)

	form := sess.Form()
	form.Open()
	form.Set(validForm())

	done := make(chan error, 1)
	go func() {
		_, err := form.Submit(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return form.State().Submitting }, time.Second, time.Millisecond)
	require.False(t, form.State().CanSubmit)

	_, err = form.Submit(ctx)
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(creator.gate)
	require.NoError(t, <-done)
	require.False(t, form.State().Submitting)
	require.Len(t, creator.calls, 1)
}
