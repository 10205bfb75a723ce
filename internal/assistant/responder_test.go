package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assistant/internal/domain"
)

var fixedNow = time.Date(2024, time.October, 16, 9, 0, 0, 0, time.UTC)

type fakeFiler struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeFiler) FileIssue(_ context.Context, messageID, issue string, course *domain.Course, _ domain.Identity) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messageID)
	if f.err != nil {
		return nil, f.err
	}
	t := &domain.Ticket{ID: "TCK-42", Status: "open"}
	t.Description = issue
	if course != nil {
		t.CourseName = course.Title
	}
	return t, nil
}

func newTestResponder(filer TicketFiler) *Responder {
	return NewResponder(filer, Options{
		DisplayLimit: 5,
		Now:          func() time.Time { return fixedNow },
		Pick:         func(int) int { return 1 },
	})
}

func ptr[T any](v T) *T { return &v }

func TestTodayWithoutEventsSaysNothingDue(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{Events: []domain.Event{
		{ID: "e-1", Title: "Quiz 3", Date: "2024-10-17", Time: "9:00 AM"},
		{ID: "e-2", Title: "Lab 2", Date: "2024-10-15"},
	}}
	r := newTestResponder(nil)

	deadlines := r.Respond(context.Background(), "m-1", Intent{Kind: KindDeadlines, Text: "What's due today?"}, snap)
	require.Equal(t, "Nothing is due today. Enjoy the breathing room!", deadlines.Text)
	require.NotContains(t, deadlines.Text, "•")

	schedule := r.Respond(context.Background(), "m-2", Intent{Kind: KindSchedule, Text: "schedule for today"}, snap)
	require.Equal(t, "You have nothing scheduled for today.", schedule.Text)
}

func TestWeekIncludesEventsWithinSevenDays(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{Events: []domain.Event{
		{ID: "e-1", Title: "Project demo", Date: "2024-10-22"},
		{ID: "e-2", Title: "Quiz 3", Date: "2024-10-17", Time: "9:00 AM"},
		{ID: "e-3", Title: "Final exam", Date: "2024-11-30"},
		{ID: "e-4", Title: "Lab 2", Date: "2024-10-15"},
	}}
	got := newTestResponder(nil).Respond(context.Background(), "m-1", Intent{Kind: KindDeadlines, Text: "due this week"}, snap)

	require.Equal(t, "Here's what's due this week:\n"+
		"• Quiz 3 on Thu, Oct 17 at 9:00 AM\n"+
		"• Project demo on Tue, Oct 22", got.Text)
}

func TestGradeSummaryListsCompletedCoursesWithFinalGrade(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{}
	for i := 1; i <= 7; i++ {
		snap.Courses = append(snap.Courses, domain.Course{
			ID:     fmt.Sprintf("c-%d", i),
			Title:  fmt.Sprintf("Course %d", i),
			Status: domain.CourseCompleted,
			Grades: domain.Grades{FinalGrade: ptr("A")},
		})
	}
	snap.Courses = append(snap.Courses,
		domain.Course{ID: "c-8", Title: "Ungraded", Status: domain.CourseCompleted},
		domain.Course{ID: "c-9", Title: "Ongoing", Status: domain.CourseOngoing, Grades: domain.Grades{FinalGrade: ptr("B")}},
	)

	got := newTestResponder(nil).Respond(context.Background(), "m-1", Intent{Kind: KindGradeSummary}, snap)

	require.Equal(t, "Here are your final grades (7 completed courses):\n"+
		"• Course 1: A\n• Course 2: A\n• Course 3: A\n• Course 4: A\n• Course 5: A\n"+
		"…and 2 more", got.Text)
	require.NotContains(t, got.Text, "Ungraded")
	require.NotContains(t, got.Text, "Ongoing")
}

func TestPerformanceBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		avg  int
		want Band
	}{
		{100, BandExcellent},
		{80, BandExcellent},
		{79, BandGood},
		{65, BandGood},
		{64, BandProgressing},
		{50, BandProgressing},
		{49, BandEncouragement},
		{0, BandEncouragement},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, PerformanceBand(tt.avg), "avg %d", tt.avg)
	}
}

func TestPerformanceRoundsAverage(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{Courses: []domain.Course{
		{ID: "c-1", Title: "A", Status: domain.CourseOngoing, Progress: ptr(79.5)},
		{ID: "c-2", Title: "B", Status: domain.CourseOngoing, Progress: ptr(80.0)},
		{ID: "c-3", Title: "C", Status: domain.CourseUpcoming, Progress: ptr(0.0)},
	}}
	got := newTestResponder(nil).Respond(context.Background(), "m-1", Intent{Kind: KindPerformance}, snap)

	require.Equal(t, "Your average progress across 2 ongoing courses is 80%. You're doing excellent work! Keep it up.", got.Text)
}

func TestRespondIsDeterministic(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{
		User:    domain.UserProfile{Name: "Asha Verma"},
		Courses: []domain.Course{{ID: "c-1", Title: "Database Systems", Status: domain.CourseOngoing, Progress: ptr(55.0)}},
	}
	a := New(nil, newTestResponder(nil))

	for _, msg := range []string{"hello", "how am I doing?", "tell me about Database Systems", "blorp"} {
		first := a.Reply(context.Background(), "m-1", msg, snap)
		second := a.Reply(context.Background(), "m-2", msg, snap)
		require.Equal(t, first.Intent.Kind, second.Intent.Kind, msg)
		require.Equal(t, first.Text, second.Text, msg)
	}
}

func TestGreetingDrawsFromFixedVariants(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{User: domain.UserProfile{Name: "Asha Verma"}}
	allowed := map[string]bool{}
	for _, v := range GreetingVariants() {
		allowed[fmt.Sprintf(v, "Asha")] = true
	}

	r := NewResponder(nil, Options{})
	for i := 0; i < 20; i++ {
		got := r.Respond(context.Background(), "m", Intent{Kind: KindGreeting}, snap)
		require.True(t, allowed[got.Text], got.Text)
	}

	pinned := newTestResponder(nil).Respond(context.Background(), "m", Intent{Kind: KindGreeting}, snap)
	require.Equal(t, "Hi Asha! What would you like to know about your courses?", pinned.Text)
}

func TestEveryKindProducesText(t *testing.T) {
	t.Parallel()

	kinds := []Kind{
		KindOutOfScope, KindGreeting, KindGratitude, KindWellBeing, KindCapabilities,
		KindGradeSummary, KindCourseList, KindDeadlines, KindNotesList, KindSentimentPositive,
		KindSentimentNegative, KindSupportIssueCourse, KindSupportIssue, KindCourseGrades,
		KindPerformance, KindSchedule, KindEnrollment, KindCourseDetail, KindNotes,
		KindAnnouncements, KindNavigation, KindTopic, KindQuestion, KindFallback, Kind("unknown"),
	}
	r := newTestResponder(nil)
	for _, k := range kinds {
		// A nil snapshot behaves as an empty one.
		got := r.Respond(context.Background(), "m", Intent{Kind: k}, nil)
		require.NotEmpty(t, strings.TrimSpace(got.Text), string(k))
	}
}

func TestSupportIssueEchoesTicketID(t *testing.T) {
	t.Parallel()

	filer := &fakeFiler{}
	course := &domain.Course{ID: "c-1", Title: "Database Systems"}
	snap := &domain.Snapshot{User: domain.UserProfile{Email: "asha@example.edu"}}

	got := newTestResponder(filer).Respond(context.Background(), "m-7",
		Intent{Kind: KindSupportIssueCourse, Course: course, Text: "my grades are wrong for Database Systems"}, snap)

	require.Equal(t, []string{"m-7"}, filer.calls)
	require.NotNil(t, got.Ticket)
	require.False(t, got.TicketFailed)
	require.Contains(t, got.Text, "#TCK-42")
	require.Contains(t, got.Text, "Database Systems")
	require.Contains(t, got.Text, "asha@example.edu")
}

func TestSupportIssueFailureNeverClaimsTicket(t *testing.T) {
	t.Parallel()

	filer := &fakeFiler{err: errors.New("connection refused")}
	got := newTestResponder(filer).Respond(context.Background(), "m-8",
		Intent{Kind: KindSupportIssue, Text: "the portal shows an error"}, &domain.Snapshot{})

	require.Len(t, filer.calls, 1)
	require.Nil(t, got.Ticket)
	require.True(t, got.TicketFailed)
	require.NotContains(t, got.Text, "#")
	require.Contains(t, got.Text, "escalated")
	require.Contains(t, got.Text, "support ticket form")
}

func TestNonSupportIntentsNeverFile(t *testing.T) {
	t.Parallel()

	filer := &fakeFiler{}
	a := New(nil, newTestResponder(filer))
	snap := &domain.Snapshot{}
	for _, msg := range []string{"hello", "show my grades", "what's due this week?", "blorp"} {
		a.Reply(context.Background(), "m", msg, snap)
	}
	require.Empty(t, filer.calls)
}
