package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashureev/campus-assistant/internal/domain"
)

func TestWhatsDueToday(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{Events: []domain.Event{
		{ID: "e-1", Title: "Assignment 1", Date: "2024-10-16", Time: "10:00 AM"},
		{ID: "e-2", Title: "Quiz 3", Date: "2024-10-18"},
	}}
	got := New(nil, newTestResponder(nil)).Reply(context.Background(), "m-1", "What's due today?", snap)

	require.Equal(t, KindDeadlines, got.Intent.Kind)
	require.Contains(t, got.Text, "Assignment 1")
	require.Contains(t, got.Text, "10:00 AM")
	require.NotContains(t, got.Text, "Quiz 3")
}

func TestScopeGuardShortCircuits(t *testing.T) {
	t.Parallel()

	a := New(nil, newTestResponder(nil))
	got := a.Reply(context.Background(), "m-1", "what is 2+2", &domain.Snapshot{})

	require.Equal(t, KindOutOfScope, got.Intent.Kind)
	require.Equal(t, "scope_guard", got.Intent.Rule)
	require.Contains(t, got.Text, "study assistant")
}

func TestScopeGuardYieldsToResolvedCourse(t *testing.T) {
	t.Parallel()

	snap := &domain.Snapshot{Courses: []domain.Course{
		{ID: "c-1", Title: "Film Studies", Code: "HUM F101", Status: domain.CourseOngoing},
	}}
	got := New(nil, newTestResponder(nil)).Classify("When is the next Film Studies lecture?", snap)

	require.Equal(t, KindCourseDetail, got.Kind)
}

func TestSupportIssueWithCourseFilesOnce(t *testing.T) {
	t.Parallel()

	filer := &fakeFiler{}
	snap := &domain.Snapshot{Courses: []domain.Course{
		{ID: "c-1", Title: "Database Systems", Code: "CS F212", Status: domain.CourseOngoing},
	}}
	got := New(nil, newTestResponder(filer)).Reply(context.Background(), "m-9", "my grades are wrong for Database Systems", snap)

	require.Equal(t, KindSupportIssueCourse, got.Intent.Kind)
	require.Equal(t, []string{"m-9"}, filer.calls)
	require.Contains(t, got.Text, "#TCK-42")
}

func TestScopeGuardYieldsToPortalSignals(t *testing.T) {
	t.Parallel()

	a := New(nil, newTestResponder(nil))
	tests := []struct {
		msg  string
		want Kind
	}{
		{"What's due on 10/18?", KindDeadlines},
		{"my quiz marks are wrong, I got 8/10 but it shows 6/10", KindSupportIssue},
		{"the portal is broken on my iphone", KindSupportIssue},
		{"my grades are wrong", KindSupportIssue},
		{"what is 2+2", KindOutOfScope},
		{"any iphone deals?", KindOutOfScope},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, a.Classify(tt.msg, &domain.Snapshot{}).Kind, tt.msg)
	}
}

func TestSupportIssueWithScoreFilesTicket(t *testing.T) {
	t.Parallel()

	filer := &fakeFiler{}
	got := New(nil, newTestResponder(filer)).Reply(context.Background(), "m-3",
		"my quiz marks are wrong, I got 8/10 but it shows 6/10", &domain.Snapshot{})

	require.Equal(t, KindSupportIssue, got.Intent.Kind)
	require.Equal(t, []string{"m-3"}, filer.calls)
	require.Contains(t, got.Text, "#TCK-42")
}
