package assistant

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ashureev/campus-assistant/internal/domain"
)

var greetingVariants = []string{
	"Hello %s! How can I help with your studies today?",
	"Hi %s! What would you like to know about your courses?",
	"Hey %s! Ask me about your grades, deadlines or notes.",
}

// GreetingVariants returns the fixed set of greeting templates.
func GreetingVariants() []string {
	return slices.Clone(greetingVariants)
}

func (r *Responder) greeting(_ context.Context, t *turn) string {
	i := r.pick(len(greetingVariants))
	if i < 0 || i >= len(greetingVariants) {
		i = 0
	}
	return fmt.Sprintf(greetingVariants[i], t.snap.User.FirstName())
}

func (r *Responder) gratitude(_ context.Context, _ *turn) string {
	return "You're welcome! Let me know if there's anything else I can help with."
}

func (r *Responder) wellBeing(_ context.Context, t *turn) string {
	return fmt.Sprintf("I'm doing well, thanks for asking, %s! How are your studies going?", t.snap.User.FirstName())
}

func (r *Responder) capabilities(_ context.Context, _ *turn) string {
	return "I can help you with:\n" +
		"• Your grades and overall performance\n" +
		"• Courses you're enrolled in\n" +
		"• Deadlines and events for today or this week\n" +
		"• Your notes and the latest announcements\n" +
		"• Finding your way around the portal\n" +
		"• Reporting a problem, for example a wrong or missing grade"
}

func (r *Responder) outOfScope(_ context.Context, _ *turn) string {
	return "I'm your study assistant, so I can only help with things in the student portal like your courses, grades, " +
		"deadlines, notes and announcements. Try asking \"What's due this week?\""
}

func (r *Responder) gradeSummary(_ context.Context, t *turn) string {
	var items []string
	for _, c := range t.snap.CoursesByStatus(domain.CourseCompleted) {
		if c.HasFinalGrade() {
			items = append(items, fmt.Sprintf("%s: %s", courseLabel(c.Title, c.Code), *c.Grades.FinalGrade))
		}
	}
	if len(items) == 0 {
		ongoing := len(t.snap.CoursesByStatus(domain.CourseOngoing))
		if ongoing > 0 {
			return fmt.Sprintf("No final grades have been published yet. You have %s in progress; ask me about one of them for its current marks.",
				plural(ongoing, "ongoing course", "ongoing courses"))
		}
		return "No final grades have been published yet."
	}
	return fmt.Sprintf("Here are your final grades (%s):\n%s",
		plural(len(items), "completed course", "completed courses"), bulletList(items, r.limit))
}

func (r *Responder) courseList(_ context.Context, t *turn) string {
	ongoing := t.snap.CoursesByStatus(domain.CourseOngoing)
	if len(ongoing) == 0 {
		if len(t.snap.Courses) == 0 {
			return "You're not enrolled in any courses yet."
		}
		return fmt.Sprintf("You have no ongoing courses right now, but %s on record.",
			plural(len(t.snap.Courses), "course is", "courses are"))
	}
	items := make([]string, 0, len(ongoing))
	for _, c := range ongoing {
		items = append(items, courseWithProgress(c))
	}
	return fmt.Sprintf("You're currently taking %s:\n%s",
		plural(len(ongoing), "course", "courses"), bulletList(items, r.limit))
}

func courseWithProgress(c *domain.Course) string {
	label := courseLabel(c.Title, c.Code)
	if c.Progress != nil {
		return fmt.Sprintf("%s, %d%% complete", label, roundPercent(*c.Progress))
	}
	return label
}

func (r *Responder) deadlines(_ context.Context, t *turn) string {
	msg := normalize(t.intent.Text)
	switch {
	case strings.Contains(msg, "today") || strings.Contains(msg, "tonight"):
		return r.todayReply(t, "Nothing is due today. Enjoy the breathing room!", "Here's what's due today:")
	case strings.Contains(msg, "week"):
		return r.weekReply(t, "Nothing is due in the next 7 days.", "Here's what's due this week:")
	}
	upcoming := upcomingEvents(t.snap.Events, t.now)
	if len(upcoming) == 0 {
		return "You have no upcoming deadlines."
	}
	return fmt.Sprintf("Your upcoming deadlines:\n%s", bulletList(eventLines(upcoming, true), r.limit))
}

func (r *Responder) schedule(_ context.Context, t *turn) string {
	if strings.Contains(normalize(t.intent.Text), "week") {
		return r.weekReply(t, "Your schedule is clear for the next 7 days.", "Here's your schedule for this week:")
	}
	return r.todayReply(t, "You have nothing scheduled for today.", "Here's your schedule for today:")
}

func (r *Responder) todayReply(t *turn, empty, header string) string {
	today := eventsOn(t.snap.Events, t.now)
	if len(today) == 0 {
		return empty
	}
	return header + "\n" + bulletList(eventLines(today, false), r.limit)
}

func (r *Responder) weekReply(t *turn, empty, header string) string {
	week := eventsWithin(t.snap.Events, t.now, 7*24*time.Hour)
	if len(week) == 0 {
		return empty
	}
	return header + "\n" + bulletList(eventLines(week, true), r.limit)
}

type datedEvent struct {
	event domain.Event
	day   time.Time
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func eventsOn(events []domain.Event, now time.Time) []datedEvent {
	today := startOfDay(now)
	var out []datedEvent
	for _, e := range events {
		if day, ok := e.Day(now.Location()); ok && day.Equal(today) {
			out = append(out, datedEvent{event: e, day: day})
		}
	}
	return out
}

// eventsWithin returns events from today up to now+span, ordered by date.
func eventsWithin(events []domain.Event, now time.Time, span time.Duration) []datedEvent {
	today := startOfDay(now)
	limit := now.Add(span)
	var out []datedEvent
	for _, e := range events {
		day, ok := e.Day(now.Location())
		if !ok || day.Before(today) || day.After(limit) {
			continue
		}
		out = append(out, datedEvent{event: e, day: day})
	}
	sortByDay(out)
	return out
}

func upcomingEvents(events []domain.Event, now time.Time) []datedEvent {
	today := startOfDay(now)
	var out []datedEvent
	for _, e := range events {
		if day, ok := e.Day(now.Location()); ok && !day.Before(today) {
			out = append(out, datedEvent{event: e, day: day})
		}
	}
	sortByDay(out)
	return out
}

func sortByDay(events []datedEvent) {
	slices.SortStableFunc(events, func(a, b datedEvent) int {
		return a.day.Compare(b.day)
	})
}

func eventLines(events []datedEvent, withDate bool) []string {
	lines := make([]string, 0, len(events))
	for _, de := range events {
		line := de.event.Title
		if withDate {
			line += " on " + de.day.Format("Mon, Jan 2")
		}
		if de.event.Time != "" {
			line += " at " + de.event.Time
		}
		lines = append(lines, line)
	}
	return lines
}

func (r *Responder) notesList(_ context.Context, t *turn) string {
	if len(t.snap.Notes) == 0 {
		return "You don't have any notes yet. You can create one from the Notes page."
	}
	return fmt.Sprintf("You have %s:\n%s", plural(len(t.snap.Notes), "note", "notes"),
		bulletList(noteTitles(t.snap, t.snap.Notes), r.limit))
}

func noteTitles(snap *domain.Snapshot, notes []domain.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		title := n.Title
		if c := snap.CourseByID(n.CourseID); c != nil {
			title = fmt.Sprintf("%s (%s)", title, cmp.Or(c.Code, c.Title))
		}
		out = append(out, title)
	}
	return out
}

func (r *Responder) sentimentPositive(_ context.Context, _ *turn) string {
	return "That's great to hear! Keep up the momentum. Is there anything I can help you with?"
}

func (r *Responder) sentimentNegative(_ context.Context, t *turn) string {
	return fmt.Sprintf("I'm sorry you're feeling this way, %s. Taking things one step at a time helps. "+
		"I can show you what's due this week so you can plan, and your instructors and student support are there for you too.",
		t.snap.User.FirstName())
}

func (r *Responder) courseGrades(_ context.Context, t *turn) string {
	c := t.intent.Course
	if c == nil {
		return ""
	}
	g := c.Grades
	if !g.HasAny() {
		return fmt.Sprintf("Grades for %s haven't been published yet.", courseLabel(c.Title, c.Code))
	}
	var lines []string
	if g.AssignmentQuiz != nil {
		lines = append(lines, "Assignments & quizzes: "+formatScore(*g.AssignmentQuiz))
	}
	if g.MidSemester != nil {
		lines = append(lines, "Mid-semester: "+formatScore(*g.MidSemester))
	}
	if g.Comprehensive != nil {
		lines = append(lines, "Comprehensive: "+formatScore(*g.Comprehensive))
	}
	if g.Total != nil {
		lines = append(lines, "Total: "+formatScore(*g.Total))
	}
	if c.HasFinalGrade() {
		lines = append(lines, "Final grade: "+*g.FinalGrade)
	}
	return fmt.Sprintf("Your grades for %s:\n%s", courseLabel(c.Title, c.Code), bulletList(lines, len(lines)))
}

func (r *Responder) performance(_ context.Context, t *turn) string {
	var sum float64
	var n int
	for _, c := range t.snap.CoursesByStatus(domain.CourseOngoing) {
		if c.Progress != nil {
			sum += *c.Progress
			n++
		}
	}
	completed := 0
	for _, c := range t.snap.CoursesByStatus(domain.CourseCompleted) {
		if c.HasFinalGrade() {
			completed++
		}
	}
	if n == 0 {
		if completed > 0 {
			return fmt.Sprintf("I don't have progress data for current courses, but you've completed %s with final grades.",
				plural(completed, "course", "courses"))
		}
		return "I don't have enough data yet to summarize your performance."
	}
	avg := roundPercent(sum / float64(n))
	msg := fmt.Sprintf("Your average progress across %s is %d%%. %s",
		plural(n, "ongoing course", "ongoing courses"), avg, bandMessages[PerformanceBand(avg)])
	if completed > 0 {
		msg += fmt.Sprintf(" You've also completed %s with final grades.", plural(completed, "course", "courses"))
	}
	return msg
}

func (r *Responder) enrollment(_ context.Context, t *turn) string {
	if len(t.snap.Courses) == 0 {
		return "You're not enrolled in any courses yet."
	}
	ongoing := t.snap.CoursesByStatus(domain.CourseOngoing)
	completed := t.snap.CoursesByStatus(domain.CourseCompleted)
	upcoming := t.snap.CoursesByStatus(domain.CourseUpcoming)
	msg := fmt.Sprintf("You have %d ongoing, %d completed and %d upcoming %s.",
		len(ongoing), len(completed), len(upcoming), pluralWord(len(t.snap.Courses), "course", "courses"))
	if len(ongoing) > 0 {
		items := make([]string, 0, len(ongoing))
		for _, c := range ongoing {
			items = append(items, courseWithProgress(c))
		}
		msg += "\nCurrently taking:\n" + bulletList(items, r.limit)
	}
	return msg
}

func pluralWord(n int, singular, pluralForm string) string {
	if n == 1 {
		return singular
	}
	return pluralForm
}

func (r *Responder) courseDetail(_ context.Context, t *turn) string {
	c := t.intent.Course
	if c == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(courseLabel(c.Title, c.Code))
	if c.Semester != "" {
		fmt.Fprintf(&b, ", %s", c.Semester)
	}
	fmt.Fprintf(&b, ", status: %s.", c.Status)
	if c.Progress != nil {
		fmt.Fprintf(&b, " Progress: %d%%.", roundPercent(*c.Progress))
	}
	if c.HasFinalGrade() {
		fmt.Fprintf(&b, " Final grade: %s.", *c.Grades.FinalGrade)
	} else if c.Grades.Total != nil {
		fmt.Fprintf(&b, " Current total: %s.", formatScore(*c.Grades.Total))
	}
	if notes := t.snap.NotesForCourse(c.ID); len(notes) > 0 {
		fmt.Fprintf(&b, " You have %s for this course.", plural(len(notes), "note", "notes"))
	}
	var courseEvents []domain.Event
	for _, e := range t.snap.Events {
		if e.CourseID == c.ID {
			courseEvents = append(courseEvents, e)
		}
	}
	if upcoming := upcomingEvents(courseEvents, t.now); len(upcoming) > 0 {
		fmt.Fprintf(&b, "\nComing up:\n%s", bulletList(eventLines(upcoming, true), r.limit))
	}
	return b.String()
}

func (r *Responder) notes(ctx context.Context, t *turn) string {
	if c := t.intent.Course; c != nil {
		notes := t.snap.NotesForCourse(c.ID)
		if len(notes) == 0 {
			return fmt.Sprintf("You don't have any notes for %s yet.", c.Title)
		}
		return fmt.Sprintf("Your notes for %s:\n%s", c.Title, bulletList(noteTitles(t.snap, notes), r.limit))
	}
	return r.notesList(ctx, t)
}

func (r *Responder) announcements(_ context.Context, t *turn) string {
	if len(t.snap.Announcements) == 0 {
		return "There are no announcements right now."
	}
	items := make([]string, 0, len(t.snap.Announcements))
	for _, a := range t.snap.Announcements {
		item := a.Title
		if a.Date != "" {
			item += " (" + a.Date + ")"
		}
		items = append(items, item)
	}
	return fmt.Sprintf("Latest announcements:\n%s", bulletList(items, r.limit))
}

func (r *Responder) navigation(_ context.Context, _ *turn) string {
	return "Use the sidebar to move around the portal:\n" +
		"• Dashboard: overview of courses and deadlines\n" +
		"• Courses: course details and materials\n" +
		"• Calendar: events and deadlines\n" +
		"• Notes: your study notes\n" +
		"• Grades: published marks\n" +
		"• Profile: your personal details"
}

var topicReplies = map[Topic]string{
	TopicDashboard:     "The Dashboard shows your ongoing courses, upcoming deadlines and recent announcements at a glance.",
	TopicProfile:       "Open Profile from the sidebar to view or update your personal details and contact email.",
	TopicFiles:         "The Files page lets you upload and download course documents. Drag a file onto the page or use the Upload button.",
	TopicCalendar:      "The Calendar page lists your events and deadlines. Click a date to see what's scheduled.",
	TopicNotes:         "On the Notes page you can create, edit and organize notes, and link each note to a course.",
	TopicGrades:        "The Grades page shows published marks for each course, including assignments, mid-semester, comprehensive and final grades.",
	TopicAnnouncements: "Announcements from your instructors and the university appear on the Announcements page and on your Dashboard.",
	TopicTechnical:     "For technical problems, try refreshing the page or signing out and back in. If it keeps happening, describe the problem to me and I'll raise a support ticket.",
	TopicHowTo:         "Tell me what you're trying to do, for example \"how do I upload a file\", and I'll walk you through it.",
	TopicAbout:         "I'm the student portal's study assistant. I can look up your courses, grades, deadlines, notes and announcements, and raise support tickets.",
}

func (r *Responder) topic(ctx context.Context, t *turn) string {
	if reply, ok := topicReplies[t.intent.Topic]; ok {
		return reply
	}
	return r.fallback(ctx, t)
}

func (r *Responder) question(_ context.Context, _ *turn) string {
	return "That's a good question, but I'm not sure I understood it. I can answer questions about your courses, grades, deadlines, notes and announcements."
}

func (r *Responder) fallback(_ context.Context, _ *turn) string {
	return "I'm not sure how to help with that. Try asking about your grades, what's due this week, or your notes. Type \"what can you do\" to see everything I can help with."
}
