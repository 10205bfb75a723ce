// Package assistant implements the study assistant's intent pipeline: scope
// checks, course resolution, the ordered rule cascade and reply generation.
package assistant

import "github.com/ashureev/campus-assistant/internal/domain"

// Kind is an intent category.
type Kind string

const (
	KindOutOfScope         Kind = "out_of_scope"
	KindGreeting           Kind = "greeting"
	KindGratitude          Kind = "gratitude"
	KindWellBeing          Kind = "well_being"
	KindCapabilities       Kind = "capabilities"
	KindGradeSummary       Kind = "grade_summary"
	KindCourseList         Kind = "course_list"
	KindDeadlines          Kind = "deadlines"
	KindNotesList          Kind = "notes_list"
	KindSentimentPositive  Kind = "sentiment_positive"
	KindSentimentNegative  Kind = "sentiment_negative"
	KindSupportIssueCourse Kind = "support_issue_course"
	KindSupportIssue       Kind = "support_issue"
	KindCourseGrades       Kind = "course_grades"
	KindPerformance        Kind = "performance"
	KindSchedule           Kind = "schedule"
	KindEnrollment         Kind = "enrollment"
	KindCourseDetail       Kind = "course_detail"
	KindNotes              Kind = "notes"
	KindAnnouncements      Kind = "announcements"
	KindNavigation         Kind = "navigation"
	KindTopic              Kind = "topic"
	KindQuestion           Kind = "question"
	KindFallback           Kind = "fallback"
)

// Topic names a portal page the assistant can explain.
type Topic string

const (
	TopicDashboard     Topic = "dashboard"
	TopicProfile       Topic = "profile"
	TopicFiles         Topic = "files"
	TopicCalendar      Topic = "calendar"
	TopicNotes         Topic = "notes"
	TopicGrades        Topic = "grades"
	TopicAnnouncements Topic = "announcements"
	TopicTechnical     Topic = "technical"
	TopicHowTo         Topic = "how_to"
	TopicAbout         Topic = "about"
)

// Input is a message prepared for classification.
type Input struct {
	// Text is the lowercased, trimmed message.
	Text string
	// Raw is the message as the student typed it.
	Raw string
	// Course is the course the message refers to, if any.
	Course *domain.Course
}

// NewInput normalizes raw and resolves its course against courses.
func NewInput(raw string, courses []domain.Course) Input {
	return Input{
		Text:   normalize(raw),
		Raw:    raw,
		Course: FindCourse(raw, courses),
	}
}

// Intent is the classifier's verdict for one message. It carries no side effects;
// a SupportIssue intent is acted upon by the Responder.
type Intent struct {
	Kind   Kind
	Rule   string
	Topic  Topic
	Course *domain.Course
	Text   string
}

// IsSupportIssue reports whether acting on the intent files a ticket.
func (i Intent) IsSupportIssue() bool {
	return i.Kind == KindSupportIssue || i.Kind == KindSupportIssueCourse
}
