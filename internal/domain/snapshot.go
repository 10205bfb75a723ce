package domain

import "time"

// EventDateLayout is the calendar date layout used by events and announcements.
const EventDateLayout = "2006-01-02"

// Event is a calendar entry (deadline, exam, class).
type Event struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Date     string `json:"date" yaml:"date"`
	Time     string `json:"time,omitempty" yaml:"time"`
	Type     string `json:"type,omitempty" yaml:"type"`
	CourseID string `json:"courseId,omitempty" yaml:"courseId"`
}

// Day parses the event date in loc. ok is false for malformed dates.
func (e Event) Day(loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(EventDateLayout, e.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Note is a study note, optionally attached to a course.
type Note struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Content   string `json:"content,omitempty" yaml:"content"`
	CourseID  string `json:"courseId,omitempty" yaml:"courseId"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt"`
}

// Announcement is a portal-wide or course notice.
type Announcement struct {
	ID       string `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Content  string `json:"content,omitempty" yaml:"content"`
	Date     string `json:"date,omitempty" yaml:"date"`
	Priority string `json:"priority,omitempty" yaml:"priority"`
}

// Snapshot is the read-only domain data available to one conversation session.
// Nil collections behave as empty ones.
type Snapshot struct {
	Courses       []Course       `json:"courses" yaml:"courses"`
	Events        []Event        `json:"events" yaml:"events"`
	Notes         []Note         `json:"notes" yaml:"notes"`
	Announcements []Announcement `json:"announcements" yaml:"announcements"`
	User          UserProfile    `json:"userProfile" yaml:"userProfile"`
}

// CoursesByStatus returns the courses in snapshot order with the given status.
func (s *Snapshot) CoursesByStatus(status CourseStatus) []*Course {
	var out []*Course
	for i := range s.Courses {
		if s.Courses[i].Status == status {
			out = append(out, &s.Courses[i])
		}
	}
	return out
}

// CourseByID looks up a course by id.
func (s *Snapshot) CourseByID(id string) *Course {
	if id == "" {
		return nil
	}
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return &s.Courses[i]
		}
	}
	return nil
}

// NotesForCourse returns the notes attached to courseID.
func (s *Snapshot) NotesForCourse(courseID string) []Note {
	var out []Note
	for _, n := range s.Notes {
		if n.CourseID == courseID {
			out = append(out, n)
		}
	}
	return out
}
