package domain

// CourseStatus is the enrollment state of a course.
type CourseStatus string

const (
	CourseOngoing   CourseStatus = "ongoing"
	CourseCompleted CourseStatus = "completed"
	CourseUpcoming  CourseStatus = "upcoming"
)

// Grades holds the grade components of a course. Every field stays nil until
// the registrar publishes it.
type Grades struct {
	AssignmentQuiz *float64 `json:"assignmentQuiz" yaml:"assignmentQuiz"`
	MidSemester    *float64 `json:"midSemester" yaml:"midSemester"`
	Comprehensive  *float64 `json:"comprehensive" yaml:"comprehensive"`
	Total          *float64 `json:"total" yaml:"total"`
	FinalGrade     *string  `json:"finalGrade" yaml:"finalGrade"`
}

// HasAny reports whether at least one component has been published.
func (g Grades) HasAny() bool {
	return g.AssignmentQuiz != nil || g.MidSemester != nil || g.Comprehensive != nil ||
		g.Total != nil || g.FinalGrade != nil
}

// Course is a single course entity from the portal.
type Course struct {
	ID       string       `json:"id" yaml:"id"`
	Title    string       `json:"title" yaml:"title"`
	Code     string       `json:"code" yaml:"code"`
	Semester string       `json:"semester" yaml:"semester"`
	Status   CourseStatus `json:"status" yaml:"status"`
	Progress *float64     `json:"progress,omitempty" yaml:"progress"`
	Grades   Grades       `json:"grades" yaml:"grades"`
}

// HasFinalGrade returns true if a final letter grade is recorded.
func (c *Course) HasFinalGrade() bool {
	return c.Grades.FinalGrade != nil && *c.Grades.FinalGrade != ""
}
