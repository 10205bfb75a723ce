package ticket

import (
	"regexp"
	"strings"

	"github.com/ashureev/campus-assistant/internal/domain"
)

var (
	gradeTerms     = regexp.MustCompile(`\b(grades?|marks?|scores?|gpa|results?|transcript|exams?|midterm|mid-semester|final grade|assessment|quiz(zes)?)\b`)
	contentTerms   = regexp.MustCompile(`\b(materials?|lectures?|slides?|content|notes?|videos?|readings?|syllabus|modules?|assignments? (brief|description)|announcements?)\b`)
	technicalTerms = regexp.MustCompile(`\b(log ?in|password|errors?|bugs?|crash(es|ed|ing)?|pages?|uploads?|loading|website|app|portal|broken|not working|sign in)\b`)
)

// InferCategory buckets free text into a ticket category. Grade terms win over
// content terms, which win over technical terms.
func InferCategory(text string) domain.TicketCategory {
	text = strings.ToLower(text)
	switch {
	case gradeTerms.MatchString(text):
		return domain.CategoryGrades
	case contentTerms.MatchString(text):
		return domain.CategoryContent
	case technicalTerms.MatchString(text):
		return domain.CategoryTechnical
	default:
		return domain.CategoryGeneral
	}
}

var subjectPrefixes = map[domain.TicketCategory]string{
	domain.CategoryGrades:    "Grade issue",
	domain.CategoryContent:   "Course content issue",
	domain.CategoryTechnical: "Technical issue",
	domain.CategoryGeneral:   "Support request",
}

func subjectFor(category domain.TicketCategory, course *domain.Course) string {
	prefix := subjectPrefixes[category]
	if course == nil {
		return prefix + " reported via assistant"
	}
	return prefix + ": " + course.Title
}
