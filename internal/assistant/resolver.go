package assistant

import (
	"strings"
	"unicode/utf8"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// minTitleWordLen is the length a title word must exceed to match on its own.
const minTitleWordLen = 4

// FindCourse returns the first course, in snapshot order, that the message refers to.
//
// A course matches when the message contains its full title or code, or any
// title word longer than four characters. Ties go to the earlier course; no
// attempt is made to pick the most specific one.
func FindCourse(message string, courses []domain.Course) *domain.Course {
	msg := normalize(message)
	if msg == "" {
		return nil
	}
	for i := range courses {
		c := &courses[i]
		title := strings.ToLower(strings.TrimSpace(c.Title))
		code := strings.ToLower(strings.TrimSpace(c.Code))

		if title != "" && strings.Contains(msg, title) {
			return c
		}
		if code != "" && strings.Contains(msg, code) {
			return c
		}
		for _, word := range strings.Fields(title) {
			if utf8.RuneCountInString(word) > minTitleWordLen && strings.Contains(msg, word) {
				return c
			}
		}
	}
	return nil
}

// normalize lowercases and trims a message and folds typographic apostrophes.
func normalize(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))
	return strings.NewReplacer("’", "'", "‘", "'").Replace(msg)
}
