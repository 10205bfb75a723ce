package assistant

import (
	"log/slog"
	"regexp"
	"strings"
)

// Predicate decides whether a rule applies to an input.
type Predicate func(in Input) bool

// Rule is one entry of the cascade. Key identifies the predicate; two rules
// with the same key test the same condition.
type Rule struct {
	Key   string
	Kind  Kind
	Topic Topic
	Match Predicate
}

// Cascade is an ordered list of rules. The first matching rule wins and later
// rules are never consulted.
type Cascade struct {
	rules    []Rule
	shadowed []string
}

// NewCascade builds a cascade from rules, dropping any rule whose key repeats
// an earlier one since it could never fire.
func NewCascade(rules []Rule) *Cascade {
	c := &Cascade{rules: make([]Rule, 0, len(rules))}
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if _, dup := seen[r.Key]; dup {
			slog.Debug("dropping shadowed cascade rule", "key", r.Key, "kind", r.Kind)
			c.shadowed = append(c.shadowed, r.Key)
			continue
		}
		seen[r.Key] = struct{}{}
		c.rules = append(c.rules, r)
	}
	return c
}

// Rules returns a copy of the rules in evaluation order.
func (c *Cascade) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Shadowed lists the keys dropped at construction.
func (c *Cascade) Shadowed() []string {
	return c.shadowed
}

// Classify returns the intent of the first rule matching in. A cascade without
// a catch-all falls back to KindFallback.
func (c *Cascade) Classify(in Input) Intent {
	for _, r := range c.rules {
		if r.Match(in) {
			return Intent{Kind: r.Kind, Rule: r.Key, Topic: r.Topic, Course: in.Course, Text: in.Raw}
		}
	}
	return Intent{Kind: KindFallback, Rule: "fallback", Course: in.Course, Text: in.Raw}
}

var (
	greetingRe     = regexp.MustCompile(`^(hi|hello|hey|hiya|howdy|greetings|good (morning|afternoon|evening))\b`)
	gratitudeRe    = regexp.MustCompile(`\b(thanks?|thank you|thx|cheers|appreciate (it|that|your help))\b`)
	wellBeingRe    = regexp.MustCompile(`\b(how are you|how's it going|how are things|how have you been|what's up|how do you do)\b`)
	capabilityRe   = regexp.MustCompile(`\b(what can you do|what do you do|how can you help|what can you help|what are you able to|your (features|capabilities)|what can i ask)\b`)
	gradeSummaryRe = regexp.MustCompile(`\b(my grades|all (of )?my grades|grade summary|final grades|my results|c?gpa|transcript|report card)\b`)
	courseListRe   = regexp.MustCompile(`\b(my courses|what courses|which courses|list (of )?(my )?courses|courses am i (taking|enrolled)|enrolled courses)\b`)
	deadlineRe     = regexp.MustCompile(`\b(due|deadlines?|submissions?|what's next|upcoming assignments?)\b`)
	notesListRe    = regexp.MustCompile(`\b(my notes|all (of )?my notes|list (my )?notes|show (me )?(my )?notes|how many notes)\b`)
	positiveRe     = regexp.MustCompile(`\b(awesome|great|cool|nice|amazing|love (it|this)|i'm (happy|glad|excited)|good job|well done)\b`)
	negativeRe     = regexp.MustCompile(`\b(sad|stressed|tired|worried|anxious|frustrated|overwhelmed|depressed|upset|struggling|failing)\b`)
	issueRe        = regexp.MustCompile(`\b(wrong|incorrect|missing|not (showing|updated|validated|correct|visible|appearing|loading|working)|(hasn't|haven't|has not|have not) been (updated|validated|graded|added)|isn't (showing|updated|correct)|error|mistake|bug|broken|report (a|an) (issue|problem)|issue with|problem with|doesn't match)\b`)
	gradeWordRe    = regexp.MustCompile(`\b(grades?|marks?|scores?|results?|gpa|midterm|mid-semester|final)\b`)
	performanceRe  = regexp.MustCompile(`\b(how am i doing|performance|progress|am i on track|overall)\b`)
	scheduleRe     = regexp.MustCompile(`\b(today|tonight|this week|next week|week|schedule|timetable|events?)\b`)
	enrollmentRe   = regexp.MustCompile(`\b(courses?|enrolled|enrollment|semester|classes)\b`)
	notesRe        = regexp.MustCompile(`\bnotes?\b`)
	announceRe     = regexp.MustCompile(`\b(announcements?|news|notices?|updates?)\b`)
	navigationRe   = regexp.MustCompile(`\b(where (is|are|can i find|do i find)|navigate|navigation|go to|take me to|find the)\b`)
)

var topicPatterns = []struct {
	topic Topic
	re    *regexp.Regexp
}{
	{TopicDashboard, regexp.MustCompile(`\b(dashboard|home ?page|overview)\b`)},
	{TopicProfile, regexp.MustCompile(`\b(profile|account|my details|personal info)\b`)},
	{TopicFiles, regexp.MustCompile(`\b(files?|uploads?|documents?|attachments?)\b`)},
	{TopicCalendar, regexp.MustCompile(`\b(calendar|dates?)\b`)},
	{TopicNotes, regexp.MustCompile(`\b(notebook|note-taking|jot)\b`)},
	{TopicGrades, regexp.MustCompile(`\b(grading|gradebook|grade)\b`)},
	{TopicAnnouncements, regexp.MustCompile(`\b(bulletin|notice ?board)\b`)},
	{TopicTechnical, regexp.MustCompile(`\b(log ?in|password|sign in|can't access|cannot access|crash(es|ed|ing)?|slow|loading|technical|browser|reset)\b`)},
	{TopicHowTo, regexp.MustCompile(`\b(how (do|can|should) i|how to|steps to|guide)\b`)},
	{TopicAbout, regexp.MustCompile(`\b(who are you|what are you|about (you|this (app|portal|assistant))|your name)\b`)},
}

func matches(re *regexp.Regexp) Predicate {
	return func(in Input) bool { return re.MatchString(in.Text) }
}

func isIssue(in Input) bool {
	return issueRe.MatchString(in.Text)
}

// general matches re only for messages that name no course and report no issue.
func general(re *regexp.Regexp) Predicate {
	return func(in Input) bool {
		return in.Course == nil && !isIssue(in) && re.MatchString(in.Text)
	}
}

func unlessIssue(re *regexp.Regexp) Predicate {
	return func(in Input) bool { return !isIssue(in) && re.MatchString(in.Text) }
}

func withCourse(p Predicate) Predicate {
	return func(in Input) bool { return in.Course != nil && p(in) }
}

// DefaultRules returns the assistant's rule table in priority order.
func DefaultRules() []Rule {
	rules := []Rule{
		{Key: "greeting", Kind: KindGreeting, Match: matches(greetingRe)},
		{Key: "gratitude", Kind: KindGratitude, Match: matches(gratitudeRe)},
		{Key: "well_being", Kind: KindWellBeing, Match: matches(wellBeingRe)},
		{Key: "capabilities", Kind: KindCapabilities, Match: matches(capabilityRe)},
		{Key: "grade_summary", Kind: KindGradeSummary, Match: general(gradeSummaryRe)},
		{Key: "course_list", Kind: KindCourseList, Match: general(courseListRe)},
		{Key: "deadlines", Kind: KindDeadlines, Match: unlessIssue(deadlineRe)},
		{Key: "notes_list", Kind: KindNotesList, Match: general(notesListRe)},
		{Key: "sentiment_positive", Kind: KindSentimentPositive, Match: unlessIssue(positiveRe)},
		{Key: "sentiment_negative", Kind: KindSentimentNegative, Match: unlessIssue(negativeRe)},
		{Key: "support_issue_course", Kind: KindSupportIssueCourse, Match: withCourse(isIssue)},
		{Key: "support_issue", Kind: KindSupportIssue, Match: isIssue},
		{Key: "course_grades", Kind: KindCourseGrades, Match: withCourse(matches(gradeWordRe))},
		{Key: "performance", Kind: KindPerformance, Match: matches(performanceRe)},
		{Key: "schedule", Kind: KindSchedule, Match: matches(scheduleRe)},
		{Key: "enrollment", Kind: KindEnrollment, Match: matches(enrollmentRe)},
		{Key: "course_detail", Kind: KindCourseDetail, Match: func(in Input) bool { return in.Course != nil }},
		{Key: "notes", Kind: KindNotes, Match: matches(notesRe)},
		{Key: "announcements", Kind: KindAnnouncements, Match: matches(announceRe)},
		{Key: "navigation", Kind: KindNavigation, Match: matches(navigationRe)},
	}
	for _, tp := range topicPatterns {
		rules = append(rules, Rule{
			Key:   "topic:" + string(tp.topic),
			Kind:  KindTopic,
			Topic: tp.topic,
			Match: matches(tp.re),
		})
	}
	return append(rules,
		Rule{Key: "question", Kind: KindQuestion, Match: func(in Input) bool { return strings.HasSuffix(in.Text, "?") }},
		Rule{Key: "fallback", Kind: KindFallback, Match: func(Input) bool { return true }},
	)
}

// DefaultCascade builds the cascade from DefaultRules.
func DefaultCascade() *Cascade {
	return NewCascade(DefaultRules())
}
