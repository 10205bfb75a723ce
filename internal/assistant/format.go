package assistant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultDisplayLimit caps how many items a reply lists before summarizing the rest.
const DefaultDisplayLimit = 5

// bulletList renders items as bullets, truncated to limit with a remainder line.
func bulletList(items []string, limit int) string {
	if limit <= 0 {
		limit = DefaultDisplayLimit
	}
	var b strings.Builder
	shown := items
	if len(items) > limit {
		shown = items[:limit]
	}
	for i, item := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(item)
	}
	if more := len(items) - len(shown); more > 0 {
		fmt.Fprintf(&b, "\n…and %d more", more)
	}
	return b.String()
}

func plural(n int, singular, pluralForm string) string {
	if n == 1 {
		return "1 " + singular
	}
	return strconv.Itoa(n) + " " + pluralForm
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func courseLabel(title, code string) string {
	if code == "" {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, code)
}

// Band is a qualitative performance tier for an average progress value.
type Band string

const (
	BandExcellent     Band = "excellent"
	BandGood          Band = "good"
	BandProgressing   Band = "making progress"
	BandEncouragement Band = "encouragement"
)

// PerformanceBand maps a rounded average progress to its band.
func PerformanceBand(avg int) Band {
	switch {
	case avg >= 80:
		return BandExcellent
	case avg >= 65:
		return BandGood
	case avg >= 50:
		return BandProgressing
	default:
		return BandEncouragement
	}
}

var bandMessages = map[Band]string{
	BandExcellent:     "You're doing excellent work! Keep it up.",
	BandGood:          "You're doing good work. A little more push and you'll be at the top.",
	BandProgressing:   "You're making progress. Stay consistent and keep going.",
	BandEncouragement: "Every step counts. Consider reaching out to your instructors for extra support; you've got this.",
}

func roundPercent(v float64) int {
	return int(math.Round(v))
}
