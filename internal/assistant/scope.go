package assistant

import "regexp"

var (
	// Bare "8/10" or "10/18" reads as a score or a date, so / x - only count
	// when spaced out or asked to be worked out.
	arithmeticPattern = regexp.MustCompile(`\d+(\.\d+)?\s*[+*×÷^]\s*\d+|\d+\s+[-x/]\s+\d+|\b(what is|calculate|compute|solve)\s+\d+(\.\d+)?\s*[-x/=]\s*\d+`)
	triviaPattern     = regexp.MustCompile(`\b(capital (city )?of|president of|prime minister of|who (invented|discovered|painted|wrote|was the first)|population of|tallest|largest (country|ocean|planet)|(windows|macos|linux|ios|android) (version|update|install)|iphone|ipad|playstation|xbox)\b`)
	entertainPattern  = regexp.MustCompile(`\b(movies?|films?|songs?|lyrics|music|singers?|actors?|actress|netflix|tv shows?|video games?|gaming|football|cricket|celebrit(y|ies)|anime)\b`)
)

// IsOutOfScope reports whether message is outside the study-portal domain:
// arithmetic, general trivia, or entertainment. It has no side effects.
func IsOutOfScope(message string) bool {
	msg := normalize(message)
	return arithmeticPattern.MatchString(msg) ||
		triviaPattern.MatchString(msg) ||
		entertainPattern.MatchString(msg)
}
