package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// classCodeRe matches a class code: two digits, two letters, four digits
// (e.g. 25TH0101). Matched against the upper-cased question so lower-cased
// input still hits.
var classCodeRe = regexp.MustCompile(`\d{2}[A-Z]{2}\d{4}`)

// weekRe matches a week marker and its number. "tuần" and its unaccented
// spelling "tuan" are both accepted.
var weekRe = regexp.MustCompile(`(?i)(?:tuần|tuan)\s*(\d+)`)

// ClassCode returns the first class code found in question, or ok=false.
func ClassCode(question string) (string, bool) {
	code := classCodeRe.FindString(strings.ToUpper(question))
	return code, code != ""
}

// WeekNumber returns the first week number found in question, or ok=false.
// Zero is not a valid week.
func WeekNumber(question string) (int, bool) {
	m := weekRe.FindStringSubmatch(question)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
