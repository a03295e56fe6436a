// Package classify maps questions to retrieval categories and extracts
// structured identifiers (class code, week number) from free text.
package classify

import "strings"

// Category is the closed classification of a question. It controls which
// evidence sources the retrieval layer consults.
type Category string

const (
	CategoryRegulation Category = "REGULATION"
	CategoryTuition    Category = "TUITION"
	CategorySchedule   Category = "SCHEDULE"
	CategoryGeneral    Category = "GENERAL"
)

// ParseCategory normalizes a raw token (trim, upper-case) and maps it to a
// Category. Anything unrecognized falls back to GENERAL.
func ParseCategory(raw string) Category {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryRegulation:
		return CategoryRegulation
	case CategoryTuition:
		return CategoryTuition
	case CategorySchedule:
		return CategorySchedule
	case CategoryGeneral:
		return CategoryGeneral
	default:
		return CategoryGeneral
	}
}
