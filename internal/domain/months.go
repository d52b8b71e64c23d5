package domain

import "strings"

// Months are the canonical month labels used by field maps and summaries.
// They follow the labels printed on Form 1095-C, not time.Month.String().
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "June", "July", "Aug", "Sept", "Oct", "Nov", "Dec"}

var monthAliases = map[string]string{
	"Jan": "Jan", "January": "Jan",
	"Feb": "Feb", "February": "Feb",
	"Mar": "Mar", "March": "Mar",
	"Apr": "Apr", "April": "Apr",
	"May": "May",
	"Jun": "June", "June": "June",
	"Jul": "July", "July": "July",
	"Aug": "Aug", "August": "Aug",
	"Sep": "Sept", "Sept": "Sept", "September": "Sept",
	"Oct": "Oct", "October": "Oct",
	"Nov": "Nov", "November": "Nov",
	"Dec": "Dec", "December": "Dec",
}

// CanonicalMonth maps a month label through the alias table. Unknown labels
// are returned trimmed but otherwise unchanged.
func CanonicalMonth(label string) string {
	label = strings.TrimSpace(label)
	if c, ok := monthAliases[label]; ok {
		return c
	}
	return label
}

// LookupMonth returns the zero-based index of a month label and whether the
// label was recognized.
func LookupMonth(label string) (int, bool) {
	c := CanonicalMonth(label)
	for i, m := range Months {
		if m == c {
			return i, true
		}
	}
	return 0, false
}

// MonthIndex is LookupMonth without the flag: unrecognized labels land in
// the first month's bucket.
func MonthIndex(label string) int {
	i, _ := LookupMonth(label)
	return i
}
