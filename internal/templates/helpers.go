package templates

import (
	"strconv"
	"time"
)

// itoa converts an int64 to a string, used for building URL paths.
func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return "·"
}

func date(t time.Time) string {
	return t.Format("Jan 02, 2006 15:04")
}
