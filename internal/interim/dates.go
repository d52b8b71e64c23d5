package interim

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Serial numbers outside [1930-01-01, 9999-12-31] are not dates. The lower
// bound keeps bare years and small counts typed into date cells from being
// read as early-1900s serials.
const (
	minExcelSerial = 10959
	maxExcelSerial = 2958465
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"2006/01/02",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 PM",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// ParseDate reads a date cell. Spreadsheet serial numbers and the common
// text layouts are accepted; the time of day is dropped.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
