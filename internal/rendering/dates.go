package rendering

import (
	"regexp"
	"strconv"
	"time"
)

var yearMonthPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// PresentLabel is shown in place of an empty end date.
const PresentLabel = "Present"

// FormatDate turns "2021-03" into "March 2021". A bare year is kept, an empty string
// becomes PresentLabel and anything else is returned unchanged. Out-of-range months roll
// over into the adjacent year.
func FormatDate(s string) string {
	if s == "" {
		return PresentLabel
	}
	if m := yearMonthPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	}
	return s
}

// DateRange formats a start/end pair as "March 2021 - Present".
func DateRange(start, end string) string {
	return FormatDate(start) + " - " + FormatDate(end)
}
