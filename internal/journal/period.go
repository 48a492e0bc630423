package journal

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned when a period token is neither a supported
// keyword nor a valid ISO calendar date.
var ErrInvalidPeriod = errors.New("unsupported time period")

// PeriodKeywords lists the supported period keywords for user-facing error
// messages.
var PeriodKeywords = []string{"today", "yesterday", "lastweek", "lastmonth", "YYYY-MM-DD"}

// ResolvePeriod maps period arguments to an inclusive [start, end] timestamp
// range covering whole days in local time: start is 00:00:00 of the first day
// and end is 23:59:59 of the last, so a thought logged at 23:59:59 is in
// range and one at 00:00:00 the next day is not.
//
// The first argument is the period token; an empty slice means "today".
// Keywords are case-sensitive; anything else is parsed as an ISO YYYY-MM-DD
// date, and failure to parse yields ErrInvalidPeriod.
func ResolvePeriod(args []string) (start, end string, err error) {
	today := now()

	key := "today"
	if len(args) > 0 {
		key = args[0]
	}

	var startDay, endDay time.Time
	switch key {
	case "today":
		startDay, endDay = today, today
	case "yesterday":
		startDay = today.AddDate(0, 0, -1)
		endDay = startDay
	case "lastweek", "last_week":
		startDay = today.AddDate(0, 0, -6)
		endDay = today
	case "lastmonth", "last_month":
		startDay = today.AddDate(0, 0, -29)
		endDay = today
	default:
		parsed, perr := time.Parse("2006-01-02", key)
		if perr != nil {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPeriod, key)
		}
		startDay, endDay = parsed, parsed
	}

	startTime := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, time.Local)
	endTime := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 23, 59, 59, 0, time.Local)

	return startTime.Format(TimestampFormat), endTime.Format(TimestampFormat), nil
}
