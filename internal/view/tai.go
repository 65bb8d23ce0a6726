package view

import (
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is how TAI timestamps are displayed once converted to UTC.
const TimestampLayout = "2006-01-02 15:04:05.000000000 UTC"

// leapSeconds lists the TAI-UTC offset in effect from each UTC instant.
var leapSeconds = []struct {
	from   int64 // unix seconds (UTC)
	offset int64
}{
	{63072000, 10},   // 1972-01-01
	{78796800, 11},   // 1972-07-01
	{94694400, 12},   // 1973-01-01
	{126230400, 13},  // 1974-01-01
	{157766400, 14},  // 1975-01-01
	{189302400, 15},  // 1976-01-01
	{220924800, 16},  // 1977-01-01
	{252460800, 17},  // 1978-01-01
	{283996800, 18},  // 1979-01-01
	{315532800, 19},  // 1980-01-01
	{362793600, 20},  // 1981-07-01
	{394329600, 21},  // 1982-07-01
	{425865600, 22},  // 1983-07-01
	{489024000, 23},  // 1985-07-01
	{567993600, 24},  // 1988-01-01
	{631152000, 25},  // 1990-01-01
	{662688000, 26},  // 1991-01-01
	{709948800, 27},  // 1992-07-01
	{741484800, 28},  // 1993-07-01
	{773020800, 29},  // 1994-07-01
	{820454400, 30},  // 1996-01-01
	{867715200, 31},  // 1997-07-01
	{915148800, 32},  // 1999-01-01
	{1136073600, 33}, // 2006-01-01
	{1230768000, 34}, // 2009-01-01
	{1341100800, 35}, // 2012-07-01
	{1435708800, 36}, // 2015-07-01
	{1483228800, 37}, // 2017-01-01
}

// ParseTAI parses a "seconds:nanoseconds" TAI timestamp and converts it to
// UTC using the leap second table.
func ParseTAI(s string) (time.Time, bool) {
	secStr, nsStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return time.Time{}, false
	}
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil || sec < 0 {
		return time.Time{}, false
	}
	ns, err := strconv.ParseInt(nsStr, 10, 64)
	if err != nil || ns < 0 || ns >= int64(time.Second) {
		return time.Time{}, false
	}
	utc := sec
	for i := len(leapSeconds) - 1; i >= 0; i-- {
		if sec-leapSeconds[i].offset >= leapSeconds[i].from {
			utc = sec - leapSeconds[i].offset
			break
		}
	}
	return time.Unix(utc, ns).UTC(), true
}

// FormatTAI renders a TAI timestamp for display, or returns the input
// unchanged when it is malformed.
func FormatTAI(s string) string {
	t, ok := ParseTAI(s)
	if !ok {
		return s
	}
	return t.Format(TimestampLayout)
}
