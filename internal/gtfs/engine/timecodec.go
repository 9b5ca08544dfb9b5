package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTime converts a GTFS time-of-day string ("HH:MM" or "HH:MM:SS") to
// seconds since local midnight. Hours may exceed 23 for overnight service, so
// "26:15:00" parses to 94500. Malformed input returns ok=false rather than an
// error; bad times are a row-level data-quality issue, not a feed failure.
func ParseTime(text string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) == 2 {
		parts = append(parts, "00")
	}
	if len(parts) != 3 {
		return 0, false
	}

	var hms [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return 0, false
		}
		hms[i] = v
	}

	return hms[0]*3600 + hms[1]*60 + hms[2], true
}

// FormatHHMM renders a second count as a zero-padded "HH:MM" string, floored
// to whole minutes. Hours are not wrapped at 24: a 30-hour duration renders
// as "30:00". Negative input returns ok=false.
func FormatHHMM(seconds int) (string, bool) {
	if seconds < 0 {
		return "", false
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	return fmt.Sprintf("%02d:%02d", h, m), true
}
