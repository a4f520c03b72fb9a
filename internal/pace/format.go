// Package pace converts between canonical training units (seconds per
// kilometer, seconds, meters) and display strings, and derives intensity
// zones from threshold values.
package pace

import (
	"fmt"
	"strconv"
	"strings"
)

// SecPerKmToDisplay renders a pace as "M:SS". Minutes are unpadded.
func SecPerKmToDisplay(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// PaceParse is the result of reading an "M:SS" pace string. Malformed input
// yields Seconds == 0 with Parsed == false; it is never an error.
type PaceParse struct {
	Seconds int
	Parsed  bool
}

// ParseSecPerKm reads an "M:SS" string into seconds per kilometer.
func ParseSecPerKm(display string) PaceParse {
	parts := strings.Split(display, ":")
	if len(parts) != 2 {
		return PaceParse{}
	}
	mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return PaceParse{}
	}
	secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return PaceParse{}
	}
	return PaceParse{Seconds: mins*60 + secs, Parsed: true}
}

// DisplayToSecPerKm is ParseSecPerKm without the parse flag: malformed input
// reads as 0.
func DisplayToSecPerKm(display string) int {
	return ParseSecPerKm(display).Seconds
}

// SecondsToDisplay renders a duration as "45s", "10min" or "10min 30s".
func SecondsToDisplay(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	mins, rem := sec/60, sec%60
	if rem == 0 {
		return fmt.Sprintf("%dmin", mins)
	}
	return fmt.Sprintf("%dmin %ds", mins, rem)
}

// MetersToDisplay renders a distance as "800m" or "1.5km". Kilometers are
// rounded to one decimal from their float64 value, so 1150m (1.1499...)
// shows as "1.1km"; exact ties such as 1250m round up.
func MetersToDisplay(m int) string {
	if m < 1000 {
		return fmt.Sprintf("%dm", m)
	}
	if m%500 == 250 {
		// 1.25, 1.75...: representable exactly, where %.1f would round to even.
		return fmt.Sprintf("%.1fkm", float64(m+50)/1000)
	}
	return fmt.Sprintf("%.1fkm", float64(m)/1000)
}
