package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock time of day with minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses "HH:MM". Anything malformed yields fallback.
func ParseClock(s string, fallback ClockTime) ClockTime {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return fallback
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return fallback
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return fallback
	}
	return ClockTime{Hour: h, Minute: m}
}

// On returns the instant of c on t's calendar date in t's location.
func (c ClockTime) On(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, c.Hour, c.Minute, 0, 0, t.Location())
}

// After reports whether c is later in the day than o.
func (c ClockTime) After(o ClockTime) bool {
	return c.Hour*60+c.Minute > o.Hour*60+o.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
