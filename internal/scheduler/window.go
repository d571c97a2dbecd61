package scheduler

import (
	"time"

	"ZeroDTEScanner/internal/config"

	"github.com/phuslu/log"
	"github.com/scmhub/calendar"
)

// Window is the daily span, on trading days only, during which scans run.
type Window struct {
	Open     config.ClockTime
	Close    config.ClockTime
	Location *time.Location
	// Calendar rejects exchange holidays. Nil means every weekday trades.
	Calendar *calendar.Calendar
}

// LoadCalendar returns the exchange calendar for a MIC such as "xnys".
// An empty name or "none" disables holiday checks; an unknown MIC falls back
// to a plain weekday check with a warning.
func LoadCalendar(mic string) *calendar.Calendar {
	if mic == "" || mic == "none" {
		return nil
	}
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		log.Warn().Str("calendar", mic).Msg("unknown exchange calendar, using Mon-Fri")
	}
	return cal
}

// TradingDay reports whether t falls on a day the market trades.
func (w Window) TradingDay(t time.Time) bool {
	if w.Calendar != nil {
		if w.Calendar.Loc != nil {
			t = t.In(w.Calendar.Loc)
		}
		return w.Calendar.IsBusinessDay(t)
	}
	if w.Location != nil {
		t = t.In(w.Location)
	}
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Contains reports whether t lies inside the window. Both ends are
// inclusive at second precision, so 13:00:00 is in and 13:00:01 is out.
func (w Window) Contains(t time.Time) bool {
	if w.Location != nil {
		t = t.In(w.Location)
	}
	if !w.TradingDay(t) {
		return false
	}
	t = t.Truncate(time.Second)
	return !t.Before(w.Open.On(t)) && !t.After(w.Close.On(t))
}
