package rules

import "time"

const (
	nightStartHour = 22
	nightEndHour   = 6
)

// IsNightDuty reports whether the duty touches the 22:00-06:00 window. Hours
// are read in the location of the timestamps.
func (e *Engine) IsNightDuty(start, end time.Time) bool {
	return IsNightDuty(start, end)
}

// IsNightDuty is the configuration independent night classification.
func IsNightDuty(start, end time.Time) bool {
	if inNight(start) || inNight(end) {
		return true
	}
	if !end.After(start) {
		return false
	}
	loc := start.Location()
	end = end.In(loc)
	y, m, d := start.Date()
	for day := time.Date(y, m, d-1, 0, 0, 0, 0, loc); !day.After(end); day = day.AddDate(0, 0, 1) {
		wStart := day.Add(nightStartHour * time.Hour)
		wEnd := day.AddDate(0, 0, 1).Add(nightEndHour * time.Hour)
		if start.Before(wEnd) && end.After(wStart) {
			return true
		}
	}
	return false
}

func inNight(t time.Time) bool {
	h := t.Hour()
	return h >= nightStartHour || h < nightEndHour
}
