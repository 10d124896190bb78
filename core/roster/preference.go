package roster

import (
	"strings"
	"time"

	"github.com/kilianp07/crewroster/core/model"
)

// PreferenceScore sums the signed weighted contributions of prefs for the
// flight. Night-off wishes are not scored here.
func PreferenceScore(prefs []model.Preference, f model.Flight) float64 {
	date := flightDate(f)
	weekday := date.Weekday()
	var score float64
	for _, p := range prefs {
		w := float64(p.Weight)
		switch p.Kind {
		case model.PrefDayOff:
			if strings.EqualFold(p.Value, weekday.String()) {
				score -= 10 * w
			}
		case model.PrefBase:
			if p.Value == f.DepIATA {
				score += 2 * w
			}
		case model.PrefDestination:
			if p.Value == f.ArrIATA {
				score += w
			}
		case model.PrefFlightNo:
			if p.Value == f.FlightNo {
				score += 3 * w
			}
		case model.PrefWeekendOff:
			if weekday == time.Saturday || weekday == time.Sunday {
				score -= 5 * w
			}
		}
	}
	return score
}

// crewPreferenceScore scores the preferences of crewID active on the flight date.
func crewPreferenceScore(s model.Snapshot, crewID int64, f model.Flight) float64 {
	return PreferenceScore(s.Preferences.ActiveOn(crewID, flightDate(f)), f)
}
