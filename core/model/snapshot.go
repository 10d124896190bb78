package model

import "time"

// QualificationIndex maps crew → aircraft code → qualification.
type QualificationIndex map[int64]map[string]Qualification

// NewQualificationIndex indexes qualifications. When a crew member holds
// several records for the same aircraft type the longest lived one wins.
func NewQualificationIndex(quals []Qualification) QualificationIndex {
	ix := make(QualificationIndex)
	for _, q := range quals {
		byType, ok := ix[q.CrewID]
		if !ok {
			byType = make(map[string]Qualification)
			ix[q.CrewID] = byType
		}
		if cur, ok := byType[q.AircraftCode]; ok && outlives(cur, q) {
			continue
		}
		byType[q.AircraftCode] = q
	}
	return ix
}

func outlives(a, b Qualification) bool {
	if a.ExpiresOn == nil {
		return true
	}
	if b.ExpiresOn == nil {
		return false
	}
	return !a.ExpiresOn.Before(*b.ExpiresOn)
}

// Lookup returns the qualification record for the pair, if any.
func (ix QualificationIndex) Lookup(crewID int64, aircraft string) (Qualification, bool) {
	q, ok := ix[crewID][aircraft]
	return q, ok
}

// QualifiedOn reports whether the crew member holds a non-expired
// qualification for aircraft on date.
func (ix QualificationIndex) QualifiedOn(crewID int64, aircraft string, date time.Time) bool {
	q, ok := ix.Lookup(crewID, aircraft)
	return ok && q.ValidOn(date)
}

// PreferenceIndex groups preferences by crew member.
type PreferenceIndex map[int64][]Preference

// NewPreferenceIndex indexes preferences in input order.
func NewPreferenceIndex(prefs []Preference) PreferenceIndex {
	ix := make(PreferenceIndex)
	for _, p := range prefs {
		ix[p.CrewID] = append(ix[p.CrewID], p)
	}
	return ix
}

// ActiveOn returns the preferences of crewID whose validity covers date.
func (ix PreferenceIndex) ActiveOn(crewID int64, date time.Time) []Preference {
	var out []Preference
	for _, p := range ix[crewID] {
		if p.ActiveOn(date) {
			out = append(out, p)
		}
	}
	return out
}

// AvailabilityIndex keeps only the approved blocks of each crew member.
type AvailabilityIndex map[int64][]Availability

// NewAvailabilityIndex drops pending and rejected records.
func NewAvailabilityIndex(recs []Availability) AvailabilityIndex {
	ix := make(AvailabilityIndex)
	for _, a := range recs {
		if a.Status != AvailabilityApproved {
			continue
		}
		ix[a.CrewID] = append(ix[a.CrewID], a)
	}
	return ix
}

// Blocked reports whether an approved record covers date.
func (ix AvailabilityIndex) Blocked(crewID int64, date time.Time) bool {
	for _, a := range ix[crewID] {
		if a.Blocks(date) {
			return true
		}
	}
	return false
}

// Snapshot is the reference data of one invocation. It is built once and
// treated as read-only.
type Snapshot struct {
	Qualifications QualificationIndex
	Preferences    PreferenceIndex
	Availability   AvailabilityIndex
}

// NewSnapshot builds all indexes.
func NewSnapshot(quals []Qualification, prefs []Preference, avail []Availability) Snapshot {
	return Snapshot{
		Qualifications: NewQualificationIndex(quals),
		Preferences:    NewPreferenceIndex(prefs),
		Availability:   NewAvailabilityIndex(avail),
	}
}

// Eligible reports whether crewID is qualified for the flight and not blocked
// on its date.
func (s Snapshot) Eligible(crewID int64, f Flight) bool {
	date := f.Date
	if date.IsZero() {
		date = f.SchedDep
	}
	return s.Qualifications.QualifiedOn(crewID, f.AircraftCode, date) && !s.Availability.Blocked(crewID, date)
}
