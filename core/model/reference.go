package model

import "time"

// Qualification certifies a crew member for an aircraft type.
type Qualification struct {
	CrewID       int64      `json:"crew_id"`
	AircraftCode string     `json:"aircraft_code"`
	QualifiedOn  time.Time  `json:"qualified_on"`
	ExpiresOn    *time.Time `json:"expires_on,omitempty"`
}

// ValidOn returns false when the qualification expired before date.
func (q Qualification) ValidOn(date time.Time) bool {
	if q.ExpiresOn == nil {
		return true
	}
	return !Day(*q.ExpiresOn).Before(Day(date))
}

// PreferenceKind enumerates the supported crew preferences.
type PreferenceKind string

const (
	PrefDayOff      PreferenceKind = "day_off"
	PrefBase        PreferenceKind = "base"
	PrefDestination PreferenceKind = "destination"
	PrefFlightNo    PreferenceKind = "flight_no"
	PrefWeekendOff  PreferenceKind = "weekend_off"
	PrefNightOff    PreferenceKind = "night_off"
)

// Preference expresses a weighted wish of a crew member. Value holds a weekday
// name for day_off, an IATA code for base and destination, or a flight number.
type Preference struct {
	CrewID    int64          `json:"crew_id"`
	Kind      PreferenceKind `json:"kind"`
	Value     string         `json:"value"`
	Weight    int            `json:"weight"`
	ValidFrom *time.Time     `json:"valid_from,omitempty"`
	ValidTo   *time.Time     `json:"valid_to,omitempty"`
}

// ActiveOn reports whether the validity window includes date.
func (p Preference) ActiveOn(date time.Time) bool {
	d := Day(date)
	if p.ValidFrom != nil && Day(*p.ValidFrom).After(d) {
		return false
	}
	if p.ValidTo != nil && Day(*p.ValidTo).Before(d) {
		return false
	}
	return true
}

// AvailabilityStatus is the approval state of an unavailability request.
type AvailabilityStatus string

const (
	AvailabilityPending  AvailabilityStatus = "pending"
	AvailabilityApproved AvailabilityStatus = "approved"
	AvailabilityRejected AvailabilityStatus = "rejected"
)

// Availability is a leave, medical or training block for a crew member.
type Availability struct {
	CrewID int64              `json:"crew_id"`
	Kind   string             `json:"kind"`
	Reason string             `json:"reason,omitempty"`
	From   time.Time          `json:"from"`
	To     time.Time          `json:"to"`
	Status AvailabilityStatus `json:"status"`
}

// Blocks reports whether the record prevents assignment on date. Only
// approved records block.
func (a Availability) Blocks(date time.Time) bool {
	if a.Status != AvailabilityApproved {
		return false
	}
	d := Day(date)
	return !d.Before(Day(a.From)) && !d.After(Day(a.To))
}
