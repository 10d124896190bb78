package model

import "time"

// DisruptionType classifies a disruption event.
type DisruptionType string

const (
	DisruptionDelay              DisruptionType = "delay"
	DisruptionCancellation       DisruptionType = "cancellation"
	DisruptionCrewUnavailability DisruptionType = "crew_unavailability"
)

// DisruptionRecord is an immutable audit entry for a handled disruption.
type DisruptionRecord struct {
	ID            int64          `json:"id"`
	FlightNo      *string        `json:"flight_no,omitempty"`
	Type          DisruptionType `json:"type"`
	Date          time.Time      `json:"date"`
	ImpactMinutes *int           `json:"impact_minutes,omitempty"`
	CrewID        *int64         `json:"crew_id,omitempty"`
	Reason        string         `json:"reason"`
	Resolution    string         `json:"resolution"`
	RecordedAt    time.Time      `json:"recorded_at"`
}

// DisruptionFilter narrows a disruption history query. Zero values match all.
type DisruptionFilter struct {
	FlightNo string
	CrewID   int64
	Type     DisruptionType
	// Since excludes records whose disruption date is before it.
	Since time.Time
}

// Match reports whether r satisfies the filter.
func (f DisruptionFilter) Match(r DisruptionRecord) bool {
	if f.FlightNo != "" && (r.FlightNo == nil || *r.FlightNo != f.FlightNo) {
		return false
	}
	if f.CrewID != 0 && (r.CrewID == nil || *r.CrewID != f.CrewID) {
		return false
	}
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if !f.Since.IsZero() && Day(r.Date).Before(Day(f.Since)) {
		return false
	}
	return true
}
