package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

func TestQualificationValidOn(t *testing.T) {
	q := Qualification{CrewID: 1, AircraftCode: "A320", ExpiresOn: ptr(day(2025, 3, 10))}
	assert.True(t, q.ValidOn(day(2025, 3, 10)))
	assert.True(t, q.ValidOn(time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.False(t, q.ValidOn(day(2025, 3, 11)))
	assert.True(t, Qualification{}.ValidOn(day(2030, 1, 1)))
}

func TestPreferenceActiveOn(t *testing.T) {
	p := Preference{ValidFrom: ptr(day(2025, 1, 1)), ValidTo: ptr(day(2025, 1, 31))}
	assert.False(t, p.ActiveOn(day(2024, 12, 31)))
	assert.True(t, p.ActiveOn(day(2025, 1, 1)))
	assert.True(t, p.ActiveOn(day(2025, 1, 31)))
	assert.False(t, p.ActiveOn(day(2025, 2, 1)))
	assert.True(t, Preference{}.ActiveOn(day(2025, 6, 1)))
}

func TestAvailabilityBlocksOnlyApproved(t *testing.T) {
	cases := []struct {
		status AvailabilityStatus
		want   bool
	}{
		{AvailabilityApproved, true},
		{AvailabilityPending, false},
		{AvailabilityRejected, false},
	}
	for _, c := range cases {
		a := Availability{From: day(2025, 5, 1), To: day(2025, 5, 3), Status: c.status}
		if got := a.Blocks(day(2025, 5, 2)); got != c.want {
			t.Errorf("%s: got %v want %v", c.status, got, c.want)
		}
	}
	a := Availability{From: day(2025, 5, 1), To: day(2025, 5, 3), Status: AvailabilityApproved}
	assert.False(t, a.Blocks(day(2025, 5, 4)))
	assert.True(t, a.Blocks(time.Date(2025, 5, 3, 22, 0, 0, 0, time.UTC)))
}

func TestQualificationIndexKeepsLongestLived(t *testing.T) {
	ix := NewQualificationIndex([]Qualification{
		{CrewID: 1, AircraftCode: "A320", ExpiresOn: ptr(day(2025, 1, 1))},
		{CrewID: 1, AircraftCode: "A320", ExpiresOn: ptr(day(2026, 1, 1))},
		{CrewID: 2, AircraftCode: "A321"},
		{CrewID: 2, AircraftCode: "A321", ExpiresOn: ptr(day(2020, 1, 1))},
	})
	assert.True(t, ix.QualifiedOn(1, "A320", day(2025, 6, 1)))
	assert.True(t, ix.QualifiedOn(2, "A321", day(2040, 1, 1)))
	assert.False(t, ix.QualifiedOn(1, "A321", day(2025, 6, 1)))
}

func TestSnapshotEligible(t *testing.T) {
	s := NewSnapshot(
		[]Qualification{{CrewID: 1, AircraftCode: "A320"}, {CrewID: 2, AircraftCode: "A320"}},
		nil,
		[]Availability{
			{CrewID: 2, From: day(2025, 5, 1), To: day(2025, 5, 1), Status: AvailabilityApproved},
			{CrewID: 1, From: day(2025, 5, 1), To: day(2025, 5, 1), Status: AvailabilityPending},
		},
	)
	f := Flight{AircraftCode: "A320", Date: day(2025, 5, 1)}
	assert.True(t, s.Eligible(1, f))
	assert.False(t, s.Eligible(2, f))
	f.AircraftCode = "A321"
	assert.False(t, s.Eligible(1, f))
}

func TestDutyPeriodOverlaps(t *testing.T) {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	a := DutyPeriod{Start: base, End: base.Add(2 * time.Hour)}
	b := DutyPeriod{Start: base.Add(time.Hour), End: base.Add(3 * time.Hour)}
	c := DutyPeriod{Start: base.Add(2 * time.Hour), End: base.Add(4 * time.Hour)}
	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
	assert.Equal(t, 2*time.Hour, a.Duration())
}

func TestDisruptionFilterMatch(t *testing.T) {
	r := DisruptionRecord{FlightNo: ptr("AI101"), Type: DisruptionDelay, Date: day(2025, 5, 10)}
	assert.True(t, DisruptionFilter{}.Match(r))
	assert.True(t, DisruptionFilter{FlightNo: "AI101", Type: DisruptionDelay}.Match(r))
	assert.False(t, DisruptionFilter{FlightNo: "AI102"}.Match(r))
	assert.False(t, DisruptionFilter{CrewID: 3}.Match(r))
	assert.False(t, DisruptionFilter{Since: day(2025, 5, 11)}.Match(r))
}
