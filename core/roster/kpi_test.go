package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/crewroster/core/model"
	"github.com/kilianp07/crewroster/core/rules"
)

func TestFairnessScore(t *testing.T) {
	assert.Equal(t, 1.0, FairnessScore(0, 0))
	assert.Equal(t, 1.0, FairnessScore(3, 3))
	assert.InDelta(t, 0.5, FairnessScore(3, 1), 1e-9)
	for hi := 0; hi < 10; hi++ {
		for lo := 0; lo <= hi; lo++ {
			s := FairnessScore(hi, lo)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestComputeKPIs(t *testing.T) {
	var flights []model.Flight
	for i := 0; i < 5; i++ {
		flights = append(flights, flightAt(int64(i+1), i, 8, 2, "A320"))
	}
	crew := []model.Crew{crewMember(1, model.RankFirstOfficer), crewMember(2, model.RankFirstOfficer)}
	in := Input{Flights: flights, Crew: crew}

	asg := []Assignment{
		assigned(flights[0], crew[0], 2),
		assigned(flights[1], crew[0], 4),
		assigned(flights[2], crew[0], 0),
		assigned(flights[3], crew[1], 2),
		unassigned(flights[4], ReasonNoAvailableCrew),
	}
	k := ComputeKPIs(in, asg)
	assert.Equal(t, 5, k.FlightsTotal)
	assert.Equal(t, 4, k.FlightsAssigned)
	assert.InDelta(t, 0.8, k.AssignmentRate, 1e-9)
	assert.Equal(t, 3, k.MaxDutyPerCrew)
	assert.Equal(t, 1, k.MinDutyPerCrew)
	assert.Equal(t, 2, k.DutyDistributionRange)
	assert.InDelta(t, 2.0, k.AvgDutyPerCrew, 1e-9)
	assert.InDelta(t, 2.0, k.AvgPreferenceScore, 1e-9)
	assert.InDelta(t, 0.5, k.FairnessScore, 1e-9)
	assert.Equal(t, 1.0, k.ComplianceRate)
}

func TestComputeKPIsCompliance(t *testing.T) {
	long := flightAt(1, 0, 6, 11, "A320")
	short := flightAt(2, 1, 8, 2, "A320")
	crew := []model.Crew{crewMember(1, model.RankFirstOfficer)}
	in := Input{Flights: []model.Flight{long, short}, Crew: crew, Rules: rules.New(rules.Defaults())}

	k := ComputeKPIs(in, []Assignment{assigned(long, crew[0], 0), assigned(short, crew[0], 0)})
	assert.InDelta(t, 0.5, k.ComplianceRate, 1e-9)
}

func TestComputeKPIsEmpty(t *testing.T) {
	k := ComputeKPIs(Input{}, nil)
	assert.Equal(t, 0, k.FlightsTotal)
	assert.Equal(t, 0.0, k.AssignmentRate)
	assert.Equal(t, 1.0, k.FairnessScore)
	assert.Equal(t, 1.0, k.ComplianceRate)
}
