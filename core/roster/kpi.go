package roster

import (
	"sort"

	"github.com/kilianp07/crewroster/core/model"
)

// ComputeKPIs derives the roster indicators shared by every strategy. Duty
// counts only consider crew holding at least one duty.
func ComputeKPIs(in Input, asg []Assignment) KPIs {
	k := KPIs{FlightsTotal: len(in.Flights), ComplianceRate: 1, FairnessScore: 1}
	counts := map[int64]int{}
	var prefSum float64
	for _, a := range asg {
		if !a.Assigned() {
			continue
		}
		k.FlightsAssigned++
		counts[*a.CrewID]++
		prefSum += a.PreferenceScore
	}
	if k.FlightsTotal > 0 {
		k.AssignmentRate = float64(k.FlightsAssigned) / float64(k.FlightsTotal)
	}
	if k.FlightsAssigned == 0 {
		return k
	}
	k.AvgPreferenceScore = prefSum / float64(k.FlightsAssigned)

	first := true
	total := 0
	for _, n := range counts {
		total += n
		if first || n > k.MaxDutyPerCrew {
			k.MaxDutyPerCrew = n
		}
		if first || n < k.MinDutyPerCrew {
			k.MinDutyPerCrew = n
		}
		first = false
	}
	k.AvgDutyPerCrew = float64(total) / float64(len(counts))
	k.DutyDistributionRange = k.MaxDutyPerCrew - k.MinDutyPerCrew
	k.FairnessScore = FairnessScore(k.MaxDutyPerCrew, k.MinDutyPerCrew)
	if in.Rules != nil {
		k.ComplianceRate = complianceRate(in, asg)
	}
	return k
}

// FairnessScore maps a duty count spread to [0,1]; 1 means perfectly even.
func FairnessScore(hi, lo int) float64 {
	if hi <= 0 {
		return 1
	}
	return 1 - float64(hi-lo)/float64(hi+1)
}

// complianceRate replays each crew member's duties in time order and returns
// the share of duties without hard violations.
func complianceRate(in Input, asg []Assignment) float64 {
	ranks := make(map[int64]model.Rank, len(in.Crew))
	for _, c := range in.Crew {
		ranks[c.ID] = c.Rank
	}
	byCrew := map[int64][]Assignment{}
	for _, a := range asg {
		if a.Assigned() {
			byCrew[*a.CrewID] = append(byCrew[*a.CrewID], a)
		}
	}
	var total, valid int
	for id, list := range byCrew {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
		var st CrewState
		for _, a := range list {
			dc := st.Prospective(ranks[id], a.Start, a.End)
			total++
			if in.Rules.CheckHardViolations(dc).Empty() {
				valid++
			}
			st = st.Append(a.Start, a.End, in.Rules.IsNightDuty(a.Start, a.End))
		}
	}
	return float64(valid) / float64(total)
}
