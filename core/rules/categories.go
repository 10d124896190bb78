package rules

// Categories lists the rule families for display.
type Categories struct {
	Hard []string `json:"hard_rules"`
	Soft []string `json:"soft_rules"`
}

// Categories returns the hard and soft rule classification.
func (e *Engine) Categories() Categories {
	return Categories{
		Hard: []string{
			"Max duty hours per day",
			"Min rest hours after duty",
			"Max flight duty period (FDP)",
			"Max duty hours per week",
			"Max duty hours per month",
			"Max consecutive duty days",
			"Min rest hours between duties",
			"Max night duties per week",
			"Min rest hours after night duty",
			"Max extended FDP hours",
			"Max flight time per day",
			"Max flight time per week",
			"Max flight time per month",
			"Crew qualification requirements",
			"No overlapping duties for the same crew",
		},
		Soft: []string{
			"Preferred max duty hours per day",
			"Preferred max consecutive duty days",
			"Preferred rest hours after duty",
			"Preferred night duties per week",
			"Crew preference satisfaction",
			"Fairness in duty distribution",
		},
	}
}
