package events

// StrategyEvent is emitted when the planner selects a strategy.
// Action can be "solver_attempt", "solver_failure" or "greedy_fallback".
type StrategyEvent struct {
	RunID    string
	Strategy string
	Action   string
	Err      error
}
