// Package events defines the rostering events emitted on the event bus.
//
// Available event types:
//   - StrategyEvent: solver attempts, failures and greedy fallbacks
//   - RosterEvent: a roster was generated and committed
//   - DisruptionEvent: a disruption was handled and recorded
package events
