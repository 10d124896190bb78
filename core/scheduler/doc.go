// Package scheduler regenerates the roster of an upcoming window on a fixed
// interval, so that late schedule or availability changes are picked up
// before the days are flown.
package scheduler
