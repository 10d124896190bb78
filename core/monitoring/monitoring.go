// Package monitoring is the process-wide error reporting hook. Components
// report failures they cannot return to a caller, such as notification
// publish errors, through CaptureException.
package monitoring

import (
	"sort"
	"strings"
	"time"

	"github.com/kilianp07/crewroster/core/logger"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

// LogMonitor reports exceptions and recovered panics through a logger.
type LogMonitor struct {
	Log logger.Logger
}

// CaptureException logs err with its tags in key order.
func (m LogMonitor) CaptureException(err error, tags map[string]string) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(tags[k])
	}
	m.Log.Errorf("captured: %v%s", err, b.String())
}

// Recover logs a panic and swallows it. It must be deferred directly.
func (m LogMonitor) Recover() {
	if r := recover(); r != nil {
		m.Log.Errorf("recovered panic: %v", r)
	}
}

func (LogMonitor) Flush(time.Duration) {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if current != nil {
		current.CaptureException(err, tags)
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}
