package monitoring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type captureLog struct{ lines []string }

func (c *captureLog) Debugf(string, ...any)         {}
func (c *captureLog) Debugw(string, map[string]any) {}
func (c *captureLog) Infof(string, ...any)          {}
func (c *captureLog) Warnf(string, ...any)          {}
func (c *captureLog) Errorf(format string, args ...any) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestLogMonitor(t *testing.T) {
	log := &captureLog{}
	Init(LogMonitor{Log: log})
	defer Init(NopMonitor{})

	CaptureException(errors.New("publish failed"), map[string]string{"topic": "t", "module": "mqtt"})
	assert.Equal(t, []string{"captured: publish failed module=mqtt topic=t"}, log.lines)

	func() {
		defer LogMonitor{Log: log}.Recover()
		panic("boom")
	}()
	assert.Len(t, log.lines, 2)
	assert.Contains(t, log.lines[1], "boom")
}

func TestInitIgnoresNil(t *testing.T) {
	Init(nil)
	assert.NotPanics(t, func() { CaptureException(errors.New("x"), nil) })
}
