package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/crewroster/config"
	"github.com/kilianp07/crewroster/core/monitoring"
)

func TestNewMonitor(t *testing.T) {
	m, err := newMonitor(config.SentryConfig{})
	require.NoError(t, err)
	assert.IsType(t, monitoring.LogMonitor{}, m)

	_, err = newMonitor(config.SentryConfig{DSN: "not-a-dsn"})
	assert.Error(t, err)
}
