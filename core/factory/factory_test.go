package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	URL     string
	Timeout time.Duration
}

type sinkConf struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
}

func sinkFactory(conf map[string]any) (*sink, error) {
	var c sinkConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sink{URL: c.URL, Timeout: c.Timeout}, nil
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*sink]()
	require.NoError(t, reg.Register("influx", sinkFactory))

	inst, err := reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://x", "timeout": "3s"}})
	require.NoError(t, err)
	assert.Equal(t, "http://x", inst.URL)
	assert.Equal(t, 3*time.Second, inst.Timeout)
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	require.NoError(t, reg.Register("x", func(map[string]any) (int, error) { return 1, nil }))
	assert.Error(t, reg.Register("x", func(map[string]any) (int, error) { return 2, nil }), "duplicate")
	assert.Error(t, reg.Register("y", nil))

	_, err := reg.Create(ModuleConfig{Type: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"y"`)

	boom := errors.New("boom")
	require.NoError(t, reg.Register("bad", func(map[string]any) (int, error) { return 0, boom }))
	_, err = reg.Create(ModuleConfig{Type: "bad"})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"bad", "x"}, reg.Names())
}

func TestDecodeWeakTypes(t *testing.T) {
	var c struct {
		Port  int  `json:"port"`
		Debug bool `json:"debug"`
	}
	require.NoError(t, Decode(map[string]any{"port": "9090", "debug": "true"}, &c))
	assert.Equal(t, 9090, c.Port)
	assert.True(t, c.Debug)
}
