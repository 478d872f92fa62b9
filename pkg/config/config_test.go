package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	require.NotNil(t, c)

	assert.Equal(t, 4, c.Nodes)
	assert.Equal(t, 16, c.CPUsPerNode)
	assert.Equal(t, 2, c.GPUsPerNode)
	assert.Equal(t, "fifo", c.Policy)
	assert.Equal(t, 5, c.Tick)
	assert.Equal(t, 60, c.Duration)
	assert.Equal(t, DefaultStatePath, c.StatePath)
	assert.False(t, c.Debug)
}

func TestConfigLoadFromEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*testing.T, *Config)
	}{
		{
			name:    "node count from environment",
			envVars: map[string]string{"SLURMSIM_NODES": "8"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, 8, c.Nodes)
			},
		},
		{
			name:    "capacity from environment",
			envVars: map[string]string{"SLURMSIM_CPUS_PER_NODE": "32", "SLURMSIM_GPUS_PER_NODE": "4"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, 32, c.CPUsPerNode)
				assert.Equal(t, 4, c.GPUsPerNode)
			},
		},
		{
			name:    "policy from environment",
			envVars: map[string]string{"SLURMSIM_POLICY": "backfill"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "backfill", c.Policy)
			},
		},
		{
			name:    "tick and duration from environment",
			envVars: map[string]string{"SLURMSIM_TICK": "10", "SLURMSIM_DURATION": "120"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, 10, c.Tick)
				assert.Equal(t, 120, c.Duration)
			},
		},
		{
			name:    "state path from environment",
			envVars: map[string]string{"SLURMSIM_STATE_PATH": "/tmp/custom_state.json"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "/tmp/custom_state.json", c.StatePath)
			},
		},
		{
			name:    "debug from environment",
			envVars: map[string]string{"SLURMSIM_DEBUG": "true"},
			expected: func(t *testing.T, c *Config) {
				assert.True(t, c.Debug)
			},
		},
		{
			name: "all environment variables",
			envVars: map[string]string{
				"SLURMSIM_NODES":         "2",
				"SLURMSIM_CPUS_PER_NODE": "8",
				"SLURMSIM_GPUS_PER_NODE": "0",
				"SLURMSIM_POLICY":        "priority",
				"SLURMSIM_TICK":          "1",
				"SLURMSIM_DURATION":      "30",
				"SLURMSIM_STATE_PATH":    "state.json",
				"SLURMSIM_DEBUG":         "true",
			},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, 2, c.Nodes)
				assert.Equal(t, 8, c.CPUsPerNode)
				assert.Equal(t, 0, c.GPUsPerNode)
				assert.Equal(t, "priority", c.Policy)
				assert.Equal(t, 1, c.Tick)
				assert.Equal(t, 30, c.Duration)
				assert.Equal(t, "state.json", c.StatePath)
				assert.True(t, c.Debug)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			c := NewDefault()
			c.Load()

			tt.expected(t, c)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectedErr error
	}{
		{
			name:        "valid config",
			config:      &Config{Nodes: 4, CPUsPerNode: 16, GPUsPerNode: 2, Tick: 5, Duration: 60},
			expectedErr: nil,
		},
		{
			name:        "zero nodes",
			config:      &Config{Nodes: 0, CPUsPerNode: 16, Tick: 5},
			expectedErr: ErrInvalidNodeCount,
		},
		{
			name:        "negative nodes",
			config:      &Config{Nodes: -1, CPUsPerNode: 16, Tick: 5},
			expectedErr: ErrInvalidNodeCount,
		},
		{
			name:        "negative cpus per node",
			config:      &Config{Nodes: 1, CPUsPerNode: -1, Tick: 5},
			expectedErr: ErrInvalidCapacity,
		},
		{
			name:        "negative gpus per node",
			config:      &Config{Nodes: 1, CPUsPerNode: 16, GPUsPerNode: -1, Tick: 5},
			expectedErr: ErrInvalidCapacity,
		},
		{
			name:        "zero tick",
			config:      &Config{Nodes: 1, CPUsPerNode: 16, Tick: 0},
			expectedErr: ErrInvalidTick,
		},
		{
			name:        "negative duration",
			config:      &Config{Nodes: 1, CPUsPerNode: 16, Tick: 5, Duration: -1},
			expectedErr: ErrInvalidDuration,
		},
		{
			name:        "zero duration is valid",
			config:      &Config{Nodes: 1, CPUsPerNode: 16, Tick: 5, Duration: 0},
			expectedErr: nil,
		},
		{
			name:        "zero gpus per node is valid",
			config:      &Config{Nodes: 1, CPUsPerNode: 16, GPUsPerNode: 0, Tick: 5},
			expectedErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
