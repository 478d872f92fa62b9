// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"strconv"
)

// DefaultStatePath is the state document path used when neither a flag nor
// SLURMSIM_STATE_PATH overrides it.
const DefaultStatePath = ".slurm_state.json"

// Config holds the cluster and driver configuration for the scheduler
// simulator.
type Config struct {
	// Nodes is the number of nodes to create when no state document exists.
	Nodes int

	// CPUsPerNode is the CPU capacity of each newly created node.
	CPUsPerNode int

	// GPUsPerNode is the GPU capacity of each newly created node.
	GPUsPerNode int

	// Policy selects the scheduling policy: "fifo", "priority", or "backfill".
	Policy string

	// Tick is the number of minutes advanced per simulation step.
	Tick int

	// Duration is the total number of minutes to simulate for the run
	// subcommand.
	Duration int

	// StatePath is the path to the persisted state document.
	StatePath string

	// Debug enables verbose logging.
	Debug bool
}

// NewDefault returns the configuration spec.md's driver uses when no flags
// or environment variables override it.
func NewDefault() *Config {
	return &Config{
		Nodes:       4,
		CPUsPerNode: 16,
		GPUsPerNode: 2,
		Policy:      "fifo",
		Tick:        5,
		Duration:    60,
		StatePath:   getEnvOrDefault("SLURMSIM_STATE_PATH", DefaultStatePath),
		Debug:       getEnvBoolOrDefault("SLURMSIM_DEBUG", false),
	}
}

// Load overlays environment variables onto c, leaving fields the
// environment doesn't mention untouched.
func (c *Config) Load() {
	if nodes := os.Getenv("SLURMSIM_NODES"); nodes != "" {
		if i, err := strconv.Atoi(nodes); err == nil {
			c.Nodes = i
		}
	}

	if cpus := os.Getenv("SLURMSIM_CPUS_PER_NODE"); cpus != "" {
		if i, err := strconv.Atoi(cpus); err == nil {
			c.CPUsPerNode = i
		}
	}

	if gpus := os.Getenv("SLURMSIM_GPUS_PER_NODE"); gpus != "" {
		if i, err := strconv.Atoi(gpus); err == nil {
			c.GPUsPerNode = i
		}
	}

	if policy := os.Getenv("SLURMSIM_POLICY"); policy != "" {
		c.Policy = policy
	}

	if tick := os.Getenv("SLURMSIM_TICK"); tick != "" {
		if i, err := strconv.Atoi(tick); err == nil {
			c.Tick = i
		}
	}

	if duration := os.Getenv("SLURMSIM_DURATION"); duration != "" {
		if i, err := strconv.Atoi(duration); err == nil {
			c.Duration = i
		}
	}

	c.StatePath = getEnvOrDefault("SLURMSIM_STATE_PATH", c.StatePath)
	c.Debug = getEnvBoolOrDefault("SLURMSIM_DEBUG", c.Debug)
}

// Validate reports the first configuration error found, or nil.
func (c *Config) Validate() error {
	if c.Nodes <= 0 {
		return ErrInvalidNodeCount
	}

	if c.CPUsPerNode < 0 || c.GPUsPerNode < 0 {
		return ErrInvalidCapacity
	}

	if c.Tick <= 0 {
		return ErrInvalidTick
	}

	if c.Duration < 0 {
		return ErrInvalidDuration
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBoolOrDefault returns the environment variable value as a boolean or a default value
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
