package config

import "errors"

var (
	// ErrInvalidNodeCount is returned when the node count is not positive.
	ErrInvalidNodeCount = errors.New("node count must be greater than 0")

	// ErrInvalidCapacity is returned when per-node capacity is negative.
	ErrInvalidCapacity = errors.New("per-node capacity must be greater than or equal to 0")

	// ErrInvalidTick is returned when the tick length is not positive.
	ErrInvalidTick = errors.New("tick must be greater than 0")

	// ErrInvalidDuration is returned when the run duration is negative.
	ErrInvalidDuration = errors.New("duration must be greater than or equal to 0")
)
