// Package scheduler implements the placement policies and time-advancement
// loop that mutate a cluster.Cluster and cluster.JobSet in place.
package scheduler

import "strings"

// Policy selects which placement strategy Engine.TrySchedule applies.
type Policy string

const (
	FIFO     Policy = "fifo"
	Priority Policy = "priority"
	Backfill Policy = "backfill"
)

// normalizePolicy lower-cases label and maps anything it doesn't recognize
// to FIFO, per spec.md §4.2: unknown labels degrade rather than error.
func normalizePolicy(label string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(label))) {
	case Priority:
		return Priority
	case Backfill:
		return Backfill
	default:
		return FIFO
	}
}
