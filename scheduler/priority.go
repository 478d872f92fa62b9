package scheduler

import (
	"sort"

	"github.com/slurmsim/slurmsim/cluster"
)

// schedulePriority places pending jobs in descending priority order, ties
// broken by ascending submit_time then job id. It gives no starvation
// guarantee: a never-ending stream of high-priority jobs may perpetually
// defer lower-priority work.
func schedulePriority(c *cluster.Cluster, jobs cluster.JobSet, e *Engine) {
	placeGreedy(c, jobs, priorityOrderedIDs(jobs), e)
}

func priorityOrderedIDs(jobs cluster.JobSet) []string {
	ids := jobs.PendingIDs()
	sort.SliceStable(ids, func(i, k int) bool {
		a, b := jobs[ids[i]], jobs[ids[k]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.SubmitTime != b.SubmitTime {
			return a.SubmitTime < b.SubmitTime
		}
		return a.ID < b.ID
	})
	return ids
}
