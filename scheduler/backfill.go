package scheduler

import (
	"sort"
	"time"

	"github.com/slurmsim/slurmsim/cluster"
)

// scheduleBackfill implements conservative backfill: the head (oldest
// pending) job is never delayed by an opportunistic shorter job. See
// spec.md §4.2.4.
func scheduleBackfill(c *cluster.Cluster, jobs cluster.JobSet, e *Engine) {
	pending := jobs.PendingIDs()
	if len(pending) == 0 {
		return
	}

	headID := pending[0]
	head := jobs[headID]

	if fitsNow(c, head) {
		// Head fits now: place it, then place the rest FIFO-ordered. pending
		// is already submit_time/id ordered with head first, so the shared
		// greedy primitive does exactly that in one pass.
		placeGreedy(c, jobs, pending, e)
		return
	}

	deltaStar, ok := reservationDelta(c, jobs, head)
	if !ok {
		// Head can never fit any node: it stays pending forever. Place the
		// rest FIFO; the greedy primitive skips head since it never fits.
		placeGreedy(c, jobs, pending, e)
		return
	}

	e.logger.Info("computed backfill reservation window", "head_job_id", head.ID, "delta_star", deltaStar)
	admitBackfillCandidates(c, jobs, pending[1:], deltaStar, e)
}

// fitsNow reports whether job can be placed on some node immediately.
func fitsNow(c *cluster.Cluster, job *cluster.Job) bool {
	for _, nodeID := range c.NodeOrder() {
		if c.Nodes[nodeID].CanFit(job) {
			return true
		}
	}
	return false
}

// admitBackfillCandidates orders the non-head pending jobs shortest-job-
// first (ascending minutes, then ascending submit_time) and admits each
// whose minutes fit within the backfill window and that fits on some node
// now. deltaStar is fixed for the whole call — admissions don't shrink the
// window.
func admitBackfillCandidates(c *cluster.Cluster, jobs cluster.JobSet, ids []string, deltaStar int, e *Engine) {
	candidates := make([]string, len(ids))
	copy(candidates, ids)
	sort.SliceStable(candidates, func(i, k int) bool {
		a, b := jobs[candidates[i]], jobs[candidates[k]]
		if a.Minutes != b.Minutes {
			return a.Minutes < b.Minutes
		}
		return a.SubmitTime < b.SubmitTime
	})

	for _, id := range candidates {
		job := jobs[id]
		if !job.Pending() || job.Minutes > deltaStar {
			continue
		}

		start := time.Now()
		if placeOne(c, job, e) {
			e.metrics.RecordBackfillAdmission(job.ID, time.Since(start))
		}
	}
}

// reservationDelta computes Δ*: the minimum simulated-minute offset from
// cluster.now at which some node would have enough free capacity for head,
// assuming currently RUNNING jobs complete exactly at their remaining and no
// other jobs start. Returns ok=false if head exceeds every node's total
// capacity and so can never be hosted.
func reservationDelta(c *cluster.Cluster, jobs cluster.JobSet, head *cluster.Job) (int, bool) {
	best := -1
	anyCapable := false

	for _, nodeID := range c.NodeOrder() {
		node := c.Nodes[nodeID]
		if node.ExceedsCapacity(head) {
			continue
		}
		anyCapable = true

		if node.CanFit(head) {
			return 0, true
		}

		if candidate, ok := nodeReservationTime(node, jobs, head); ok {
			if best == -1 || candidate < best {
				best = candidate
			}
		}
	}

	if !anyCapable || best == -1 {
		return 0, false
	}
	return best, true
}

// nodeReservationTime computes the candidate reservation time for head on a
// single node: sort the node's running jobs by ascending remaining, walk in
// order accumulating freed capacity, and return the remaining of the first
// job whose completion frees enough capacity.
func nodeReservationTime(node *cluster.Node, jobs cluster.JobSet, head *cluster.Job) (int, bool) {
	type runner struct {
		remaining, cpus, gpus int
	}

	runners := make([]runner, 0, len(node.RunningJob))
	for _, jobID := range node.RunningJob {
		j := jobs[jobID]
		runners = append(runners, runner{remaining: j.Remaining, cpus: j.CPUs, gpus: j.GPUs})
	}
	sort.Slice(runners, func(i, k int) bool { return runners[i].remaining < runners[k].remaining })

	freeCPUs := node.FreeCPUs()
	freeGPUs := node.FreeGPUs()
	for _, r := range runners {
		freeCPUs += r.cpus
		freeGPUs += r.gpus
		if freeCPUs >= head.CPUs && freeGPUs >= head.GPUs {
			return r.remaining, true
		}
	}
	return 0, false
}
