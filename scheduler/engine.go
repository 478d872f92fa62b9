package scheduler

import (
	"time"

	"github.com/slurmsim/slurmsim/cluster"
	schedulererrors "github.com/slurmsim/slurmsim/pkg/errors"
	"github.com/slurmsim/slurmsim/pkg/logging"
	"github.com/slurmsim/slurmsim/pkg/metrics"
)

// Engine dispatches the configured policy and advances simulated time over a
// cluster.Cluster and cluster.JobSet. It holds no state of its own beyond
// its policy and observability hooks — cluster and jobs are supplied on
// every call, per spec.md §5's pure-transformer model.
type Engine struct {
	Policy Policy

	logger  logging.Logger
	metrics metrics.Collector
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a structured logger for placement and completion
// diagnostics. Logging never changes scheduling decisions.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics attaches a metrics.Collector for placement, backfill, and
// utilization observability. Metrics collection never changes scheduling
// decisions.
func WithMetrics(m metrics.Collector) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine constructs an Engine for the named policy. Unrecognized labels
// degrade to fifo.
func NewEngine(policyLabel string, opts ...Option) *Engine {
	e := &Engine{
		Policy:  normalizePolicy(policyLabel),
		logger:  logging.NoOpLogger{},
		metrics: metrics.NoOpCollector{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TrySchedule attempts to place pending jobs per e.Policy. It is idempotent
// when no resources are free and no jobs are pending.
func (e *Engine) TrySchedule(c *cluster.Cluster, jobs cluster.JobSet) {
	validateIntegrity(c, jobs)

	switch e.Policy {
	case Priority:
		schedulePriority(c, jobs, e)
	case Backfill:
		scheduleBackfill(c, jobs, e)
	default:
		scheduleFIFO(c, jobs, e)
	}
}

// AdvanceTime increases cluster.now by delta minutes, decrements remaining
// work for every RUNNING job, and completes any whose remaining reaches
// zero. Completion always happens strictly after the clock advance; no job
// started during this call, since placement only happens in TrySchedule.
func (e *Engine) AdvanceTime(c *cluster.Cluster, jobs cluster.JobSet, delta int) {
	start := time.Now()
	validateIntegrity(c, jobs)

	c.Now += delta
	for _, id := range jobs.AllIDs() {
		job := jobs[id]
		if !job.Running() {
			continue
		}

		job.Remaining -= delta
		if job.Remaining > 0 {
			continue
		}

		job.Remaining = 0
		node := c.Nodes[*job.AssignedNode]
		node.Release(job)
		job.State = cluster.Done
		endTime := c.Now
		job.EndTime = &endTime
		job.AssignedNode = nil

		e.logger.Debug("job completed", "job_id", job.ID, "end_time", endTime)
	}

	e.metrics.RecordTick(delta, time.Since(start))

	cpuPct, gpuPct := c.TotalUtilization()
	e.metrics.RecordUtilization(cpuPct, gpuPct)
}

// scheduleFIFO places pending jobs in ascending submit_time order, ties
// broken by job id.
func scheduleFIFO(c *cluster.Cluster, jobs cluster.JobSet, e *Engine) {
	placeGreedy(c, jobs, jobs.PendingIDs(), e)
}

// placeGreedy is the shared greedy first-fit primitive: for each still-
// pending job in ids order, scan nodes in insertion order and place on the
// first that fits. Jobs that don't fit remain pending; there is no
// reordering or lookahead.
func placeGreedy(c *cluster.Cluster, jobs cluster.JobSet, ids []string, e *Engine) {
	for _, id := range ids {
		job := jobs[id]
		if !job.Pending() {
			continue
		}
		placeOne(c, job, e)
	}
}

// placeOne attempts to place a single pending job on the first node (in
// insertion order) that can host it. Returns true if placed.
func placeOne(c *cluster.Cluster, job *cluster.Job, e *Engine) bool {
	start := time.Now()
	for _, nodeID := range c.NodeOrder() {
		node := c.Nodes[nodeID]
		if !node.CanFit(job) {
			continue
		}

		node.Assign(job)
		job.State = cluster.Running
		startTime := c.Now
		job.StartTime = &startTime
		assignedNode := nodeID
		job.AssignedNode = &assignedNode

		e.metrics.RecordPlacement(string(e.Policy), nodeID, time.Since(start))
		e.logger.Debug("job placed", "job_id", job.ID, "node_id", nodeID, "policy", e.Policy)
		return true
	}
	return false
}

// validateIntegrity aborts on a caller-contract violation: a RUNNING job
// referencing an absent node, or a node's running_jobs listing an absent
// job id. Per spec.md §4.2.5 the engine does not self-heal corrupt state.
func validateIntegrity(c *cluster.Cluster, jobs cluster.JobSet) {
	for _, id := range jobs.AllIDs() {
		job := jobs[id]
		if !job.Running() {
			continue
		}

		if job.AssignedNode == nil {
			panic(schedulererrors.NewStateCorruptionError("running job " + job.ID + " has no assigned node"))
		}

		node, ok := c.Nodes[*job.AssignedNode]
		if !ok {
			panic(schedulererrors.NewStateCorruptionError("job " + job.ID + " assigned to absent node " + *job.AssignedNode))
		}

		hosted := false
		for _, rj := range node.RunningJob {
			if rj == job.ID {
				hosted = true
				break
			}
		}
		if !hosted {
			panic(schedulererrors.NewStateCorruptionError("node " + *job.AssignedNode + " running_jobs does not list job " + job.ID))
		}
	}

	for _, nodeID := range c.NodeOrder() {
		for _, rj := range c.Nodes[nodeID].RunningJob {
			if _, ok := jobs[rj]; !ok {
				panic(schedulererrors.NewStateCorruptionError("node " + nodeID + " running_jobs lists absent job " + rj))
			}
		}
	}
}
