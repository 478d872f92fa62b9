// Package cluster implements the resource model shared by the scheduling
// engine: jobs, nodes, and the cluster that owns them.
package cluster

// JobState is the lifecycle stage of a Job.
type JobState string

const (
	Pending  JobState = "PENDING"
	Running  JobState = "RUNNING"
	Done     JobState = "DONE"
	Canceled JobState = "CANCELED"
)

// Job is a unit of work submitted to the cluster.
type Job struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Minutes  int    `json:"minutes"`
	CPUs     int    `json:"cpus"`
	GPUs     int    `json:"gpus"`
	Priority int    `json:"priority"`

	State     JobState `json:"state"`
	Remaining int      `json:"remaining"`

	AssignedNode *string `json:"assigned_node"`
	SubmitTime   int     `json:"submit_time"`
	StartTime    *int    `json:"start_time"`
	EndTime      *int    `json:"end_time"`
}

// JobSet is the mapping from job id to Job. Entries are never removed.
type JobSet map[string]*Job

// NewJob constructs a PENDING job with remaining initialized from minutes.
// submitTime is the cluster clock at submission.
func NewJob(id, name string, minutes, cpus, gpus, priority, submitTime int) *Job {
	return &Job{
		ID:         id,
		Name:       name,
		Minutes:    minutes,
		CPUs:       cpus,
		GPUs:       gpus,
		Priority:   priority,
		State:      Pending,
		Remaining:  minutes,
		SubmitTime: submitTime,
	}
}

// Pending reports whether the job is still waiting for placement.
func (j *Job) Pending() bool {
	return j.State == Pending
}

// Running reports whether the job currently occupies a node.
func (j *Job) Running() bool {
	return j.State == Running
}

// PendingIDs returns the ids of pending jobs in the set, ordered by ascending
// submit time and then lexicographic id — the stable order spec.md §4.2.2
// requires for FIFO and that the other policies re-sort from.
func (js JobSet) PendingIDs() []string {
	ids := make([]string, 0, len(js))
	for id, j := range js {
		if j.Pending() {
			ids = append(ids, id)
		}
	}
	sortBySubmitThenID(js, ids)
	return ids
}

// AllIDs returns every job id in the set, sorted for deterministic iteration.
func (js JobSet) AllIDs() []string {
	ids := make([]string, 0, len(js))
	for id := range js {
		ids = append(ids, id)
	}
	sortStrings(ids)
	return ids
}
