package cluster

// Node is a physical worker with fixed capacity.
type Node struct {
	ID         string `json:"-"`
	TotalCPUs  int    `json:"total_cpus"`
	TotalGPUs  int    `json:"total_gpus"`
	UsedCPUs   int    `json:"used_cpus"`
	UsedGPUs   int    `json:"used_gpus"`
	RunningJob []string `json:"running_jobs"`
}

// NewNode constructs an empty node with the given capacity.
func NewNode(id string, totalCPUs, totalGPUs int) *Node {
	return &Node{
		ID:         id,
		TotalCPUs:  totalCPUs,
		TotalGPUs:  totalGPUs,
		RunningJob: []string{},
	}
}

// CanFit reports whether the node currently has enough free capacity to
// host job, per spec.md §4.1.
func (n *Node) CanFit(job *Job) bool {
	return (n.TotalCPUs-n.UsedCPUs) >= job.CPUs && (n.TotalGPUs-n.UsedGPUs) >= job.GPUs
}

// ExceedsCapacity reports whether job can never fit on this node regardless
// of what else is running, per the backfill "impossible head" rule.
func (n *Node) ExceedsCapacity(job *Job) bool {
	return job.CPUs > n.TotalCPUs || job.GPUs > n.TotalGPUs
}

// Assign records job as occupying the node. Precondition: CanFit(job) and
// job.State == Pending. The caller owns flipping job.State to Running; this
// is pure bookkeeping so that the state flip and the assignment are
// published together by the engine.
func (n *Node) Assign(job *Job) {
	n.UsedCPUs += job.CPUs
	n.UsedGPUs += job.GPUs
	n.RunningJob = append(n.RunningJob, job.ID)
}

// Release removes job from the node if present. Idempotent when absent.
func (n *Node) Release(job *Job) {
	for i, id := range n.RunningJob {
		if id == job.ID {
			n.RunningJob = append(n.RunningJob[:i], n.RunningJob[i+1:]...)
			n.UsedCPUs -= job.CPUs
			n.UsedGPUs -= job.GPUs
			return
		}
	}
}

// FreeCPUs returns the currently unused CPU capacity.
func (n *Node) FreeCPUs() int { return n.TotalCPUs - n.UsedCPUs }

// FreeGPUs returns the currently unused GPU capacity.
func (n *Node) FreeGPUs() int { return n.TotalGPUs - n.UsedGPUs }
