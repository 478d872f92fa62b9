package cluster

import "fmt"

// Cluster is the fleet of nodes plus the simulated clock.
type Cluster struct {
	Now   int
	Nodes map[string]*Node

	// order records node insertion order, the deterministic scan order
	// spec.md §5 requires for placement and reservation computation.
	order []string
}

// New returns an empty cluster with the clock at zero.
func New() *Cluster {
	return &Cluster{Nodes: make(map[string]*Node)}
}

// NodeOrder returns node ids in insertion order.
func (c *Cluster) NodeOrder() []string {
	return c.order
}

// AddNodes appends n nodes with generated ids N<k+1>..N<k+n>, where k is the
// current node count, so ids stay unique across repeated calls.
func (c *Cluster) AddNodes(n, cpusPerNode, gpusPerNode int) {
	start := len(c.order)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("N%d", start+i)
		c.Nodes[id] = NewNode(id, cpusPerNode, gpusPerNode)
		c.order = append(c.order, id)
	}
}

// AdoptNode registers a node already constructed elsewhere (e.g. loaded from
// the state store) and appends it to the deterministic scan order if it
// isn't already tracked.
func (c *Cluster) AdoptNode(id string, n *Node) {
	n.ID = id
	if _, exists := c.Nodes[id]; !exists {
		c.order = append(c.order, id)
	}
	c.Nodes[id] = n
}

// TotalUtilization returns (cpuUtilPct, gpuUtilPct) in [0, 100]. Each is 0
// when the corresponding total is 0, per spec.md §4.1.
func (c *Cluster) TotalUtilization() (float64, float64) {
	var usedCPU, totalCPU, usedGPU, totalGPU int
	for _, id := range c.order {
		n := c.Nodes[id]
		usedCPU += n.UsedCPUs
		totalCPU += n.TotalCPUs
		usedGPU += n.UsedGPUs
		totalGPU += n.TotalGPUs
	}

	var cpuPct, gpuPct float64
	if totalCPU > 0 {
		cpuPct = float64(usedCPU) / float64(totalCPU) * 100
	}
	if totalGPU > 0 {
		gpuPct = float64(usedGPU) / float64(totalGPU) * 100
	}
	return cpuPct, gpuPct
}
