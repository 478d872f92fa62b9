package cluster

import "testing"

func TestAddNodesGeneratesSequentialIDs(t *testing.T) {
	c := New()
	c.AddNodes(3, 16, 2)

	want := []string{"N1", "N2", "N3"}
	got := c.NodeOrder()
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i] != id {
			t.Errorf("node[%d] = %q, want %q", i, got[i], id)
		}
		n, ok := c.Nodes[id]
		if !ok {
			t.Fatalf("missing node %q", id)
		}
		if n.TotalCPUs != 16 || n.TotalGPUs != 2 {
			t.Errorf("node %q capacity = (%d,%d), want (16,2)", id, n.TotalCPUs, n.TotalGPUs)
		}
	}

	c.AddNodes(2, 8, 0)
	got = c.NodeOrder()
	wantExtended := []string{"N1", "N2", "N3", "N4", "N5"}
	if len(got) != len(wantExtended) {
		t.Fatalf("got %d nodes after extension, want %d", len(got), len(wantExtended))
	}
	for i, id := range wantExtended {
		if got[i] != id {
			t.Errorf("node[%d] = %q, want %q", i, got[i], id)
		}
	}
}

func TestTotalUtilizationNoDivideByZero(t *testing.T) {
	c := New()
	cpuPct, gpuPct := c.TotalUtilization()
	if cpuPct != 0 || gpuPct != 0 {
		t.Fatalf("empty cluster utilization = (%v,%v), want (0,0)", cpuPct, gpuPct)
	}

	c.AddNodes(1, 4, 0)
	job := NewJob("j1", "a", 10, 2, 0, 0, 0)
	n := c.Nodes["N1"]
	n.Assign(job)

	cpuPct, gpuPct = c.TotalUtilization()
	if cpuPct != 50 {
		t.Errorf("cpuPct = %v, want 50", cpuPct)
	}
	if gpuPct != 0 {
		t.Errorf("gpuPct = %v, want 0 (no GPUs in cluster)", gpuPct)
	}
}

func TestAdoptNodePreservesOrderOnlyOnce(t *testing.T) {
	c := New()
	c.AdoptNode("N1", NewNode("N1", 8, 1))
	c.AdoptNode("N2", NewNode("N2", 8, 1))
	c.AdoptNode("N1", NewNode("N1", 16, 2))

	if len(c.NodeOrder()) != 2 {
		t.Fatalf("got %d nodes, want 2", len(c.NodeOrder()))
	}
	if c.Nodes["N1"].TotalCPUs != 16 {
		t.Errorf("re-adopting N1 should replace its node, got TotalCPUs=%d", c.Nodes["N1"].TotalCPUs)
	}
}
