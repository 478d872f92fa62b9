package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/slurmsim/slurmsim/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyState(t *testing.T) {
	dir := t.TempDir()
	c, jobs, err := Load(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Now)
	assert.Empty(t, c.NodeOrder())
	assert.Empty(t, jobs)
}

func TestLoadMalformedDocumentReturnsSchedulerError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MALFORMED_STATE")
}

// Scenario 6: round-trip persistence.
func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	c := cluster.New()
	c.AddNodes(2, 8, 1)
	c.Now = 15

	head := cluster.NewJob("H1", "head", 10, 4, 0, 0, 0)
	nodeID := c.NodeOrder()[0]
	c.Nodes[nodeID].Assign(head)
	head.State = cluster.Running
	head.Remaining = 5
	assigned := nodeID
	head.AssignedNode = &assigned
	start := 0
	head.StartTime = &start

	pending := cluster.NewJob("P1", "pending", 20, 2, 1, 3, 5)

	jobs := cluster.JobSet{"H1": head, "P1": pending}

	require.NoError(t, Save(path, c, jobs, nil))

	loadedCluster, loadedJobs, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 15, loadedCluster.Now)
	assert.ElementsMatch(t, c.NodeOrder(), loadedCluster.NodeOrder())
	assert.Equal(t, 8, loadedCluster.Nodes[nodeID].TotalCPUs)
	assert.Equal(t, 4, loadedCluster.Nodes[nodeID].UsedCPUs)
	assert.Equal(t, []string{"H1"}, loadedCluster.Nodes[nodeID].RunningJob)

	require.Contains(t, loadedJobs, "H1")
	assert.Equal(t, cluster.Running, loadedJobs["H1"].State)
	assert.Equal(t, 5, loadedJobs["H1"].Remaining)
	assert.Equal(t, nodeID, *loadedJobs["H1"].AssignedNode)

	require.Contains(t, loadedJobs, "P1")
	assert.Equal(t, cluster.Pending, loadedJobs["P1"].State)
	assert.Equal(t, 20, loadedJobs["P1"].Remaining)
	assert.Equal(t, 3, loadedJobs["P1"].Priority)
	assert.Equal(t, 1, loadedJobs["P1"].GPUs)
	assert.Nil(t, loadedJobs["P1"].AssignedNode)
}

func TestLoadAppliesDefaultsForMissingOptionalFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	raw := `{
		"cluster": {"now": 0, "nodes": {}},
		"jobs": {
			"J1": {"name": "minimal", "minutes": 10, "cpus": 2}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, jobs, err := Load(path)
	require.NoError(t, err)

	j := jobs["J1"]
	require.NotNil(t, j)
	assert.Equal(t, 0, j.GPUs)
	assert.Equal(t, 0, j.Priority)
	assert.Equal(t, cluster.Pending, j.State)
	assert.Equal(t, 10, j.Remaining, "remaining defaults to minutes when absent")
	assert.Nil(t, j.AssignedNode)
	assert.Equal(t, 0, j.SubmitTime)
	assert.Nil(t, j.StartTime)
	assert.Nil(t, j.EndTime)
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	raw := `{
		"cluster": {"now": 0, "nodes": {}, "unexpected_cluster_field": 1},
		"jobs": {
			"J1": {"name": "x", "minutes": 5, "cpus": 1, "unexpected_job_field": "ignored"}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	_, jobs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x", jobs["J1"].Name)
}

func TestSaveIsWholeDocumentRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	c1 := cluster.New()
	c1.AddNodes(1, 4, 0)
	jobs1 := cluster.JobSet{"A": cluster.NewJob("A", "a", 5, 1, 0, 0, 0)}
	require.NoError(t, Save(path, c1, jobs1, nil))

	c2 := cluster.New()
	c2.AddNodes(1, 4, 0)
	jobs2 := cluster.JobSet{"B": cluster.NewJob("B", "b", 5, 1, 0, 0, 0)}
	require.NoError(t, Save(path, c2, jobs2, nil))

	_, loadedJobs, err := Load(path)
	require.NoError(t, err)
	assert.NotContains(t, loadedJobs, "A", "save must rewrite the whole document, not append")
	assert.Contains(t, loadedJobs, "B")
}
