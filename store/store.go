// SPDX-License-Identifier: Apache-2.0

// Package store loads and saves the self-describing JSON state document
// shared by every subcommand of the driver.
package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/slurmsim/slurmsim/cluster"
	schedulererrors "github.com/slurmsim/slurmsim/pkg/errors"
	"github.com/slurmsim/slurmsim/pkg/logging"
	"github.com/slurmsim/slurmsim/pkg/retry"
)

// document is the on-disk shape. Optional job fields are decoded as
// pointers so a field that is genuinely absent can be told apart from one
// explicitly set to its zero value, per spec.md §6.1's default table.
type document struct {
	Cluster clusterDoc        `json:"cluster"`
	Jobs    map[string]rawJob `json:"jobs"`
}

type clusterDoc struct {
	Now   int                      `json:"now"`
	Nodes map[string]*cluster.Node `json:"nodes"`
}

type rawJob struct {
	Name         string  `json:"name"`
	Minutes      int     `json:"minutes"`
	CPUs         int     `json:"cpus"`
	GPUs         *int    `json:"gpus"`
	Priority     *int    `json:"priority"`
	State        *string `json:"state"`
	Remaining    *int    `json:"remaining"`
	AssignedNode *string `json:"assigned_node"`
	SubmitTime   *int    `json:"submit_time"`
	StartTime    *int    `json:"start_time"`
	EndTime      *int    `json:"end_time"`
}

func (j rawJob) toJob(id string) *cluster.Job {
	job := &cluster.Job{
		ID:           id,
		Name:         j.Name,
		Minutes:      j.Minutes,
		CPUs:         j.CPUs,
		State:        cluster.Pending,
		Remaining:    j.Minutes,
		AssignedNode: j.AssignedNode,
		StartTime:    j.StartTime,
		EndTime:      j.EndTime,
	}
	if j.GPUs != nil {
		job.GPUs = *j.GPUs
	}
	if j.Priority != nil {
		job.Priority = *j.Priority
	}
	if j.State != nil {
		job.State = cluster.JobState(*j.State)
	}
	if j.Remaining != nil {
		job.Remaining = *j.Remaining
	}
	if j.SubmitTime != nil {
		job.SubmitTime = *j.SubmitTime
	}
	return job
}

// Load reads the state document at path. A missing file yields an empty
// cluster and job set, not an error, per spec.md §6.1. A malformed document
// returns a *pkg/errors.SchedulerError with ErrorCodeMalformedState.
func Load(path string) (*cluster.Cluster, cluster.JobSet, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cluster.New(), cluster.JobSet{}, nil
	}
	if err != nil {
		return nil, nil, schedulererrors.NewPersistenceError(path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, schedulererrors.NewMalformedStateError(path, err)
	}

	c := cluster.New()
	c.Now = doc.Cluster.Now
	for id, node := range doc.Cluster.Nodes {
		if node.RunningJob == nil {
			node.RunningJob = []string{}
		}
		c.AdoptNode(id, node)
	}

	jobs := make(cluster.JobSet, len(doc.Jobs))
	for id, rj := range doc.Jobs {
		jobs[id] = rj.toJob(id)
	}

	return c, jobs, nil
}

// Save rewrites the whole state document at path. Transient write failures
// are retried with exponential backoff; exhausting the retry budget surfaces
// an ErrorCodePersistenceIO error.
func Save(path string, c *cluster.Cluster, jobs cluster.JobSet, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	nodes := make(map[string]*cluster.Node, len(c.NodeOrder()))
	for _, id := range c.NodeOrder() {
		nodes[id] = c.Nodes[id]
	}

	data, err := marshalDocument(c.Now, nodes, jobs)
	if err != nil {
		return schedulererrors.NewPersistenceError(path, err)
	}

	backoff := retry.NewExponentialBackoff()
	writeErr := retry.Retry(context.Background(), backoff, func() error {
		return os.WriteFile(path, data, 0o644)
	})
	if writeErr != nil {
		logging.LogError(logger, writeErr, "store.Save")
		return schedulererrors.NewPersistenceError(path, writeErr)
	}
	return nil
}

// marshalDocument builds the wire document with the exact field order and
// shape of spec.md §6.1.
func marshalDocument(now int, nodes map[string]*cluster.Node, jobs cluster.JobSet) ([]byte, error) {
	type wireJob struct {
		Name         string  `json:"name"`
		Minutes      int     `json:"minutes"`
		CPUs         int     `json:"cpus"`
		GPUs         int     `json:"gpus"`
		Priority     int     `json:"priority"`
		ID           string  `json:"id"`
		State        string  `json:"state"`
		Remaining    int     `json:"remaining"`
		AssignedNode *string `json:"assigned_node"`
		SubmitTime   int     `json:"submit_time"`
		StartTime    *int    `json:"start_time"`
		EndTime      *int    `json:"end_time"`
	}

	wireJobs := make(map[string]wireJob, len(jobs))
	for id, j := range jobs {
		wireJobs[id] = wireJob{
			Name:         j.Name,
			Minutes:      j.Minutes,
			CPUs:         j.CPUs,
			GPUs:         j.GPUs,
			Priority:     j.Priority,
			ID:           j.ID,
			State:        string(j.State),
			Remaining:    j.Remaining,
			AssignedNode: j.AssignedNode,
			SubmitTime:   j.SubmitTime,
			StartTime:    j.StartTime,
			EndTime:      j.EndTime,
		}
	}

	out := struct {
		Cluster struct {
			Now   int                      `json:"now"`
			Nodes map[string]*cluster.Node `json:"nodes"`
		} `json:"cluster"`
		Jobs map[string]wireJob `json:"jobs"`
	}{}
	out.Cluster.Now = now
	out.Cluster.Nodes = nodes
	out.Jobs = wireJobs

	return json.MarshalIndent(out, "", "  ")
}
