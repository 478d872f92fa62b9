// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/slurmsim/slurmsim/cluster"
	"github.com/slurmsim/slurmsim/httpapi"
	"github.com/slurmsim/slurmsim/internal/idgen"
	"github.com/slurmsim/slurmsim/pkg/config"
	schedulererrors "github.com/slurmsim/slurmsim/pkg/errors"
	"github.com/slurmsim/slurmsim/pkg/logging"
	"github.com/slurmsim/slurmsim/pkg/metrics"
	"github.com/slurmsim/slurmsim/scheduler"
	"github.com/slurmsim/slurmsim/store"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = ""
	Commit    = ""

	// Global flags
	statePath string
	debug     bool

	logger logging.Logger

	rootCmd = &cobra.Command{
		Use:     "slurmsim",
		Short:   "Batch-workload scheduler simulator",
		Long:    `A discrete-time simulator for batch-workload scheduling policies over a heterogeneous compute cluster.`,
		Version: Version,
	}
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime)

	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "path to the state document (env: SLURMSIM_STATE_PATH)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(squeueCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(loadSamplesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(docsCmd)
}

// resolvedStatePath returns the effective state document path: the --state
// flag if set, otherwise the configured default.
func resolvedStatePath() string {
	if statePath != "" {
		return statePath
	}
	return config.NewDefault().StatePath
}

func newLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	if debug {
		cfg.Level = -4 // slog.LevelDebug
	}
	return logging.NewLogger(cfg)
}

// recoverAndExit converts a scheduler panic (spec.md §7's "abort with a
// diagnostic" for corrupt state) into a printed error and a non-zero exit,
// instead of an unhandled crash.
func recoverAndExit() {
	if r := recover(); r != nil {
		if se, ok := r.(*schedulererrors.SchedulerError); ok {
			fmt.Fprintln(os.Stderr, se.Error())
		} else {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", r)
		}
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("slurmsim version %s\n", Version)
		if BuildTime != "" {
			fmt.Printf("Build Time: %s\n", BuildTime)
		}
		if Commit != "" {
			fmt.Printf("Commit:     %s\n", Commit)
		}
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a pending job",
	Run: func(cmd *cobra.Command, args []string) {
		defer recoverAndExit()
		logger = newLogger()

		name, _ := cmd.Flags().GetString("name")
		minutes, _ := cmd.Flags().GetInt("minutes")
		cpus, _ := cmd.Flags().GetInt("cpus")
		gpus, _ := cmd.Flags().GetInt("gpus")
		priority, _ := cmd.Flags().GetInt("priority")

		if minutes <= 0 {
			log.Fatal(schedulererrors.NewInvalidInputError("minutes", minutes))
		}
		if cpus <= 0 {
			log.Fatal(schedulererrors.NewInvalidInputError("cpus", cpus))
		}
		if gpus < 0 {
			log.Fatal(schedulererrors.NewInvalidInputError("gpus", gpus))
		}
		if priority < 0 {
			log.Fatal(schedulererrors.NewInvalidInputError("priority", priority))
		}

		path := resolvedStatePath()
		c, jobs, err := store.Load(path)
		if err != nil {
			log.Fatal(err)
		}

		id := idgen.NewJobID()
		job := cluster.NewJob(id, name, minutes, cpus, gpus, priority, c.Now)
		jobs[id] = job

		if err := store.Save(path, c, jobs, logger); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("submitted job %s\n", id)
	},
}

func init() {
	submitCmd.Flags().String("name", "", "job name")
	submitCmd.Flags().Int("minutes", 0, "requested wall-time in minutes (required)")
	submitCmd.Flags().Int("cpus", 0, "CPU cores required (required)")
	submitCmd.Flags().Int("gpus", 0, "GPU count required")
	submitCmd.Flags().Int("priority", 0, "priority (higher runs earlier)")
}

var squeueCmd = &cobra.Command{
	Use:   "squeue",
	Short: "List jobs and their current state",
	Run: func(cmd *cobra.Command, args []string) {
		defer recoverAndExit()

		c, jobs, err := store.Load(resolvedStatePath())
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("== Time: %d min ==\n", c.Now)
		for _, id := range jobs.AllIDs() {
			j := jobs[id]
			node := "None"
			if j.AssignedNode != nil {
				node = *j.AssignedNode
			}
			fmt.Printf("%s %s %s rem=%dm node=%s\n", j.ID, j.State, j.Name, j.Remaining, node)
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Advance the simulation for a configured duration",
	Run: func(cmd *cobra.Command, args []string) {
		defer recoverAndExit()
		logger = newLogger()

		nodes, _ := cmd.Flags().GetInt("nodes")
		cpusPerNode, _ := cmd.Flags().GetInt("cpus-per-node")
		gpusPerNode, _ := cmd.Flags().GetInt("gpus-per-node")
		policy, _ := cmd.Flags().GetString("policy")
		tick, _ := cmd.Flags().GetInt("tick")
		duration, _ := cmd.Flags().GetInt("duration")
		printMetrics, _ := cmd.Flags().GetBool("metrics")

		path := resolvedStatePath()
		c, jobs, err := store.Load(path)
		if err != nil {
			log.Fatal(err)
		}

		if len(c.NodeOrder()) == 0 {
			c.AddNodes(nodes, cpusPerNode, gpusPerNode)
		}

		collector := metrics.NewInMemoryCollector()
		engine := scheduler.NewEngine(policy, scheduler.WithLogger(logger), scheduler.WithMetrics(collector))

		if tick <= 0 {
			log.Fatal(schedulererrors.NewInvalidInputError("tick", tick))
		}

		for i := 0; i < duration/tick; i++ {
			engine.TrySchedule(c, jobs)
			engine.AdvanceTime(c, jobs, tick)
		}

		if err := store.Save(path, c, jobs, logger); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("ran %d ticks, now=%d\n", duration/tick, c.Now)

		if printMetrics {
			stats := collector.GetStats()
			fmt.Printf("placements=%d backfill_admissions=%d ticks=%d cpu_util=%.1f%% gpu_util=%.1f%%\n",
				stats.TotalPlacements, stats.TotalBackfillAdmissions, stats.TotalTicks,
				stats.LastCPUUtilization, stats.LastGPUUtilization)
		}
	},
}

func init() {
	runCmd.Flags().Int("nodes", 4, "node count to provision if the cluster is empty")
	runCmd.Flags().Int("cpus-per-node", 16, "CPU cores per provisioned node")
	runCmd.Flags().Int("gpus-per-node", 2, "GPU count per provisioned node")
	runCmd.Flags().String("policy", "fifo", "placement policy: fifo, priority, or backfill")
	runCmd.Flags().Int("tick", 5, "simulated minutes advanced per alternation")
	runCmd.Flags().Int("duration", 60, "total simulated minutes to run")
	runCmd.Flags().Bool("metrics", false, "print a one-line metrics summary after the run")
}

type sampleJob struct {
	Name     string `json:"name"`
	Minutes  int    `json:"minutes"`
	CPUs     int    `json:"cpus"`
	GPUs     int    `json:"gpus"`
	Priority int    `json:"priority"`
}

var loadSamplesCmd = &cobra.Command{
	Use:   "load-samples",
	Short: "Submit jobs in bulk from a JSON sample file",
	Run: func(cmd *cobra.Command, args []string) {
		defer recoverAndExit()
		logger = newLogger()

		samplePath, _ := cmd.Flags().GetString("path")
		if samplePath == "" {
			log.Fatal("--path is required")
		}

		data, err := os.ReadFile(samplePath)
		if err != nil {
			log.Fatal(err)
		}

		var samples []sampleJob
		if err := json.Unmarshal(data, &samples); err != nil {
			log.Fatal(schedulererrors.NewMalformedStateError(samplePath, err))
		}

		path := resolvedStatePath()
		c, jobs, err := store.Load(path)
		if err != nil {
			log.Fatal(err)
		}

		for _, s := range samples {
			id := idgen.NewJobID()
			jobs[id] = cluster.NewJob(id, s.Name, s.Minutes, s.CPUs, s.GPUs, s.Priority, c.Now)
		}

		if err := store.Save(path, c, jobs, logger); err != nil {
			log.Fatal(err)
		}

		fmt.Printf("submitted %d jobs from %s\n", len(samples), samplePath)
	},
}

func init() {
	loadSamplesCmd.Flags().String("path", "", "path to a JSON array of {name, minutes, cpus, gpus?, priority?} (required)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the current simulation state over HTTP, read-only",
	Run: func(cmd *cobra.Command, args []string) {
		logger = newLogger()

		addr, _ := cmd.Flags().GetString("http")
		policy, _ := cmd.Flags().GetString("policy")

		server := httpapi.NewServer(resolvedStatePath(), policy, logger)
		logger.Info("serving cluster status", "addr", addr, "state_path", resolvedStatePath())
		log.Fatal(http.ListenAndServe(addr, server))
	},
}

func init() {
	serveCmd.Flags().String("http", ":8089", "listen address for the read-only status server")
	serveCmd.Flags().String("policy", "fifo", "policy label to report in /cluster responses")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
