// SPDX-License-Identifier: Apache-2.0

// Package httpapi serves the current persisted cluster/job state read-only.
// It never mutates state: every handler re-loads the document from disk, so
// it can run alongside a separate `run` driver without sharing in-memory
// state, per spec.md §5's single-owner model.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	schedulererrors "github.com/slurmsim/slurmsim/pkg/errors"
	"github.com/slurmsim/slurmsim/pkg/logging"
	"github.com/slurmsim/slurmsim/pkg/middleware"
	"github.com/slurmsim/slurmsim/store"
)

// Server exposes read-only cluster/job endpoints backed by the state
// document at StatePath.
type Server struct {
	StatePath string
	Policy    string

	logger  logging.Logger
	handler http.Handler
}

// NewServer builds a Server reading statePath on every request.
func NewServer(statePath, policy string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	s := &Server{StatePath: statePath, Policy: policy, logger: logger}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/cluster", s.handleCluster).Methods(http.MethodGet)
	router.HandleFunc("/jobs", s.handleJobs).Methods(http.MethodGet)
	router.HandleFunc("/jobs/{id}", s.handleJob).Methods(http.MethodGet)
	router.HandleFunc("/events", s.handleEvents)

	chain := middleware.Chain(
		middleware.WithRequestID(func() string { return uuid.New().String() }),
		middleware.WithRecover(logger),
		middleware.WithLogging(logger),
	)
	s.handler = chain(router)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type clusterResponse struct {
	Now        int     `json:"now"`
	Policy     string  `json:"policy"`
	NodeCount  int     `json:"node_count"`
	CPUPercent float64 `json:"cpu_utilization_pct"`
	GPUPercent float64 `json:"gpu_utilization_pct"`
}

func (s *Server) handleCluster(w http.ResponseWriter, r *http.Request) {
	c, _, err := store.Load(s.StatePath)
	if err != nil {
		writeError(w, err)
		return
	}

	cpuPct, gpuPct := c.TotalUtilization()
	resp := clusterResponse{
		Now:        c.Now,
		Policy:     cases.Title(language.English).String(s.Policy),
		NodeCount:  len(c.NodeOrder()),
		CPUPercent: cpuPct,
		GPUPercent: gpuPct,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	_, jobs, err := store.Load(s.StatePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	_, jobs, err := store.Load(s.StatePath)
	if err != nil {
		writeError(w, err)
		return
	}

	job, ok := jobs[id]
	if !ok {
		writeError(w, schedulererrors.NewNotFoundError("job", id))
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch schedulererrors.CodeOf(err) {
	case schedulererrors.ErrorCodeMalformedState:
		status = http.StatusUnprocessableEntity
	case schedulererrors.ErrorCodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
