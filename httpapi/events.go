// SPDX-License-Identifier: Apache-2.0

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/slurmsim/slurmsim/cluster"
	"github.com/slurmsim/slurmsim/store"
)

// pollInterval is how often the event stream re-reads the state document
// looking for tick/placement/completion changes to push. This server has no
// in-memory state of its own (spec.md §5's single-owner model), so live
// events are derived by polling and diffing rather than subscribing to the
// engine directly.
const pollInterval = 500 * time.Millisecond

// EventType classifies a pushed stream message.
type EventType string

const (
	EventTick      EventType = "tick"
	EventPlaced    EventType = "job_placed"
	EventCompleted EventType = "job_completed"
)

// StreamEvent is a single message pushed over the /events WebSocket.
type StreamEvent struct {
	Type      EventType `json:"type"`
	Now       int       `json:"now"`
	JobID     string    `json:"job_id,omitempty"`
	NodeID    string    `json:"node_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// simulator runs for local/trusted use; no origin restriction
		return true
	},
}

// handleEvents upgrades to a WebSocket and pushes tick/placement/completion
// events as the on-disk state document changes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// This endpoint is push-only; the read loop exists only to notice the
	// client going away (close frame or dropped connection).
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.streamEvents(ctx, conn)
}

// streamEvents polls s.StatePath on pollInterval and diffs each snapshot
// against the previous one, emitting a tick event on any clock advance and a
// placement/completion event for every job whose state changed. A job not
// seen by an earlier poll counts as changed, so the first poll also reports
// every job that is already RUNNING or DONE.
func (s *Server) streamEvents(ctx context.Context, conn *websocket.Conn) {
	prevNow := 0
	prevState := map[string]cluster.JobState{}

	// Capture the clock immediately on connect so a clock advance that lands
	// between connect and the first tick is still observed as a diff on the
	// first poll, instead of silently becoming the new baseline. Job states
	// are not captured here; they are first recorded by the first poll.
	if c, _, err := store.Load(s.StatePath); err == nil {
		prevNow = c.Now
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c, jobs, err := store.Load(s.StatePath)
			if err != nil {
				s.logger.Warn("event stream skipped a poll", "error", err)
				continue
			}

			if c.Now != prevNow {
				s.sendEvent(conn, StreamEvent{Type: EventTick, Now: c.Now, Timestamp: time.Now()})
			}
			prevNow = c.Now

			for _, id := range jobs.AllIDs() {
				job := jobs[id]
				if prev, seen := prevState[id]; seen && prev == job.State {
					continue
				}
				prevState[id] = job.State

				switch job.State {
				case cluster.Running:
					node := ""
					if job.AssignedNode != nil {
						node = *job.AssignedNode
					}
					s.sendEvent(conn, StreamEvent{
						Type: EventPlaced, Now: c.Now, JobID: job.ID, NodeID: node, Timestamp: time.Now(),
					})
				case cluster.Done:
					s.sendEvent(conn, StreamEvent{
						Type: EventCompleted, Now: c.Now, JobID: job.ID, Timestamp: time.Now(),
					})
				}
			}
		}
	}
}

func (s *Server) sendEvent(conn *websocket.Conn, evt StreamEvent) {
	if err := conn.WriteJSON(evt); err != nil {
		s.logger.Warn("websocket write failed", "error", err)
	}
}
