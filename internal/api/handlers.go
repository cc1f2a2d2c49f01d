package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gesturelab/motionpipe/internal/httputil"
	"github.com/gesturelab/motionpipe/internal/pipeline"
	"github.com/gesturelab/motionpipe/internal/version"
)

// handleHealth handles GET /api/health - liveness plus build identity
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":     "ok",
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
		"uptime_sec": int64(time.Since(s.started).Seconds()),
	})
}

// statsResponse extends the pipeline counters with the debug-surface gauges
// owned by the server.
type statsResponse struct {
	pipeline.Stats
	HistoryLen      int `json:"history_len"`
	LiveSubscribers int `json:"live_subscribers"`
}

// handleStats handles GET /api/stats - session counters snapshot
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	resp := statsResponse{
		Stats:      s.rt.Stats(),
		HistoryLen: s.rt.History().Len(),
	}
	if s.bus != nil {
		resp.LiveSubscribers = s.bus.SubscriberCount()
	}
	httputil.WriteJSONOK(w, resp)
}

// handleTuning handles GET and PUT /api/tuning. PUT replaces the whole
// parameter set; there is no field-level merge because a tuning swap resets
// the session anyway.
func (s *Server) handleTuning(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, s.rt.Tuning())

	case http.MethodPut:
		var t pipeline.Tuning
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			httputil.BadRequest(w, "Invalid request body")
			return
		}
		if err := s.rt.ApplyTuning(t); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("Invalid tuning: %v", err))
			return
		}
		httputil.WriteJSONOK(w, s.rt.Tuning())

	default:
		httputil.MethodNotAllowed(w)
	}
}
