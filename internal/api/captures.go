package api

import (
	"net/http"
	"strconv"

	"github.com/gesturelab/motionpipe/internal/httputil"
)

// handleRecentCaptures handles GET /api/captures/recent - newest captures
// first. The optional 'n' parameter limits the count; omitted or zero
// returns everything still in the ring.
func (s *Server) handleRecentCaptures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	n := 0
	if q := r.URL.Query().Get("n"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'n' parameter")
			return
		}
		n = parsed
	}

	httputil.WriteJSONOK(w, s.rt.History().Recent(n))
}
