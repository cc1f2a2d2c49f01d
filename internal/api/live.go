package api

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/gesturelab/motionpipe/internal/httputil"
	"github.com/gesturelab/motionpipe/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; the API binds to a trusted interface
	},
}

// handleLiveWS handles GET /api/live - streams pipeline events to the client
// as JSON. One bus subscription and one writer loop per connection. The bus
// drops events for subscribers whose buffers are full, so a slow client
// thins its own stream instead of stalling the pipeline.
//
// The optional 'type' parameter restricts the stream to "frame" or
// "capture" events.
func (s *Server) handleLiveWS(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "Event bus not configured")
		return
	}

	filter := pipeline.EventType(r.URL.Query().Get("type"))
	if filter != "" && filter != pipeline.EventFrame && filter != pipeline.EventCapture {
		httputil.BadRequest(w, "Invalid 'type' parameter")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id, events := s.bus.Subscribe()
	defer s.bus.Unsubscribe(id)

	// Reader loop: consumes control frames and notices the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filter != "" && ev.Type != filter {
				continue
			}
			if err := conn.WriteJSON(ev); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("live: websocket write error: %v", err)
				}
				return
			}
		case <-done:
			return
		}
	}
}
