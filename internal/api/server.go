// Package api exposes the pipeline runtime over HTTP: health and stats
// snapshots, live tuning swaps, profile CRUD backed by internal/db, the
// capture ring, a websocket event stream, and an echarts debug chart.
package api

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gesturelab/motionpipe/internal/db"
	"github.com/gesturelab/motionpipe/internal/eventbus"
	"github.com/gesturelab/motionpipe/internal/pipeline"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Server wires the HTTP surface to the pipeline runtime, the profiles
// database, and the event bus. db and bus may be nil; the routes that need
// them respond with an error instead of panicking.
type Server struct {
	rt      *pipeline.Runtime
	db      *db.DB
	bus     *eventbus.Bus[pipeline.Event]
	started time.Time
}

func NewServer(rt *pipeline.Runtime, database *db.DB, bus *eventbus.Bus[pipeline.Event]) *Server {
	return &Server{
		rt:      rt,
		db:      database,
		bus:     bus,
		started: time.Now(),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack passes through to the wrapped writer so websocket upgrades work
// behind the middleware.
func (lrw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := lrw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("response writer does not support hijacking")
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/tuning", s.handleTuning)
	mux.HandleFunc("/api/profiles", s.handleProfilesOrCreate)
	mux.HandleFunc("/api/profiles/", s.handleProfileByID)
	mux.HandleFunc("/api/captures/recent", s.handleRecentCaptures)
	mux.HandleFunc("/api/live", s.handleLiveWS)
	mux.HandleFunc("/debug/charts/capture", s.handleCaptureChart)
	return mux
}
