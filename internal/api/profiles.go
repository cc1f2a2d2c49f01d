package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gesturelab/motionpipe/internal/config"
	"github.com/gesturelab/motionpipe/internal/db"
	"github.com/gesturelab/motionpipe/internal/httputil"
	"github.com/gesturelab/motionpipe/internal/pipeline"
)

// ProfileRequest represents the request body for creating/updating tuning profiles
type ProfileRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Config      config.TuningConfig `json:"config"`
}

// requireDB rejects profile routes on servers started without a database.
func (s *Server) requireDB(w http.ResponseWriter) bool {
	if s.db == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "Profile store not configured")
		return false
	}
	return true
}

// handleProfilesOrCreate handles GET and POST to /api/profiles
func (s *Server) handleProfilesOrCreate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListProfiles(w, r)
	case http.MethodPost:
		s.handleCreateProfile(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleListProfiles handles GET /api/profiles - List all tuning profiles
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	profiles, err := s.db.ListProfiles()
	if err != nil {
		log.Printf("Error fetching tuning profiles: %v", err)
		httputil.InternalServerError(w, "Failed to fetch tuning profiles")
		return
	}

	httputil.WriteJSONOK(w, profiles)
}

// handleProfileByID handles GET/PUT/DELETE /api/profiles/:id and
// POST /api/profiles/:id/activate
func (s *Server) handleProfileByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	// Extract ID from URL path
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/profiles/"), "/")
	if len(pathParts) == 0 || pathParts[0] == "" {
		httputil.BadRequest(w, "Missing profile ID")
		return
	}

	id, err := strconv.Atoi(pathParts[0])
	if err != nil {
		httputil.BadRequest(w, "Invalid profile ID")
		return
	}

	if len(pathParts) > 1 && pathParts[1] != "" {
		if pathParts[1] != "activate" {
			httputil.NotFound(w, "Unknown profile action")
			return
		}
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		s.handleActivateProfile(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetProfile(w, r, id)
	case http.MethodPut:
		s.handleUpdateProfile(w, r, id)
	case http.MethodDelete:
		s.handleDeleteProfile(w, r, id)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleGetProfile handles GET /api/profiles/:id
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, id int) {
	profile, err := s.db.GetProfile(id)
	if err != nil {
		log.Printf("Error fetching tuning profile %d: %v", id, err)
		httputil.InternalServerError(w, "Failed to fetch tuning profile")
		return
	}

	if profile == nil {
		httputil.NotFound(w, "Profile not found")
		return
	}

	httputil.WriteJSONOK(w, profile)
}

// handleCreateProfile handles POST /api/profiles
func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	if !s.requireDB(w) {
		return
	}

	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid request body")
		return
	}

	// Validate required fields
	if req.Name == "" {
		httputil.BadRequest(w, "Name is required")
		return
	}
	if err := req.Config.Validate(); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid config: %v", err))
		return
	}

	profile := &db.TuningProfile{
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
	}

	if err := s.db.CreateProfile(profile); err != nil {
		log.Printf("Error creating tuning profile: %v", err)
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			httputil.Conflict(w, "Profile with this name already exists")
			return
		}
		httputil.InternalServerError(w, "Failed to create tuning profile")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, profile)
}

// handleUpdateProfile handles PUT /api/profiles/:id
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, id int) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "Invalid request body")
		return
	}

	// Validate required fields
	if req.Name == "" {
		httputil.BadRequest(w, "Name is required")
		return
	}
	if err := req.Config.Validate(); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Invalid config: %v", err))
		return
	}

	profile := &db.TuningProfile{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Config:      req.Config,
	}

	if err := s.db.UpdateProfile(profile); err != nil {
		log.Printf("Error updating tuning profile %d: %v", id, err)
		if strings.Contains(err.Error(), "not found") {
			httputil.NotFound(w, "Profile not found")
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			httputil.Conflict(w, "Profile with this name already exists")
			return
		}
		httputil.InternalServerError(w, "Failed to update tuning profile")
		return
	}

	// Fetch the updated profile to return it
	updated, err := s.db.GetProfile(id)
	if err != nil {
		log.Printf("Error fetching updated profile: %v", err)
		httputil.InternalServerError(w, "Profile updated but failed to fetch")
		return
	}

	httputil.WriteJSONOK(w, updated)
}

// handleDeleteProfile handles DELETE /api/profiles/:id
func (s *Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request, id int) {
	if err := s.db.DeleteProfile(id); err != nil {
		log.Printf("Error deleting tuning profile %d: %v", id, err)
		if strings.Contains(err.Error(), "not found") {
			httputil.NotFound(w, "Profile not found")
			return
		}
		httputil.InternalServerError(w, "Failed to delete tuning profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleActivateProfile handles POST /api/profiles/:id/activate. Activation
// both marks the profile active in the store and applies its tuning to the
// running pipeline, so the stored state and the live state cannot drift.
func (s *Server) handleActivateProfile(w http.ResponseWriter, r *http.Request, id int) {
	profile, err := s.db.GetProfile(id)
	if err != nil {
		log.Printf("Error fetching tuning profile %d: %v", id, err)
		httputil.InternalServerError(w, "Failed to fetch tuning profile")
		return
	}
	if profile == nil {
		httputil.NotFound(w, "Profile not found")
		return
	}

	tuning := pipeline.TuningFromConfig(&profile.Config)
	if err := s.rt.ApplyTuning(tuning); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("Profile tuning rejected: %v", err))
		return
	}

	if err := s.db.SetActiveProfile(id); err != nil {
		log.Printf("Error activating tuning profile %d: %v", id, err)
		httputil.InternalServerError(w, "Tuning applied but failed to mark profile active")
		return
	}

	activated, err := s.db.GetProfile(id)
	if err != nil {
		log.Printf("Error fetching activated profile: %v", err)
		httputil.InternalServerError(w, "Profile activated but failed to fetch")
		return
	}

	httputil.WriteJSONOK(w, activated)
}
