package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dd0wney/scout/pkg/jobs"
	"github.com/dd0wney/scout/pkg/mapdata"
)

// Messages carried in map payloads and 400 answers. The explorer shows
// them as they are.
const (
	msgInvalidJobIDFormat = "Invalid job ID format"
	msgInvalidRequest     = "Invalid request data"
	msgInvalidJobIDs      = "Invalid job IDs"
	msgBodyTooLarge       = "Request body too large"
)

// handleMapData answers GET /map_data?query=. No match is an empty map,
// never an error status.
func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.service().MapData(r.URL.Query().Get("query")))
}

// handleJobAsQuery answers GET /job_as_query?job_id=. A malformed or
// unknown id is an empty map carrying an error message.
func (s *Server) handleJobAsQuery(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("job_id")), 10, 64)
	if err != nil {
		s.respondJSON(w, http.StatusOK, &jobs.MapData{
			Related: []jobs.Job{},
			Error:   msgInvalidJobIDFormat,
		})
		return
	}
	s.respondJSON(w, http.StatusOK, s.service().JobAsQuery(id))
}

// handleReinforce answers POST /reinforce with a map around the center and
// the selected jobs.
func (s *Server) handleReinforce(w http.ResponseWriter, r *http.Request) {
	var req jobs.ReinforceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		s.respondError(w, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	out, err := s.service().Reinforce(req)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, out)
	case errors.Is(err, mapdata.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, msgInvalidRequest)
	case errors.Is(err, mapdata.ErrInvalidJobID):
		s.respondError(w, http.StatusBadRequest, msgInvalidJobIDs)
	default:
		s.respondError(w, http.StatusInternalServerError, s.sanitizeError(r, err, "reinforce"))
	}
}

// handleSearch answers GET /search?query= with a plain ranked list.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, _ := s.service().Search(r.URL.Query().Get("query"))
	s.respondJSON(w, http.StatusOK, results)
}
