package api

import (
	"encoding/json"
	"net/http"

	"github.com/dd0wney/scout/pkg/api/middleware"
	"github.com/dd0wney/scout/pkg/logging"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// sanitizeError logs an internal error in full and returns the message
// safe to show a client.
func (s *Server) sanitizeError(r *http.Request, err error, operation string) string {
	s.logger.Error(operation+" failed",
		logging.Operation(operation),
		logging.String("request_id", middleware.GetRequestID(r)),
		logging.Error(err),
	)
	return operation + " failed"
}
