package graphql

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/scout/pkg/logging"
)

// Request represents a GraphQL HTTP request
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// Response represents a GraphQL HTTP response
type Response struct {
	Data   any     `json:"data,omitempty"`
	Errors []Error `json:"errors,omitempty"`
}

// Error represents a GraphQL error
type Error struct {
	Message string `json:"message"`
}

// Handler handles GraphQL HTTP requests
type Handler struct {
	schema   graphql.Schema
	maxDepth int
	logger   logging.Logger
}

// NewHandler creates a handler for schema. Queries nested deeper than
// maxDepth are rejected before execution.
func NewHandler(schema graphql.Schema, maxDepth int, logger logging.Logger) *Handler {
	return &Handler{
		schema:   schema,
		maxDepth: maxDepth,
		logger:   logging.OrNop(logger),
	}
}

// ServeHTTP executes a POSTed query. Query errors still answer 200 with an
// errors array; only an unreadable request is a 400.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := Execute(r.Context(), h.schema, req, h.maxDepth)
	response := Response{Data: result.Data}
	if result.HasErrors() {
		response.Errors = make([]Error, len(result.Errors))
		for i, err := range result.Errors {
			response.Errors[i] = Error{Message: err.Message}
		}
		h.logger.Debug("graphql errors",
			logging.Operation(req.OperationName),
			logging.Count(len(result.Errors)),
			logging.String("first", result.Errors[0].Message),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
