package api

import (
	"github.com/dd0wney/scout/pkg/config"
	"github.com/dd0wney/scout/pkg/logging"
	"github.com/dd0wney/scout/pkg/metrics"
)

// ErrorResponse is the body of every non-2xx REST answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// Options configures a Server.
type Options struct {
	Version string
	Config  config.ServerConfig

	// GraphQLMaxDepth bounds query nesting; zero takes the graphql default.
	GraphQLMaxDepth int

	Logger  logging.Logger
	Metrics *metrics.Registry
}
