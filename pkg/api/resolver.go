package api

import "github.com/dd0wney/scout/pkg/jobs"

// The Server resolves GraphQL fields through whichever service is current,
// so a reload reaches the schema without rebuilding it.

// MapData resolves the mapData field.
func (s *Server) MapData(query string) *jobs.MapData {
	return s.service().MapData(query)
}

// JobAsQuery resolves the jobAsQuery field.
func (s *Server) JobAsQuery(id int64) *jobs.MapData {
	return s.service().JobAsQuery(id)
}

// Reinforce resolves the reinforce mutation.
func (s *Server) Reinforce(req jobs.ReinforceRequest) (*jobs.MapData, error) {
	return s.service().Reinforce(req)
}

// Search resolves the search field.
func (s *Server) Search(query string) ([]jobs.Job, string) {
	return s.service().Search(query)
}
