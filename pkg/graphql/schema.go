// Package graphql exposes the map-data queries over GraphQL: mapData,
// jobAsQuery and search as queries, reinforce as a mutation. Results are
// the same payloads the REST endpoints return.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/scout/pkg/jobs"
)

// Resolver answers the map-data queries. mapdata.Service implements it.
type Resolver interface {
	MapData(query string) *jobs.MapData
	JobAsQuery(id int64) *jobs.MapData
	Reinforce(req jobs.ReinforceRequest) (*jobs.MapData, error)
	Search(query string) ([]jobs.Job, string)
}

// searchResult is the source value of the SearchResult type.
type searchResult struct {
	strategy string
	jobs     []jobs.Job
}

// GenerateSchema builds the schema over r.
func GenerateSchema(r Resolver) (graphql.Schema, error) {
	jobType := createJobType()
	mapDataType := createMapDataType(jobType)
	searchType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchResult",
		Fields: graphql.Fields{
			"strategy": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(searchResult).strategy, nil
				},
			},
			"jobs": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(jobType))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(searchResult).jobs, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"mapData": &graphql.Field{
				Type:        graphql.NewNonNull(mapDataType),
				Description: "The best match for a free-text query and its related jobs",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.MapData(p.Args["query"].(string)), nil
				},
			},
			"jobAsQuery": &graphql.Field{
				Type:        graphql.NewNonNull(mapDataType),
				Description: "A catalog job as the center of a new map",
				Args: graphql.FieldConfigArgument{
					"jobId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return r.JobAsQuery(int64(p.Args["jobId"].(int))), nil
				},
			},
			"search": &graphql.Field{
				Type: graphql.NewNonNull(searchType),
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					found, strategy := r.Search(p.Args["query"].(string))
					return searchResult{strategy: strategy, jobs: found}, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"reinforce": &graphql.Field{
				Type:        graphql.NewNonNull(mapDataType),
				Description: "A new map around a center, seeded with up to three selected jobs",
				Args: graphql.FieldConfigArgument{
					"centerId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"selectedIds": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int))),
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					req := jobs.ReinforceRequest{CenterID: int64(p.Args["centerId"].(int))}
					for _, id := range p.Args["selectedIds"].([]any) {
						req.SelectedIDs = append(req.SelectedIDs, int64(id.(int)))
					}
					return r.Reinforce(req)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// jobField resolves a scalar field of a job source.
func jobField(t graphql.Output, get func(j *jobs.Job) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			switch j := p.Source.(type) {
			case jobs.Job:
				return get(&j), nil
			case *jobs.Job:
				return get(j), nil
			}
			return nil, nil
		},
	}
}

func createJobType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Job",
		Fields: graphql.Fields{
			"id": jobField(graphql.NewNonNull(graphql.Int), func(j *jobs.Job) any { return j.ID }),
			"originalId": jobField(graphql.Int, func(j *jobs.Job) any {
				if id, ok := j.ExternalID(); ok {
					return int(id)
				}
				return nil
			}),
			"title":           jobField(graphql.NewNonNull(graphql.String), func(j *jobs.Job) any { return j.Title }),
			"description":     jobField(graphql.NewNonNull(graphql.String), func(j *jobs.Job) any { return j.Description }),
			"company":         jobField(graphql.String, func(j *jobs.Job) any { return j.Company }),
			"salaryMin":       jobField(graphql.Float, func(j *jobs.Job) any { return j.SalaryMin }),
			"salaryMax":       jobField(graphql.Float, func(j *jobs.Job) any { return j.SalaryMax }),
			"salaryRange":     jobField(graphql.String, func(j *jobs.Job) any { return j.SalaryRange() }),
			"experienceLevel": jobField(graphql.String, func(j *jobs.Job) any { return j.ExperienceLevel }),
			"skills":          jobField(graphql.NewList(graphql.String), func(j *jobs.Job) any { return j.Skills }),
			"score":           jobField(graphql.Float, func(j *jobs.Job) any { return j.Score }),
		},
	})
}

func createMapDataType(jobType *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "MapData",
		Fields: graphql.Fields{
			"center": &graphql.Field{
				Type: jobType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if m := p.Source.(*jobs.MapData); m.Center != nil {
						return m.Center, nil
					}
					return nil, nil
				},
			},
			"related": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(jobType))),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if related := p.Source.(*jobs.MapData).Related; related != nil {
						return related, nil
					}
					return []jobs.Job{}, nil
				},
			},
			"error": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if e := p.Source.(*jobs.MapData).Error; e != "" {
						return e, nil
					}
					return nil, nil
				},
			},
		},
	})
}
