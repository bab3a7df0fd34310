package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// loadPostgres reads every row of the jobs table in id order.
func loadPostgres(ctx context.Context, databaseURL string, opts Options) ([]Record, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if opts.PostgresMaxConns > 0 {
		config.MaxConns = opts.PostgresMaxConns
	}
	config.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	rows, err := pool.Query(ctx, selectJobs(opts.PostgresTable))
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var r Record
		err := row.Scan(
			&r.Title,
			&r.Description,
			&r.Company,
			&r.SalaryMin,
			&r.SalaryMax,
			&r.ExperienceLevel,
			&r.Skills,
		)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan jobs: %w", err)
	}
	return records, nil
}

// selectJobs builds the catalog query for a possibly schema-qualified
// table name.
func selectJobs(table string) string {
	if table == "" {
		table = "jobs"
	}
	ident := pgx.Identifier(strings.Split(table, ".")).Sanitize()
	return `SELECT title,
	COALESCE(description, ''),
	COALESCE(company, ''),
	COALESCE(salary_min, 0)::float8,
	COALESCE(salary_max, 0)::float8,
	COALESCE(experience_level, ''),
	COALESCE(skills, '{}')::text[]
FROM ` + ident + `
ORDER BY id`
}
