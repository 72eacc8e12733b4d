package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rpggio/geodash/internal/domain/record"
)

const selectProjects = `SELECT id, project_name, category, latitude, longitude, status, last_updated, region
FROM projects ORDER BY seq`

// SQL reads the dataset from a projects table over database/sql.
type SQL struct {
	db *sql.DB
}

// OpenPostgres connects to a Postgres database through the pgx driver.
func OpenPostgres(ctx context.Context, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres source: dsn required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return NewSQL(db), nil
}

// NewSQL wraps an open database.
func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// Close closes the database.
func (p *SQL) Close() error {
	return p.db.Close()
}

// Fetch reads every project in insertion order.
func (p *SQL) Fetch(ctx context.Context) ([]record.Record, error) {
	rows, err := p.db.QueryContext(ctx, selectProjects)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var records []record.Record
	for rows.Next() {
		var (
			r       record.Record
			status  string
			updated sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.ProjectName, &r.Category, &r.Latitude, &r.Longitude, &status, &updated, &r.Region); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		r.Status = record.Status(status)
		if updated.Valid {
			ts := updated.Time.UTC()
			r.LastUpdated = &ts
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return records, nil
}

// ListStatuses returns every status.
func (p *SQL) ListStatuses() []record.Status {
	return record.Statuses()
}
