package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/repository"
)

// RecordRepository stores the project dataset in SQLite. It doubles as a
// record.Provider for the explorer.
type RecordRepository struct {
	db *DB
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ReplaceAll swaps the stored dataset for records in one transaction,
// keeping their order.
func (r *RecordRepository) ReplaceAll(ctx context.Context, records []record.Record) error {
	if err := record.ValidateAll(records); err != nil {
		return fmt.Errorf("%w: %w", repository.ErrInvalidInput, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("failed to clear projects: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO projects (
			id, project_name, category, latitude, longitude, status, last_updated, region
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			rec.ID,
			rec.ProjectName,
			rec.Category,
			rec.Latitude,
			rec.Longitude,
			string(rec.Status),
			nullTime(rec.LastUpdated),
			rec.Region,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %d", record.ErrDuplicateID, rec.ID)
			}
			if isCheckViolation(err) {
				return fmt.Errorf("%w: record %d", repository.ErrInvalidInput, rec.ID)
			}
			return fmt.Errorf("failed to insert project %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

var _ repository.RecordRepository = (*RecordRepository)(nil)

// Fetch reads every stored project in insertion order.
func (r *RecordRepository) Fetch(ctx context.Context) ([]record.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_name, category, latitude, longitude, status, last_updated, region
		FROM projects
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return records, nil
}

// Get retrieves a project by ID
func (r *RecordRepository) Get(ctx context.Context, id int64) (*record.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_name, category, latitude, longitude, status, last_updated, region
		FROM projects
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Count returns the number of stored projects.
func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// ListStatuses returns every status.
func (r *RecordRepository) ListStatuses() []record.Status {
	return record.Statuses()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (record.Record, error) {
	var (
		rec     record.Record
		status  string
		updated sql.NullTime
	)
	err := s.Scan(
		&rec.ID,
		&rec.ProjectName,
		&rec.Category,
		&rec.Latitude,
		&rec.Longitude,
		&status,
		&updated,
		&rec.Region,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan project: %w", err)
	}
	rec.Status = record.Status(status)
	if updated.Valid {
		ts := updated.Time.UTC()
		rec.LastUpdated = &ts
	}
	return rec, nil
}
