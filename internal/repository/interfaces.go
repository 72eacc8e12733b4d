package repository

import (
	"context"

	"github.com/rpggio/geodash/internal/domain/record"
)

// RecordRepository manages the stored project dataset
type RecordRepository interface {
	record.Provider
	record.StatusLister
	ReplaceAll(ctx context.Context, records []record.Record) error
	Get(ctx context.Context, id int64) (*record.Record, error)
	Count(ctx context.Context) (int, error)
}
