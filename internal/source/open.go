package source

import (
	"context"
	"fmt"
	"time"

	"github.com/rpggio/geodash/internal/domain/record"
	"github.com/rpggio/geodash/internal/sqlite"
)

// Source kinds.
const (
	KindGenerated = "generated"
	KindSQLite    = "sqlite"
	KindJSONL     = "jsonl"
	KindS3        = "s3"
	KindPostgres  = "postgres"
)

// Options selects and configures a provider.
type Options struct {
	Kind        string
	Path        string
	Count       int
	Seed        uint64
	Latency     time.Duration
	S3          S3Config
	PostgresDSN string
}

// Open builds the provider described by opts. The returned close function
// releases any connection the provider holds.
func Open(ctx context.Context, opts Options) (record.Provider, func() error, error) {
	noop := func() error { return nil }

	var (
		p       record.Provider
		closeFn = noop
	)
	switch opts.Kind {
	case "", KindGenerated:
		p = NewGenerator(opts.Count, opts.Seed)
	case KindJSONL:
		if opts.Path == "" {
			return nil, noop, fmt.Errorf("jsonl source: path required")
		}
		p = NewJSONL(opts.Path)
	case KindSQLite:
		if opts.Path == "" {
			return nil, noop, fmt.Errorf("sqlite source: path required")
		}
		db, err := sqlite.New(opts.Path)
		if err != nil {
			return nil, noop, err
		}
		if err := db.RunMigrations(); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		p = sqlite.NewRecordRepository(db)
		closeFn = db.Close
	case KindS3:
		s3p, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, noop, err
		}
		p = s3p
	case KindPostgres:
		pg, err := OpenPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		p = pg
		closeFn = pg.Close
	default:
		return nil, noop, fmt.Errorf("unknown source kind %q", opts.Kind)
	}
	return WithLatency(p, opts.Latency), closeFn, nil
}
