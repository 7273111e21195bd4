// Package store persists analysis batches in PostgreSQL and answers point
// and range queries against stored batches. A batch is written exactly once,
// inside a single transaction, and never updated afterwards.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Jaytech9/galamsay-analysis/internal/analysis"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx operations the store needs.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Store provides batch-oriented persistence for analysis results.
// Reads go through db so they work inside a transaction as well; writes
// need the pool to open their own transaction.
type Store struct {
	pool *pgxpool.Pool
	db   DBTX
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// schema statements are individually idempotent so Init can run on every
// boot without tracking migration state.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS galamsay_sites (
		id BIGSERIAL PRIMARY KEY,
		city TEXT NOT NULL,
		region TEXT NOT NULL,
		num_sites INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		batch_id TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_log (
		id BIGSERIAL PRIMARY KEY,
		batch_id TEXT NOT NULL UNIQUE,
		analysis_timestamp TIMESTAMPTZ NOT NULL DEFAULT now(),
		total_sites INTEGER NOT NULL,
		total_valid_records INTEGER NOT NULL,
		total_invalid_records INTEGER NOT NULL,
		highest_region TEXT NOT NULL,
		highest_region_sites INTEGER NOT NULL,
		threshold_used INTEGER NOT NULL,
		cities_above_threshold_count INTEGER NOT NULL,
		average_per_region JSONB NOT NULL,
		region_summary JSONB NOT NULL,
		cities_above_threshold JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invalid_records (
		id BIGSERIAL PRIMARY KEY,
		batch_id TEXT NOT NULL,
		row_number INTEGER NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		num_sites_raw TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_galamsay_region ON galamsay_sites (region)`,
	`CREATE INDEX IF NOT EXISTS idx_galamsay_batch ON galamsay_sites (batch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_batch ON analysis_log (batch_id)`,
}

// Init creates the tables and indexes. Safe to call any number of times.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

const insertLogSQL = `
	INSERT INTO analysis_log (
		batch_id, analysis_timestamp, total_sites, total_valid_records,
		total_invalid_records, highest_region, highest_region_sites,
		threshold_used, cities_above_threshold_count, average_per_region,
		region_summary, cities_above_threshold
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const insertInvalidSQL = `
	INSERT INTO invalid_records (batch_id, row_number, city, region, num_sites_raw, reason)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Save writes the batch's valid records, log entry and invalid records in a
// single transaction and returns the generated batch id. On success the
// batch is stamped with its id and creation timestamp; a failed save leaves
// no partial batch visible and the batch unstamped.
func (s *Store) Save(ctx context.Context, batch *analysis.Batch) (string, error) {
	// Microsecond precision matches both the batch id format and the
	// timestamptz column, so a read-back timestamp compares equal.
	now := time.Now().UTC().Truncate(time.Microsecond)
	batchID := GenerateBatchID(now)

	avgBlob, err := encodeBlob(kindAverages, batch.AveragePerRegion)
	if err != nil {
		return "", err
	}
	summaryBlob, err := encodeBlob(kindSummaries, batch.RegionSummaries)
	if err != nil {
		return "", err
	}
	citiesBlob, err := encodeBlob(kindCities, batch.CitiesAboveThreshold)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	// Bulk insert sites via COPY; column defaults fill id and created_at.
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"galamsay_sites"},
		[]string{"city", "region", "num_sites", "batch_id"},
		pgx.CopyFromSlice(len(batch.ValidRecords), func(i int) ([]any, error) {
			r := batch.ValidRecords[i]
			return []any{r.City, r.Region, r.NumSites, batchID}, nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("copy sites: %w", err)
	}

	_, err = tx.Exec(ctx, insertLogSQL,
		batchID,
		now,
		batch.TotalSites,
		len(batch.ValidRecords),
		len(batch.InvalidRecords),
		batch.HighestRegion.Region,
		batch.HighestRegion.TotalSites,
		batch.ThresholdUsed,
		len(batch.CitiesAboveThreshold),
		avgBlob,
		summaryBlob,
		citiesBlob,
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis log: %w", err)
	}

	if len(batch.InvalidRecords) > 0 {
		b := &pgx.Batch{}
		for _, inv := range batch.InvalidRecords {
			b.Queue(insertInvalidSQL, batchID, inv.Row, inv.City, inv.Region, inv.RawCount, inv.Reason)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return "", fmt.Errorf("insert invalid records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}

	batch.BatchID = batchID
	batch.CreatedAt = now
	return batchID, nil
}
