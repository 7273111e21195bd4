package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jaytech9/galamsay-analysis/internal/analysis"
	"github.com/jackc/pgx/v5"
)

// Site is a stored valid record tagged with its owning batch.
type Site struct {
	City      string    `json:"city"`
	Region    string    `json:"region"`
	NumSites  int       `json:"num_sites"`
	CreatedAt time.Time `json:"created_at"`
	BatchID   string    `json:"batch_id"`
}

// InvalidRow is a stored invalid record.
type InvalidRow struct {
	ID        int64     `json:"id"`
	BatchID   string    `json:"batch_id"`
	RowNumber int       `json:"row_number"`
	City      string    `json:"city"`
	Region    string    `json:"region"`
	RawCount  string    `json:"num_sites_raw"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchLog is an analysis_log row with its serialized collections decoded.
// Unlike a full Batch it does not carry the per-row record sequences; those
// live in their own tables and are fetched via AllSites and InvalidRecords.
type BatchLog struct {
	BatchID                   string                   `json:"batch_id"`
	AnalysisTimestamp         time.Time                `json:"analysis_timestamp"`
	TotalSites                int                      `json:"total_sites"`
	TotalValidRecords         int                      `json:"total_valid_records"`
	TotalInvalidRecords       int                      `json:"total_invalid_records"`
	HighestRegion             string                   `json:"highest_region"`
	HighestRegionSites        int                      `json:"highest_region_sites"`
	ThresholdUsed             int                      `json:"threshold_used"`
	CitiesAboveThresholdCount int                      `json:"cities_above_threshold_count"`
	AveragePerRegion          map[string]float64       `json:"average_per_region"`
	RegionSummaries           []analysis.RegionSummary `json:"region_summary"`
	CitiesAboveThreshold      []analysis.Record        `json:"cities_above_threshold"`
}

// Stats holds store-wide counting aggregates, not scoped to a batch.
type Stats struct {
	TotalSiteRecords    int64 `json:"total_site_records"`
	TotalAnalysisLogs   int64 `json:"total_analysis_logs"`
	TotalInvalidRecords int64 `json:"total_invalid_records"`
	UniqueRegions       int64 `json:"unique_regions"`
	UniqueCities        int64 `json:"unique_cities"`
}

const selectLogColumns = `
	batch_id, analysis_timestamp, total_sites, total_valid_records,
	total_invalid_records, highest_region, highest_region_sites,
	threshold_used, cities_above_threshold_count, average_per_region,
	region_summary, cities_above_threshold`

func scanLog(row pgx.Row) (*BatchLog, error) {
	var log BatchLog
	var avgBlob, summaryBlob, citiesBlob []byte

	err := row.Scan(
		&log.BatchID, &log.AnalysisTimestamp, &log.TotalSites,
		&log.TotalValidRecords, &log.TotalInvalidRecords, &log.HighestRegion,
		&log.HighestRegionSites, &log.ThresholdUsed,
		&log.CitiesAboveThresholdCount, &avgBlob, &summaryBlob, &citiesBlob,
	)
	if err != nil {
		return nil, err
	}

	if err := decodeBlob(kindAverages, avgBlob, &log.AveragePerRegion); err != nil {
		return nil, err
	}
	if err := decodeBlob(kindSummaries, summaryBlob, &log.RegionSummaries); err != nil {
		return nil, err
	}
	if err := decodeBlob(kindCities, citiesBlob, &log.CitiesAboveThreshold); err != nil {
		return nil, err
	}
	return &log, nil
}

// GetByID reconstructs a full batch: the log row plus its stored valid and
// invalid record sequences, in their original order. Returns nil with no
// error when no batch matches.
func (s *Store) GetByID(ctx context.Context, batchID string) (*analysis.Batch, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+selectLogColumns+` FROM analysis_log WHERE batch_id = $1`, batchID)

	log, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", batchID, err)
	}
	return s.hydrateBatch(ctx, log)
}

// GetLatest returns the most recently created batch, or nil when the store
// is empty.
func (s *Store) GetLatest(ctx context.Context) (*analysis.Batch, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+selectLogColumns+` FROM analysis_log ORDER BY analysis_timestamp DESC LIMIT 1`)

	log, err := scanLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest batch: %w", err)
	}
	return s.hydrateBatch(ctx, log)
}

// hydrateBatch attaches the stored record sequences to a decoded log row.
func (s *Store) hydrateBatch(ctx context.Context, log *BatchLog) (*analysis.Batch, error) {
	batch := &analysis.Batch{
		BatchID:              log.BatchID,
		CreatedAt:            log.AnalysisTimestamp,
		TotalSites:           log.TotalSites,
		HighestRegion:        analysis.RegionTotal{Region: log.HighestRegion, TotalSites: log.HighestRegionSites},
		ThresholdUsed:        log.ThresholdUsed,
		CitiesAboveThreshold: log.CitiesAboveThreshold,
		AveragePerRegion:     log.AveragePerRegion,
		RegionSummaries:      log.RegionSummaries,
	}

	// id order is insertion order, which preserves the source row order.
	rows, err := s.db.Query(ctx,
		`SELECT city, region, num_sites FROM galamsay_sites WHERE batch_id = $1 ORDER BY id`,
		log.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load batch sites: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var r analysis.Record
		if err := rows.Scan(&r.City, &r.Region, &r.NumSites); err != nil {
			return nil, fmt.Errorf("scan batch site: %w", err)
		}
		batch.ValidRecords = append(batch.ValidRecords, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load batch sites: %w", err)
	}

	invRows, err := s.db.Query(ctx,
		`SELECT row_number, city, region, num_sites_raw, reason
		 FROM invalid_records WHERE batch_id = $1 ORDER BY id`,
		log.BatchID)
	if err != nil {
		return nil, fmt.Errorf("load batch invalid records: %w", err)
	}
	defer invRows.Close()
	for invRows.Next() {
		var r analysis.InvalidRecord
		if err := invRows.Scan(&r.Row, &r.City, &r.Region, &r.RawCount, &r.Reason); err != nil {
			return nil, fmt.Errorf("scan invalid record: %w", err)
		}
		batch.InvalidRecords = append(batch.InvalidRecords, r)
	}
	if err := invRows.Err(); err != nil {
		return nil, fmt.Errorf("load batch invalid records: %w", err)
	}

	return batch, nil
}

// ListLogs returns every analysis log entry, most recent first.
func (s *Store) ListLogs(ctx context.Context) ([]BatchLog, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+selectLogColumns+` FROM analysis_log ORDER BY analysis_timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	defer rows.Close()

	logs := make([]BatchLog, 0)
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("list logs: %w", err)
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return logs, nil
}

// SitesByRegion returns every stored site record for a region, sorted by
// site count descending.
func (s *Store) SitesByRegion(ctx context.Context, region string) ([]Site, error) {
	return s.querySites(ctx,
		`SELECT city, region, num_sites, created_at, batch_id
		 FROM galamsay_sites WHERE region = $1 ORDER BY num_sites DESC`, region)
}

// AllSites returns stored site records sorted by region then city.
// A non-empty batchID narrows the result to one batch.
func (s *Store) AllSites(ctx context.Context, batchID string) ([]Site, error) {
	if batchID != "" {
		return s.querySites(ctx,
			`SELECT city, region, num_sites, created_at, batch_id
			 FROM galamsay_sites WHERE batch_id = $1 ORDER BY region, city`, batchID)
	}
	return s.querySites(ctx,
		`SELECT city, region, num_sites, created_at, batch_id
		 FROM galamsay_sites ORDER BY region, city`)
}

func (s *Store) querySites(ctx context.Context, sql string, args ...any) ([]Site, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	sites := make([]Site, 0)
	for rows.Next() {
		var site Site
		if err := rows.Scan(&site.City, &site.Region, &site.NumSites, &site.CreatedAt, &site.BatchID); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	return sites, nil
}

// InvalidRecords returns stored invalid records sorted by batch then row
// number. A non-empty batchID narrows the result to one batch.
func (s *Store) InvalidRecords(ctx context.Context, batchID string) ([]InvalidRow, error) {
	sql := `SELECT id, batch_id, row_number, city, region, num_sites_raw, reason, created_at
		FROM invalid_records ORDER BY batch_id, row_number`
	args := []any{}
	if batchID != "" {
		sql = `SELECT id, batch_id, row_number, city, region, num_sites_raw, reason, created_at
			FROM invalid_records WHERE batch_id = $1 ORDER BY row_number`
		args = append(args, batchID)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query invalid records: %w", err)
	}
	defer rows.Close()

	records := make([]InvalidRow, 0)
	for rows.Next() {
		var r InvalidRow
		err := rows.Scan(&r.ID, &r.BatchID, &r.RowNumber, &r.City, &r.Region,
			&r.RawCount, &r.Reason, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan invalid record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query invalid records: %w", err)
	}
	return records, nil
}

// Stats returns counting aggregates over the whole store.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM galamsay_sites),
			(SELECT COUNT(*) FROM analysis_log),
			(SELECT COUNT(*) FROM invalid_records),
			(SELECT COUNT(DISTINCT region) FROM galamsay_sites),
			(SELECT COUNT(DISTINCT city) FROM galamsay_sites)`,
	).Scan(&st.TotalSiteRecords, &st.TotalAnalysisLogs, &st.TotalInvalidRecords,
		&st.UniqueRegions, &st.UniqueCities)
	if err != nil {
		return Stats{}, fmt.Errorf("store stats: %w", err)
	}
	return st, nil
}
