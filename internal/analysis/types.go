// Package analysis implements the galamsay data pipeline: row validation,
// aggregate statistics, and assembly of an immutable analysis batch.
// This package has no I/O beyond reading the source file and can be used
// by any frontend.
package analysis

import "time"

// Record is a single validated city observation.
type Record struct {
	City     string `json:"city"`
	Region   string `json:"region"`
	NumSites int    `json:"num_sites"`
}

// InvalidRecord captures a rejected source row together with its rejection
// reason. Row numbering starts at 2 because row 1 is the CSV header.
type InvalidRecord struct {
	Row      int    `json:"row"`
	City     string `json:"city"`
	Region   string `json:"region"`
	RawCount string `json:"num_sites_raw"`
	Reason   string `json:"reason"`
}

// RegionTotal pairs a region with its summed site count.
type RegionTotal struct {
	Region     string `json:"region"`
	TotalSites int    `json:"total_sites"`
}

// RegionSummary is a per-region rollup of site statistics.
type RegionSummary struct {
	Region       string  `json:"region"`
	TotalSites   int     `json:"total_sites"`
	CityCount    int     `json:"city_count"`
	AverageSites float64 `json:"average_sites"`
	MaxSites     int     `json:"max_sites"`
	MinSites     int     `json:"min_sites"`
}

// Batch is the result of one complete validate+aggregate cycle. BatchID and
// CreatedAt are assigned when the batch is persisted; a batch is never
// mutated after that.
type Batch struct {
	BatchID              string             `json:"batch_id"`
	CreatedAt            time.Time          `json:"analysis_timestamp"`
	ValidRecords         []Record           `json:"valid_records"`
	InvalidRecords       []InvalidRecord    `json:"invalid_records"`
	TotalSites           int                `json:"total_sites"`
	HighestRegion        RegionTotal        `json:"region_with_highest_sites"`
	ThresholdUsed        int                `json:"threshold_used"`
	CitiesAboveThreshold []Record           `json:"cities_above_threshold"`
	AveragePerRegion     map[string]float64 `json:"average_per_region"`
	RegionSummaries      []RegionSummary    `json:"region_summary"`
}
