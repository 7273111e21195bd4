package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Jaytech9/galamsay-analysis/internal/analysis"
	"github.com/Jaytech9/galamsay-analysis/internal/logging"
	"github.com/go-chi/chi/v5"
)

// handleIndex returns the available endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"name":        "Galamsay Analysis API",
		"version":     "1.0.0",
		"description": "RESTful API for analyzing illegal small-scale mining (Galamsay) data in Ghana",
		"endpoints": map[string]string{
			"GET /":                                 "This help message",
			"GET /api/health":                       "Health check endpoint",
			"POST /api/analyze":                     "Run new analysis and save to database",
			"GET /api/analysis/latest":              "Get the most recent analysis results",
			"GET /api/analysis/logs":                "Get all analysis log entries",
			"GET /api/analysis/{batch_id}":          "Get specific analysis by batch ID",
			"GET /api/sites":                        "Get all site records",
			"GET /api/sites/region/{region}":        "Get sites for a specific region",
			"GET /api/stats":                        "Get database statistics",
			"GET /api/stats/total":                  "Get total number of Galamsay sites",
			"GET /api/stats/highest-region":         "Get region with highest sites",
			"GET /api/stats/cities-above-threshold": "Get cities above threshold",
			"GET /api/stats/average-per-region":     "Get average sites per region",
			"GET /api/invalid-records":              "Get invalid/skipped records",
		},
	})
}

// handleHealth reports service health for monitoring.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"data_file": s.cfg.Analysis.DataFile,
		"database":  "postgresql",
	})
}

// handleAnalyze runs the full pipeline on the configured data file and saves
// the resulting batch. The response carries the batch id and a summary; the
// raw valid records are omitted to keep the payload small.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	threshold, err := s.thresholdParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records, err := analysis.ReadSource(s.cfg.Analysis.DataFile)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	batch, err := s.pipeline.Run(records, threshold)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	batchID, err := s.store.Save(r.Context(), batch)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.WithFields(r.Context(), "batch_id", batchID).Info("analysis saved",
		"valid_records", len(batch.ValidRecords),
		"invalid_records", len(batch.InvalidRecords),
		"threshold", threshold,
	)

	respondJSON(w, http.StatusCreated, map[string]any{
		"batch_id": batchID,
		"message":  "Analysis completed and saved to database",
		"summary": map[string]any{
			"total_sites":               batch.TotalSites,
			"total_valid_records":       len(batch.ValidRecords),
			"total_invalid_records":     len(batch.InvalidRecords),
			"region_with_highest_sites": batch.HighestRegion,
			"cities_above_threshold": map[string]int{
				"threshold": batch.ThresholdUsed,
				"count":     len(batch.CitiesAboveThreshold),
			},
			"regions_analyzed": len(batch.AveragePerRegion),
		},
	})
}

// handleLatestAnalysis returns the most recent stored batch.
func (s *Server) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	batch, err := s.store.GetLatest(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if batch == nil {
		respondNotFound(w, "No analysis found",
			"No analysis has been run yet. Use POST /api/analyze first.")
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// handleAnalysisLogs returns stored log entries, most recent first.
func (s *Server) handleAnalysisLogs(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, 10)

	logs, err := s.store.ListLogs(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	total := len(logs)
	if limit < len(logs) {
		logs = logs[:limit]
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(logs),
		"total": total,
		"logs":  logs,
	})
}

// handleAnalysisByID returns one stored batch by its id.
func (s *Server) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	batch, err := s.store.GetByID(r.Context(), batchID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if batch == nil {
		respondNotFound(w, "Analysis not found",
			fmt.Sprintf("No analysis found with batch_id: %s", batchID))
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// handleSites returns stored site records, optionally narrowed to one batch.
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	batchID := r.URL.Query().Get("batch_id")
	limit := limitParam(r, 100)

	sites, err := s.store.AllSites(r.Context(), batchID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	total := len(sites)
	if limit < len(sites) {
		sites = sites[:limit]
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(sites),
		"total": total,
		"sites": sites,
	})
}

// handleSitesByRegion returns all stored site records for one region.
func (s *Server) handleSitesByRegion(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")

	sites, err := s.store.SitesByRegion(r.Context(), region)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if len(sites) == 0 {
		respondNotFound(w, "No sites found",
			fmt.Sprintf("No sites found for region: %s", region))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"region": region,
		"count":  len(sites),
		"sites":  sites,
	})
}

// handleInvalidRecords returns stored invalid records.
func (s *Server) handleInvalidRecords(w http.ResponseWriter, r *http.Request) {
	batchID := r.URL.Query().Get("batch_id")

	records, err := s.store.InvalidRecords(r.Context(), batchID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

// handleStats returns store-wide counting aggregates.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// handleStatsTotal returns the total site count from the latest batch,
// falling back to a live calculation when the store is empty.
func (s *Server) handleStatsTotal(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.GetLatest(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if latest == nil {
		valid, err := s.liveRecords()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"total_sites": analysis.TotalSites(valid),
			"source":      "live_calculation",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_sites": latest.TotalSites,
		"source":      "database",
		"batch_id":    latest.BatchID,
	})
}

// handleStatsHighestRegion returns the region with the most sites.
func (s *Server) handleStatsHighestRegion(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.GetLatest(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if latest == nil {
		valid, err := s.liveRecords()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		highest, err := analysis.HighestRegion(valid)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"region":      highest.Region,
			"total_sites": highest.TotalSites,
			"source":      "live_calculation",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"region":      latest.HighestRegion.Region,
		"total_sites": latest.HighestRegion.TotalSites,
		"source":      "database",
		"batch_id":    latest.BatchID,
	})
}

// handleStatsCitiesAboveThreshold filters cities by threshold. Always a live
// calculation so any threshold can be queried, not just the stored one.
func (s *Server) handleStatsCitiesAboveThreshold(w http.ResponseWriter, r *http.Request) {
	threshold, err := s.thresholdParam(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	valid, err := s.liveRecords()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	cities, err := analysis.CitiesAboveThreshold(valid, threshold)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"threshold": threshold,
		"count":     len(cities),
		"cities":    cities,
	})
}

// handleStatsAveragePerRegion returns the per-region averages.
func (s *Server) handleStatsAveragePerRegion(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.GetLatest(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if latest == nil {
		valid, err := s.liveRecords()
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"averages": analysis.AveragePerRegion(valid),
			"source":   "live_calculation",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"averages": latest.AveragePerRegion,
		"source":   "database",
		"batch_id": latest.BatchID,
	})
}

// liveRecords reads and validates the configured data file for the stats
// endpoints that compute results without a stored batch.
func (s *Server) liveRecords() ([]analysis.Record, error) {
	records, err := analysis.ReadSource(s.cfg.Analysis.DataFile)
	if err != nil {
		return nil, err
	}
	valid, _, err := s.pipeline.Validator.Validate(records)
	return valid, err
}

// thresholdParam parses the threshold query parameter, falling back to the
// configured default. Negative and non-integer values are rejected.
func (s *Server) thresholdParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("threshold")
	if raw == "" {
		return s.cfg.Analysis.DefaultThreshold, nil
	}
	threshold, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: not an integer: %s", analysis.ErrInvalidThreshold, raw)
	}
	if threshold < 0 {
		return 0, analysis.ErrInvalidThreshold
	}
	return threshold, nil
}

// limitParam parses the limit query parameter, falling back to def for
// missing or unusable values.
func limitParam(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return def
	}
	return limit
}
