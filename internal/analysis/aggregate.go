package analysis

// aggregate.go holds the pure statistical functions over validated records.
// None of them performs I/O or keeps state between calls; grouping builds a
// fresh region accumulator per call and discards it after producing results.

import (
	"fmt"
	"math"
	"sort"
)

// regionGroup holds site counts grouped by region. The order slice preserves
// the first-seen order of regions so ranking ties resolve deterministically.
type regionGroup struct {
	order  []string
	counts map[string][]int
}

func groupByRegion(records []Record) regionGroup {
	g := regionGroup{counts: make(map[string][]int)}
	for _, r := range records {
		if _, ok := g.counts[r.Region]; !ok {
			g.order = append(g.order, r.Region)
		}
		g.counts[r.Region] = append(g.counts[r.Region], r.NumSites)
	}
	return g
}

// TotalSites sums the site counts of all records. Empty input yields 0.
func TotalSites(records []Record) int {
	total := 0
	for _, r := range records {
		total += r.NumSites
	}
	return total
}

// HighestRegion returns the region with the largest summed site count.
// Ties resolve to the region first encountered in the input.
func HighestRegion(records []Record) (RegionTotal, error) {
	if len(records) == 0 {
		return RegionTotal{}, fmt.Errorf("%w: cannot determine highest region", ErrEmptyInput)
	}

	g := groupByRegion(records)
	best := RegionTotal{TotalSites: -1}
	for _, region := range g.order {
		total := sum(g.counts[region])
		if total > best.TotalSites {
			best = RegionTotal{Region: region, TotalSites: total}
		}
	}
	return best, nil
}

// CitiesAboveThreshold returns the records whose site count strictly exceeds
// threshold, sorted by site count descending. Ties keep their input order.
func CitiesAboveThreshold(records []Record, threshold int) ([]Record, error) {
	if threshold < 0 {
		return nil, ErrInvalidThreshold
	}

	above := make([]Record, 0)
	for _, r := range records {
		if r.NumSites > threshold {
			above = append(above, r)
		}
	}
	sort.SliceStable(above, func(i, j int) bool {
		return above[i].NumSites > above[j].NumSites
	})
	return above, nil
}

// AveragePerRegion computes the mean site count per region, rounded to two
// decimals. Empty input yields an empty map.
func AveragePerRegion(records []Record) map[string]float64 {
	g := groupByRegion(records)
	averages := make(map[string]float64, len(g.order))
	for _, region := range g.order {
		counts := g.counts[region]
		averages[region] = round2(float64(sum(counts)) / float64(len(counts)))
	}
	return averages
}

// RegionSummaries computes per-region rollups (total, city count, average,
// max, min) sorted by total sites descending. Empty input yields an empty
// sequence.
func RegionSummaries(records []Record) []RegionSummary {
	g := groupByRegion(records)
	summaries := make([]RegionSummary, 0, len(g.order))
	for _, region := range g.order {
		counts := g.counts[region]
		s := RegionSummary{
			Region:    region,
			CityCount: len(counts),
			MaxSites:  counts[0],
			MinSites:  counts[0],
		}
		for _, c := range counts {
			s.TotalSites += c
			if c > s.MaxSites {
				s.MaxSites = c
			}
			if c < s.MinSites {
				s.MinSites = c
			}
		}
		s.AverageSites = round2(float64(s.TotalSites) / float64(s.CityCount))
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalSites > summaries[j].TotalSites
	})
	return summaries
}

func sum(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}

// round2 rounds to two decimal places, half to even.
func round2(f float64) float64 {
	return math.RoundToEven(f*100) / 100
}
