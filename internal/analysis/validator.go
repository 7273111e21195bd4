package analysis

// validator.go provides row-level validation for the galamsay CSV source.
//
// Validation happens at two levels:
//  1. Header validation: the required columns must all be present
//  2. Row validation: each row is checked against the region whitelist and
//     the numeric bounds on the site count
//
// Checks run in a fixed precedence order and the first failure wins, so no
// row ever produces more than one rejection reason.

import (
	"fmt"
	"strconv"
	"strings"
)

// Required source columns. The header may carry extra columns in any order.
const (
	ColCity   = "City"
	ColRegion = "Region"
	ColSites  = "Number_of_Galamsay_Sites"
)

// MaxSiteCount is the hard outlier cutoff for a single city's site count.
const MaxSiteCount = 500

// DefaultRegions lists the 16 administrative regions of Ghana. It is the
// whitelist used in production; tests may construct validators with
// alternate whitelists.
var DefaultRegions = []string{
	"Ashanti", "Western", "Upper East", "Greater Accra", "Northern",
	"Central", "Bono", "Upper West", "Volta", "Eastern", "Bono East",
	"Savannah", "Oti", "North East", "Ahafo", "Western North",
}

// Validator checks raw CSV rows against a region whitelist and the numeric
// bounds on site counts.
type Validator struct {
	regions map[string]struct{}
}

// NewValidator creates a validator for the given region whitelist.
// Membership checks are case-sensitive on whitespace-trimmed values.
func NewValidator(regions []string) *Validator {
	set := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		set[strings.TrimSpace(r)] = struct{}{}
	}
	return &Validator{regions: set}
}

// headerIndex maps trimmed column names to their position in the header row.
// The first occurrence of a duplicated column wins.
type headerIndex map[string]int

func makeHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// Validate splits raw CSV records (header row first) into valid and invalid
// records. Per-row failures never abort the run; they are captured as
// InvalidRecord entries with the source row number preserved. The whole
// operation fails with ErrSourceFormat if the input is empty, the header
// lacks a required column, or no row survives validation.
func (v *Validator) Validate(records [][]string) ([]Record, []InvalidRecord, error) {
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty input", ErrSourceFormat)
	}

	idx := makeHeaderIndex(records[0])
	var missing []string
	for _, col := range []string{ColCity, ColRegion, ColSites} {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: missing required columns: %s",
			ErrSourceFormat, strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		pos := idx[col]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	var valid []Record
	var invalid []InvalidRecord

	for i, row := range records[1:] {
		rowNum := i + 2 // row 1 is the header

		city := cell(row, ColCity)
		region := cell(row, ColRegion)
		raw := cell(row, ColSites)

		reject := func(reason string) {
			invalid = append(invalid, InvalidRecord{
				Row:      rowNum,
				City:     city,
				Region:   region,
				RawCount: raw,
				Reason:   reason,
			})
		}

		if city == "" {
			reject("Missing city name")
			continue
		}
		if region == "" {
			reject("Missing region")
			continue
		}
		if _, ok := v.regions[region]; !ok {
			reject(fmt.Sprintf("Invalid region: %s", region))
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			reject(fmt.Sprintf("Non-numeric site count: %s", raw))
			continue
		}
		if n < 0 {
			reject(fmt.Sprintf("Negative site count: %d", n))
			continue
		}
		if n > MaxSiteCount {
			reject(fmt.Sprintf("Unrealistic site count (outlier): %d", n))
			continue
		}

		valid = append(valid, Record{City: city, Region: region, NumSites: n})
	}

	if len(valid) == 0 {
		return nil, invalid, fmt.Errorf("%w: no valid data records found", ErrSourceFormat)
	}
	return valid, invalid, nil
}
