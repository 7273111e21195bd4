package analysis

// DefaultThreshold is the cities-above-threshold cutoff used when the caller
// does not supply one.
const DefaultThreshold = 10

// Pipeline composes validation and aggregation into a single run that either
// yields a complete Batch or fails with no partial result.
type Pipeline struct {
	Validator *Validator
}

// NewPipeline creates a pipeline around the given validator.
func NewPipeline(v *Validator) *Pipeline {
	return &Pipeline{Validator: v}
}

// Run validates the raw records, computes every aggregate over the valid
// output, and assembles an unsaved Batch. Failures from the validator or any
// aggregate propagate unchanged.
func (p *Pipeline) Run(records [][]string, threshold int) (*Batch, error) {
	valid, invalid, err := p.Validator.Validate(records)
	if err != nil {
		return nil, err
	}

	highest, err := HighestRegion(valid)
	if err != nil {
		return nil, err
	}
	above, err := CitiesAboveThreshold(valid, threshold)
	if err != nil {
		return nil, err
	}

	return &Batch{
		ValidRecords:         valid,
		InvalidRecords:       invalid,
		TotalSites:           TotalSites(valid),
		HighestRegion:        highest,
		ThresholdUsed:        threshold,
		CitiesAboveThreshold: above,
		AveragePerRegion:     AveragePerRegion(valid),
		RegionSummaries:      RegionSummaries(valid),
	}, nil
}
