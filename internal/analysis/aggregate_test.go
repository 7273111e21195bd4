package analysis

import (
	"errors"
	"reflect"
	"testing"
)

func TestTotalSites(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    int
	}{
		{
			name: "sums all counts",
			records: []Record{
				{City: "A", Region: "Ashanti", NumSites: 25},
				{City: "B", Region: "Western", NumSites: 15},
				{City: "C", Region: "Ashanti", NumSites: 10},
			},
			want: 50,
		},
		{
			name:    "empty input yields zero",
			records: nil,
			want:    0,
		},
		{
			name: "zero counts",
			records: []Record{
				{City: "A", Region: "Ashanti", NumSites: 0},
				{City: "B", Region: "Western", NumSites: 0},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalSites(tt.records); got != tt.want {
				t.Errorf("TotalSites() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHighestRegion(t *testing.T) {
	t.Run("sums per region", func(t *testing.T) {
		records := []Record{
			{City: "Kumasi", Region: "Ashanti", NumSites: 25},
			{City: "Obuasi", Region: "Ashanti", NumSites: 15},
			{City: "Accra", Region: "Greater Accra", NumSites: 30},
		}
		got, err := HighestRegion(records)
		if err != nil {
			t.Fatalf("HighestRegion() error = %v", err)
		}
		want := RegionTotal{Region: "Ashanti", TotalSites: 40}
		if got != want {
			t.Errorf("HighestRegion() = %+v, want %+v", got, want)
		}
	})

	t.Run("ties resolve to first-seen region", func(t *testing.T) {
		records := []Record{
			{City: "A", Region: "Volta", NumSites: 20},
			{City: "B", Region: "Ashanti", NumSites: 20},
		}
		got, err := HighestRegion(records)
		if err != nil {
			t.Fatalf("HighestRegion() error = %v", err)
		}
		if got.Region != "Volta" {
			t.Errorf("tie went to %q, want first-seen Volta", got.Region)
		}
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := HighestRegion(nil)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("error = %v, want ErrEmptyInput", err)
		}
	})
}

func TestCitiesAboveThreshold(t *testing.T) {
	records := []Record{
		{City: "A", Region: "Ashanti", NumSites: 25},
		{City: "B", Region: "Western", NumSites: 30},
		{City: "C", Region: "Volta", NumSites: 7},
		{City: "D", Region: "Eastern", NumSites: 10},
		{City: "E", Region: "Northern", NumSites: 5},
	}

	t.Run("strict filter, descending order", func(t *testing.T) {
		got, err := CitiesAboveThreshold(records, 10)
		if err != nil {
			t.Fatalf("CitiesAboveThreshold() error = %v", err)
		}
		// D has exactly 10 and must be excluded.
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].City != "B" || got[1].City != "A" {
			t.Errorf("order = [%s, %s], want [B, A]", got[0].City, got[1].City)
		}
	})

	t.Run("ties keep input order", func(t *testing.T) {
		tied := []Record{
			{City: "X", Region: "Ashanti", NumSites: 12},
			{City: "Y", Region: "Volta", NumSites: 12},
			{City: "Z", Region: "Western", NumSites: 12},
		}
		got, err := CitiesAboveThreshold(tied, 0)
		if err != nil {
			t.Fatalf("CitiesAboveThreshold() error = %v", err)
		}
		var cities []string
		for _, r := range got {
			cities = append(cities, r.City)
		}
		if !reflect.DeepEqual(cities, []string{"X", "Y", "Z"}) {
			t.Errorf("tied order = %v, want [X Y Z]", cities)
		}
	})

	t.Run("zero threshold keeps positive counts", func(t *testing.T) {
		got, err := CitiesAboveThreshold(records, 0)
		if err != nil {
			t.Fatalf("CitiesAboveThreshold() error = %v", err)
		}
		if len(got) != 5 {
			t.Errorf("len = %d, want 5", len(got))
		}
	})

	t.Run("negative threshold fails regardless of data", func(t *testing.T) {
		for _, input := range [][]Record{records, nil} {
			if _, err := CitiesAboveThreshold(input, -1); !errors.Is(err, ErrInvalidThreshold) {
				t.Errorf("error = %v, want ErrInvalidThreshold", err)
			}
		}
	})

	t.Run("no matches yields empty non-nil slice", func(t *testing.T) {
		got, err := CitiesAboveThreshold(records, 1000)
		if err != nil {
			t.Fatalf("CitiesAboveThreshold() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("got %v, want empty slice", got)
		}
	})
}

func TestAveragePerRegion(t *testing.T) {
	t.Run("whole average", func(t *testing.T) {
		records := []Record{
			{City: "A", Region: "Ashanti", NumSites: 10},
			{City: "B", Region: "Ashanti", NumSites: 11},
			{City: "C", Region: "Ashanti", NumSites: 12},
		}
		got := AveragePerRegion(records)
		want := map[string]float64{"Ashanti": 11.0}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("AveragePerRegion() = %v, want %v", got, want)
		}
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		records := []Record{
			{City: "A", Region: "Volta", NumSites: 1},
			{City: "B", Region: "Volta", NumSites: 1},
			{City: "C", Region: "Volta", NumSites: 2},
		}
		got := AveragePerRegion(records)
		if got["Volta"] != 1.33 {
			t.Errorf("average = %v, want 1.33", got["Volta"])
		}
	})

	t.Run("multiple regions", func(t *testing.T) {
		records := []Record{
			{City: "A", Region: "Ashanti", NumSites: 10},
			{City: "B", Region: "Western", NumSites: 20},
			{City: "C", Region: "Ashanti", NumSites: 20},
		}
		got := AveragePerRegion(records)
		if got["Ashanti"] != 15.0 || got["Western"] != 20.0 {
			t.Errorf("AveragePerRegion() = %v", got)
		}
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		got := AveragePerRegion(nil)
		if len(got) != 0 {
			t.Errorf("AveragePerRegion(nil) = %v, want empty", got)
		}
	})
}

func TestRegionSummaries(t *testing.T) {
	records := []Record{
		{City: "Tarkwa", Region: "Western", NumSites: 5},
		{City: "Kumasi", Region: "Ashanti", NumSites: 25},
		{City: "Obuasi", Region: "Ashanti", NumSites: 15},
		{City: "Prestea", Region: "Western", NumSites: 10},
		{City: "Konongo", Region: "Ashanti", NumSites: 2},
	}

	got := RegionSummaries(records)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	// Sorted by total descending: Ashanti 42, Western 15.
	want0 := RegionSummary{
		Region:       "Ashanti",
		TotalSites:   42,
		CityCount:    3,
		AverageSites: 14.0,
		MaxSites:     25,
		MinSites:     2,
	}
	if got[0] != want0 {
		t.Errorf("summaries[0] = %+v, want %+v", got[0], want0)
	}

	want1 := RegionSummary{
		Region:       "Western",
		TotalSites:   15,
		CityCount:    2,
		AverageSites: 7.5,
		MaxSites:     10,
		MinSites:     5,
	}
	if got[1] != want1 {
		t.Errorf("summaries[1] = %+v, want %+v", got[1], want1)
	}
}

func TestRegionSummaries_DescendingOrder(t *testing.T) {
	records := []Record{
		{City: "A", Region: "Volta", NumSites: 1},
		{City: "B", Region: "Ashanti", NumSites: 9},
		{City: "C", Region: "Western", NumSites: 5},
		{City: "D", Region: "Oti", NumSites: 9},
	}

	got := RegionSummaries(records)
	for i := 1; i < len(got); i++ {
		if got[i].TotalSites > got[i-1].TotalSites {
			t.Fatalf("summaries not descending at %d: %+v", i, got)
		}
	}
}

func TestRegionSummaries_EmptyInput(t *testing.T) {
	got := RegionSummaries(nil)
	if len(got) != 0 {
		t.Errorf("RegionSummaries(nil) = %v, want empty", got)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.0, 1.0},
		{1.333333, 1.33},
		{1.335, 1.34},
		{7.5, 7.5},
		{2.675000001, 2.68},
		// Half-to-even on an exactly representable half.
		{0.125, 0.12},
	}

	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
