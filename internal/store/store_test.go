package store

import (
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Jaytech9/galamsay-analysis/internal/analysis"
)

// ============================================================================
// GenerateBatchID Tests
// ============================================================================

func TestGenerateBatchID_Format(t *testing.T) {
	now := time.Date(2025, 12, 3, 14, 5, 9, 123456789, time.UTC)

	got := GenerateBatchID(now)
	want := "20251203_140509_123456"
	if got != want {
		t.Errorf("GenerateBatchID() = %q, want %q", got, want)
	}
}

func TestGenerateBatchID_Shape(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{8}_\d{6}_\d{6}$`)

	got := GenerateBatchID(time.Now())
	if !pattern.MatchString(got) {
		t.Errorf("GenerateBatchID() = %q, want YYYYMMDD_HHMMSS_ffffff", got)
	}
}

func TestGenerateBatchID_ZeroPadsMicroseconds(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 42000, time.UTC) // 42 microseconds

	got := GenerateBatchID(now)
	if !strings.HasSuffix(got, "_000042") {
		t.Errorf("GenerateBatchID() = %q, want _000042 suffix", got)
	}
}

func TestGenerateBatchID_LexicalOrderMatchesCreationOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	prev := GenerateBatchID(base)
	for i := 1; i < 100; i++ {
		next := GenerateBatchID(base.Add(time.Duration(i) * 17 * time.Microsecond))
		if next <= prev {
			t.Fatalf("ids out of order: %q then %q", prev, next)
		}
		prev = next
	}
}

// ============================================================================
// Blob Envelope Tests
// ============================================================================

func TestBlobRoundTrip_Averages(t *testing.T) {
	in := map[string]float64{"Ashanti": 11.0, "Volta": 1.33}

	blob, err := encodeBlob(kindAverages, in)
	if err != nil {
		t.Fatalf("encodeBlob() error = %v", err)
	}

	var out map[string]float64
	if err := decodeBlob(kindAverages, blob, &out); err != nil {
		t.Fatalf("decodeBlob() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}

func TestBlobRoundTrip_Summaries(t *testing.T) {
	in := []analysis.RegionSummary{
		{Region: "Ashanti", TotalSites: 42, CityCount: 3, AverageSites: 14.0, MaxSites: 25, MinSites: 2},
		{Region: "Western", TotalSites: 15, CityCount: 2, AverageSites: 7.5, MaxSites: 10, MinSites: 5},
	}

	blob, err := encodeBlob(kindSummaries, in)
	if err != nil {
		t.Fatalf("encodeBlob() error = %v", err)
	}

	var out []analysis.RegionSummary
	if err := decodeBlob(kindSummaries, blob, &out); err != nil {
		t.Fatalf("decodeBlob() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestBlobRoundTrip_Cities(t *testing.T) {
	in := []analysis.Record{
		{City: "Accra", Region: "Greater Accra", NumSites: 30},
		{City: "Kumasi", Region: "Ashanti", NumSites: 25},
	}

	blob, err := encodeBlob(kindCities, in)
	if err != nil {
		t.Fatalf("encodeBlob() error = %v", err)
	}

	var out []analysis.Record
	if err := decodeBlob(kindCities, blob, &out); err != nil {
		t.Fatalf("decodeBlob() error = %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestDecodeBlob_RejectsWrongKind(t *testing.T) {
	blob, err := encodeBlob(kindAverages, map[string]float64{"Ashanti": 1})
	if err != nil {
		t.Fatalf("encodeBlob() error = %v", err)
	}

	var out []analysis.Record
	if err := decodeBlob(kindCities, blob, &out); err == nil {
		t.Error("decodeBlob() accepted a blob of the wrong kind")
	}
}

func TestDecodeBlob_RejectsUnknownVersion(t *testing.T) {
	blob := []byte(`{"v":99,"kind":"average_per_region","data":{}}`)

	var out map[string]float64
	if err := decodeBlob(kindAverages, blob, &out); err == nil {
		t.Error("decodeBlob() accepted an unsupported version")
	}
}

func TestDecodeBlob_RejectsBareArray(t *testing.T) {
	// Pre-envelope payloads must not silently decode.
	var out []analysis.Record
	if err := decodeBlob(kindCities, []byte(`[]`), &out); err == nil {
		t.Error("decodeBlob() accepted a bare array without an envelope")
	}
}

func TestBlobEnvelope_IsTagged(t *testing.T) {
	blob, err := encodeBlob(kindSummaries, []analysis.RegionSummary{})
	if err != nil {
		t.Fatalf("encodeBlob() error = %v", err)
	}
	s := string(blob)
	if !strings.Contains(s, `"v":1`) || !strings.Contains(s, `"kind":"region_summary"`) {
		t.Errorf("envelope = %s, want version and kind tags", s)
	}
}
