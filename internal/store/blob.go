package store

// blob.go handles the serialized collection columns of analysis_log.
// Each column stores a tagged, versioned JSON envelope rather than a bare
// array, so readers can reject a column written for a different shape or a
// future format instead of misdecoding it.

import (
	"encoding/json"
	"fmt"
)

// blobVersion is the current envelope version.
const blobVersion = 1

// Envelope kinds for the three serialized analysis_log columns.
const (
	kindAverages  = "average_per_region"
	kindSummaries = "region_summary"
	kindCities    = "cities_above_threshold"
)

type blobEnvelope struct {
	Version int             `json:"v"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func encodeBlob(kind string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return json.Marshal(blobEnvelope{Version: blobVersion, Kind: kind, Data: raw})
}

func decodeBlob(kind string, blob []byte, dst any) error {
	var env blobEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return fmt.Errorf("decode %s envelope: %w", kind, err)
	}
	if env.Kind != kind {
		return fmt.Errorf("decode %s: envelope holds %q", kind, env.Kind)
	}
	if env.Version != blobVersion {
		return fmt.Errorf("decode %s: unsupported version %d", kind, env.Version)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	return nil
}
