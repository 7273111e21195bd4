package analysis

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"
)

// MaxSourceSize is the maximum allowed CSV source size (100MB).
var MaxSourceSize int64 = 100 * 1024 * 1024

// ReadSource reads and parses the source CSV file into raw records. Invalid
// UTF-8 is sanitized before parsing so a stray encoding never aborts a run.
func ReadSource(path string) ([][]string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxSourceSize {
		return nil, fmt.Errorf("%w: %s exceeds %dMB limit",
			ErrSourceFormat, path, MaxSourceSize/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrSourceFormat, path, err)
	}
	return records, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
