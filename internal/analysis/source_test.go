package analysis

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestReadSource(t *testing.T) {
	path := writeTempCSV(t, "City,Region,Number_of_Galamsay_Sites\nKumasi,Ashanti,25\n")

	records, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[1][0] != "Kumasi" {
		t.Errorf("records[1][0] = %q, want Kumasi", records[1][0])
	}
}

func TestReadSource_MissingFile(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("error = %v, want ErrSourceNotFound", err)
	}
}

func TestReadSource_SanitizesInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	data := append([]byte("City,Region,Number_of_Galamsay_Sites\nKuma"), 0x80)
	data = append(data, []byte("si,Ashanti,5\n")...)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}

	records, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if records[1][0] != "Kuma�si" {
		t.Errorf("city = %q, want replacement rune inserted", records[1][0])
	}
}

func TestReadSource_RaggedRowsAllowed(t *testing.T) {
	// Validation, not parsing, decides what to do with short rows.
	path := writeTempCSV(t, "City,Region,Number_of_Galamsay_Sites\nKumasi,Ashanti\n")

	records, err := ReadSource(path)
	if err != nil {
		t.Fatalf("ReadSource() error = %v", err)
	}
	if len(records[1]) != 2 {
		t.Errorf("row width = %d, want 2", len(records[1]))
	}
}

func TestReadSource_SizeLimit(t *testing.T) {
	orig := MaxSourceSize
	MaxSourceSize = 8
	defer func() { MaxSourceSize = orig }()

	path := writeTempCSV(t, "City,Region,Number_of_Galamsay_Sites\n")
	_, err := ReadSource(path)
	if !errors.Is(err, ErrSourceFormat) {
		t.Errorf("error = %v, want ErrSourceFormat", err)
	}
}
