package catalog

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadRecords reads a JSON array of normalized records from path.
func LoadRecords(path string) ([]ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	records, err := DecodeRecords(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return records, nil
}

// DecodeRecords decodes a JSON array of records and normalizes each one.
// Records are not validated here; the engines skip invalid ones.
func DecodeRecords(r io.Reader) ([]ProductRecord, error) {
	var records []ProductRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Normalize()
	}
	return records, nil
}
