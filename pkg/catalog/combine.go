package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// CombineStats summarizes a Combine run.
type CombineStats struct {
	Loaded     int `json:"loaded"`
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
	Incomplete int `json:"incomplete"`
}

// Combine merges batches in order, dropping records without a title or a
// company and keeping the first record for each case-insensitive
// title|company pair.
func Combine(batches ...[]Record) ([]Record, CombineStats) {
	var stats CombineStats
	seen := make(map[string]bool)
	var out []Record

	for _, batch := range batches {
		for _, r := range batch {
			stats.Loaded++
			title := strings.ToLower(strings.TrimSpace(r.Title))
			company := strings.ToLower(strings.TrimSpace(r.Company))
			if title == "" || company == "" {
				stats.Incomplete++
				continue
			}
			key := title + "|" + company
			if seen[key] {
				stats.Duplicates++
				continue
			}
			seen[key] = true
			out = append(out, r)
		}
	}
	stats.Unique = len(out)
	return out, stats
}

// ReadBatch reads one batch file.
func ReadBatch(path string) ([]Record, error) {
	records, err := loadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// WriteFile writes records as an indented JSON array.
func WriteFile(path string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
