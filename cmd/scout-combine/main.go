// Command scout-combine merges scraped batch files into the single catalog
// file the server loads, dropping incomplete and duplicate jobs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/dd0wney/scout/pkg/catalog"
)

var errNoBatches = errors.New("no batch files found")

func main() {
	pattern := flag.String("pattern", "us_jobs_batch_*.json", "glob matching the batch files")
	out := flag.String("out", "combined_jobs.json", "combined catalog to write")
	flag.Parse()

	if _, err := combine(*pattern, *out, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "scout-combine: %v\n", err)
		os.Exit(1)
	}
}

// combine reads every file matching pattern in name order, merges them and
// writes the result to out, reporting progress to w.
func combine(pattern, out string, w io.Writer) (catalog.CombineStats, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return catalog.CombineStats{}, err
	}
	if len(files) == 0 {
		return catalog.CombineStats{}, fmt.Errorf("%w matching %s", errNoBatches, pattern)
	}
	sort.Strings(files)

	fmt.Fprintf(w, "Found %d batch files\n", len(files))
	batches := make([][]catalog.Record, 0, len(files))
	for _, f := range files {
		records, err := catalog.ReadBatch(f)
		if err != nil {
			return catalog.CombineStats{}, err
		}
		fmt.Fprintf(w, "  %s: %d jobs\n", filepath.Base(f), len(records))
		batches = append(batches, records)
	}

	records, stats := catalog.Combine(batches...)
	if err := catalog.WriteFile(out, records); err != nil {
		return stats, fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(w, "Loaded:     %d\n", stats.Loaded)
	fmt.Fprintf(w, "Incomplete: %d\n", stats.Incomplete)
	fmt.Fprintf(w, "Duplicates: %d\n", stats.Duplicates)
	fmt.Fprintf(w, "Unique:     %d -> %s\n", stats.Unique, out)
	return stats, nil
}
