package catalog

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// loadFile decodes a local JSON dataset through a read-only memory map.
func loadFile(path string) ([]Record, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer r.Close()

	data := make([]byte, r.Len())
	if _, err := r.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data)
}
