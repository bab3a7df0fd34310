// Package catalog loads the job dataset the map-data service answers from.
// A catalog is an ordered, immutable list of records; a record's position
// is its stable catalog id.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dd0wney/scout/pkg/jobs"
)

var (
	// ErrUnknownSource is returned for a source URI with an unsupported
	// scheme.
	ErrUnknownSource = errors.New("catalog: unknown source")
	// ErrEmpty is returned when a source holds no usable record.
	ErrEmpty = errors.New("catalog: no jobs")
)

// Record is one job as stored in the dataset.
type Record struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Company         string   `json:"company,omitempty"`
	SalaryMin       float64  `json:"salary_min"`
	SalaryMax       float64  `json:"salary_max"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Skills          []string `json:"skills"`
}

// Document is the text the similarity index sees for a record.
func (r Record) Document() string {
	return r.Title + " " + r.Description + " " + strings.Join(r.Skills, " ")
}

// Catalog is a loaded dataset.
type Catalog struct {
	records []Record
	// Lower-cased title -> first record with that title
	titles map[string]int
}

// New wraps records. Records without a title are dropped; ids are
// assigned after dropping.
func New(records []Record) *Catalog {
	c := &Catalog{
		records: make([]Record, 0, len(records)),
		titles:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		id := len(c.records)
		c.records = append(c.records, r)
		key := strings.ToLower(r.Title)
		if _, ok := c.titles[key]; !ok {
			c.titles[key] = id
		}
	}
	return c
}

// Decode parses a JSON array of records.
func Decode(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return records, nil
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Valid reports whether id names a record.
func (c *Catalog) Valid(id int64) bool {
	return id >= 0 && id < int64(len(c.records))
}

// Record returns the record with the given id.
func (c *Catalog) Record(id int64) (Record, bool) {
	if !c.Valid(id) {
		return Record{}, false
	}
	return c.records[id], true
}

// Job converts a record into the wire job shape with the given local id
// and score. The catalog id becomes the job's original id.
func (c *Catalog) Job(id int64, localID int, score float64) (jobs.Job, bool) {
	r, ok := c.Record(id)
	if !ok {
		return jobs.Job{}, false
	}
	j := jobs.Job{
		ID:              localID,
		OriginalID:      jobs.ID(id),
		Title:           r.Title,
		Description:     r.Description,
		Company:         r.Company,
		SalaryMin:       r.SalaryMin,
		SalaryMax:       r.SalaryMax,
		ExperienceLevel: r.ExperienceLevel,
		Skills:          append([]string(nil), r.Skills...),
		Score:           score,
	}
	j.Normalize()
	return j, true
}

// FindTitle returns the first record whose title equals q, ignoring case.
func (c *Catalog) FindTitle(q string) (int64, bool) {
	id, ok := c.titles[strings.ToLower(strings.TrimSpace(q))]
	return int64(id), ok
}

// Documents returns the indexable text of every record, by id.
func (c *Catalog) Documents() []string {
	docs := make([]string, len(c.records))
	for i, r := range c.records {
		docs[i] = r.Document()
	}
	return docs
}

// Each calls fn for every record in id order until fn returns false.
func (c *Catalog) Each(fn func(id int64, r Record) bool) {
	for i, r := range c.records {
		if !fn(int64(i), r) {
			return
		}
	}
}

// Fingerprint identifies the catalog's titles and descriptions. Anything
// derived from the text, such as the neighbour graph, is stale once it
// changes.
func (c *Catalog) Fingerprint() string {
	h := sha256.New()
	for _, r := range c.records {
		h.Write([]byte(r.Title))
		h.Write([]byte{0})
		h.Write([]byte(r.Description))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
