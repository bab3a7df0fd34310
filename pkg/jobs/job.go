// Package jobs defines the job record exchanged between the map-data service
// and the explorer, with consistent defaults for optional fields.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/dd0wney/scout/pkg/validation"
)

// DefaultExperienceLevel is reported for jobs that carry none.
const DefaultExperienceLevel = "Not specified"

var (
	ErrMissingTitle       = errors.New("job: title is required")
	ErrMissingDescription = errors.New("job: description is required")
)

// Job is one job posting. Title and Description are required; every other
// field is optional and defaulted by Normalize.
type Job struct {
	// ID is the local id inside a map payload: 0 for the center, 1..n for
	// related jobs.
	ID int `json:"id"`
	// OriginalID is the stable catalog identifier. Nil when unknown.
	OriginalID *int64 `json:"original_id"`

	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`

	Company         string   `json:"company,omitempty"`
	SalaryMin       float64  `json:"salary_min"`
	SalaryMax       float64  `json:"salary_max"`
	ExperienceLevel string   `json:"experience_level"`
	Skills          []string `json:"skills"`
	Score           float64  `json:"score" validate:"gte=0,lte=1"`
}

// jobWire detects absent required keys during decoding.
type jobWire struct {
	ID              int      `json:"id"`
	OriginalID      *int64   `json:"original_id"`
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Company         string   `json:"company"`
	SalaryMin       *float64 `json:"salary_min"`
	SalaryMax       *float64 `json:"salary_max"`
	ExperienceLevel string   `json:"experience_level"`
	Skills          []string `json:"skills"`
	Score           *float64 `json:"score"`
}

// UnmarshalJSON decodes a job, rejecting records without a title or a
// description key, and applies Normalize.
func (j *Job) UnmarshalJSON(data []byte) error {
	var w jobWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Title == nil || *w.Title == "" {
		return ErrMissingTitle
	}
	if w.Description == nil {
		return ErrMissingDescription
	}

	*j = Job{
		ID:              w.ID,
		OriginalID:      w.OriginalID,
		Title:           *w.Title,
		Description:     *w.Description,
		Company:         w.Company,
		ExperienceLevel: w.ExperienceLevel,
		Skills:          w.Skills,
	}
	if w.SalaryMin != nil {
		j.SalaryMin = *w.SalaryMin
	}
	if w.SalaryMax != nil {
		j.SalaryMax = *w.SalaryMax
	}
	if w.Score != nil {
		j.Score = *w.Score
	}
	j.Normalize()
	return nil
}

// Normalize fills defaults and clamps out-of-range values in place.
func (j *Job) Normalize() {
	if j.ExperienceLevel == "" {
		j.ExperienceLevel = DefaultExperienceLevel
	}
	if j.Skills == nil {
		j.Skills = []string{}
	}
	if j.SalaryMin < 0 || math.IsNaN(j.SalaryMin) {
		j.SalaryMin = 0
	}
	if j.SalaryMax < 0 || math.IsNaN(j.SalaryMax) {
		j.SalaryMax = 0
	}
	switch {
	case math.IsNaN(j.Score) || j.Score < 0:
		j.Score = 0
	case j.Score > 1:
		j.Score = 1
	}
}

// Validate checks the struct tags.
func (j *Job) Validate() error {
	if j.Title == "" {
		return ErrMissingTitle
	}
	return validation.Struct(j)
}

// ExternalID returns the catalog identifier. Negative ids are placeholders
// produced by the search fallback and count as absent.
func (j *Job) ExternalID() (int64, bool) {
	if j.OriginalID == nil || *j.OriginalID < 0 {
		return 0, false
	}
	return *j.OriginalID, true
}

// HasSalary reports whether both salary bounds are known. A range with
// only one bound is treated as unspecified.
func (j *Job) HasSalary() bool {
	return j.SalaryMin > 0 && j.SalaryMax > 0
}

// AverageSalary is the midpoint of the salary bounds, or 0 unless both are
// known.
func (j *Job) AverageSalary() float64 {
	if !j.HasSalary() {
		return 0
	}
	return (j.SalaryMin + j.SalaryMax) / 2
}

// SalaryRange formats the bounds for display, or "" unless both are known.
func (j *Job) SalaryRange() string {
	if !j.HasSalary() {
		return ""
	}
	return fmt.Sprintf("$%s - $%s", thousands(j.SalaryMin), thousands(j.SalaryMax))
}

func thousands(v float64) string {
	s := fmt.Sprintf("%d", int64(math.Round(v)))
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[:lead]...)
	for i := lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

// ID is a helper for building OriginalID pointers.
func ID(v int64) *int64 {
	return &v
}
