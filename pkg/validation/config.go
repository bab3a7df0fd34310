package validation

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// FieldError is one rejected setting of a config section.
type FieldError struct {
	Section string
	Field   string
	Reason  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Section, e.Field, e.Reason)
}

// ConfigValidator checks the settings of one config section. Checks chain
// and every failure is kept, so a bad file reports all its mistakes at once.
type ConfigValidator struct {
	section string
	errs    []error
}

// NewConfigValidator starts validating the named section.
func NewConfigValidator(section string) *ConfigValidator {
	return &ConfigValidator{section: section}
}

func (cv *ConfigValidator) check(ok bool, field, format string, args ...any) *ConfigValidator {
	if !ok {
		cv.errs = append(cv.errs, &FieldError{Section: cv.section, Field: field, Reason: fmt.Sprintf(format, args...)})
	}
	return cv
}

// Required rejects an empty string.
func (cv *ConfigValidator) Required(field, value string) *ConfigValidator {
	return cv.check(value != "", field, "required")
}

// OneOf rejects a value outside allowed.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	return cv.check(slices.Contains(allowed, value), field, "%q is not one of %v", value, allowed)
}

// Positive rejects n <= 0.
func (cv *ConfigValidator) Positive(field string, n int) *ConfigValidator {
	return cv.check(n > 0, field, "%d must be positive", n)
}

// RangeInt rejects n outside [lo, hi].
func (cv *ConfigValidator) RangeInt(field string, n, lo, hi int) *ConfigValidator {
	return cv.check(n >= lo && n <= hi, field, "%d is outside [%d, %d]", n, lo, hi)
}

// PositiveFloat rejects x <= 0.
func (cv *ConfigValidator) PositiveFloat(field string, x float64) *ConfigValidator {
	return cv.check(x > 0, field, "%g must be positive", x)
}

// NonNegativeFloat rejects x < 0.
func (cv *ConfigValidator) NonNegativeFloat(field string, x float64) *ConfigValidator {
	return cv.check(x >= 0, field, "%g must not be negative", x)
}

// RangeFloat rejects x outside [lo, hi].
func (cv *ConfigValidator) RangeFloat(field string, x, lo, hi float64) *ConfigValidator {
	return cv.check(x >= lo && x <= hi, field, "%g is outside [%g, %g]", x, lo, hi)
}

// Less rejects x unless it is strictly below the other field's value, as
// for a threshold that must sit inside another.
func (cv *ConfigValidator) Less(field string, x float64, otherField string, other float64) *ConfigValidator {
	return cv.check(x < other, field, "%g must be below %s (%g)", x, otherField, other)
}

// NonNegativeDuration rejects d < 0. Zero means instant.
func (cv *ConfigValidator) NonNegativeDuration(field string, d time.Duration) *ConfigValidator {
	return cv.check(d >= 0, field, "%v must not be negative", d)
}

// MinDuration rejects d below lo.
func (cv *ConfigValidator) MinDuration(field string, d, lo time.Duration) *ConfigValidator {
	return cv.check(d >= lo, field, "%v is below %v", d, lo)
}

// When runs more checks only if cond holds, for settings that matter only
// when a feature is on.
func (cv *ConfigValidator) When(cond bool, checks func(*ConfigValidator)) *ConfigValidator {
	if cond {
		checks(cv)
	}
	return cv
}

// Validate returns every failure joined, or nil.
func (cv *ConfigValidator) Validate() error {
	return errors.Join(cv.errs...)
}
