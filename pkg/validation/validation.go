// Package validation provides numeric guards for configuration and step
// inputs, and sanitization for user supplied labels.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on configuration sizes
const (
	MaxRingCount = 10000
	MaxBallCount = 64
	MaxLabelLen  = 32
)

// Allow alphanumeric, spaces, hyphens, underscores, and basic punctuation for labels
var validLabelChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.()]+$`)

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s: must be finite, got %v", field, v)
	}
	return nil
}

// ValidatePositive requires a finite value greater than zero.
func ValidatePositive(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s: must be positive, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative requires a finite value of at least zero.
func ValidateNonNegative(field string, v float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%s: cannot be negative, got %v", field, v)
	}
	return nil
}

// ValidateRange requires min <= v <= max.
func ValidateRange(field string, v, min, max float64) error {
	if err := ValidateFinite(field, v); err != nil {
		return err
	}
	if v < min || v > max {
		return fmt.Errorf("%s: %v out of range [%v, %v]", field, v, min, max)
	}
	return nil
}

// ValidateIntRange requires min <= v <= max.
func ValidateIntRange(field string, v, min, max int) error {
	if v < min || v > max {
		return fmt.Errorf("%s: %d out of range [%d, %d]", field, v, min, max)
	}
	return nil
}

// ValidateTimestep checks a simulation step duration.
func ValidateTimestep(dt float64) error {
	return ValidatePositive("dt", dt)
}

// ValidateLabel validates and trims a ball label shown by renderers
func ValidateLabel(label string) (string, error) {
	if label == "" {
		return "", fmt.Errorf("label cannot be empty")
	}

	if len(label) > MaxLabelLen {
		return "", fmt.Errorf("label too long: %d characters (max %d)", len(label), MaxLabelLen)
	}

	if !utf8.ValidString(label) {
		return "", fmt.Errorf("label contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", fmt.Errorf("label cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("label contains control characters")
		}
	}

	if !validLabelChars.MatchString(trimmed) {
		return "", fmt.Errorf("label contains invalid characters (only alphanumeric, spaces, hyphens, underscores, and basic punctuation allowed)")
	}

	return trimmed, nil
}
