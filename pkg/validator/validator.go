// Package validator provides the field-level predicates used by the entity
// models. Predicates on optional fields return true for empty input; the
// caller combines them with Required where a field is mandatory.
package validator

import (
	"regexp"
	"strings"
	"time"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)
	zipRe   = regexp.MustCompile(`^\d{5}$`)
	digitRe = regexp.MustCompile(`\d`)
)

// Required reports whether a string value is present and non-blank.
func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Email validates a basic email shape. Empty values pass.
func Email(value string) bool {
	if value == "" {
		return true
	}
	return emailRe.MatchString(value)
}

// Phone accepts digits, spaces and common separators, with at least six
// digits overall. Empty values pass.
func Phone(value string) bool {
	if value == "" {
		return true
	}
	if !phoneRe.MatchString(value) {
		return false
	}
	return len(digitRe.FindAllString(value, -1)) >= 6
}

// ZipCode requires exactly five digits. Empty values pass.
func ZipCode(value string) bool {
	if value == "" {
		return true
	}
	return zipRe.MatchString(value)
}

// TrackingNumber requires a value between 8 and 30 characters.
func TrackingNumber(value string) bool {
	return len(value) >= 8 && len(value) <= 30
}

// NonNegative reports whether a numeric value is zero or greater.
func NonNegative(value float64) bool {
	return value >= 0
}

// Positive reports whether a numeric value is strictly greater than zero.
func Positive(value float64) bool {
	return value > 0
}

// MinLength reports whether value has at least min characters.
func MinLength(value string, min int) bool {
	return len(value) >= min
}

// MaxLength reports whether value has at most max characters. Empty values pass.
func MaxLength(value string, max int) bool {
	return len(value) <= max
}

// Date reports whether value parses as a YYYY-MM-DD date. Empty values pass.
func Date(value string) bool {
	if value == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// FutureDate reports whether value is today or later. Empty values pass.
func FutureDate(value string) bool {
	if value == "" {
		return true
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return false
	}
	today := time.Now().Truncate(24 * time.Hour)
	return !d.Before(today)
}

// PastDate reports whether value is today or earlier. Empty values pass.
func PastDate(value string) bool {
	if value == "" {
		return true
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return false
	}
	return !d.After(time.Now())
}
