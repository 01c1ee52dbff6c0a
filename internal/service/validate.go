package service

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/numerology"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

const (
	maxNameLength    = 100
	maxTitleLength   = 120
	maxMessageLength = 2000
	minBirthYear     = 1800
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func validateName(field, raw string) (string, error) {
	name := sanitizeString(raw)
	if name == "" {
		return "", invalid(field, "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", invalid(field, "must be at most %d characters", maxNameLength)
	}
	if strings.TrimSpace(numerology.NormalizeName(name)) == "" {
		return "", invalid(field, "must contain at least one Latin letter")
	}
	return name, nil
}

func validateBirthDate(field, raw string, now time.Time) (numerology.BirthDate, error) {
	if strings.TrimSpace(raw) == "" {
		return numerology.BirthDate{}, invalid(field, "is required")
	}
	date, err := numerology.ParseBirthDate(raw)
	if err != nil {
		return numerology.BirthDate{}, invalid(field, "must be a calendar date formatted YYYY-MM-DD")
	}
	if date.Year < minBirthYear {
		return numerology.BirthDate{}, invalid(field, "must not be before %d", minBirthYear)
	}
	if date.Time().After(now) {
		return numerology.BirthDate{}, invalid(field, "must not be in the future")
	}
	return date, nil
}

func validateLocation(in *LocationInput) (*domain.Location, error) {
	if in == nil {
		return nil, nil
	}
	if math.IsNaN(in.Latitude) || in.Latitude < -90 || in.Latitude > 90 {
		return nil, invalid("location.latitude", "must be within [-90, 90]")
	}
	if math.IsNaN(in.Longitude) || in.Longitude < -180 || in.Longitude > 180 {
		return nil, invalid("location.longitude", "must be within [-180, 180]")
	}
	return &domain.Location{
		Place:     sanitizeString(in.Place),
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
	}, nil
}

// validateZone returns the zone to store: the IANA name when given,
// otherwise the offset rendered as ±HH:MM, otherwise "".
func validateZone(zone string, offset *float64) (string, error) {
	zone = strings.TrimSpace(zone)
	if zone != "" {
		if _, err := time.LoadLocation(zone); err != nil {
			return "", invalid("timezone", "unknown zone %q", zone)
		}
		return zone, nil
	}
	if offset == nil {
		return "", nil
	}
	if math.IsNaN(*offset) || *offset < -14 || *offset > 14 {
		return "", invalid("utcOffset", "must be within [-14, 14] hours")
	}
	return formatOffset(*offset), nil
}

func formatOffset(hours float64) string {
	sign := '+'
	if hours < 0 {
		sign = '-'
		hours = -hours
	}
	minutes := int(math.Round(hours * 60))
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}

// parseOffset inverts formatOffset.
func parseOffset(zone string) (float64, bool) {
	var sign rune
	var h, m int
	if _, err := fmt.Sscanf(zone, "%c%02d:%02d", &sign, &h, &m); err != nil {
		return 0, false
	}
	hours := float64(h) + float64(m)/60
	switch sign {
	case '+':
		return hours, true
	case '-':
		return -hours, true
	}
	return 0, false
}

func validateLifePathFilter(n int) error {
	if n == 0 {
		return nil
	}
	if (n >= 1 && n <= 9) || numerology.IsMaster(n) {
		return nil
	}
	return invalid("lifePath", "must be 1-9, 11, 22 or 33")
}

func validateTitle(raw string) (string, error) {
	title := sanitizeString(raw)
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", invalid("title", "must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func validateMessage(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", invalid("content", "is required")
	}
	if utf8.RuneCountInString(content) > maxMessageLength {
		return "", invalid("content", "must be at most %d characters", maxMessageLength)
	}
	return content, nil
}
