// Package validators contains the stateless field predicates shared by the
// report flow and the announcement API.
package validators

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is the wire format of lastSeenDate
const DateLayout = "2006-01-02"

const (
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 128
)

// IsValidEmail is a lenient RFC check: exactly one '@' with non-empty local and
// domain parts, no whitespace, at most 254 characters.
func IsValidEmail(s string) bool {
	if s == "" || len(s) > maxEmailLength {
		return false
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	return local != "" && domain != ""
}

// IsValidPhone accepts any string containing at least one digit
func IsValidPhone(s string) bool {
	return CountDigits(s) > 0
}

// IsValidPassword checks the trimmed length is within [8, 128]
func IsValidPassword(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= minPasswordLength && n <= maxPasswordLength
}

// IsValidCoordinatePair requires both or neither coordinate. Present values
// must be finite and within latitude [-90, 90] and longitude [-180, 180].
func IsValidCoordinatePair(lat, lng *float64) bool {
	if lat == nil && lng == nil {
		return true
	}
	if lat == nil || lng == nil {
		return false
	}
	return IsValidLatitude(*lat) && IsValidLongitude(*lng)
}

// IsValidLatitude checks a finite value in [-90, 90]
func IsValidLatitude(v float64) bool {
	return isFinite(v) && v >= -90 && v <= 90
}

// IsValidLongitude checks a finite value in [-180, 180]
func IsValidLongitude(v float64) bool {
	return isFinite(v) && v >= -180 && v <= 180
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// IsValidDate reports whether s parses as YYYY-MM-DD and is not strictly after
// the calendar day of now.
func IsValidDate(s string, now time.Time) bool {
	d, err := ParseDate(s)
	if err != nil {
		return false
	}
	return !IsFutureDate(d, now)
}

// IsFutureDate compares calendar days only, in now's location
func IsFutureDate(d, now time.Time) bool {
	today := StartOfDay(now)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, now.Location())
	return day.After(today)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsDigitsOnly reports whether s is non-empty and made of ASCII digits
func IsDigitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CountDigits counts ASCII digits in s
func CountDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

// DigitsOnly strips everything except ASCII digits
func DigitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// IsOneOf reports whether s equals one of the allowed values
func IsOneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

// Truncate clips s to at most max runes
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
