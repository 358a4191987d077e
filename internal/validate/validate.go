package validate

import (
	"regexp"
	"strconv"
	"strings"

	"dealersite/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'.\\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9_-]{1,120}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 80 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a resource identifier (car, promotion, testimonial ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Slug validates a car slug taken from the URL.
func Slug(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reSlug.MatchString(s)
}

// Status accepts only the known stock statuses.
func Status(s string) (domain.CarStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range domain.CarStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Percent parses a whole-number percentage in [0,100].
func Percent(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 100 {
		return def
	}
	return n
}

// Tenor parses a month count; anything non-numeric falls back to def.
// Zero and negatives pass through so the simulator can reject them.
func Tenor(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
