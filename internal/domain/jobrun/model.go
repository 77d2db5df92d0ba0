package jobrun

import (
	"regexp"
	"strings"
	"time"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// JobRun is one execution attempt of a named job, optionally scoped by a
// deterministic job key used for idempotency.
type JobRun struct {
	ID           string
	JobName      string
	JobKey       *string
	Status       string
	StartedAt    time.Time
	EndedAt      *time.Time
	ErrorMessage string
}

var jobKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^odds\|hourly\|\d{4}-\d{2}-\d{2}\|\d{2}$`),
	regexp.MustCompile(`^[a-z]+\|fixed\|\d{4}-\d{2}-\d{2}\|\d{4}$`),
	regexp.MustCompile(`^[a-z]+\|tminus\|[^|]+\|\d+$`),
	regexp.MustCompile(`^fpl\|daily\|\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^fpl\|deadline\|GW\d+\|T-\d+h$`),
}

// ValidKeyFormat reports whether key matches one of the documented job_key
// patterns. Ad-hoc/dev keys beginning with "odds|hourly|test" are excluded
// from the strict format check, as spec'd.
func ValidKeyFormat(key string) bool {
	if strings.HasPrefix(key, "odds|hourly|test") {
		return true
	}
	for _, p := range jobKeyPatterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
