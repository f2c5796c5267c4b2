package scraper

import (
	"fmt"
	"milex-scraper/internal/milex"
	"strings"
	"time"
)

// Summary describes a finished run.
type Summary struct {
	RunID       string
	Planned     int
	Skipped     int
	Counts      map[milex.Status]int
	Duration    time.Duration
	Interrupted bool

	successTime time.Duration
}

func (s *Summary) record(status milex.Status, elapsed time.Duration) {
	s.Counts[status]++
	if status == milex.StatusSuccess {
		s.successTime += elapsed
	}
}

// Attempted is the number of pages that were fetched.
func (s Summary) Attempted() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// AveragePage is the mean time of the successful pages.
func (s Summary) AveragePage() time.Duration {
	n := s.Counts[milex.StatusSuccess]
	if n == 0 {
		return 0
	}
	return s.successTime / time.Duration(n)
}

// FormatDuration renders whole seconds as "2h 15m 30s", leaving out zero
// hours and minutes.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, " ")
}
