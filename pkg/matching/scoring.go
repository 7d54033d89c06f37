package matching

import (
	"math"
	"time"
)

// Scorer provides the field comparison algorithms used by the passes.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

// Similarity returns the edit-distance similarity of two normalized strings
// as a percentage in [0,100]. Either string empty scores 0, not a
// divide-by-zero.
func (s *Scorer) Similarity(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	maxLen := max(len(a), len(b))
	distance := s.LevenshteinDistance(a, b)
	return (maxLen - distance) * 100 / maxLen
}

// DaysBetween returns the absolute calendar-day difference between two dates,
// ignoring time of day. A nil on either side means the difference is
// undefined and reports false.
func (s *Scorer) DaysBetween(a, b *time.Time) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	days := int(math.Abs(da.Sub(db).Hours() / 24))
	return days, true
}

// WithinDays reports whether two dates are within n calendar days of each
// other. A missing date on either side is never within range.
func (s *Scorer) WithinDays(a, b *time.Time, n int) bool {
	days, ok := s.DaysBetween(a, b)
	return ok && days <= n
}

// CapacityScore compares two kilowatt ratings and returns a tiered score.
// The tiers are deliberately a step function rather than a linear formula:
// downstream scoring treats them as near-categorical evidence.
func (s *Scorer) CapacityScore(a, b *float64) int {
	if a == nil || b == nil || *a == 0 || *b == 0 {
		return 0
	}
	if *a == *b {
		return 100
	}

	diff := math.Abs(*a - *b)
	rel := diff / math.Max(*a, *b)

	switch {
	case rel <= 0.02:
		return 95
	case rel <= 0.05:
		return 85
	case rel <= 0.10:
		return 70
	case rel <= 0.15:
		return 50
	case rel <= 0.25:
		return 30
	default:
		return 0
	}
}
