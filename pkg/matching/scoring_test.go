package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 0, s.LevenshteinDistance("", ""))
	assert.Equal(t, 0, s.LevenshteinDistance("SUNRUN", "SUNRUN"))
	assert.Equal(t, 6, s.LevenshteinDistance("", "SUNRUN"))
	assert.Equal(t, 6, s.LevenshteinDistance("SUNRUN", ""))
	assert.Equal(t, 3, s.LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 1, s.LevenshteinDistance("ACME", "ACMI"))
}

func TestSimilarity(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 100, s.Similarity("SUNRUN", "SUNRUN"))
	assert.Equal(t, 0, s.Similarity("", "SUNRUN"))
	assert.Equal(t, 0, s.Similarity("SUNRUN", ""))
	assert.Equal(t, 0, s.Similarity("", ""))

	// one edit across four characters
	assert.Equal(t, 75, s.Similarity("ACME", "ACMI"))

	// completely different strings of the same length
	assert.Equal(t, 0, s.Similarity("AAAA", "BBBB"))
}

func TestDaysBetween(t *testing.T) {
	s := NewScorer()

	d1 := time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC)
	d2 := time.Date(2024, 6, 12, 0, 1, 0, 0, time.UTC)

	days, ok := s.DaysBetween(&d1, &d2)
	assert.True(t, ok)
	assert.Equal(t, 2, days) // time of day is ignored

	days, ok = s.DaysBetween(&d2, &d1)
	assert.True(t, ok)
	assert.Equal(t, 2, days) // order does not matter

	_, ok = s.DaysBetween(nil, &d2)
	assert.False(t, ok)
	_, ok = s.DaysBetween(&d1, nil)
	assert.False(t, ok)

	sameDay := time.Date(2024, 6, 10, 1, 0, 0, 0, time.UTC)
	days, ok = s.DaysBetween(&d1, &sameDay)
	assert.True(t, ok)
	assert.Equal(t, 0, days)
}

func TestWithinDays(t *testing.T) {
	s := NewScorer()

	d1 := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, s.WithinDays(&d1, &d2, 30))
	assert.False(t, s.WithinDays(&d1, &d2, 29))
	assert.False(t, s.WithinDays(nil, &d2, 365))
}

func TestCapacityScore(t *testing.T) {
	s := NewScorer()
	f := func(v float64) *float64 { return &v }

	assert.Equal(t, 0, s.CapacityScore(nil, f(10)))
	assert.Equal(t, 0, s.CapacityScore(f(10), nil))
	assert.Equal(t, 0, s.CapacityScore(f(0), f(10)))
	assert.Equal(t, 0, s.CapacityScore(f(10), f(0)))

	assert.Equal(t, 100, s.CapacityScore(f(7.2), f(7.2)))
	assert.Equal(t, 95, s.CapacityScore(f(10), f(10.1)))  // ~1%
	assert.Equal(t, 85, s.CapacityScore(f(10), f(10.4)))  // ~3.8%
	assert.Equal(t, 70, s.CapacityScore(f(10), f(10.9)))  // ~8.3%
	assert.Equal(t, 50, s.CapacityScore(f(10), f(11.5)))  // ~13%
	assert.Equal(t, 30, s.CapacityScore(f(10), f(12)))    // ~16.7%
	assert.Equal(t, 0, s.CapacityScore(f(10), f(14)))     // ~28.6%

	// symmetric
	assert.Equal(t, s.CapacityScore(f(10), f(10.4)), s.CapacityScore(f(10.4), f(10)))
}
