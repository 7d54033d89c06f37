package models

import "time"

// Installation is a solar installation permit record from the city permitting
// system. Addresses are authoritative on this side; most other fields are
// sparse.
type Installation struct {
	ID           string     `json:"id" db:"id"`
	PermitNumber *string    `json:"permit_number,omitempty" db:"permit_number"`
	Address      string     `json:"address" db:"address"`
	CapacityKW   *float64   `json:"capacity_kw,omitempty" db:"capacity_kw"`
	AppliedAt    *time.Time `json:"applied_at,omitempty" db:"applied_at"`
	IssuedAt     *time.Time `json:"issued_at,omitempty" db:"issued_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Contractor   *string    `json:"contractor,omitempty" db:"contractor"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// MatchDate returns the date used for matching: completion preferred, issue
// date as fallback, nil when neither is set.
func (i *Installation) MatchDate() *time.Time {
	if i.CompletedAt != nil {
		return i.CompletedAt
	}
	return i.IssuedAt
}

// FiscalYear returns the fiscal year bucket derived from the match date.
func (i *Installation) FiscalYear() (int, bool) {
	d := i.MatchDate()
	if d == nil {
		return 0, false
	}
	return FiscalYearOf(*d), true
}

// FiscalYearOf maps a calendar date onto the Oct 1 – Sep 30 fiscal year.
// FY n spans Oct 1 of year n-1 through Sep 30 of year n.
func FiscalYearOf(d time.Time) int {
	if d.Month() >= time.October {
		return d.Year() + 1
	}
	return d.Year()
}
