package models

import (
	"time"

	"github.com/CoreyPud/solarlink/pkg/database"
)

// Interconnection is a utility interconnection-request record. The address is
// privacy-redacted at origin (a synthetic placeholder at best) and is never
// used for matching; installer and fiscal year ride in the details payload.
type Interconnection struct {
	ID               string                                   `json:"id" db:"id"`
	Address          string                                   `json:"address" db:"address"`
	CapacityKW       *float64                                 `json:"capacity_kw,omitempty" db:"capacity_kw"`
	InterconnectedAt *time.Time                               `json:"interconnected_at,omitempty" db:"interconnected_at"`
	Details          database.JSONB[InterconnectionDetails]   `json:"details" db:"details"`
	CreatedAt        time.Time                                `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time                                `json:"updated_at" db:"updated_at"`
}

// InterconnectionDetails is the typed side payload. Extra keeps import
// columns we did not anticipate, so re-imports stay lossless.
type InterconnectionDetails struct {
	Installer  *string        `json:"installer,omitempty"`
	FiscalYear *int           `json:"fiscal_year,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// Installer returns the installer name from the payload, empty when missing.
func (i *Interconnection) Installer() string {
	if i.Details.Data.Installer == nil {
		return ""
	}
	return *i.Details.Data.Installer
}

// FiscalYear returns the fiscal year: an explicit payload value wins over the
// value derived from the interconnection date.
func (i *Interconnection) FiscalYear() (int, bool) {
	if i.Details.Data.FiscalYear != nil {
		return *i.Details.Data.FiscalYear, true
	}
	if i.InterconnectedAt == nil {
		return 0, false
	}
	return FiscalYearOf(*i.InterconnectedAt), true
}
