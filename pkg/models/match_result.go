package models

import (
	"time"

	"github.com/CoreyPud/solarlink/pkg/database"
)

// MatchMethod identifies which matching pass produced a result.
type MatchMethod string

const (
	MatchMethodExactKWDate       MatchMethod = "exact_kw_date"
	MatchMethodInstallerFY       MatchMethod = "installer_fiscal_year"
	MatchMethodFuzzyInstallerKW  MatchMethod = "fuzzy_installer_kw"
	MatchMethodDateKWOnly        MatchMethod = "date_kw_only"
)

// MatchResult status constants. Confirmed links need no human review;
// pending ones are surfaced to the admin review queue.
const (
	MatchStatusConfirmed     = "confirmed"
	MatchStatusPendingReview = "pending_review"
	MatchStatusApproved      = "approved"
	MatchStatusRejected      = "rejected"
)

// MatchResult links one installation to one interconnection with a scored
// confidence. Rows are append-only; adjudication only flips the status.
type MatchResult struct {
	ID                string                    `json:"id" db:"id"`
	InstallationID    string                    `json:"installation_id" db:"installation_id"`
	InterconnectionID string                    `json:"interconnection_id" db:"interconnection_id"`
	Confidence        int                       `json:"confidence" db:"confidence"`
	Method            MatchMethod               `json:"method" db:"method"`
	Status            string                    `json:"status" db:"status"`
	Evidence          database.JSONB[[]string]  `json:"evidence" db:"evidence"`
	CreatedAt         time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at" db:"updated_at"`
	ResolvedAt        *time.Time                `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy        *string                   `json:"resolved_by,omitempty" db:"resolved_by"`
}

// RunSummary reports the outcome of one reconciliation run.
type RunSummary struct {
	ID               string              `json:"id" db:"id"`
	Processed        int                 `json:"processed" db:"processed"`
	Skipped          int                 `json:"skipped" db:"skipped"`
	Matched          int                 `json:"matched" db:"matched"`
	Confirmed        int                 `json:"confirmed" db:"confirmed"`
	PendingReview    int                 `json:"pending_review" db:"pending_review"`
	MatchesByMethod  database.JSONB[map[string]int] `json:"matches_by_method" db:"matches_by_method"`
	Errors           database.JSONB[[]string]       `json:"errors" db:"errors"`
	StartedAt        time.Time           `json:"started_at" db:"started_at"`
	FinishedAt       time.Time           `json:"finished_at" db:"finished_at"`
}
