package matching

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
)

func newTestEngine() *Engine {
	return NewEngine(logging.NewNop(), DefaultConfig())
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func installationFixture(id string, capacity *float64, completed *time.Time, contractor *string) models.Installation {
	return models.Installation{
		ID:          id,
		CapacityKW:  capacity,
		CompletedAt: completed,
		Contractor:  contractor,
	}
}

func TestReconcileExactMatchClampedToCeiling(t *testing.T) {
	e := newTestEngine()

	installations := []models.Installation{
		installationFixture("inst-1", floatPtr(7.2), datePtr(2024, 6, 10), strPtr("Sunrun Solar Installation, LLC")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(7.2), datePtr(2024, 6, 12), strPtr("Sunrun Solar LLC"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 1)
	m := outcome.Matches[0]
	assert.Equal(t, "inst-1", m.InstallationID)
	assert.Equal(t, "ic-1", m.InterconnectionID)
	assert.Equal(t, models.MatchMethodExactKWDate, m.Method)

	// identical capacity, 2 days apart, matching installers: the raw score
	// exceeds the ceiling and gets clamped
	assert.Equal(t, 98, m.Confidence)
	assert.Equal(t, models.MatchStatusConfirmed, m.Status)
	assert.NotEmpty(t, m.Evidence.Data)

	assert.Equal(t, 1, outcome.Processed)
	assert.Equal(t, 0, outcome.Skipped)
}

func TestReconcileFuzzyInstallerAcceptance(t *testing.T) {
	e := newTestEngine()

	// no dates anywhere, so only the fuzzy installer+capacity pass can run
	installations := []models.Installation{
		installationFixture("inst-1", floatPtr(10.0), nil, strPtr("Acme")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(8.7), nil, strPtr("Acme"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	// 35 + 100/100*15 + 50/100*15 = 57.5, rounds to 58
	require.Len(t, outcome.Matches, 1)
	assert.Equal(t, models.MatchMethodFuzzyInstallerKW, outcome.Matches[0].Method)
	assert.Equal(t, 58, outcome.Matches[0].Confidence)
	assert.Equal(t, models.MatchStatusPendingReview, outcome.Matches[0].Status)
}

func TestReconcileAcceptanceAtExactThreshold(t *testing.T) {
	e := newTestEngine()

	// same installer, same fiscal year, no capacities, 75 days apart:
	// base 50 + 5 lands exactly on the acceptance threshold, which must
	// accept, not reject
	installations := []models.Installation{
		installationFixture("inst-1", nil, datePtr(2024, 3, 1), strPtr("Acme")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", nil, datePtr(2024, 5, 15), strPtr("Acme"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 1)
	m := outcome.Matches[0]
	assert.Equal(t, models.MatchMethodInstallerFY, m.Method)
	assert.Equal(t, 55, m.Confidence)
	assert.Equal(t, models.MatchStatusPendingReview, m.Status)
}

func TestReconcileFuzzyBelowThresholdRejected(t *testing.T) {
	e := newTestEngine()

	// similarity 75, capacity tier 50: 35 + 11.25 + 7.5 = 53.75 -> 54 < 55
	installations := []models.Installation{
		installationFixture("inst-1", floatPtr(10.0), nil, strPtr("Acme")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(8.7), nil, strPtr("Acmi"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	assert.Empty(t, outcome.Matches)
	assert.Equal(t, 1, outcome.Processed)
	// the record was eligible for a pass, so it is unmatched rather than skipped
	assert.Equal(t, 0, outcome.Skipped)
}

func TestReconcileSkipsRecordsWithInsufficientData(t *testing.T) {
	e := newTestEngine()

	installations := []models.Installation{
		// nothing usable at all
		installationFixture("inst-1", nil, nil, nil),
		// no installer and no date: the date+kw fallback needs both
		installationFixture("inst-2", floatPtr(5.0), nil, nil),
		// zero capacity is treated as missing
		installationFixture("inst-3", floatPtr(0), nil, strPtr("Acme")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(5.0), datePtr(2024, 6, 1), strPtr("Acme"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	assert.Empty(t, outcome.Matches)
	assert.Equal(t, 3, outcome.Processed)
	assert.Equal(t, 3, outcome.Skipped)
}

func TestReconcileConsumptionForcesFallback(t *testing.T) {
	e := newTestEngine()

	installations := []models.Installation{
		installationFixture("inst-a", floatPtr(7.2), datePtr(2024, 6, 10), nil),
		installationFixture("inst-b", floatPtr(7.2), datePtr(2024, 6, 10), nil),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(7.2), datePtr(2024, 6, 12), nil, nil),
		interconnectionFixture("ic-2", floatPtr(7.2), datePtr(2024, 7, 5), nil, nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 2)

	// inst-a takes the close date; ic-1 is then consumed, so inst-b falls
	// back to the weaker candidate instead of double-claiming
	assert.Equal(t, "inst-a", outcome.Matches[0].InstallationID)
	assert.Equal(t, "ic-1", outcome.Matches[0].InterconnectionID)
	assert.Equal(t, 98, outcome.Matches[0].Confidence)

	assert.Equal(t, "inst-b", outcome.Matches[1].InstallationID)
	assert.Equal(t, "ic-2", outcome.Matches[1].InterconnectionID)
	// 70 + 15 + 5 (25 days apart)
	assert.Equal(t, 90, outcome.Matches[1].Confidence)
}

func TestReconcileTieBreaksOnLowerID(t *testing.T) {
	e := newTestEngine()

	installations := []models.Installation{
		installationFixture("inst-1", floatPtr(7.2), datePtr(2024, 6, 10), nil),
	}
	// identical records in reversed id order
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-b", floatPtr(7.2), datePtr(2024, 6, 12), nil, nil),
		interconnectionFixture("ic-a", floatPtr(7.2), datePtr(2024, 6, 12), nil, nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 1)
	assert.Equal(t, "ic-a", outcome.Matches[0].InterconnectionID)
}

func TestReconcileDeterministic(t *testing.T) {
	e := newTestEngine()

	installations := []models.Installation{
		installationFixture("inst-1", floatPtr(7.2), datePtr(2024, 6, 10), strPtr("Sunrun Solar LLC")),
		installationFixture("inst-2", floatPtr(10.0), datePtr(2024, 3, 1), strPtr("Acme")),
		installationFixture("inst-3", nil, datePtr(2024, 5, 2), strPtr("Brightline Inc")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(7.2), datePtr(2024, 6, 12), strPtr("Sunrun Solar Power"), nil),
		interconnectionFixture("ic-2", floatPtr(10.1), datePtr(2024, 3, 10), strPtr("Acme"), nil),
		interconnectionFixture("ic-3", nil, datePtr(2024, 5, 20), strPtr("Brightline"), nil),
	}

	first := e.Reconcile(context.Background(), installations, interconnections)
	second := e.Reconcile(context.Background(), installations, interconnections)

	assert.Equal(t, first, second)
}

func TestReconcileDateKWFallbackCeiling(t *testing.T) {
	e := newTestEngine()

	// capacities land in different 0.5 kW buckets, so the exact pass finds
	// nothing and the no-installer fallback does the work
	installations := []models.Installation{
		installationFixture("inst-1", floatPtr(10.2), datePtr(2024, 6, 10), nil),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(10.4), datePtr(2024, 6, 12), nil, nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 1)
	m := outcome.Matches[0]
	assert.Equal(t, models.MatchMethodDateKWOnly, m.Method)
	// raw 60 + 14.25 + 15 = 89, clamped to the method ceiling
	assert.Equal(t, 80, m.Confidence)
	assert.Equal(t, models.MatchStatusPendingReview, m.Status)
}

func TestReconcileInstallerFiscalYearWithoutCapacity(t *testing.T) {
	e := newTestEngine()

	installations := []models.Installation{
		installationFixture("inst-1", nil, datePtr(2024, 3, 1), strPtr("Acme")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", nil, datePtr(2024, 4, 10), strPtr("Acme"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 1)
	m := outcome.Matches[0]
	assert.Equal(t, models.MatchMethodInstallerFY, m.Method)
	// base 50, no capacity contribution, 40 days apart (+10)
	assert.Equal(t, 60, m.Confidence)
}

func TestReconcileFiscalYearMismatchNoMatch(t *testing.T) {
	e := newTestEngine()

	// Sep 30 vs Oct 1 straddle the fiscal year boundary
	installations := []models.Installation{
		installationFixture("inst-1", nil, datePtr(2024, 9, 30), strPtr("Acme")),
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", nil, datePtr(2024, 10, 1), strPtr("Acme"), nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	assert.Empty(t, outcome.Matches)
	assert.Equal(t, 0, outcome.Skipped)
}

func TestReconcileIssuedDateFallback(t *testing.T) {
	e := newTestEngine()

	issued := datePtr(2024, 6, 10)
	installations := []models.Installation{
		{ID: "inst-1", CapacityKW: floatPtr(7.2), IssuedAt: issued},
	}
	interconnections := []models.Interconnection{
		interconnectionFixture("ic-1", floatPtr(7.2), datePtr(2024, 6, 12), nil, nil),
	}

	outcome := e.Reconcile(context.Background(), installations, interconnections)

	require.Len(t, outcome.Matches, 1)
	assert.Equal(t, models.MatchMethodExactKWDate, outcome.Matches[0].Method)
}
