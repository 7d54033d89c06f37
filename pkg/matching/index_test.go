package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoreyPud/solarlink/pkg/models"
)

func TestCapacityBucket(t *testing.T) {
	// 0.5 kW buckets
	assert.Equal(t, 14, CapacityBucket(7.0))
	assert.Equal(t, 14, CapacityBucket(7.2))
	assert.Equal(t, 15, CapacityBucket(7.3))
	assert.Equal(t, 15, CapacityBucket(7.5))
	assert.Equal(t, 0, CapacityBucket(0))
}

func TestNewReconciliationIndex(t *testing.T) {
	installer := "Sunrun Solar LLC"
	fy := 2023
	cap1 := 7.2
	date := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)

	recs := []models.Interconnection{
		interconnectionFixture("ic-2", &cap1, &date, &installer, nil),
		interconnectionFixture("ic-1", &cap1, &date, &installer, &fy),
		interconnectionFixture("ic-3", nil, nil, nil, nil), // nothing to index
	}

	idx := NewReconciliationIndex(recs)

	// entries are id-sorted regardless of input order
	require.Len(t, idx.entries, 3)
	assert.Equal(t, "ic-1", idx.entries[0].rec.ID)
	assert.Equal(t, "ic-2", idx.entries[1].rec.ID)
	assert.Equal(t, "ic-3", idx.entries[2].rec.ID)

	// records without capacity are omitted from the capacity index only
	assert.Len(t, idx.capacityBucket(7.2), 2)
	assert.Empty(t, idx.capacityBucket(12.0))

	// both records normalize to the same installer bucket
	require.Len(t, idx.installerNames, 1)
	assert.Equal(t, "SUNRUN SOLAR", idx.installerNames[0])
	assert.Len(t, idx.installerBucket("SUNRUN SOLAR"), 2)

	// explicit payload fiscal year wins over the date-derived one
	assert.Equal(t, 2023, idx.entries[0].fiscalYear)
	assert.True(t, idx.entries[0].hasFY)
	assert.Equal(t, 2024, idx.entries[1].fiscalYear)

	// fiscal-year buckets follow the same payload-wins rule
	assert.Len(t, idx.fiscalYearBucket(2023), 1)
	assert.Len(t, idx.fiscalYearBucket(2024), 1)
	assert.Empty(t, idx.fiscalYearBucket(2020))

	// no fields at all: present in entries, absent everywhere else
	assert.False(t, idx.entries[2].hasFY)
	assert.Equal(t, "", idx.entries[2].installer)
}

func interconnectionFixture(id string, capacity *float64, date *time.Time, installer *string, fiscalYear *int) models.Interconnection {
	rec := models.Interconnection{
		ID:               id,
		CapacityKW:       capacity,
		InterconnectedAt: date,
	}
	rec.Details.Data = models.InterconnectionDetails{
		Installer:  installer,
		FiscalYear: fiscalYear,
	}
	return rec
}
