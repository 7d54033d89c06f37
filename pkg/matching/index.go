package matching

import (
	"math"
	"sort"

	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/normalizers"
)

// entry is one interconnection record with its matching fields precomputed.
type entry struct {
	rec        *models.Interconnection
	installer  string // normalized, "" when missing
	fiscalYear int
	hasFY      bool
}

// ReconciliationIndex holds the per-run lookup structures over the
// interconnection snapshot. It is built fresh for every invocation and owned
// by that run; there is no process-wide index state.
//
// All bucket contents are sorted by record id so that iteration is
// reproducible regardless of map insertion order.
type ReconciliationIndex struct {
	entries        []*entry
	byCapacity     map[int][]*entry
	byFiscalYear   map[int][]*entry
	byInstaller    map[string][]*entry
	installerNames []string
}

// CapacityBucket maps a kilowatt rating to its 0.5 kW bucket key.
func CapacityBucket(kw float64) int {
	return int(math.Round(kw * 2))
}

// NewReconciliationIndex indexes a snapshot of interconnection records by
// capacity bucket, fiscal year, and normalized installer name. Records
// missing a field are omitted from that index only.
func NewReconciliationIndex(recs []models.Interconnection) *ReconciliationIndex {
	idx := &ReconciliationIndex{
		byCapacity:   make(map[int][]*entry),
		byFiscalYear: make(map[int][]*entry),
		byInstaller:  make(map[string][]*entry),
	}

	entries := make([]*entry, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		e := &entry{
			rec:       rec,
			installer: normalizers.NormalizeCompany(rec.Installer()),
		}
		e.fiscalYear, e.hasFY = rec.FiscalYear()
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].rec.ID < entries[j].rec.ID
	})
	idx.entries = entries

	for _, e := range entries {
		if e.rec.CapacityKW != nil && *e.rec.CapacityKW != 0 {
			bucket := CapacityBucket(*e.rec.CapacityKW)
			idx.byCapacity[bucket] = append(idx.byCapacity[bucket], e)
		}
		if e.hasFY {
			idx.byFiscalYear[e.fiscalYear] = append(idx.byFiscalYear[e.fiscalYear], e)
		}
		if e.installer != "" {
			idx.byInstaller[e.installer] = append(idx.byInstaller[e.installer], e)
		}
	}

	idx.installerNames = make([]string, 0, len(idx.byInstaller))
	for name := range idx.byInstaller {
		idx.installerNames = append(idx.installerNames, name)
	}
	sort.Strings(idx.installerNames)

	return idx
}

func (idx *ReconciliationIndex) capacityBucket(kw float64) []*entry {
	return idx.byCapacity[CapacityBucket(kw)]
}

func (idx *ReconciliationIndex) fiscalYearBucket(fy int) []*entry {
	return idx.byFiscalYear[fy]
}

func (idx *ReconciliationIndex) installerBucket(name string) []*entry {
	return idx.byInstaller[name]
}
