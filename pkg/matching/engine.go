// Package matching implements the cross-source reconciliation engine that
// links city permit records to utility interconnection requests. The two
// datasets share no common identifier, so links are scored from noisy,
// partial evidence: capacity, dates, installer names, and fiscal-year
// grouping.
package matching

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/normalizers"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

// Config contains the scoring policy for the engine. The thresholds and
// ceilings are policy judgments about false-positive tolerance, surfaced
// here rather than buried in the passes.
type Config struct {
	AcceptThreshold    int // minimum confidence for any result
	ConfirmThreshold   int // confidence at which a result skips manual review
	ExactCeiling       int // ceiling for exact_kw_date
	InstallerFYCeiling int // ceiling for installer_fiscal_year
	FuzzyCeiling       int // ceiling for fuzzy_installer_kw
	DateKWCeiling      int // ceiling for date_kw_only
}

// DefaultConfig returns the observed production policy.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:    55,
		ConfirmThreshold:   85,
		ExactCeiling:       98,
		InstallerFYCeiling: 90,
		FuzzyCeiling:       85,
		DateKWCeiling:      80,
	}
}

// Engine matches installation records against an indexed interconnection
// snapshot. It holds no per-run state; each Reconcile call builds its own
// index and consumption set.
type Engine struct {
	logger logging.Logger
	scorer *Scorer
	config Config
}

// NewEngine creates a new reconciliation engine
func NewEngine(logger logging.Logger, config Config) *Engine {
	return &Engine{
		logger: logger,
		scorer: NewScorer(),
		config: config,
	}
}

// candidate is one scored pairing produced by a pass.
type candidate struct {
	entry      *entry
	confidence int
	method     models.MatchMethod
	pass       int
	evidence   []string
}

// Outcome is the in-memory result of one engine run, before persistence.
type Outcome struct {
	Matches   []models.MatchResult
	Processed int
	Skipped   int
}

// Reconcile links each installation to at most one interconnection record.
// Both inputs are treated as frozen snapshots; the output is reproducible
// for fixed input order. An interconnection consumed by an accepted match is
// excluded from all later candidate generation in the same run.
func (e *Engine) Reconcile(ctx context.Context, installations []models.Installation, interconnections []models.Interconnection) Outcome {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.Reconcile")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"installations":    len(installations),
		"interconnections": len(interconnections),
	})
	log.Info("Starting reconciliation run")

	idx := NewReconciliationIndex(interconnections)
	consumed := make(map[string]bool, len(interconnections))

	outcome := Outcome{}

	for i := range installations {
		inst := &installations[i]
		outcome.Processed++

		candidates := e.collectCandidates(inst, idx, consumed)
		if candidates == nil {
			outcome.Skipped++
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		best := selectBest(candidates)
		if best.confidence < e.config.AcceptThreshold {
			continue
		}

		consumed[best.entry.rec.ID] = true

		status := models.MatchStatusPendingReview
		if best.confidence >= e.config.ConfirmThreshold {
			status = models.MatchStatusConfirmed
		}

		result := models.MatchResult{
			InstallationID:    inst.ID,
			InterconnectionID: best.entry.rec.ID,
			Confidence:        best.confidence,
			Method:            best.method,
			Status:            status,
		}
		result.Evidence.Data = best.evidence
		outcome.Matches = append(outcome.Matches, result)
	}

	log.WithFields(map[string]any{
		"matched": len(outcome.Matches),
		"skipped": outcome.Skipped,
	}).Info("Reconciliation run complete")

	return outcome
}

// collectCandidates runs the four passes in order. A nil return means no
// pass was eligible (insufficient data on the installation side), which is
// counted as skipped rather than unmatched.
func (e *Engine) collectCandidates(inst *models.Installation, idx *ReconciliationIndex, consumed map[string]bool) []candidate {
	installer := ""
	if inst.Contractor != nil {
		installer = normalizers.NormalizeCompany(*inst.Contractor)
	}
	date := inst.MatchDate()
	kw := inst.CapacityKW
	hasKW := kw != nil && *kw != 0
	fiscalYear, hasFY := inst.FiscalYear()

	var candidates []candidate
	eligible := false

	if hasKW && date != nil {
		eligible = true
		candidates = append(candidates, e.passExactKWDate(inst, installer, idx, consumed)...)
	}
	if installer != "" && hasFY {
		eligible = true
		candidates = append(candidates, e.passInstallerFiscalYear(inst, installer, fiscalYear, idx, consumed)...)
	}
	if installer != "" && hasKW {
		eligible = true
		candidates = append(candidates, e.passFuzzyInstallerKW(inst, installer, idx, consumed)...)
	}
	if installer == "" && hasKW && date != nil {
		eligible = true
		candidates = append(candidates, e.passDateKWOnly(inst, idx, consumed)...)
	}

	if !eligible {
		return nil
	}
	if candidates == nil {
		candidates = []candidate{}
	}
	return candidates
}

// passExactKWDate: near-identical capacity plus a close date. The strongest
// signal the datasets offer.
func (e *Engine) passExactKWDate(inst *models.Installation, installer string, idx *ReconciliationIndex, consumed map[string]bool) []candidate {
	date := inst.MatchDate()

	var out []candidate
	for _, ent := range idx.capacityBucket(*inst.CapacityKW) {
		if consumed[ent.rec.ID] {
			continue
		}
		capScore := e.scorer.CapacityScore(inst.CapacityKW, ent.rec.CapacityKW)
		if capScore < 85 {
			continue
		}
		days, ok := e.scorer.DaysBetween(date, ent.rec.InterconnectedAt)
		if !ok || days > 30 {
			continue
		}

		confidence := 70 + float64(capScore)/100*15
		evidence := []string{
			fmt.Sprintf("capacity %.2f kW vs %.2f kW (tier %d)", *inst.CapacityKW, *ent.rec.CapacityKW, capScore),
		}

		dateBonus := 5
		switch {
		case days <= 7:
			dateBonus = 15
		case days <= 14:
			dateBonus = 12
		case days <= 21:
			dateBonus = 8
		}
		confidence += float64(dateBonus)
		evidence = append(evidence, fmt.Sprintf("dates %d days apart (+%d)", days, dateBonus))

		if installer != "" && ent.installer != "" {
			if sim := e.scorer.Similarity(installer, ent.installer); sim >= 80 {
				confidence += 10
				evidence = append(evidence, fmt.Sprintf("installer similarity %d%% (+10)", sim))
			}
		}

		out = append(out, candidate{
			entry:      ent,
			confidence: clampConfidence(confidence, e.config.ExactCeiling),
			method:     models.MatchMethodExactKWDate,
			pass:       1,
			evidence:   evidence,
		})
	}
	return out
}

// passInstallerFiscalYear: same installer working the same fiscal year.
// Useful when capacity is missing on one side.
func (e *Engine) passInstallerFiscalYear(inst *models.Installation, installer string, fiscalYear int, idx *ReconciliationIndex, consumed map[string]bool) []candidate {
	date := inst.MatchDate()

	var out []candidate
	for _, ent := range idx.fiscalYearBucket(fiscalYear) {
		if consumed[ent.rec.ID] {
			continue
		}
		if ent.installer != installer {
			continue
		}

		confidence := 50.0
		evidence := []string{
			fmt.Sprintf("same installer %q", installer),
			fmt.Sprintf("same fiscal year FY%d", fiscalYear),
		}

		if capScore := e.scorer.CapacityScore(inst.CapacityKW, ent.rec.CapacityKW); capScore >= 50 {
			confidence += float64(capScore) / 100 * 20
			evidence = append(evidence, fmt.Sprintf("capacity tier %d", capScore))
		}

		if days, ok := e.scorer.DaysBetween(date, ent.rec.InterconnectedAt); ok && days <= 90 {
			dateBonus := 5
			switch {
			case days <= 30:
				dateBonus = 15
			case days <= 60:
				dateBonus = 10
			}
			confidence += float64(dateBonus)
			evidence = append(evidence, fmt.Sprintf("dates %d days apart (+%d)", days, dateBonus))
		}

		out = append(out, candidate{
			entry:      ent,
			confidence: clampConfidence(confidence, e.config.InstallerFYCeiling),
			method:     models.MatchMethodInstallerFY,
			pass:       2,
			evidence:   evidence,
		})
	}
	return out
}

// passFuzzyInstallerKW: tolerate installer-name noise between the two
// collection systems, anchored by a plausible capacity.
func (e *Engine) passFuzzyInstallerKW(inst *models.Installation, installer string, idx *ReconciliationIndex, consumed map[string]bool) []candidate {
	date := inst.MatchDate()

	var out []candidate
	for _, name := range idx.installerNames {
		sim := e.scorer.Similarity(installer, name)
		if sim < 70 {
			continue
		}
		for _, ent := range idx.installerBucket(name) {
			if consumed[ent.rec.ID] {
				continue
			}
			capScore := e.scorer.CapacityScore(inst.CapacityKW, ent.rec.CapacityKW)
			if capScore < 50 {
				continue
			}

			confidence := 35 + float64(sim)/100*15 + float64(capScore)/100*15
			evidence := []string{
				fmt.Sprintf("installer %q ~ %q similarity %d%%", installer, name, sim),
				fmt.Sprintf("capacity tier %d", capScore),
			}

			if days, ok := e.scorer.DaysBetween(date, ent.rec.InterconnectedAt); ok && days <= 180 {
				dateBonus := 5
				switch {
				case days <= 60:
					dateBonus = 15
				case days <= 120:
					dateBonus = 10
				}
				confidence += float64(dateBonus)
				evidence = append(evidence, fmt.Sprintf("dates %d days apart (+%d)", days, dateBonus))
			}

			conf := clampConfidence(confidence, e.config.FuzzyCeiling)
			if conf < e.config.AcceptThreshold {
				continue
			}

			out = append(out, candidate{
				entry:      ent,
				confidence: conf,
				method:     models.MatchMethodFuzzyInstallerKW,
				pass:       3,
				evidence:   evidence,
			})
		}
	}
	return out
}

// passDateKWOnly: last resort for permits with no contractor at all. The
// capacity and date requirements are much tighter to compensate.
func (e *Engine) passDateKWOnly(inst *models.Installation, idx *ReconciliationIndex, consumed map[string]bool) []candidate {
	date := inst.MatchDate()

	var out []candidate
	for _, ent := range idx.entries {
		if consumed[ent.rec.ID] {
			continue
		}
		capScore := e.scorer.CapacityScore(inst.CapacityKW, ent.rec.CapacityKW)
		if capScore < 90 {
			continue
		}
		days, ok := e.scorer.DaysBetween(date, ent.rec.InterconnectedAt)
		if !ok || days > 14 {
			continue
		}

		confidence := 60 + float64(capScore)/100*15
		evidence := []string{
			fmt.Sprintf("no installer on permit; capacity tier %d", capScore),
		}

		dateBonus := 8
		switch {
		case days <= 3:
			dateBonus = 15
		case days <= 7:
			dateBonus = 12
		}
		confidence += float64(dateBonus)
		evidence = append(evidence, fmt.Sprintf("dates %d days apart (+%d)", days, dateBonus))

		out = append(out, candidate{
			entry:      ent,
			confidence: clampConfidence(confidence, e.config.DateKWCeiling),
			method:     models.MatchMethodDateKWOnly,
			pass:       4,
			evidence:   evidence,
		})
	}
	return out
}

// selectBest picks the winning candidate. Ties in confidence go to the
// earlier pass, then to the lower interconnection id, so the pick is stable
// for fixed inputs rather than dependent on map iteration order.
func selectBest(candidates []candidate) candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].confidence != candidates[j].confidence {
			return candidates[i].confidence > candidates[j].confidence
		}
		if candidates[i].pass != candidates[j].pass {
			return candidates[i].pass < candidates[j].pass
		}
		return candidates[i].entry.rec.ID < candidates[j].entry.rec.ID
	})
	return candidates[0]
}

// clampConfidence rounds the accumulated score and clamps it to the method
// ceiling, keeping method tiers from colliding in ranking.
func clampConfidence(raw float64, ceiling int) int {
	conf := int(math.Round(raw))
	if conf > ceiling {
		return ceiling
	}
	if conf < 0 {
		return 0
	}
	return conf
}
