// Package processor orchestrates a reconciliation run: load both snapshots,
// run the engine, persist results in bounded chunks, and report a summary.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/CoreyPud/solarlink/internal/repositories/installation"
	"github.com/CoreyPud/solarlink/internal/repositories/interconnection"
	"github.com/CoreyPud/solarlink/internal/repositories/matchresult"
	"github.com/CoreyPud/solarlink/internal/repositories/run"
	"github.com/CoreyPud/solarlink/pkg/events"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/matching"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

// Processor runs reconciliation end to end. It assumes nothing about
// exclusive access: concurrent runs are resolved by the uniqueness
// constraints on match_results, and a conflicting row is a note in the
// summary, not a failure.
type Processor struct {
	logger           logging.Logger
	installations    *installation.Repository
	interconnections *interconnection.Repository
	matches          *matchresult.Repository
	runs             *run.Repository
	engine           *matching.Engine
	emitter          *events.Emitter
	writeBatchSize   int
}

// NewProcessor creates a new reconciliation processor
func NewProcessor(
	logger logging.Logger,
	installations *installation.Repository,
	interconnections *interconnection.Repository,
	matches *matchresult.Repository,
	runs *run.Repository,
	engine *matching.Engine,
	emitter *events.Emitter,
	writeBatchSize int,
) *Processor {
	if writeBatchSize < 1 {
		writeBatchSize = 100
	}
	return &Processor{
		logger:           logger,
		installations:    installations,
		interconnections: interconnections,
		matches:          matches,
		runs:             runs,
		engine:           engine,
		emitter:          emitter,
		writeBatchSize:   writeBatchSize,
	}
}

// Run executes one reconciliation run. A failure to load either snapshot is
// fatal and writes nothing; everything after that degrades into the summary
// counters so a run is always safe to re-invoke.
func (p *Processor) Run(ctx context.Context) (*models.RunSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.Run")
	defer span.End()

	startedAt := time.Now().UTC()
	log := p.logger.WithContext(ctx)

	installations, err := p.installations.FetchUnmatched(ctx)
	if err != nil {
		return nil, err
	}
	interconnections, err := p.interconnections.FetchUnmatched(ctx)
	if err != nil {
		return nil, err
	}

	outcome := p.engine.Reconcile(ctx, installations, interconnections)

	summary := &models.RunSummary{
		Processed: outcome.Processed,
		Skipped:   outcome.Skipped,
		StartedAt: startedAt,
	}
	summary.MatchesByMethod.Data = map[string]int{}
	summary.Errors.Data = []string{}

	for start := 0; start < len(outcome.Matches); start += p.writeBatchSize {
		end := min(start+p.writeBatchSize, len(outcome.Matches))

		chunk := make([]*models.MatchResult, 0, end-start)
		for i := start; i < end; i++ {
			chunk = append(chunk, &outcome.Matches[i])
		}

		inserted, conflicted, err := p.matches.CreateBatch(ctx, chunk)
		if err != nil {
			log.WithError(err).WithFields(map[string]any{"chunk_start": start}).Error("Failed to write match result chunk")
			summary.Errors.Data = append(summary.Errors.Data,
				fmt.Sprintf("write failed for chunk starting at %d: %v", start, err))
			continue
		}

		conflictedIDs := make(map[string]bool, len(conflicted))
		for _, m := range conflicted {
			conflictedIDs[m.ID] = true
			summary.Errors.Data = append(summary.Errors.Data,
				fmt.Sprintf("already claimed by a concurrent run: installation %s, interconnection %s", m.InstallationID, m.InterconnectionID))
		}

		summary.Matched += inserted
		for _, m := range chunk {
			if conflictedIDs[m.ID] {
				continue
			}
			summary.MatchesByMethod.Data[string(m.Method)]++
			if m.Status == models.MatchStatusConfirmed {
				summary.Confirmed++
			} else {
				summary.PendingReview++
			}
			if emitErr := p.emitter.EmitMatchCreated(ctx, m); emitErr != nil {
				log.WithError(emitErr).WithFields(map[string]any{"match_id": m.ID}).Warn("Failed to emit match event")
			}
		}
	}

	summary.FinishedAt = time.Now().UTC()

	if err := p.runs.Create(ctx, summary); err != nil {
		log.WithError(err).Warn("Failed to persist run summary")
	}
	if err := p.emitter.EmitRunCompleted(ctx, summary); err != nil {
		log.WithError(err).Warn("Failed to emit run completion event")
	}

	log.WithFields(map[string]any{
		"processed":      summary.Processed,
		"skipped":        summary.Skipped,
		"matched":        summary.Matched,
		"confirmed":      summary.Confirmed,
		"pending_review": summary.PendingReview,
		"errors":         len(summary.Errors.Data),
	}).Info("Reconciliation run finished")

	return summary, nil
}
