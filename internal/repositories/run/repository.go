package run

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/CoreyPud/solarlink/pkg/database"
	"github.com/CoreyPud/solarlink/pkg/httperror"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

const columns = "id, processed, skipped, matched, confirmed, pending_review, matches_by_method, errors, started_at, finished_at"

// Repository persists reconciliation run summaries.
type Repository struct {
	db     database.DB
	logger logging.Logger
}

// NewRepository creates a new run repository
func NewRepository(db database.DB, logger logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create records a completed run summary
func (r *Repository) Create(ctx context.Context, summary *models.RunSummary) error {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.Create")
	defer span.End()

	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("reconciliation_runs")
	ib.Cols("id", "processed", "skipped", "matched", "confirmed", "pending_review", "matches_by_method", "errors", "started_at", "finished_at")
	ib.Values(summary.ID, summary.Processed, summary.Skipped, summary.Matched, summary.Confirmed, summary.PendingReview, summary.MatchesByMethod, summary.Errors, summary.StartedAt, summary.FinishedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to record reconciliation run")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record reconciliation run").Wrap(err)
	}

	return nil
}

// List retrieves recent run summaries, newest first
func (r *Repository) List(ctx context.Context, limit int) ([]models.RunSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "run.Repository.List")
	defer span.End()

	if limit < 1 || limit > 200 {
		limit = 50
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("reconciliation_runs")
	sb.OrderBy("started_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var runs []models.RunSummary
	if err := r.db.SelectContext(ctx, &runs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list reconciliation runs")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list reconciliation runs").Wrap(err)
	}

	return runs, nil
}
