package matchresult

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/CoreyPud/solarlink/pkg/database"
	"github.com/CoreyPud/solarlink/pkg/httperror"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

const columns = "id, installation_id, interconnection_id, confidence, method, status, evidence, created_at, updated_at, resolved_at, resolved_by"

// Repository handles match result persistence
type Repository struct {
	db     database.DB
	logger logging.Logger
}

// NewRepository creates a new match result repository
func NewRepository(db database.DB, logger logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts one chunk of match results. A row that trips either
// uniqueness constraint (a concurrent run already claimed one side of the
// pair) is skipped, not fatal: the insert runs with ON CONFLICT DO NOTHING
// and RETURNING, and rows whose ids do not come back are reported as
// conflicted so the caller can note them in the run summary.
func (r *Repository) CreateBatch(ctx context.Context, results []*models.MatchResult) (int, []*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.CreateBatch")
	defer span.End()

	if len(results) == 0 {
		return 0, nil, nil
	}

	now := time.Now().UTC()
	ib := database.NewInsertBuilder()
	ib.InsertInto("match_results")
	ib.Cols("id", "installation_id", "interconnection_id", "confidence", "method", "status", "evidence", "created_at", "updated_at")

	for _, m := range results {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.CreatedAt = now
		m.UpdatedAt = now
		ib.Values(m.ID, m.InstallationID, m.InterconnectionID, m.Confidence, m.Method, m.Status, m.Evidence, m.CreatedAt, m.UpdatedAt)
	}

	ib.OnConflictDoNothing()
	ib.SQL("RETURNING id")

	query, args := ib.Build()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to insert match results batch")
		return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert match results").Wrap(err)
	}
	defer rows.Close()

	insertedIDs := make(map[string]bool, len(results))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read inserted match ids").Wrap(err)
		}
		insertedIDs[id] = true
	}
	if err := rows.Err(); err != nil {
		return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read inserted match ids").Wrap(err)
	}

	var conflicted []*models.MatchResult
	for _, m := range results {
		if !insertedIDs[m.ID] {
			conflicted = append(conflicted, m)
		}
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"inserted":   len(insertedIDs),
		"conflicted": len(conflicted),
	}).Debug("Inserted match results batch")

	return len(insertedIDs), conflicted, nil
}

// Get retrieves a match result by id
func (r *Repository) Get(ctx context.Context, id string) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("match_results")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var result models.MatchResult
	if err := r.db.GetContext(ctx, &result, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "match result %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get match result")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get match result").Wrap(err)
	}

	return &result, nil
}

// List retrieves match results, optionally filtered by status, newest and
// highest-confidence first.
func (r *Repository) List(ctx context.Context, status string, limit int) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("match_results")
	if status != "" {
		sb.Where(sb.Equal("status", status))
	}
	sb.OrderBy("confidence DESC", "created_at DESC", "id ASC")
	sb.Limit(limit)

	query, args := sb.Build()
	var results []models.MatchResult
	if err := r.db.SelectContext(ctx, &results, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match results")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match results").Wrap(err)
	}

	return results, nil
}

// ListPending retrieves the manual review queue
func (r *Repository) ListPending(ctx context.Context, limit int) ([]models.MatchResult, error) {
	return r.List(ctx, models.MatchStatusPendingReview, limit)
}

// UpdateStatus adjudicates a pending match result. Only pending_review rows
// can transition, so re-playing an adjudication is a no-op conflict.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status string, resolvedBy string) error {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.UpdateStatus")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("match_results")
	ub.Set(
		ub.Assign("status", status),
		ub.Assign("resolved_at", time.Now().UTC()),
		ub.Assign("resolved_by", resolvedBy),
		ub.Assign("updated_at", time.Now().UTC()),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("status", models.MatchStatusPendingReview),
	)

	query, args := ub.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"match_id": id}).Error("Failed to update match result status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update match result").Wrap(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update match result").Wrap(err)
	}
	if affected == 0 {
		return httperror.NewHTTPErrorf(http.StatusConflict, "match result %s is not pending review", id)
	}

	return nil
}

// StatusCount is one row of the match status breakdown.
type StatusCount struct {
	Status string `db:"status"`
	Method string `db:"method"`
	Count  int    `db:"count"`
}

// Counts returns match totals grouped by status and method for the stats
// endpoint.
func (r *Repository) Counts(ctx context.Context) ([]StatusCount, error) {
	ctx, span := tracing.StartSpan(ctx, "matchresult.Repository.Counts")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("status", "method", "COUNT(*) AS count")
	sb.From("match_results")
	sb.GroupBy("status", "method")
	sb.OrderBy("status ASC", "method ASC")

	query, args := sb.Build()
	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count match results")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count match results").Wrap(err)
	}

	return counts, nil
}
