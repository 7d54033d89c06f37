package installation

import (
	"context"
	"net/http"

	"github.com/huandu/go-sqlbuilder"

	"github.com/CoreyPud/solarlink/pkg/database"
	"github.com/CoreyPud/solarlink/pkg/httperror"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

const columns = "id, permit_number, address, capacity_kw, applied_at, issued_at, completed_at, contractor, created_at, updated_at"

// Repository reads installation permit records.
type Repository struct {
	db     database.DB
	logger logging.Logger
}

// NewRepository creates a new installation repository
func NewRepository(db database.DB, logger logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FetchUnmatched returns all installations not yet claimed by a live match
// result, ordered by id so a reconciliation run iterates deterministically.
// Rejected matches release their installation back into the pool.
func (r *Repository) FetchUnmatched(ctx context.Context) ([]models.Installation, error) {
	ctx, span := tracing.StartSpan(ctx, "installation.Repository.FetchUnmatched")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("installations")
	sb.Where(
		"id NOT IN (SELECT installation_id FROM match_results WHERE status <> 'rejected')",
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var installations []models.Installation
	if err := r.db.SelectContext(ctx, &installations, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to fetch unmatched installations")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to fetch unmatched installations").Wrap(err)
	}

	return installations, nil
}

// Get retrieves an installation by id
func (r *Repository) Get(ctx context.Context, id string) (*models.Installation, error) {
	ctx, span := tracing.StartSpan(ctx, "installation.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("installations")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var installation models.Installation
	if err := r.db.GetContext(ctx, &installation, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "installation %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get installation")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get installation").Wrap(err)
	}

	return &installation, nil
}
