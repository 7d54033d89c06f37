package interconnection

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

const columns = "id, address, capacity_kw, interconnected_at, details, created_at, updated_at"

// Repository reads utility interconnection-request records.
type Repository struct {
	db     database.DB
	logger logging.Logger
}

// NewRepository creates a new interconnection repository
func NewRepository(db database.DB, logger logging.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FetchUnmatched returns all interconnections not yet claimed by a live
// match result, ordered by id. Rejected matches release their record back
// into the pool.
func (r *Repository) FetchUnmatched(ctx context.Context) ([]models.Interconnection, error) {
	ctx, span := tracing.StartSpan(ctx, "interconnection.Repository.FetchUnmatched")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("interconnections")
	sb.Where(
		"id NOT IN (SELECT interconnection_id FROM match_results WHERE status <> 'rejected')",
	)
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var interconnections []models.Interconnection
	if err := r.db.SelectContext(ctx, &interconnections, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to fetch unmatched interconnections")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to fetch unmatched interconnections").Wrap(err)
	}

	return interconnections, nil
}

// Get retrieves an interconnection by id
func (r *Repository) Get(ctx context.Context, id string) (*models.Interconnection, error) {
	ctx, span := tracing.StartSpan(ctx, "interconnection.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("interconnections")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var interconnection models.Interconnection
	if err := r.db.GetContext(ctx, &interconnection, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "interconnection %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get interconnection")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get interconnection").Wrap(err)
	}

	return &interconnection, nil
}
