package matchresult

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/CoreyPud/solarlink/internal/repositories/matchresult"
	"github.com/CoreyPud/solarlink/pkg/events"
	"github.com/CoreyPud/solarlink/pkg/httperror"
	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/models"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

var validate = validator.New()

// Handler serves match result review endpoints
type Handler struct {
	repo    *matchresult.Repository
	emitter *events.Emitter
	logger  logging.Logger
}

// NewHandler creates a new match result handler
func NewHandler(repo *matchresult.Repository, emitter *events.Emitter, logger logging.Logger) *Handler {
	return &Handler{
		repo:    repo,
		emitter: emitter,
		logger:  logger,
	}
}

// Register registers match result routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/pending", h.ListPending)
	g.GET("/stats", h.Stats)
	g.GET("/:id", h.Get)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
}

// ResolveRequest is the body for approve and reject calls
type ResolveRequest struct {
	ResolvedBy string `json:"resolved_by" validate:"required"`
}

// List lists match results, optionally filtered by status
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "matchresult_handler.List")
	defer span.End()

	status := c.QueryParam("status")
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	results, err := h.repo.List(ctx, status, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

// ListPending lists matches awaiting human review
func (h *Handler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "matchresult_handler.ListPending")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 500 {
		limit = 100
	}

	results, err := h.repo.ListPending(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}

// Get gets a match result by ID
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "matchresult_handler.Get")
	defer span.End()

	result, err := h.repo.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Approve marks a pending match as approved
func (h *Handler) Approve(c echo.Context) error {
	return h.resolve(c, models.MatchStatusApproved)
}

// Reject marks a pending match as rejected, releasing both records back
// into the candidate pool for the next run
func (h *Handler) Reject(c echo.Context) error {
	return h.resolve(c, models.MatchStatusRejected)
}

func (h *Handler) resolve(c echo.Context, status string) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "matchresult_handler.resolve")
	defer span.End()

	id := c.Param("id")

	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.repo.UpdateStatus(ctx, id, status, req.ResolvedBy); err != nil {
		return err
	}

	result, err := h.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{
		"match_id":    id,
		"status":      status,
		"resolved_by": req.ResolvedBy,
	}).Info("Resolved match result")

	if err := h.emitter.EmitMatchResolved(ctx, result, status == models.MatchStatusApproved); err != nil {
		h.logger.WithContext(ctx).WithError(err).Warn("Failed to emit match resolution event")
	}

	return c.JSON(http.StatusOK, result)
}

// StatsResponse summarizes match results by status and method
type StatsResponse struct {
	Total    int                       `json:"total"`
	ByStatus map[string]int            `json:"by_status"`
	ByMethod map[string]map[string]int `json:"by_method"`
}

// Stats returns match totals grouped by status and method
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "matchresult_handler.Stats")
	defer span.End()

	counts, err := h.repo.Counts(ctx)
	if err != nil {
		return err
	}

	resp := StatsResponse{
		ByStatus: map[string]int{},
		ByMethod: map[string]map[string]int{},
	}
	for _, row := range counts {
		resp.Total += row.Count
		resp.ByStatus[row.Status] += row.Count
		if resp.ByMethod[row.Method] == nil {
			resp.ByMethod[row.Method] = map[string]int{}
		}
		resp.ByMethod[row.Method][row.Status] += row.Count
	}

	return c.JSON(http.StatusOK, resp)
}
