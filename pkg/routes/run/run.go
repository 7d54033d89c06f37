package run

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/CoreyPud/solarlink/internal/repositories/run"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

// Handler serves reconciliation run history
type Handler struct {
	repo *run.Repository
}

// NewHandler creates a new run handler
func NewHandler(repo *run.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers run routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
}

// List lists recent reconciliation runs, newest first
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "run_handler.List")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	runs, err := h.repo.List(ctx, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, runs)
}
