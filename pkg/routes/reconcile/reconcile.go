package reconcile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/CoreyPud/solarlink/pkg/logging"
	"github.com/CoreyPud/solarlink/pkg/processor"
	"github.com/CoreyPud/solarlink/pkg/tracing"
)

// Handler triggers reconciliation runs
type Handler struct {
	processor *processor.Processor
	logger    logging.Logger
}

// NewHandler creates a new reconcile handler
func NewHandler(p *processor.Processor, logger logging.Logger) *Handler {
	return &Handler{
		processor: p,
		logger:    logger,
	}
}

// Register registers reconcile routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Run)
}

// Run executes a reconciliation run and returns its summary. The run is
// synchronous: the caller gets the final counters in the response.
func (h *Handler) Run(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "reconcile_handler.Run")
	defer span.End()

	summary, err := h.processor.Run(ctx)
	if err != nil {
		h.logger.WithContext(ctx).WithError(err).Error("Reconciliation run failed")
		return err
	}

	return c.JSON(http.StatusOK, summary)
}
