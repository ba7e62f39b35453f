package http

import (
	"github.com/gofiber/fiber/v2"

	"analyzer_server/core/domain"
	"analyzer_server/core/service/analysis"
	"analyzer_server/core/service/report"
	"analyzer_server/pkg/apperr"
)

// AnalysisHandler exposes synchronous analysis, read access to the
// history and summary aggregate, and an on-demand digest trigger.
type AnalysisHandler struct {
	analyzer *analysis.Service
	reporter *report.Service
}

func NewAnalysisHandler(analyzer *analysis.Service, reporter *report.Service) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		reporter: reporter,
	}
}

func (h *AnalysisHandler) Register(app *fiber.App) {
	v1 := app.Group("/api/v1")
	v1.Post("/analyze", h.Analyze)
	v1.Get("/history", h.History)
	v1.Get("/summary", h.Summary)
	v1.Post("/summary/send", h.SendSummary)
}

// Analyze runs the pipeline synchronously for one email. The pipeline
// never fails outward; a degraded result carries its error field.
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	var event domain.EmailEvent
	if err := c.BodyParser(&event); err != nil {
		return respondError(c, apperr.BadRequest("invalid request body"))
	}
	if event.Subject == "" && event.Snippet == "" {
		return respondError(c, apperr.MissingField("subject or snippet"))
	}

	result := h.analyzer.Analyze(c.Context(), &event)
	return c.JSON(result)
}

// History returns the processed-email sequence, oldest first.
func (h *AnalysisHandler) History(c *fiber.Ctx) error {
	history, err := h.analyzer.History(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"count":  len(history),
		"emails": history,
	})
}

// Summary returns the aggregate over the current history without
// consuming it.
func (h *AnalysisHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.reporter.BuildSummary(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// SendSummary triggers a full digest cycle on demand: notify, reset the
// history, emit the summary event. Same path the scheduler takes.
func (h *AnalysisHandler) SendSummary(c *fiber.Ctx) error {
	if err := h.reporter.SendDailySummary(c.Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "sent"})
}

func respondError(c *fiber.Ctx, err error) error {
	appErr := apperr.AsAppError(err)
	return c.Status(appErr.HTTPStatus()).JSON(fiber.Map{
		"error": appErr,
	})
}
