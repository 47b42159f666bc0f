package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"sales-analytics/internal/errors"
	"sales-analytics/internal/models"
	"sales-analytics/internal/observability"
	"sales-analytics/internal/params"
	"sales-analytics/internal/query"
	"sales-analytics/internal/services"
)

const cacheControl = "private, max-age=60"

type APIHandlers struct {
	reports *services.Reports
	parser  *params.Parser
	logger  *slog.Logger
}

func NewAPIHandlers(reports *services.Reports, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		reports: reports,
		parser:  params.NewParser(logger),
		logger:  logger,
	}
}

func (h *APIHandlers) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parser.TimeSeries(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	points, err := h.reports.TimeSeries(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	meta := &models.Meta{
		Total:       len(points),
		Granularity: string(filter.Granularity),
		Period:      seriesPeriod(filter.Range, points),
	}
	h.ok(w, points, meta)
}

// HandleUsers lists user performance. meta.total counts all matching users
// regardless of limit and offset.
func (h *APIHandlers) HandleUsers(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parser.Users(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.reports.UserPerformance(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.ok(w, page.Users, &models.Meta{
		Total:  page.Total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

func (h *APIHandlers) HandleGroups(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parser.Groups(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	groups, err := h.reports.GroupPerformance(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.ok(w, groups, &models.Meta{Total: len(groups)})
}

func (h *APIHandlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parser.Leaderboard(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.reports.Leaderboard(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	limit := filter.Limit
	h.ok(w, entries, &models.Meta{Total: len(entries), Limit: &limit})
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parser.Summary(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summary, err := h.reports.Summary(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.ok(w, summary, nil)
}

func (h *APIHandlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parser.Compare(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	comparison, err := h.reports.Compare(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.ok(w, comparison, nil)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.reports.Ping(ctx); err != nil {
		h.fail(w, r, errors.Wrap(err, errors.CodeServiceUnavail, "Database is unreachable"))
		return
	}

	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *APIHandlers) ok(w http.ResponseWriter, data any, meta *models.Meta) {
	errors.WriteSuccessWithHeaders(w, data, meta, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// seriesPeriod reports the explicit bounds when given and otherwise the
// first and last buckets returned.
func seriesPeriod(rng query.Range, points []models.TimeSeriesPoint) *models.Period {
	var first, last string
	if len(points) > 0 {
		first = points[0].Period
		last = points[len(points)-1].Period
	}

	period := &models.Period{Start: first, End: last}
	if rng.Start != nil {
		period.Start = rng.Start.Format(time.DateOnly)
	}
	if rng.End != nil {
		period.End = rng.End.Format(time.DateOnly)
	}
	return period
}
