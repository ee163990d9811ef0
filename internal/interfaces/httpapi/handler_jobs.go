package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/bescout/fantasy-events/internal/usecase"
)

func (h *Handler) RunScoreEventJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScoreEventJob")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	settlement, err := h.scoringService.ScoreEvent(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "score event job failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementToDTO(settlement))
}

func (h *Handler) RunResetEventJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResetEventJob")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	item, err := h.resetService.ResetEvent(ctx, eventID)
	if err != nil {
		h.logger.WarnContext(ctx, "reset event job failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eventToDTO(ctx, item))
}

func (h *Handler) RunGameweekJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGameweekJob")
	defer span.End()

	report, err := h.gameweekService.RunGameweek(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run gameweek job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	failures := make([]eventFailureDTO, 0, len(report.EventFailures))
	for _, f := range report.EventFailures {
		failures = append(failures, eventFailureDTO{
			EventID: f.EventID,
			Stage:   f.Stage,
			Message: f.Message,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, gameweekReportDTO{
		Gameweek:      report.Gameweek,
		NextGameweek:  report.NextGameweek,
		ClosedCount:   report.ClosedCount,
		ScoredCount:   report.ScoredCount,
		SkippedCount:  report.SkippedCount,
		ClonedCount:   report.ClonedCount,
		EventFailures: failures,
	})
}

func settlementToDTO(settlement usecase.EventSettlement) settlementDTO {
	return settlementDTO{
		EventID:  settlement.EventID,
		Gameweek: settlement.Gameweek,
		ScoredAt: settlement.ScoredAt.UTC().Format(time.RFC3339),
		Entries:  len(settlement.Entries),
	}
}
