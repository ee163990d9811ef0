package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bescout/fantasy-events/internal/usecase"
)

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventID"))
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	entries, err := h.scoringService.Leaderboard(ctx, eventID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(ctx, entries))
}
